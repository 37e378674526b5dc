package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role gates which marketplace operations a user may call.
type Role string

const (
	RoleExporter Role = "exporter"
	RoleBuyer    Role = "buyer"
	RoleShipper  Role = "shipper"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleExporter, RoleBuyer, RoleShipper, RoleAdmin:
		return true
	}
	return false
}

// Address represents a postal address
type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Zip     string `bson:"zip" json:"zip"`
	Country string `bson:"country" json:"country"`
}

// CompanyDetails holds the registration data of an exporter or shipper company
type CompanyDetails struct {
	LicenseNumber string `bson:"license_number,omitempty" json:"licenseNumber,omitempty"`
	GSTNumber     string `bson:"gst_number,omitempty" json:"gstNumber,omitempty"`
	Country       string `bson:"country,omitempty" json:"country,omitempty"`
	Website       string `bson:"website,omitempty" json:"website,omitempty"`
}

// User represents an account in the marketplace
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password,omitempty" json:"-"`
	Role           Role               `bson:"role" json:"role"`
	CompanyName    string             `bson:"company_name,omitempty" json:"companyName,omitempty"`
	CompanyDetails CompanyDetails     `bson:"company_details" json:"companyDetails"`
	Address        Address            `bson:"address" json:"address"`
	ContactNumber  string             `bson:"contact_number,omitempty" json:"contactNumber,omitempty"`
	IsVerified     bool               `bson:"is_verified" json:"isVerified"`
	Ratings        float64            `bson:"ratings" json:"ratings"`
	ReviewsCount   int                `bson:"reviews_count" json:"reviewsCount"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ShipperListing is the public view of a shipper account in the directory.
type ShipperListing struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	ContactNumber string             `json:"contactNumber,omitempty"`
	CompanyName   string             `json:"companyName,omitempty"`
	Ratings       float64            `json:"ratings"`
	Address       Address            `json:"address"`
}

// ToShipperListing projects u to the fields other users may see.
func (u User) ToShipperListing() ShipperListing {
	return ShipperListing{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		ContactNumber: u.ContactNumber,
		CompanyName:   u.CompanyName,
		Ratings:       u.Ratings,
		Address:       u.Address,
	}
}

// UserSummary is embedded in order projections in place of a bare id.
type UserSummary struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	CompanyName   string             `json:"companyName,omitempty"`
	ContactNumber string             `json:"contactNumber,omitempty"`
}

// ToSummary projects u for embedding in another document's view.
func (u User) ToSummary() *UserSummary {
	return &UserSummary{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		CompanyName:   u.CompanyName,
		ContactNumber: u.ContactNumber,
	}
}

// Caller is the authenticated principal of a request.
type Caller struct {
	ID    primitive.ObjectID
	Email string
	Role  Role
}

// Is reports whether the caller holds one of roles.
func (c Caller) Is(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// ProfileUpdate carries the self-editable fields of a user. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name           *string
	CompanyName    *string
	CompanyDetails *CompanyDetails
	ContactNumber  *string
	Address        *Address
}

// Apply copies the set fields of up onto u.
func (u *User) Apply(up ProfileUpdate) {
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.CompanyName != nil {
		u.CompanyName = *up.CompanyName
	}
	if up.CompanyDetails != nil {
		u.CompanyDetails = *up.CompanyDetails
	}
	if up.ContactNumber != nil {
		u.ContactNumber = *up.ContactNumber
	}
	if up.Address != nil {
		u.Address = *up.Address
	}
}
