package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductCategories lists the categories a listing may be filed under.
var ProductCategories = []string{
	"Fruits",
	"Vegetables",
	"Grains",
	"Spices",
	"Dairy",
	"Meat",
	"Seafood",
	"Beverages",
	"Handicrafts",
	"Textiles",
	"Industrial Goods",
	"Other",
}

// Product represents an exporter's listing
type Product struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Exporter          primitive.ObjectID `bson:"exporter" json:"exporter"`
	Name              string             `bson:"name" json:"name"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Category          string             `bson:"category" json:"category"`
	PricePerUnit      float64            `bson:"price_per_unit" json:"pricePerUnit"`
	Unit              string             `bson:"unit" json:"unit"` // e.g. "kg", "ton", "box"
	AvailableQuantity int                `bson:"available_quantity" json:"availableQuantity"`
	Image             string             `bson:"image" json:"image"`
	OriginCountry     string             `bson:"origin_country" json:"originCountry"`
	Certifications    []string           `bson:"certifications,omitempty" json:"certifications,omitempty"`
	IsActive          bool               `bson:"is_active" json:"isActive"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ProductSummary is embedded in order lines when orders are projected.
type ProductSummary struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	Category     string             `json:"category"`
	Unit         string             `json:"unit"`
	PricePerUnit float64            `json:"pricePerUnit"`
	Image        string             `json:"image,omitempty"`
}

// ToSummary projects p for embedding in an order line.
func (p Product) ToSummary() *ProductSummary {
	return &ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Unit:         p.Unit,
		PricePerUnit: p.PricePerUnit,
		Image:        p.Image,
	}
}

// ProductListing is a product together with its exporter's public fields.
type ProductListing struct {
	Product
	ExporterInfo *UserSummary `json:"exporterInfo,omitempty"`
}

// ProductUpdate carries the mutable fields of a listing. Nil fields are left unchanged.
type ProductUpdate struct {
	Name              *string
	Description       *string
	Category          *string
	PricePerUnit      *float64
	Unit              *string
	AvailableQuantity *int
	Image             *string
	OriginCountry     *string
	Certifications    []string
	IsActive          *bool
}

// Apply copies the set fields of up onto p.
func (p *Product) Apply(up ProductUpdate) {
	if up.Name != nil {
		p.Name = *up.Name
	}
	if up.Description != nil {
		p.Description = *up.Description
	}
	if up.Category != nil {
		p.Category = *up.Category
	}
	if up.PricePerUnit != nil {
		p.PricePerUnit = *up.PricePerUnit
	}
	if up.Unit != nil {
		p.Unit = *up.Unit
	}
	if up.AvailableQuantity != nil {
		p.AvailableQuantity = *up.AvailableQuantity
	}
	if up.Image != nil {
		p.Image = *up.Image
	}
	if up.OriginCountry != nil {
		p.OriginCountry = *up.OriginCountry
	}
	if up.Certifications != nil {
		p.Certifications = up.Certifications
	}
	if up.IsActive != nil {
		p.IsActive = *up.IsActive
	}
}
