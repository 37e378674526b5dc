package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderLine is one product reference and quantity within an order
type OrderLine struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// TrackingInfo is the carrier-facing state of an order
type TrackingInfo struct {
	TrackingNumber    string         `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	Status            TrackingStatus `bson:"status" json:"status"`
	EstimatedDelivery *time.Time     `bson:"estimated_delivery,omitempty" json:"estimatedDelivery,omitempty"`
}

// Order represents a buyer's purchase from one exporter
type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Buyer           primitive.ObjectID  `bson:"buyer" json:"buyer"`
	Exporter        primitive.ObjectID  `bson:"exporter" json:"exporter"`
	Products        []OrderLine         `bson:"products" json:"products"`
	TotalAmount     float64             `bson:"total_amount" json:"totalAmount"`
	ShippingAddress Address             `bson:"shipping_address" json:"shippingAddress"`
	Shipper         *primitive.ObjectID `bson:"shipper,omitempty" json:"shipper,omitempty"`
	TrackingInfo    TrackingInfo        `bson:"tracking_info" json:"trackingInfo"`
	Version         int64               `bson:"version" json:"version"`
	CreatedAt       time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updated_at" json:"updatedAt"`
}

// AssignedTo reports whether shipperID is the order's assigned shipper.
func (o *Order) AssignedTo(shipperID primitive.ObjectID) bool {
	return o.Shipper != nil && *o.Shipper == shipperID
}

// OrderLineView is an order line with its product resolved.
type OrderLineView struct {
	Product  *ProductSummary `json:"product"`
	Quantity int             `json:"quantity"`
}

// OrderView is the enriched projection of an order returned by list endpoints.
type OrderView struct {
	ID              primitive.ObjectID `json:"id"`
	Buyer           *UserSummary       `json:"buyer"`
	Exporter        *UserSummary       `json:"exporter"`
	Shipper         *UserSummary       `json:"shipper,omitempty"`
	Products        []OrderLineView    `json:"products"`
	TotalAmount     float64            `json:"totalAmount"`
	ShippingAddress Address            `json:"shippingAddress"`
	TrackingInfo    TrackingInfo       `json:"trackingInfo"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}
