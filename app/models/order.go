package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order lifecycle states. Delivered is terminal; Cancelled is the only
// non-forward escape.
const (
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// ValidStatus reports whether s names a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Payment states.
const (
	PaymentPaid = "paid"
)

// OrderLine is a snapshot of a catalog item at order time. Denormalized so
// later catalog edits cannot rewrite history on the order.
type OrderLine struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Kind      string             `bson:"kind" json:"kind"` // artwork | material
	Qty       int                `bson:"qty" json:"qty"`
	Price     float64            `bson:"price" json:"price"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`

	// Artwork snapshot fields.
	Title  string `bson:"title,omitempty" json:"title,omitempty"`
	Artist string `bson:"artist,omitempty" json:"artist,omitempty"`
	Medium string `bson:"medium,omitempty" json:"medium,omitempty"`

	// Material snapshot field.
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

// ShippingInfo is the order's shipping address.
type ShippingInfo struct {
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	Country    string `bson:"country" json:"country"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Phone      string `bson:"phone" json:"phone"`
}

// PaymentInfo carries the external payment reference and its status.
type PaymentInfo struct {
	ID     string `bson:"id,omitempty" json:"id,omitempty"`
	Status string `bson:"status,omitempty" json:"status,omitempty"`
}

// Order is a placed order owned by one user.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Lines         []OrderLine        `bson:"lines" json:"lines"`
	Shipping      ShippingInfo       `bson:"shipping" json:"shipping"`
	Payment       PaymentInfo        `bson:"payment" json:"payment"`
	ItemsPrice    float64            `bson:"itemsPrice" json:"itemsPrice"`
	TaxPrice      float64            `bson:"taxPrice" json:"taxPrice"`
	ShippingPrice float64            `bson:"shippingPrice" json:"shippingPrice"`
	TotalPrice    float64            `bson:"totalPrice" json:"totalPrice"`
	OrderStatus   string             `bson:"orderStatus" json:"orderStatus"`
	PaidAt        *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	DeliveredAt   *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
