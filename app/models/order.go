package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// OrderItem is a line item inside an order. Name and price are copied
// from the catalogue at order time so later product edits never rewrite
// order history.
type OrderItem struct {
	ProductID   int     `bson:"productId" json:"productId"`
	Name        string  `bson:"title" json:"title"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Image       string  `bson:"image,omitempty" json:"image,omitempty"`
	Category    string  `bson:"category,omitempty" json:"category,omitempty"`
	Gender      string  `bson:"gender,omitempty" json:"gender,omitempty"`
	Size        string  `bson:"size,omitempty" json:"size,omitempty"`
	Price       float64 `bson:"price" json:"price"`
	Quantity    int     `bson:"quantity" json:"quantity"`
}

// LineTotal returns price times quantity for this item.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// ShippingAddress is the delivery address captured with an order. The
// recipient name travels with the address; it need not match the
// account holder.
type ShippingAddress struct {
	FirstName    string `bson:"firstName" json:"firstName"`
	LastName     string `bson:"lastName" json:"lastName"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode   string `bson:"postalCode" json:"postalCode"`
	Country      string `bson:"country" json:"country"`
}

// Order is a placed order with snapshot line items and a server-computed
// total.
type Order struct {
	ObjectID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID              int                `bson:"id" json:"id"`
	UserID          int                `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	OrderTotal      float64            `bson:"orderTotal" json:"orderTotal"`
	ShippingAddress *ShippingAddress   `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	Status          string             `bson:"status" json:"status"`
	Date            time.Time          `bson:"date" json:"date"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updated_at"`
}
