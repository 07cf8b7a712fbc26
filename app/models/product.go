package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a product in the catalogue.
type Product struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID          int                `bson:"id" json:"id"`
	Name        string             `bson:"productName" json:"productName"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Gender      string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Size        string             `bson:"size,omitempty" json:"size,omitempty"`
	Stock       int                `bson:"stock" json:"stock"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
}
