package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the primary user model.
//
// ID is the small, human-friendly domain id allocated from the counters
// collection; ObjectID is Mongo's document key. Both travel in the JWT
// so either can address the user.
type User struct {
	ObjectID  primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID        int                `bson:"id" json:"user_id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash, never serialised
	Address   *UserAddress       `bson:"address,omitempty" json:"address,omitempty"`
	Token     string             `bson:"-" json:"token,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}

// UserAddress is the optional address on a user profile. Every field is
// optional; registration never asks for one.
type UserAddress struct {
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	Number  int    `bson:"number,omitempty" json:"number,omitempty"`
	Zipcode string `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
}
