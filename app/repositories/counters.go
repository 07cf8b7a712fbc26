// Package repositories holds the MongoDB persistence layer.
//
// Every repository is exposed as an interface so services and
// controllers can be tested against in-memory fakes.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("repositories: not found")

// Sequencer hands out monotonically increasing domain ids.
type Sequencer interface {
	// NextSequence atomically increments and returns the counter for name.
	NextSequence(ctx context.Context, name string) (int, error)
}

// Counter names.
const (
	SeqUsers    = "users"
	SeqProducts = "products"
	SeqOrders   = "orders"
)

type mongoSequencer struct {
	coll *mongo.Collection
}

// NewSequencer returns a Sequencer backed by the counters collection.
func NewSequencer(coll *mongo.Collection) Sequencer {
	return &mongoSequencer{coll: coll}
}

// NextSequence uses findOneAndUpdate with $inc and upsert so two
// concurrent callers can never receive the same id.
func (s *mongoSequencer) NextSequence(ctx context.Context, name string) (int, error) {
	var doc struct {
		Seq int `bson:"seq"`
	}

	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("repositories: next sequence %q: %w", name, err)
	}

	return doc.Seq, nil
}
