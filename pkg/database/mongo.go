// Package database manages the MongoDB connection for Metro.
//
// Boot once in internal/server:
//
//	db, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase())
//	...
//	defer db.Close(context.Background())
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/metrolabs/metro/pkg/logger"
)

// Collection names used across the app.
const (
	CollUsers      = "users"
	CollProducts   = "products"
	CollOrders     = "orders"
	CollCounters   = "counters"
	CollFailedJobs = "failed_jobs"
	CollLogs       = "app_logs"
)

// DB wraps the Mongo client and the application database handle.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, name string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(100).
		SetRetryWrites(true))
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	logger.Info("database: connected", "db", name)
	return &DB{client: client, db: client.Database(name)}, nil
}

// Collection returns a handle to the named collection.
func (d *DB) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// Database returns the raw database handle.
func (d *DB) Database() *mongo.Database {
	return d.db
}

// EnsureIndexes creates the indexes the app relies on. Safe to run on
// every boot; Mongo treats identical index specs as a no-op.
//
// The unique index on users.email is load-bearing: it is what closes
// the register race when two requests carry the same address.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		CollUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		CollProducts: {
			{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		CollOrders: {
			{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "userId", Value: 1}},
			},
		},
		CollFailedJobs: {
			{
				Keys: bson.D{{Key: "jobType", Value: 1}},
			},
		},
	}

	for coll, models := range specs {
		if _, err := d.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("database: ensure indexes on %s: %w", coll, err)
		}
	}

	logger.Info("database: indexes ensured")
	return nil
}

// Close disconnects from MongoDB.
func (d *DB) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// IsDuplicateKey reports whether err is a Mongo unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
