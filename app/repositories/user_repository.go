package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/metrolabs/metro/app/models"
)

// UserRepository handles database operations for User.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id int, fields map[string]interface{}) (models.User, error)
	Delete(ctx context.Context, id int) error
	All(ctx context.Context) ([]models.User, error)
}

type mongoUserRepository struct {
	coll *mongo.Collection
	seq  Sequencer
}

// NewUserRepository builds the Mongo-backed UserRepository.
func NewUserRepository(coll *mongo.Collection, seq Sequencer) UserRepository {
	return &mongoUserRepository{coll: coll, seq: seq}
}

// FindByEmail looks up a user by their email address.
func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("repositories: find user by email: %w", err)
	}
	return user, nil
}

// FindByID looks up a user by domain id.
func (r *mongoUserRepository) FindByID(ctx context.Context, id int) (models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("repositories: find user %d: %w", id, err)
	}
	return user, nil
}

// Create allocates a fresh domain id and inserts the user. The unique
// index on email surfaces concurrent duplicates as a duplicate-key
// error, which callers translate into a conflict.
func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	id, err := r.seq.NextSequence(ctx, SeqUsers)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ObjectID = oid
	}
	return nil
}

// Update applies the given fields and returns the post-update record.
func (r *mongoUserRepository) Update(ctx context.Context, id int, fields map[string]interface{}) (models.User, error) {
	fields["updatedAt"] = time.Now().UTC()

	var user models.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("repositories: update user %d: %w", id, err)
	}
	return user, nil
}

// Delete removes a user by domain id.
func (r *mongoUserRepository) Delete(ctx context.Context, id int) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("repositories: delete user %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// All returns every user, newest first.
func (r *mongoUserRepository) All(ctx context.Context) ([]models.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("repositories: list users: %w", err)
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("repositories: decode users: %w", err)
	}
	return users, nil
}
