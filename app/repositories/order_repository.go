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

// OrderRepository handles database operations for Order.
type OrderRepository interface {
	FindByID(ctx context.Context, id int) (models.Order, error)
	FindByUser(ctx context.Context, userID int) ([]models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, id int, fields map[string]interface{}) (models.Order, error)
	Delete(ctx context.Context, id int) error
	All(ctx context.Context) ([]models.Order, error)
}

type mongoOrderRepository struct {
	coll *mongo.Collection
	seq  Sequencer
}

// NewOrderRepository builds the Mongo-backed OrderRepository.
func NewOrderRepository(coll *mongo.Collection, seq Sequencer) OrderRepository {
	return &mongoOrderRepository{coll: coll, seq: seq}
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id int) (models.Order, error) {
	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("repositories: find order %d: %w", id, err)
	}
	return order, nil
}

// FindByUser returns a user's orders, newest first.
func (r *mongoOrderRepository) FindByUser(ctx context.Context, userID int) ([]models.Order, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("repositories: orders for user %d: %w", userID, err)
	}
	defer cur.Close(ctx)

	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("repositories: decode orders: %w", err)
	}
	return orders, nil
}

func (r *mongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	id, err := r.seq.NextSequence(ctx, SeqOrders)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	order.ID = id
	order.Date = now
	order.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ObjectID = oid
	}
	return nil
}

func (r *mongoOrderRepository) Update(ctx context.Context, id int, fields map[string]interface{}) (models.Order, error) {
	fields["updatedAt"] = time.Now().UTC()

	var order models.Order
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("repositories: update order %d: %w", id, err)
	}
	return order, nil
}

func (r *mongoOrderRepository) Delete(ctx context.Context, id int) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("repositories: delete order %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoOrderRepository) All(ctx context.Context) ([]models.Order, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("repositories: list orders: %w", err)
	}
	defer cur.Close(ctx)

	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("repositories: decode orders: %w", err)
	}
	return orders, nil
}
