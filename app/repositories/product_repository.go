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

// ProductRepository handles database operations for Product.
type ProductRepository interface {
	FindByID(ctx context.Context, id int) (models.Product, error)
	FindByIDs(ctx context.Context, ids []int) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id int, fields map[string]interface{}) (models.Product, error)
	Delete(ctx context.Context, id int) error
	All(ctx context.Context) ([]models.Product, error)
}

type mongoProductRepository struct {
	coll *mongo.Collection
	seq  Sequencer
}

// NewProductRepository builds the Mongo-backed ProductRepository.
func NewProductRepository(coll *mongo.Collection, seq Sequencer) ProductRepository {
	return &mongoProductRepository{coll: coll, seq: seq}
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id int) (models.Product, error) {
	var product models.Product
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("repositories: find product %d: %w", id, err)
	}
	return product, nil
}

// FindByIDs returns the products whose domain id is in ids. Missing ids
// are simply absent from the result; the caller decides whether that is
// an error.
func (r *mongoProductRepository) FindByIDs(ctx context.Context, ids []int) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("repositories: find products: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("repositories: decode products: %w", err)
	}
	return products, nil
}

func (r *mongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	id, err := r.seq.NextSequence(ctx, SeqProducts)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	product.ID = id
	product.CreatedAt = now
	product.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, product)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ObjectID = oid
	}
	return nil
}

func (r *mongoProductRepository) Update(ctx context.Context, id int, fields map[string]interface{}) (models.Product, error) {
	fields["updatedAt"] = time.Now().UTC()

	var product models.Product
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("repositories: update product %d: %w", id, err)
	}
	return product, nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id int) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("repositories: delete product %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) All(ctx context.Context) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("repositories: list products: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("repositories: decode products: %w", err)
	}
	return products, nil
}
