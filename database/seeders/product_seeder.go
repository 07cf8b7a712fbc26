package seeders

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/app/repositories"
	"github.com/metrolabs/metro/pkg/database"
)

func init() {
	Register("products", SeedProducts)
}

// SeedProducts fills an empty catalogue with a handful of demo
// products. It is a no-op when products already exist, so re-running
// db:seed is safe.
func SeedProducts(ctx context.Context, db *database.DB) error {
	coll := db.Collection(database.CollProducts)
	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	seq := repositories.NewSequencer(db.Collection(database.CollCounters))
	products := repositories.NewProductRepository(coll, seq)

	demo := []models.Product{
		{Name: "Wireless Headphones", Description: "Over-ear, 30h battery, active noise cancelling.", Category: "audio", Price: 129.99, Stock: 40},
		{Name: "Mechanical Keyboard", Description: "Tenkeyless, hot-swappable switches.", Category: "peripherals", Price: 89.50, Stock: 25},
		{Name: "USB-C Dock", Description: "Dual 4K display, 100W passthrough charging.", Category: "peripherals", Price: 64.00, Stock: 60},
		{Name: "Laptop Stand", Description: "Aluminium, adjustable height.", Category: "accessories", Price: 34.99, Stock: 80},
		{Name: "Webcam", Description: "1080p60 with privacy shutter.", Category: "video", Price: 54.90, Stock: 35},
	}

	for i := range demo {
		if err := products.Create(ctx, &demo[i]); err != nil {
			return err
		}
	}
	return nil
}
