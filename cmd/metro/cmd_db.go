package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/metrolabs/metro/config"
	"github.com/metrolabs/metro/database/seeders"
	"github.com/metrolabs/metro/pkg/database"
)

// bootDB loads config and opens the Mongo connection.
func bootDB(ctx context.Context) (*database.DB, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return database.Connect(ctx, config.MongoURI(), config.MongoDatabase())
}

// metro db:index
var dbIndexCmd = &cobra.Command{
	Use:   "db:index",
	Short: "Create the required Mongo indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		db, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close(context.Background())

		fmt.Println("Creating indexes…")
		if err := db.EnsureIndexes(ctx); err != nil {
			return err
		}
		fmt.Println("Done.")
		return nil
	},
}

// metro db:seed
var dbSeedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Seed the catalogue with sample products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		db, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close(context.Background())

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, db)
	},
}
