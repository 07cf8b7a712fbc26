package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/metrolabs/metro/app/jobs"
	"github.com/metrolabs/metro/config"
	"github.com/metrolabs/metro/pkg/cache"
	"github.com/metrolabs/metro/pkg/database"
	"github.com/metrolabs/metro/pkg/queue"
)

// metro queue:work — run queue workers without the HTTP server.
// Useful for scaling job throughput independently of the API.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase())
		if err != nil {
			return err
		}
		defer db.Close(context.Background())
		queue.UseCollection(db.Collection(database.CollFailedJobs))

		c, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
		if err != nil {
			return fmt.Errorf("queue:work needs redis: %w", err)
		}
		defer c.Close()
		queue.SetDriver(queue.NewRedisDriver(c.Client()))

		jobs.Register()

		workers := 4
		if n, err := strconv.Atoi(config.Get("QUEUE_WORKERS", "4")); err == nil && n > 0 {
			workers = n
		}
		queue.StartWorkers(ctx, workers)

		fmt.Printf("Processing jobs with %d workers. Ctrl-C to stop.\n", workers)
		<-ctx.Done()
		return nil
	},
}
