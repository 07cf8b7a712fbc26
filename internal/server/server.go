// Package server boots and runs the Metro API process.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/metrolabs/metro/app/controllers"
	appgraphql "github.com/metrolabs/metro/app/graphql"
	"github.com/metrolabs/metro/app/jobs"
	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/app/repositories"
	"github.com/metrolabs/metro/app/routes"
	"github.com/metrolabs/metro/app/services"
	"github.com/metrolabs/metro/config"
	"github.com/metrolabs/metro/pkg/cache"
	"github.com/metrolabs/metro/pkg/database"
	"github.com/metrolabs/metro/pkg/event"
	"github.com/metrolabs/metro/pkg/grpc"
	"github.com/metrolabs/metro/pkg/logger"
	"github.com/metrolabs/metro/pkg/metrics"
	"github.com/metrolabs/metro/pkg/middleware"
	"github.com/metrolabs/metro/pkg/payment"
	"github.com/metrolabs/metro/pkg/queue"
	"github.com/metrolabs/metro/pkg/reqid"
	"github.com/metrolabs/metro/pkg/router"
	"github.com/metrolabs/metro/pkg/storage"
	"github.com/metrolabs/metro/pkg/ws"
	"github.com/metrolabs/metro/pkg/workerpool"
)

// Start boots every subsystem and serves until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Stores ────────────────────────────────────────────────────────────

	db, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase())
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	if config.AppEnv() == "production" || config.AppEnv() == "prod" {
		mh, err := logger.AttachMongo(config.MongoURI(), config.MongoDatabase(), database.CollLogs)
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			defer mh.Close()
		}
	}

	var redisCache *cache.Cache
	if c, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword()); err != nil {
		logger.Warn("redis unavailable, cache disabled and queue falls back to memory", "error", err)
	} else {
		redisCache = c
		defer redisCache.Close()
	}

	storage.Connect()

	// ── Queue ─────────────────────────────────────────────────────────────

	if redisCache != nil {
		queue.SetDriver(queue.NewRedisDriver(redisCache.Client()))
	}
	queue.UseCollection(db.Collection(database.CollFailedJobs))
	jobs.Register()
	queue.StartWorkers(ctx, queueWorkers())

	// ── Domain wiring ─────────────────────────────────────────────────────

	seq := repositories.NewSequencer(db.Collection(database.CollCounters))
	userRepo := repositories.NewUserRepository(db.Collection(database.CollUsers), seq)
	productRepo := repositories.NewProductRepository(db.Collection(database.CollProducts), seq)
	orderRepo := repositories.NewOrderRepository(db.Collection(database.CollOrders), seq)

	authSvc := services.NewAuthService(userRepo, config.JWTSecret(), config.TokenTTL(), config.BcryptCost())
	orderSvc := services.NewOrderService(orderRepo, productRepo, userRepo)

	stripeClient := payment.NewClient(config.StripeKey(), config.StripeAPIURL())

	// ── Order fan-out ─────────────────────────────────────────────────────

	orderHub := ws.NewHub()
	go orderHub.Run()

	pool := workerpool.New(16)
	defer pool.Shutdown()
	registerOrderListeners(orderHub, pool, userRepo)

	// ── HTTP surface ──────────────────────────────────────────────────────

	schema, err := appgraphql.NewSchema(productRepo, orderRepo)
	if err != nil {
		return err
	}

	r := router.New()
	r.Use(
		reqid.Middleware(),
		middleware.RequestLogger,
		metrics.Middleware,
		middleware.CORS,
		middleware.NewRateLimiter(50, 100).Middleware,
		middleware.Recover,
	)

	routes.RegisterAPI(r, routes.Deps{
		Auth:      controllers.NewAuthController(authSvc),
		Users:     controllers.NewUserController(userRepo, config.BcryptCost()),
		Products:  controllers.NewProductController(productRepo, redisCache, storage.Use(config.StorageDefault())),
		Orders:    controllers.NewOrderController(orderSvc),
		Payments:  controllers.NewPaymentController(stripeClient, orderSvc, config.StripePublishableKey(), config.WebhookSigningSecret()),
		JWTSecret: config.JWTSecret(),
		OrderHub:  orderHub,
		GraphQL:   appgraphql.Handler(schema),
		Metrics:   metrics.Handler(),
	})

	// ── gRPC health endpoint ──────────────────────────────────────────────

	grpcSrv, _, err := grpc.Start(config.GRPCPort())
	if err != nil {
		return err
	}
	defer grpc.Stop(grpcSrv)

	// ── Serve ─────────────────────────────────────────────────────────────

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// registerOrderListeners fans a placed order out to WebSocket
// subscribers and queues the receipt email. The bounded pool keeps a
// burst of orders from spawning unbounded goroutines.
func registerOrderListeners(hub *ws.Hub, pool *workerpool.Pool, users repositories.UserRepository) {
	event.Listen(services.EventOrderCreated, func(payload interface{}) {
		order, ok := payload.(models.Order)
		if !ok {
			return
		}

		err := pool.Submit(func() {
			if msg, err := json.Marshal(map[string]interface{}{
				"event": services.EventOrderCreated,
				"order": order,
			}); err == nil {
				hub.Broadcast <- msg
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			user, err := users.FindByID(ctx, order.UserID)
			if err != nil {
				logger.Error("order listener: user lookup failed", "user_id", order.UserID, "error", err)
				return
			}

			if err := queue.Dispatch(&jobs.ReceiptEmailJob{
				OrderID: order.ID,
				Email:   user.Email,
				Name:    user.FirstName,
				Total:   order.OrderTotal,
			}); err != nil {
				logger.Error("order listener: receipt dispatch failed", "order_id", order.ID, "error", err)
			}
		})
		if err != nil {
			logger.Warn("order listener: pool saturated, event dropped", "order_id", order.ID)
		}
	})
}

func queueWorkers() int {
	n, err := strconv.Atoi(config.Get("QUEUE_WORKERS", "4"))
	if err != nil || n < 1 {
		return 4
	}
	return n
}
