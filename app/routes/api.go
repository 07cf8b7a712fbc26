// Package routes declares the HTTP surface of the API.
package routes

import (
	"net/http"

	"github.com/metrolabs/metro/app/controllers"
	"github.com/metrolabs/metro/pkg/middleware"
	"github.com/metrolabs/metro/pkg/response"
	"github.com/metrolabs/metro/pkg/router"
	"github.com/metrolabs/metro/pkg/ws"
)

// Deps carries everything the route table needs. Controllers are built
// by the caller so tests can register the same routes over fakes.
type Deps struct {
	Auth     *controllers.AuthController
	Users    *controllers.UserController
	Products *controllers.ProductController
	Orders   *controllers.OrderController
	Payments *controllers.PaymentController

	JWTSecret string

	// Optional extras; nil disables the route.
	OrderHub *ws.Hub
	GraphQL  http.Handler
	Metrics  http.Handler
}

// RegisterAPI mounts every route. Reads on the catalogue are public;
// everything touching users and orders requires a bearer token.
func RegisterAPI(r *router.Router, d Deps) {
	api := r.Group("/api")
	authed := api.Group("", middleware.Auth(d.JWTSecret))

	// Auth
	api.Post("/users/register", "auth.register", d.Auth.Register)
	api.Post("/users/login", "auth.login", d.Auth.Login)

	// Users
	authed.Get("/users", "users.list", d.Users.List)
	authed.Post("/users", "users.create", d.Users.Create)
	authed.Get("/users/{id}", "users.get", d.Users.Get)
	authed.Put("/users/{id}", "users.update", d.Users.Update)
	authed.Patch("/users/{id}", "users.patch", d.Users.Update)
	authed.Delete("/users/{id}", "users.delete", d.Users.Delete)

	// Products: public reads, protected writes.
	api.Get("/products", "products.list", d.Products.List)
	api.Get("/products/{id}", "products.get", d.Products.Get)
	authed.Post("/products", "products.create", d.Products.Create)
	authed.Put("/products/{id}", "products.update", d.Products.Update)
	authed.Patch("/products/{id}", "products.patch", d.Products.Update)
	authed.Delete("/products/{id}", "products.delete", d.Products.Delete)
	authed.Post("/products/{id}/image", "products.image", d.Products.UploadImage)

	// Orders
	authed.Post("/orders", "orders.create", d.Orders.Create)
	authed.Get("/orders", "orders.list", d.Orders.List)
	authed.Get("/orders/{id}", "orders.get", d.Orders.Get)
	authed.Get("/orders/user/{userId}", "orders.forUser", d.Orders.ForUser)
	authed.Delete("/orders/{id}", "orders.delete", d.Orders.Delete)

	// Payments, mounted at the root the way Stripe's client samples
	// expect. The webhook authenticates itself via its signature.
	r.Get("/config", "payments.config", d.Payments.Config)
	r.Post("/create-payment-intent", "payments.intent", d.Payments.CreateIntent, middleware.Auth(d.JWTSecret))
	r.Post("/webhook", "payments.webhook", d.Payments.Webhook)

	// Health for load balancers.
	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	if d.OrderHub != nil {
		r.Get("/ws/orders", "ws.orders", func(w http.ResponseWriter, req *http.Request) {
			ws.Upgrade(w, req, d.OrderHub)
		})
	}
	if d.GraphQL != nil {
		r.Post("/graphql", "graphql", d.GraphQL.ServeHTTP)
	}
	if d.Metrics != nil {
		r.Get("/metrics", "metrics", d.Metrics.ServeHTTP)
	}
}
