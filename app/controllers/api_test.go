package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/metrolabs/metro/app/controllers"
	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/app/routes"
	"github.com/metrolabs/metro/app/services"
	"github.com/metrolabs/metro/pkg/payment"
	"github.com/metrolabs/metro/pkg/router"
)

const (
	testSecret        = "test-jwt-secret"
	testSigningSecret = "whsec_test"
	testBcryptCost    = 4
)

// shipAddr is the shipping address used by every order-placing test.
var shipAddr = map[string]string{
	"firstName":    "Ada",
	"lastName":     "Lovelace",
	"addressLine1": "12 Queen St",
	"city":         "London",
	"postalCode":   "N1 9GU",
	"country":      "GB",
}

// testAPI wires the real route table over in-memory fakes.
type testAPI struct {
	handler  http.Handler
	users    *fakeUserRepo
	products *fakeProductRepo
	orders   *fakeOrderRepo
	authSvc  *services.AuthService
	orderSvc *services.OrderService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	users := newFakeUserRepo()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()

	authSvc := services.NewAuthService(users, testSecret, time.Hour, testBcryptCost)
	orderSvc := services.NewOrderService(orders, products, users)
	stripe := payment.NewClient("sk_test_123", payment.DefaultAPIURL)

	r := router.New()
	routes.RegisterAPI(r, routes.Deps{
		Auth:      controllers.NewAuthController(authSvc),
		Users:     controllers.NewUserController(users, testBcryptCost),
		Products:  controllers.NewProductController(products, nil, nil),
		Orders:    controllers.NewOrderController(orderSvc),
		Payments:  controllers.NewPaymentController(stripe, orderSvc, "pk_test_123", testSigningSecret),
		JWTSecret: testSecret,
	})

	return &testAPI{
		handler:  r.Handler(),
		users:    users,
		products: products,
		orders:   orders,
		authSvc:  authSvc,
		orderSvc: orderSvc,
	}
}

// do performs a JSON request against the test router. An empty token
// leaves the Authorization header off.
func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// registerUser creates a user through the real service and returns it
// with a usable bearer token.
func (a *testAPI) registerUser(t *testing.T, email string) models.User {
	t.Helper()

	user, err := a.authSvc.Register(context.Background(), services.RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.Token)
	return user
}
