package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/pkg/testkit"
)

func TestOrdersRequireToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/orders", "", map[string]interface{}{
		"items": []map[string]int{{"productId": 1, "quantity": 1}},
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := testkit.DecodeEnvelope(t, rec)
	assert.Equal(t, "Unauthorized", env.Error)
}

func TestOrdersRejectGarbageToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/orders", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrderSnapshotsCatalogue(t *testing.T) {
	api := newTestAPI(t)
	user := api.registerUser(t, "ada@example.com")

	keyboard := api.products.seed(models.Product{Name: "Keyboard", Price: 89.50})
	dock := api.products.seed(models.Product{Name: "Dock", Price: 64.00})

	rec := api.do(t, http.MethodPost, "/api/orders", user.Token, map[string]interface{}{
		"items": []map[string]int{
			{"productId": keyboard.ID, "quantity": 2},
			{"productId": dock.ID, "quantity": 1},
		},
		"shippingAddress": shipAddr,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := testkit.DecodeEnvelope(t, rec)

	var order models.Order
	testkit.DecodeData(t, env, &order)

	assert.Equal(t, 1, order.ID)
	assert.Equal(t, user.ID, order.UserID, "user id comes from the token")
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.InDelta(t, 243.00, order.OrderTotal, 0.001)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Keyboard", order.Items[0].Name)
	assert.Equal(t, 89.50, order.Items[0].Price)
	require.NotNil(t, order.ShippingAddress)
	assert.Equal(t, "London", order.ShippingAddress.City)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	api := newTestAPI(t)
	user := api.registerUser(t, "ada@example.com")

	rec := api.do(t, http.MethodPost, "/api/orders", user.Token, map[string]interface{}{
		"items":           []map[string]int{{"productId": 99, "quantity": 1}},
		"shippingAddress": shipAddr,
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := testkit.DecodeEnvelope(t, rec)
	assert.Equal(t, "Product not found", env.Error)
}

func TestCreateOrderValidation(t *testing.T) {
	api := newTestAPI(t)
	user := api.registerUser(t, "ada@example.com")

	rec := api.do(t, http.MethodPost, "/api/orders", user.Token, map[string]interface{}{
		"items": []map[string]int{},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderAndForUser(t *testing.T) {
	api := newTestAPI(t)
	user := api.registerUser(t, "ada@example.com")
	p := api.products.seed(models.Product{Name: "Webcam", Price: 54.90})

	created := api.do(t, http.MethodPost, "/api/orders", user.Token, map[string]interface{}{
		"items":           []map[string]int{{"productId": p.ID, "quantity": 1}},
		"shippingAddress": shipAddr,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	rec := api.do(t, http.MethodGet, "/api/orders/1", user.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order models.Order
	testkit.DecodeData(t, testkit.DecodeEnvelope(t, rec), &order)
	assert.Equal(t, 1, order.ID)

	recUser := api.do(t, http.MethodGet, "/api/orders/user/1", user.Token, nil)
	require.Equal(t, http.StatusOK, recUser.Code)

	var orders []models.Order
	testkit.DecodeData(t, testkit.DecodeEnvelope(t, recUser), &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, user.ID, orders[0].UserID)
}

func TestGetOrderNotFound(t *testing.T) {
	api := newTestAPI(t)
	user := api.registerUser(t, "ada@example.com")

	rec := api.do(t, http.MethodGet, "/api/orders/42", user.Token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := testkit.DecodeEnvelope(t, rec)
	assert.Equal(t, "Order not found", env.Error)
}

func TestDeleteOrder(t *testing.T) {
	api := newTestAPI(t)
	user := api.registerUser(t, "ada@example.com")
	p := api.products.seed(models.Product{Name: "Stand", Price: 34.99})

	created := api.do(t, http.MethodPost, "/api/orders", user.Token, map[string]interface{}{
		"items":           []map[string]int{{"productId": p.ID, "quantity": 1}},
		"shippingAddress": shipAddr,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	rec := api.do(t, http.MethodDelete, "/api/orders/1", user.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	gone := api.do(t, http.MethodGet, "/api/orders/1", user.Token, nil)
	require.Equal(t, http.StatusNotFound, gone.Code)
}
