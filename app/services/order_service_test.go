package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/app/services"
	"github.com/metrolabs/metro/pkg/apperr"
)

func orderFixtures(t *testing.T) (*services.OrderService, *fakeOrderRepo, *fakeProductRepo, models.User) {
	t.Helper()

	users := newFakeUserRepo()
	user := models.User{FirstName: "Ada", Email: "ada@example.com"}
	require.NoError(t, users.Create(context.Background(), &user))

	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	return services.NewOrderService(orders, products, users), orders, products, user
}

func testAddress() *models.ShippingAddress {
	return &models.ShippingAddress{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		AddressLine1: "12 Queen St",
		City:         "London",
		PostalCode:   "N1 9GU",
		Country:      "GB",
	}
}

func TestCreateOrderSnapshotsCatalogue(t *testing.T) {
	svc, _, products, user := orderFixtures(t)

	keyboard := products.seed(models.Product{Name: "Keyboard", Price: 49.99})
	mouse := products.seed(models.Product{Name: "Mouse", Price: 19.99})

	order, err := svc.Create(context.Background(), services.CreateOrderInput{
		UserID: user.ID,
		Items: []services.OrderLineInput{
			{ProductID: keyboard.ID, Quantity: 2},
			{ProductID: mouse.ID, Quantity: 1},
		},
		ShippingAddress: testAddress(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Keyboard", order.Items[0].Name)
	assert.Equal(t, 49.99, order.Items[0].Price)
	assert.Equal(t, 119.97, order.OrderTotal, "total is price*qty summed server-side")
}

func TestCreateOrderIgnoresLaterProductEdits(t *testing.T) {
	svc, orders, products, user := orderFixtures(t)

	p := products.seed(models.Product{Name: "Keyboard", Price: 49.99})

	placed, err := svc.Create(context.Background(), services.CreateOrderInput{
		UserID: user.ID,
		Items:           []services.OrderLineInput{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	require.NoError(t, err)

	// Reprice the product after the order is placed.
	_, err = products.Update(context.Background(), p.ID, map[string]interface{}{"price": 99.99})
	require.NoError(t, err)

	stored, err := orders.FindByID(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, 49.99, stored.Items[0].Price, "order history must keep the snapshot price")
	assert.Equal(t, 49.99, stored.OrderTotal)
}

func TestCreateOrderRejectsUnknownProduct(t *testing.T) {
	svc, _, _, user := orderFixtures(t)

	_, err := svc.Create(context.Background(), services.CreateOrderInput{
		UserID:          user.ID,
		Items:           []services.OrderLineInput{{ProductID: 999, Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperr.StatusOf(err))
	assert.Equal(t, "Product not found", apperr.MessageOf(err))
}

func TestCreateOrderRejectsEmptyAndInvalidLines(t *testing.T) {
	svc, _, products, user := orderFixtures(t)
	p := products.seed(models.Product{Name: "Keyboard", Price: 10})

	_, err := svc.Create(context.Background(), services.CreateOrderInput{UserID: user.ID})
	assert.Equal(t, 400, apperr.StatusOf(err))

	_, err = svc.Create(context.Background(), services.CreateOrderInput{
		UserID: user.ID,
		Items:  []services.OrderLineInput{{ProductID: p.ID, Quantity: 0}},
	})
	assert.Equal(t, 400, apperr.StatusOf(err))
}

func TestCreateOrderRequiresShippingAddress(t *testing.T) {
	svc, _, products, user := orderFixtures(t)
	p := products.seed(models.Product{Name: "Keyboard", Price: 10})

	_, err := svc.Create(context.Background(), services.CreateOrderInput{
		UserID: user.ID,
		Items:  []services.OrderLineInput{{ProductID: p.ID, Quantity: 1}},
	})
	assert.Equal(t, 400, apperr.StatusOf(err))
	assert.Equal(t, "Shipping address is required", apperr.MessageOf(err))
}

func TestCreateOrderRejectsIncompleteShippingAddress(t *testing.T) {
	svc, _, products, user := orderFixtures(t)
	p := products.seed(models.Product{Name: "Keyboard", Price: 10})

	tests := []struct {
		missing string
		mutate  func(*models.ShippingAddress)
	}{
		{"firstName", func(a *models.ShippingAddress) { a.FirstName = "" }},
		{"lastName", func(a *models.ShippingAddress) { a.LastName = "" }},
		{"addressLine1", func(a *models.ShippingAddress) { a.AddressLine1 = " " }},
		{"city", func(a *models.ShippingAddress) { a.City = "" }},
		{"postalCode", func(a *models.ShippingAddress) { a.PostalCode = "" }},
		{"country", func(a *models.ShippingAddress) { a.Country = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.missing, func(t *testing.T) {
			addr := testAddress()
			tt.mutate(addr)

			_, err := svc.Create(context.Background(), services.CreateOrderInput{
				UserID:          user.ID,
				Items:           []services.OrderLineInput{{ProductID: p.ID, Quantity: 1}},
				ShippingAddress: addr,
			})
			assert.Equal(t, 400, apperr.StatusOf(err))
			assert.Equal(t, "Shipping address is missing "+tt.missing, apperr.MessageOf(err))
		})
	}
}

func TestCreateOrderRejectsUnknownUser(t *testing.T) {
	svc, _, products, _ := orderFixtures(t)
	p := products.seed(models.Product{Name: "Keyboard", Price: 10})

	_, err := svc.Create(context.Background(), services.CreateOrderInput{
		UserID:          404,
		Items:           []services.OrderLineInput{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	assert.Equal(t, 404, apperr.StatusOf(err))
}

func TestMarkPaidTransitionsStatus(t *testing.T) {
	svc, _, products, user := orderFixtures(t)
	p := products.seed(models.Product{Name: "Keyboard", Price: 10})

	placed, err := svc.Create(context.Background(), services.CreateOrderInput{
		UserID:          user.ID,
		Items:           []services.OrderLineInput{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)
}

func TestGetUnknownOrderIs404(t *testing.T) {
	svc, _, _, _ := orderFixtures(t)

	_, err := svc.Get(context.Background(), 42)
	assert.Equal(t, 404, apperr.StatusOf(err))
	assert.Equal(t, "Order not found", apperr.MessageOf(err))
}
