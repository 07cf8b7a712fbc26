package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/app/repositories"
	"github.com/metrolabs/metro/pkg/apperr"
	"github.com/metrolabs/metro/pkg/collection"
	"github.com/metrolabs/metro/pkg/event"
	"github.com/metrolabs/metro/pkg/logger"
	"github.com/metrolabs/metro/pkg/metrics"
)

// EventOrderCreated is fired after an order is persisted. The payload
// is the models.Order value.
const EventOrderCreated = "order.created"

// OrderLineInput is one requested line item: the product reference and
// a quantity. Price and name are never taken from the client.
type OrderLineInput struct {
	ProductID int
	Quantity  int
}

// CreateOrderInput carries a new order request.
type CreateOrderInput struct {
	UserID          int
	Items           []OrderLineInput
	ShippingAddress *models.ShippingAddress
}

// OrderService implements order placement and lookup rules.
type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
}

// NewOrderService wires the order flow.
func NewOrderService(orders repositories.OrderRepository, products repositories.ProductRepository, users repositories.UserRepository) *OrderService {
	return &OrderService{orders: orders, products: products, users: users}
}

// Create places an order. Line items are snapshots: the product's
// attributes are copied from the catalogue at this moment, and the
// order total is computed server-side from those snapshots. Later
// product edits never rewrite order history, and client-supplied
// prices are ignored entirely.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, apperr.Validation("Order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return models.Order{}, apperr.Validation(fmt.Sprintf("Invalid quantity for product %d", item.ProductID))
		}
	}
	if err := validateShippingAddress(in.ShippingAddress); err != nil {
		return models.Order{}, err
	}

	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Order{}, apperr.NotFound("User")
		}
		return models.Order{}, apperr.Store(err)
	}

	ids := collection.Unique(collection.Map(in.Items, func(i OrderLineInput) int { return i.ProductID }))
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return models.Order{}, apperr.Store(err)
	}

	catalogue := collection.KeyBy(found, func(p models.Product) int { return p.ID })
	for _, id := range ids {
		if _, ok := catalogue[id]; !ok {
			return models.Order{}, apperr.NotFound("Product")
		}
	}

	items := collection.Map(in.Items, func(i OrderLineInput) models.OrderItem {
		p := catalogue[i.ProductID]
		return models.OrderItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Image:       p.ImageURL,
			Category:    p.Category,
			Gender:      p.Gender,
			Size:        p.Size,
			Price:       p.Price,
			Quantity:    i.Quantity,
		}
	})

	order := models.Order{
		UserID:          in.UserID,
		Items:           items,
		OrderTotal:      roundCents(collection.Sum(items, models.OrderItem.LineTotal)),
		ShippingAddress: in.ShippingAddress,
		Status:          models.OrderStatusPending,
	}

	if err := s.orders.Create(ctx, &order); err != nil {
		return models.Order{}, apperr.Store(err)
	}

	metrics.OrderCreated()
	event.FireAsync(EventOrderCreated, order)

	logger.WithCtx(ctx).Info("order placed",
		"order_id", order.ID, "user_id", order.UserID, "total", order.OrderTotal)
	return order, nil
}

// Get returns one order by id.
func (s *OrderService) Get(ctx context.Context, id int) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, apperr.NotFound("Order")
	}
	if err != nil {
		return models.Order{}, apperr.Store(err)
	}
	return order, nil
}

// ForUser returns every order placed by the given user, newest first.
func (s *OrderService) ForUser(ctx context.Context, userID int) ([]models.Order, error) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return orders, nil
}

// All returns every order, newest first.
func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return orders, nil
}

// MarkPaid transitions an order to paid. Called from the payment
// webhook once Stripe confirms the charge.
func (s *OrderService) MarkPaid(ctx context.Context, id int) (models.Order, error) {
	order, err := s.orders.Update(ctx, id, map[string]interface{}{
		"status": models.OrderStatusPaid,
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, apperr.NotFound("Order")
	}
	if err != nil {
		return models.Order{}, apperr.Store(err)
	}

	logger.WithCtx(ctx).Info("order paid", "order_id", order.ID)
	return order, nil
}

// Delete removes an order and returns the removed record.
func (s *OrderService) Delete(ctx context.Context, id int) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, apperr.NotFound("Order")
	}
	if err != nil {
		return models.Order{}, apperr.Store(err)
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		return models.Order{}, apperr.Store(err)
	}
	return order, nil
}

// validateShippingAddress enforces the mandatory address fields. The
// recipient name, first address line, city, postal code and country must
// all be present; the second line and state are optional.
func validateShippingAddress(a *models.ShippingAddress) error {
	if a == nil {
		return apperr.Validation("Shipping address is required")
	}
	required := []struct {
		field, value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return apperr.Validation("Shipping address is missing " + f.field)
		}
	}
	return nil
}

// roundCents keeps totals at two decimal places despite float math.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
