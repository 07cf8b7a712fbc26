package controllers

import (
	"net/http"

	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/app/services"
	"github.com/metrolabs/metro/pkg/bind"
	"github.com/metrolabs/metro/pkg/middleware"
	"github.com/metrolabs/metro/pkg/response"
)

// OrderController serves order placement and lookup.
type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// Create handles POST /api/orders. The user id comes from the verified
// token, never from the body.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []struct {
			ProductID int `json:"productId" validate:"required,gt=0"`
			Quantity  int `json:"quantity" validate:"required,gt=0"`
		} `json:"items" validate:"required,min=1,dive"`
		ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
	}

	errs, err := bind.JSON(r, &body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if bind.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	in := services.CreateOrderInput{
		UserID:          middleware.UserIDFromCtx(r.Context()),
		ShippingAddress: body.ShippingAddress,
	}
	for _, item := range body.Items {
		in.Items = append(in.Items, services.OrderLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := c.service.Create(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}

	response.Created(w, order)
}

// List handles GET /api/orders.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	orders, err := c.service.All(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, orders)
}

// Get handles GET /api/orders/{id}.
func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		response.NotFound(w, "Order")
		return
	}

	order, err := c.service.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, order)
}

// ForUser handles GET /api/orders/user/{userId}.
func (c *OrderController) ForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := intParam(r, "userId")
	if !ok {
		response.NotFound(w, "User")
		return
	}

	orders, err := c.service.ForUser(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, orders)
}

// Delete handles DELETE /api/orders/{id} and returns the removed record.
func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		response.NotFound(w, "Order")
		return
	}

	order, err := c.service.Delete(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, order)
}
