package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/pkg/testkit"
)

func TestProductReadsArePublic(t *testing.T) {
	api := newTestAPI(t)
	p := api.products.seed(models.Product{Name: "Keyboard", Price: 89.50})

	rec := api.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Product
	testkit.DecodeData(t, testkit.DecodeEnvelope(t, rec), &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Keyboard", list[0].Name)

	one := api.do(t, http.MethodGet, "/api/products/1", "", nil)
	require.Equal(t, http.StatusOK, one.Code)

	var got models.Product
	testkit.DecodeData(t, testkit.DecodeEnvelope(t, one), &got)
	assert.Equal(t, p.ID, got.ID)
}

func TestProductWritesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/products", "", map[string]interface{}{
		"productName": "Keyboard",
		"price":       89.50,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProduct(t *testing.T) {
	api := newTestAPI(t)
	user := api.registerUser(t, "ada@example.com")

	rec := api.do(t, http.MethodPost, "/api/products", user.Token, map[string]interface{}{
		"productName": "Keyboard",
		"description": "Tenkeyless",
		"price":       89.50,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Product
	testkit.DecodeData(t, testkit.DecodeEnvelope(t, rec), &p)
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, "Keyboard", p.Name)
}

func TestCreateProductValidation(t *testing.T) {
	api := newTestAPI(t)
	user := api.registerUser(t, "ada@example.com")

	rec := api.do(t, http.MethodPost, "/api/products", user.Token, map[string]interface{}{
		"productName": "Freebie",
		"price":       0,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := testkit.DecodeEnvelope(t, rec)
	assert.Contains(t, env.Errors, "price")
}

func TestUpdateProductReturnsNewRecord(t *testing.T) {
	api := newTestAPI(t)
	user := api.registerUser(t, "ada@example.com")
	api.products.seed(models.Product{Name: "Keyboard", Price: 89.50})

	rec := api.do(t, http.MethodPut, "/api/products/1", user.Token, map[string]interface{}{
		"price": 79.00,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p models.Product
	testkit.DecodeData(t, testkit.DecodeEnvelope(t, rec), &p)
	assert.Equal(t, 79.00, p.Price, "response carries the post-update record")
	assert.Equal(t, "Keyboard", p.Name, "untouched fields survive")
}

func TestDeleteProduct(t *testing.T) {
	api := newTestAPI(t)
	user := api.registerUser(t, "ada@example.com")
	api.products.seed(models.Product{Name: "Keyboard", Price: 89.50})

	rec := api.do(t, http.MethodDelete, "/api/products/1", user.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	gone := api.do(t, http.MethodGet, "/api/products/1", "", nil)
	require.Equal(t, http.StatusNotFound, gone.Code)
	env := testkit.DecodeEnvelope(t, gone)
	assert.Equal(t, "Product not found", env.Error)
}
