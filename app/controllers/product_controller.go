package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/app/repositories"
	"github.com/metrolabs/metro/pkg/apperr"
	"github.com/metrolabs/metro/pkg/bind"
	"github.com/metrolabs/metro/pkg/cache"
	"github.com/metrolabs/metro/pkg/logger"
	"github.com/metrolabs/metro/pkg/response"
	"github.com/metrolabs/metro/pkg/storage"
)

const (
	productListCacheKey = "products:all"
	productListCacheTTL = 5 * time.Minute
	maxImageBytes       = 8 << 20
)

// ProductController serves catalogue CRUD and image uploads.
// The cache is optional; a nil cache simply disables the read-through
// path.
type ProductController struct {
	products repositories.ProductRepository
	cache    *cache.Cache
	disk     storage.Disk
}

func NewProductController(products repositories.ProductRepository, c *cache.Cache, disk storage.Disk) *ProductController {
	return &ProductController{products: products, cache: c, disk: disk}
}

// List handles GET /api/products, read-through cached.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	if c.cache != nil {
		var cached []models.Product
		if err := c.cache.Get(r.Context(), productListCacheKey, &cached); err == nil {
			response.Success(w, cached)
			return
		}
	}

	products, err := c.products.All(r.Context())
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	if c.cache != nil {
		if err := c.cache.Set(r.Context(), productListCacheKey, products, productListCacheTTL); err != nil {
			logger.WithCtx(r.Context()).Warn("product list cache write failed", "error", err)
		}
	}

	response.Success(w, products)
}

// Get handles GET /api/products/{id}.
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		response.NotFound(w, "Product")
		return
	}

	product, err := c.products.FindByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "Product")
		return
	}
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	response.Success(w, product)
}

// Create handles POST /api/products.
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string  `json:"productName" validate:"required"`
		Price       float64 `json:"price" validate:"required,gt=0"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Gender      string  `json:"gender"`
		Size        string  `json:"size"`
		Stock       int     `json:"stock" validate:"omitempty,gte=0"`
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

	product := models.Product{
		Name:        body.Name,
		Price:       body.Price,
		Description: body.Description,
		Category:    body.Category,
		Gender:      body.Gender,
		Size:        body.Size,
		Stock:       body.Stock,
	}
	if err := c.products.Create(r.Context(), &product); err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	c.invalidateList(r)
	response.Created(w, product)
}

// Update handles PUT /api/products/{id} and returns the post-update record.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		response.NotFound(w, "Product")
		return
	}

	var body struct {
		Name        *string  `json:"productName" validate:"omitempty,min=1"`
		Price       *float64 `json:"price" validate:"omitempty,gt=0"`
		Description *string  `json:"description"`
		Category    *string  `json:"category"`
		Gender      *string  `json:"gender"`
		Size        *string  `json:"size"`
		Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
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

	fields := map[string]interface{}{}
	if body.Name != nil {
		fields["productName"] = *body.Name
	}
	if body.Price != nil {
		fields["price"] = *body.Price
	}
	if body.Description != nil {
		fields["description"] = *body.Description
	}
	if body.Category != nil {
		fields["category"] = *body.Category
	}
	if body.Gender != nil {
		fields["gender"] = *body.Gender
	}
	if body.Size != nil {
		fields["size"] = *body.Size
	}
	if body.Stock != nil {
		fields["stock"] = *body.Stock
	}
	if len(fields) == 0 {
		response.Error(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	product, err := c.products.Update(r.Context(), id, fields)
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "Product")
		return
	}
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	c.invalidateList(r)
	response.Success(w, product)
}

// Delete handles DELETE /api/products/{id} and returns the removed
// record.
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		response.NotFound(w, "Product")
		return
	}

	product, err := c.products.FindByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "Product")
		return
	}
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	if err := c.products.Delete(r.Context(), id); err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	c.invalidateList(r)
	response.Success(w, product)
}

// UploadImage handles POST /api/products/{id}/image. Expects a
// multipart form with an "image" file field; stores the file on the
// configured disk and records its public URL on the product.
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		response.NotFound(w, "Product")
		return
	}

	if _, err := c.products.FindByID(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w, "Product")
			return
		}
		fail(w, r, apperr.Store(err))
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		response.Error(w, http.StatusBadRequest, "Unsupported image type")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	path := fmt.Sprintf("products/%d/cover%s", id, ext)
	if err := c.disk.Put(path, data); err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	product, err := c.products.Update(r.Context(), id, map[string]interface{}{
		"imageUrl": c.disk.URL(path),
	})
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	c.invalidateList(r)
	response.Success(w, product)
}

func (c *ProductController) invalidateList(r *http.Request) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Forget(r.Context(), productListCacheKey); err != nil {
		logger.WithCtx(r.Context()).Warn("product list cache invalidation failed", "error", err)
	}
}
