package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/app/repositories"
	"github.com/metrolabs/metro/pkg/apperr"
	"github.com/metrolabs/metro/pkg/auth"
	"github.com/metrolabs/metro/pkg/bind"
	"github.com/metrolabs/metro/pkg/database"
	"github.com/metrolabs/metro/pkg/response"
)

// UserController serves user CRUD. Self-service signup lives on the
// auth controller; Create here is the administrative path.
type UserController struct {
	users      repositories.UserRepository
	bcryptCost int
}

func NewUserController(users repositories.UserRepository, bcryptCost int) *UserController {
	return &UserController{users: users, bcryptCost: bcryptCost}
}

// Create handles POST /api/users. The password is hashed exactly as
// registration hashes it; the plaintext is never stored.
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string              `json:"firstName" validate:"required"`
		LastName  string              `json:"lastName" validate:"required"`
		Email     string              `json:"email" validate:"required,email"`
		Password  string              `json:"password" validate:"required,min=6"`
		Address   *models.UserAddress `json:"address"`
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

	hash, err := auth.HashPassword(body.Password, c.bcryptCost)
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	user := models.User{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     strings.ToLower(strings.TrimSpace(body.Email)),
		Password:  hash,
		Address:   body.Address,
	}
	if err := c.users.Create(r.Context(), &user); err != nil {
		if database.IsDuplicateKey(err) {
			fail(w, r, apperr.Conflict("User already exists. Please login"))
			return
		}
		fail(w, r, apperr.Store(err))
		return
	}

	response.Success(w, user)
}

// List handles GET /api/users.
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.All(r.Context())
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}
	response.Success(w, users)
}

// Get handles GET /api/users/{id}.
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		response.NotFound(w, "User")
		return
	}

	user, err := c.users.FindByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "User")
		return
	}
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	response.Success(w, user)
}

// Update handles PUT /api/users/{id} and returns the post-update record.
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		response.NotFound(w, "User")
		return
	}

	var body struct {
		FirstName *string             `json:"firstName" validate:"omitempty,min=1"`
		LastName  *string             `json:"lastName" validate:"omitempty,min=1"`
		Address   *models.UserAddress `json:"address"`
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
	if body.FirstName != nil {
		fields["firstName"] = *body.FirstName
	}
	if body.LastName != nil {
		fields["lastName"] = *body.LastName
	}
	if body.Address != nil {
		fields["address"] = body.Address
	}
	if len(fields) == 0 {
		response.Error(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	user, err := c.users.Update(r.Context(), id, fields)
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "User")
		return
	}
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	response.Success(w, user)
}

// Delete handles DELETE /api/users/{id} and returns the removed record.
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		response.NotFound(w, "User")
		return
	}

	user, err := c.users.FindByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "User")
		return
	}
	if err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	if err := c.users.Delete(r.Context(), id); err != nil {
		fail(w, r, apperr.Store(err))
		return
	}

	response.Success(w, user)
}
