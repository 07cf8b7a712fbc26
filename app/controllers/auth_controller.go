package controllers

import (
	"net/http"

	"github.com/metrolabs/metro/app/services"
	"github.com/metrolabs/metro/pkg/bind"
	"github.com/metrolabs/metro/pkg/response"
)

// AuthController serves registration and login.
type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register handles POST /api/users/register.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"firstName" validate:"required"`
		LastName  string `json:"lastName" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=6"`
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

	user, err := c.service.Register(r.Context(), services.RegisterInput{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Password:  body.Password,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	response.Created(w, user)
}

// Login handles POST /api/users/login.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
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

	user, err := c.service.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		fail(w, r, err)
		return
	}

	response.SuccessWithToken(w, user, user.Token)
}
