// Package services holds the business rules between controllers and
// repositories.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/metrolabs/metro/app/models"
	"github.com/metrolabs/metro/app/repositories"
	"github.com/metrolabs/metro/pkg/apperr"
	"github.com/metrolabs/metro/pkg/auth"
	"github.com/metrolabs/metro/pkg/database"
	"github.com/metrolabs/metro/pkg/logger"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AuthService implements registration and login.
type AuthService struct {
	users      repositories.UserRepository
	secret     string
	tokenTTL   time.Duration
	bcryptCost int
}

// NewAuthService wires the auth flow. The JWT secret and TTL are passed
// explicitly so tests never reach for ambient config.
func NewAuthService(users repositories.UserRepository, secret string, tokenTTL time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		secret:     secret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account and returns the user with a signed
// token attached.
//
// The email is normalised to lower case before any lookup, so the same
// address can never register twice under different casing. The lookup
// plus the unique index on email together close the race where two
// requests carry the same address: the second insert fails with a
// duplicate key and is reported as the same conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	email := normalizeEmail(in.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, apperr.Conflict("User already exists. Please login")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, apperr.Store(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return models.User{}, apperr.Store(err)
	}

	user := models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     email,
		Password:  hash,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if database.IsDuplicateKey(err) {
			return models.User{}, apperr.Conflict("User already exists. Please login")
		}
		return models.User{}, apperr.Store(err)
	}

	token, err := auth.Issue(user.ID, user.Email, user.ObjectID.Hex(), s.secret, s.tokenTTL)
	if err != nil {
		return models.User{}, apperr.Store(err)
	}
	user.Token = token

	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and returns the user with a fresh token.
//
// A missing account and a wrong password both yield the same invalid
// credentials error so the endpoint never confirms which addresses
// exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, apperr.Store(err)
	}

	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, apperr.ErrInvalidCredentials
	}

	token, err := auth.Issue(user.ID, user.Email, user.ObjectID.Hex(), s.secret, s.tokenTTL)
	if err != nil {
		return models.User{}, apperr.Store(err)
	}
	user.Token = token

	logger.WithCtx(ctx).Info("user logged in", "user_id", user.ID)
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
