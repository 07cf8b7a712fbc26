package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrolabs/metro/app/services"
	"github.com/metrolabs/metro/pkg/apperr"
	"github.com/metrolabs/metro/pkg/auth"
)

const (
	testSecret = "test-secret"
	testTTL    = 2 * time.Hour
	// Minimum bcrypt cost keeps the suite fast.
	testCost = 4
)

func newAuthService(users *fakeUserRepo) *services.AuthService {
	return services.NewAuthService(users, testSecret, testTTL, testCost)
}

func TestRegisterCreatesUserWithToken(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users)

	user, err := svc.Register(context.Background(), services.RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Example.COM",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "ada@example.com", user.Email, "email must be lower-cased")
	assert.NotEqual(t, "s3cret-pass", user.Password, "password must be stored hashed")
	require.NotEmpty(t, user.Token)

	claims, err := auth.Verify(user.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users)

	in := services.RegisterInput{FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "pass-1234"}
	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	// Same address under different casing is still a duplicate.
	in.Email = "ADA@example.com"
	_, err = svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, 409, apperr.StatusOf(err))
	assert.Equal(t, "User already exists. Please login", apperr.MessageOf(err))
}

func TestLoginReturnsTokenForValidCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users)

	_, err := svc.Register(context.Background(), services.RegisterInput{
		FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "pass-1234",
	})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "ADA@example.com", "pass-1234")
	require.NoError(t, err)
	assert.NotEmpty(t, user.Token)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users)

	_, err := svc.Register(context.Background(), services.RegisterInput{
		FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "pass-1234",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestLoginUnknownUserLooksLikeWrongPassword(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials,
		"unknown address must yield the same error as a wrong password")
	assert.Equal(t, 400, apperr.StatusOf(err))
}
