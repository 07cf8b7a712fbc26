package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrolabs/metro/pkg/auth"
	"github.com/metrolabs/metro/pkg/testkit"
)

func TestRegisterCreatesUserWithToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":      "Ada@Example.com",
		"password":   "secret123",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := testkit.DecodeEnvelope(t, rec)

	var user struct {
		UserID    int    `json:"user_id"`
		FirstName string `json:"firstName"`
		Email     string `json:"email"`
		Token     string `json:"token"`
	}
	testkit.DecodeData(t, env, &user)

	assert.Equal(t, 1, user.UserID)
	assert.Equal(t, "Ada", user.FirstName, "names travel camelCased on the wire")
	assert.Equal(t, "ada@example.com", user.Email, "email is stored lowercased")
	require.NotEmpty(t, user.Token)

	claims, err := auth.Verify(user.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)

	// The hash never leaves the API.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	api.registerUser(t, "ada@example.com")

	rec := api.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":      "ADA@example.com",
		"password":   "another-pass",
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	env := testkit.DecodeEnvelope(t, rec)
	assert.Equal(t, "User already exists. Please login", env.Error)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"firstName": "Ada",
		"email":      "not-an-email",
		"password":   "123",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := testkit.DecodeEnvelope(t, rec)
	assert.Equal(t, "All input is required", env.Error)
	assert.Contains(t, env.Errors, "lastName")
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "password")
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)
	api.registerUser(t, "ada@example.com")

	rec := api.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret123",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := testkit.DecodeEnvelope(t, rec)
	require.NotEmpty(t, env.Token)

	claims, err := auth.Verify(env.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t)
	api.registerUser(t, "ada@example.com")

	cases := map[string]map[string]string{
		"wrong password": {"email": "ada@example.com", "password": "wrong-pass"},
		"unknown user":   {"email": "nobody@example.com", "password": "secret123"},
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/users/login", "", body)

			// Same status and message either way, so callers cannot
			// probe which emails are registered.
			require.Equal(t, http.StatusBadRequest, rec.Code)
			env := testkit.DecodeEnvelope(t, rec)
			assert.Equal(t, "Invalid user credentials", env.Error)
		})
	}
}
