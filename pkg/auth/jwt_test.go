package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrolabs/metro/pkg/apperr"
	"github.com/metrolabs/metro/pkg/auth"
)

const secret = "unit-test-secret"

func TestIssueAndVerify(t *testing.T) {
	token, err := auth.Issue(7, "x@y.com", "64f0c2a1b2c3d4e5f6a7b8c9", secret, 2*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.Verify(token, secret)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "x@y.com", claims.Email)
	assert.Equal(t, "64f0c2a1b2c3d4e5f6a7b8c9", claims.UserObjectID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	token, err := auth.Issue(7, "x@y.com", "", secret, -time.Minute)
	require.NoError(t, err)

	_, err = auth.Verify(token, secret)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := auth.Issue(7, "x@y.com", "", secret, time.Hour)
	require.NoError(t, err)

	_, err = auth.Verify(token, "other-secret")
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := auth.Verify("not-a-token", secret)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestHashPasswordIsSaltedAndVerifiable(t *testing.T) {
	h1, err := auth.HashPassword("p1", 10)
	require.NoError(t, err)
	h2, err := auth.HashPassword("p1", 10)
	require.NoError(t, err)

	assert.NotEqual(t, "p1", h1, "digest must never equal the plaintext")
	assert.NotEqual(t, h1, h2, "salting must vary the digest across calls")

	assert.True(t, auth.CheckPassword(h1, "p1"))
	assert.True(t, auth.CheckPassword(h2, "p1"))
	assert.False(t, auth.CheckPassword(h1, "wrong"))
}
