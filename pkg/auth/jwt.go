// Package auth provides password hashing and bearer-token issuance.
//
// Tokens are HS256 JWTs. The signing secret and TTL are passed in
// explicitly rather than read from ambient config, so the auth flow stays
// testable without a live process.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/metrolabs/metro/pkg/apperr"
)

// Claims is the typed JWT payload carried by every issued token.
type Claims struct {
	UserID       int    `json:"user_id"`
	Email        string `json:"email"`
	UserObjectID string `json:"userObjectId,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token embedding the user identity, expiring after ttl.
func Issue(userID int, email, userObjectID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       userID,
		Email:        email,
		UserObjectID: userObjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify parses and validates a token string against secret.
// Any failure — bad signature, wrong algorithm, expiry — yields
// apperr.ErrInvalidToken.
func Verify(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.ErrInvalidToken
	}

	return claims, nil
}

// HashPassword returns a salted bcrypt hash of the plain-text password.
// The same input produces a different digest on every call.
func HashPassword(plain string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
