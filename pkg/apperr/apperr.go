// Package apperr defines the application error taxonomy.
//
// Every failure a controller can surface is one of a small set of typed
// errors carrying an HTTP status. Controllers map them onto the uniform
// response envelope; raw store errors never reach the transport layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error with an HTTP status attached.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// ErrInvalidCredentials is returned for both "no such user" and "wrong
// password" so callers cannot enumerate accounts. Intentionally 400, not
// 401, matching the public API contract.
var ErrInvalidCredentials = &Error{Status: http.StatusBadRequest, Message: "Invalid user credentials"}

// ErrInvalidToken is returned when a bearer token fails signature or
// expiry checks.
var ErrInvalidToken = &Error{Status: http.StatusUnauthorized, Message: "Invalid token"}

// Validation reports missing or malformed input (400).
func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Conflict reports a duplicate resource (409).
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// NotFound reports a missing entity (404).
func NotFound(entity string) *Error {
	return &Error{Status: http.StatusNotFound, Message: entity + " not found"}
}

// Store wraps an underlying persistence failure (500). The cause is kept
// for server-side logs; only Message is safe for clients.
func Store(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "store error", cause: err}
}

// StatusOf returns the HTTP status for err, or 500 for unclassified errors.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client-safe message for err. Unclassified errors
// fall back to their Error() string so CRUD controllers can surface store
// driver messages the way the original API did.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
