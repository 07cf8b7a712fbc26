// Package response writes the uniform API envelope.
//
// Every endpoint answers with the same JSON shape:
//
//	{"result": 200, "data": {...}}
//	{"result": 404, "error": "User not found"}
//
// The result field always mirrors the transport status code so clients
// never see a 200 wrapper around a domain failure.
package response

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Result int         `json:"result"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Errors interface{} `json:"errors,omitempty"`
	Token  string      `json:"token,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 envelope with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Result: http.StatusOK, Data: data})
}

// SuccessWithToken sends a 200 envelope carrying data and a bearer token.
func SuccessWithToken(w http.ResponseWriter, data interface{}, token string) {
	write(w, http.StatusOK, envelope{Result: http.StatusOK, Data: data, Token: token})
}

// Created sends a 201 envelope with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Result: http.StatusCreated, Data: data})
}

// Error sends an error envelope with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Result: status, Error: message})
}

// ValidationError sends a 400 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusBadRequest, envelope{
		Result: http.StatusBadRequest,
		Error:  "All input is required",
		Errors: errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// NotFound sends a 404 for the named entity.
func NotFound(w http.ResponseWriter, entity string) {
	Error(w, http.StatusNotFound, entity+" not found")
}
