// Package controllers maps HTTP requests onto the service layer and
// writes the uniform response envelope.
package controllers

import (
	"net/http"
	"strconv"

	"github.com/metrolabs/metro/pkg/apperr"
	"github.com/metrolabs/metro/pkg/logger"
	"github.com/metrolabs/metro/pkg/response"
	"github.com/metrolabs/metro/pkg/router"
)

// fail writes an error envelope for err, logging server-side causes.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("request failed", "error", err)
	}
	response.Error(w, status, apperr.MessageOf(err))
}

// intParam reads a numeric path parameter. The second return is false
// when the segment is absent or not a number.
func intParam(r *http.Request, key string) (int, bool) {
	raw := router.Param(r, key)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
