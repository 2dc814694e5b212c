// Package httperr maps service errors onto the JSON error envelope.
package httperr

import (
	"errors"
	"net/http"
	"strconv"

	"promptvault-backend/internal/export"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, export.ErrMalformedImport):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateName), errors.Is(err, services.ErrUserAlreadyExists), errors.Is(err, services.ErrOptimisticLock):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Write responds with the status for err. Internal errors are reported
// with fallback instead of the error text.
func Write(c *gin.Context, err error, fallback string) {
	code := Status(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = fallback
	}
	c.JSON(code, utils.NewErrorResponse(code, msg))
}

// ParamID parses a positive numeric path parameter, responding 400 when it
// is not one.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid "+name))
		return 0, false
	}
	return uint(id), true
}
