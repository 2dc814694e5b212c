package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"promptvault-backend/internal/export"
	"promptvault-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("prompt 3: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrPermissionDenied, http.StatusForbidden},
		{fmt.Errorf("title: %w", services.ErrInvalidInput), http.StatusBadRequest},
		{export.ErrMalformedImport, http.StatusBadRequest},
		{services.ErrDuplicateName, http.StatusConflict},
		{services.ErrUserAlreadyExists, http.StatusConflict},
		{services.ErrOptimisticLock, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestWriteHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Write(c, errors.New("pq: connection refused"), "Failed to load prompts")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load prompts")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		value string
		ok    bool
	}{{"12", true}, {"0", false}, {"abc", false}, {"-1", false}} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: tc.value}}

		id, ok := ParamID(c, "id")
		assert.Equal(t, tc.ok, ok, tc.value)
		if tc.ok {
			assert.Equal(t, uint(12), id)
		} else {
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	}
}
