// Package session resolves the signed-in user and their library store for
// a request, responding with an error envelope when either is unavailable.
package session

import (
	"net/http"

	"promptvault-backend/internal/middleware"
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/store"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func User(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return nil, false
	}
	return u, true
}

// Library returns the user's store, subscribing it on first use.
func Library(c *gin.Context, registry *store.Registry) (*models.User, *store.Store, bool) {
	u, ok := User(c)
	if !ok {
		return nil, nil, false
	}
	s, err := registry.Acquire(u.ID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load library"))
		return nil, nil, false
	}
	return u, s, true
}
