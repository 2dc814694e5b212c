package user

import (
	"net/http"

	"promptvault-backend/internal/api/v1/session"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/store"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	auth     *services.AuthService
	registry *store.Registry
}

func NewHandler(auth *services.AuthService, registry *store.Registry) *Handler {
	return &Handler{auth: auth, registry: registry}
}

// CurrentUser godoc
// @Summary Get current user
// @Description Get current user's information with a summary of the library and a refreshed token
// @Tags user
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=user.UserResponse}
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /auth/user [get]
func (h *Handler) CurrentUser(c *gin.Context) {
	u, s, ok := session.Library(c, h.registry)
	if !ok {
		return
	}

	token, err := h.auth.Tokens().GenerateToken(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not generate token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User information retrieved successfully", UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Library:  statsOf(s),
		Token:    token,
	}))
}

func statsOf(s *store.Store) *LibraryStats {
	prompts := s.Prompts()
	stats := &LibraryStats{
		Prompts:     len(prompts),
		Trash:       len(s.DeletedPrompts()),
		Categories:  len(s.Categories()),
		Tags:        len(s.Tags()),
		ExpertRoles: len(s.ExpertRoles()),
	}
	for _, p := range prompts {
		if p.IsFavorite {
			stats.Favorites++
		}
		if p.IsPinned {
			stats.Pinned++
		}
	}
	return stats
}
