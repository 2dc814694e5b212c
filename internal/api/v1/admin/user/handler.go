package user

import (
	"net/http"
	"strconv"
	"time"

	"promptvault-backend/internal/api/v1/httperr"
	"promptvault-backend/internal/middleware"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserListItem struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserListResponse struct {
	Users []UserListItem `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type Handler struct {
	auth *services.AuthService
}

func NewHandler(auth *services.AuthService) *Handler {
	return &Handler{auth: auth}
}

// ListUsers godoc
// @Summary List all users
// @Description Get a paginated list of users. Admin only.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} utils.Response{data=UserListResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	users, total, err := h.auth.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch users"))
		return
	}

	items := make([]UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, UserListItem{
			ID:        u.ID,
			Username:  u.Username,
			Role:      u.Role,
			Version:   u.Version,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Users retrieved successfully", UserListResponse{
		Users: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// UpdateUserRequest changes the present fields of a user. Version is the
// version the administrator last saw.
type UpdateUserRequest struct {
	Version  int     `json:"version" binding:"required,min=1"`
	Username *string `json:"username,omitempty" binding:"omitempty,max=64"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=6"`
	Role     *string `json:"role,omitempty" binding:"omitempty,oneof=admin user"`
}

// UpdateUser godoc
// @Summary Update a user
// @Description Change a user's name, password or role. Admin only. Fails with 409 when the user changed since version.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param body body UpdateUserRequest true "User details to update"
// @Success 200 {object} utils.Response{data=UserListItem}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/users/{id} [patch]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	operator := "unknown"
	if u, ok := middleware.CurrentUser(c); ok {
		operator = u.Username
	}

	updated, err := h.auth.UpdateUser(c.Request.Context(), id, services.UserUpdate{
		Version:  req.Version,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	}, operator)
	if err != nil {
		httperr.Write(c, err, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User updated successfully", UserListItem{
		ID:        updated.ID,
		Username:  updated.Username,
		Role:      updated.Role,
		Version:   updated.Version,
		CreatedAt: updated.CreatedAt,
		UpdatedAt: updated.UpdatedAt,
	}))
}
