package expert_role

import (
	"net/http"

	"promptvault-backend/internal/api/v1/httperr"
	"promptvault-backend/internal/api/v1/session"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/store"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	roles    *services.ExpertRoleService
	registry *store.Registry
}

func NewHandler(roles *services.ExpertRoleService, registry *store.Registry) *Handler {
	return &Handler{roles: roles, registry: registry}
}

// ListExpertRoles godoc
// @Summary List expert roles
// @Tags expert-roles
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=[]models.ExpertRole}
// @Failure 401 {object} utils.Response
// @Router /expert-roles [get]
func (h *Handler) ListExpertRoles(c *gin.Context) {
	_, s, ok := session.Library(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Expert roles retrieved successfully", s.ExpertRoles()))
}

// CreateExpertRole godoc
// @Summary Create an expert role
// @Tags expert-roles
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ExpertRoleRequest true "Expert role"
// @Success 201 {object} utils.Response{data=models.ExpertRole}
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /expert-roles [post]
func (h *Handler) CreateExpertRole(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	var req ExpertRoleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	role, err := h.roles.Create(c.Request.Context(), u.ID, req.input())
	if err != nil {
		httperr.Write(c, err, "Failed to create expert role")
		return
	}

	c.JSON(http.StatusCreated, utils.NewCreatedResponse("Expert role created successfully", role))
}

// UpdateExpertRole godoc
// @Summary Replace an expert role
// @Tags expert-roles
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Expert role ID"
// @Param request body ExpertRoleRequest true "Expert role"
// @Success 200 {object} utils.Response{data=models.ExpertRole}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /expert-roles/{id} [put]
func (h *Handler) UpdateExpertRole(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}
	var req ExpertRoleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	role, err := h.roles.Update(c.Request.Context(), u.ID, id, req.input())
	if err != nil {
		httperr.Write(c, err, "Failed to update expert role")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Expert role updated successfully", role))
}

// DeleteExpertRole godoc
// @Summary Delete an expert role
// @Description Delete an expert role and detach it from its prompts.
// @Tags expert-roles
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Expert role ID"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /expert-roles/{id} [delete]
func (h *Handler) DeleteExpertRole(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.roles.Delete(c.Request.Context(), u.ID, id); err != nil {
		httperr.Write(c, err, "Failed to delete expert role")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Expert role deleted successfully", nil))
}
