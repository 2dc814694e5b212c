package tag

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
	tags     *services.TagService
	registry *store.Registry
}

func NewHandler(tags *services.TagService, registry *store.Registry) *Handler {
	return &Handler{tags: tags, registry: registry}
}

// ListTags godoc
// @Summary List tags
// @Description List tags by name with the number of prompts using each.
// @Tags tags
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=[]store.TagView}
// @Failure 401 {object} utils.Response
// @Router /tags [get]
func (h *Handler) ListTags(c *gin.Context) {
	_, s, ok := session.Library(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Tags retrieved successfully", s.Tags()))
}

// CreateTag godoc
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateTagRequest true "Tag"
// @Success 201 {object} utils.Response{data=models.Tag}
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /tags [post]
func (h *Handler) CreateTag(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	var req CreateTagRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	tag, err := h.tags.Create(c.Request.Context(), u.ID, req.Name, req.Color)
	if err != nil {
		httperr.Write(c, err, "Failed to create tag")
		return
	}

	c.JSON(http.StatusCreated, utils.NewCreatedResponse("Tag created successfully", tag))
}

// UpdateTag godoc
// @Summary Rename or recolor a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Tag ID"
// @Param request body UpdateTagRequest true "Changes"
// @Success 200 {object} utils.Response{data=models.Tag}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /tags/{id} [put]
func (h *Handler) UpdateTag(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateTagRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	tag, err := h.tags.Update(c.Request.Context(), u.ID, id, req.Name, req.Color)
	if err != nil {
		httperr.Write(c, err, "Failed to update tag")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Tag updated successfully", tag))
}

// DeleteTag godoc
// @Summary Delete a tag
// @Description Delete a tag and remove it from every prompt.
// @Tags tags
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Tag ID"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /tags/{id} [delete]
func (h *Handler) DeleteTag(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.tags.Delete(c.Request.Context(), u.ID, id); err != nil {
		httperr.Write(c, err, "Failed to delete tag")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Tag deleted successfully", nil))
}
