package prompt

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"promptvault-backend/internal/api/v1/httperr"
	"promptvault-backend/internal/api/v1/session"
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/store"
	"promptvault-backend/internal/utils"
	"promptvault-backend/pkg/template"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Handler struct {
	prompts     *services.PromptService
	attachments *services.AttachmentService
	registry    *store.Registry
}

func NewHandler(prompts *services.PromptService, attachments *services.AttachmentService, registry *store.Registry) *Handler {
	return &Handler{prompts: prompts, attachments: attachments, registry: registry}
}

// ListPrompts godoc
// @Summary List prompts
// @Description List prompts outside the trash. Pinned prompts come first, then the requested order. A search query ranks results by relevance instead.
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param categoryId query int false "Category or subcategory ID"
// @Param subcategoryId query int false "Subcategory ID"
// @Param tagIds query string false "Comma separated tag IDs, any of which must match"
// @Param expertRoleId query int false "Expert role ID"
// @Param favorite query bool false "Favorite flag"
// @Param pinned query bool false "Pinned flag"
// @Param q query string false "Search query"
// @Param sort query string false "Sort field" Enums(createdAt, updatedAt, title, usageCount)
// @Param order query string false "Sort direction" Enums(asc, desc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} utils.Response{data=PromptListResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /prompts [get]
func (h *Handler) ListPrompts(c *gin.Context) {
	_, s, ok := session.Library(c, h.registry)
	if !ok {
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}
	opts, err := models.ParseSortOptions(c.Query("sort"), c.Query("order"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxLimit {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	all := s.FilteredPrompts(filters, opts)
	start := min((page-1)*limit, len(all))
	end := min(start+limit, len(all))

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompts retrieved successfully", PromptListResponse{
		Prompts: all[start:end],
		Total:   len(all),
		Page:    page,
		Limit:   limit,
	}))
}

// ListTrash godoc
// @Summary List the trash
// @Description List trashed prompts, most recently deleted first.
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=[]models.Prompt}
// @Failure 401 {object} utils.Response
// @Router /prompts/trash [get]
func (h *Handler) ListTrash(c *gin.Context) {
	_, s, ok := session.Library(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Trash retrieved successfully", s.DeletedPrompts()))
}

// EmptyTrash godoc
// @Summary Empty the trash
// @Description Permanently delete every trashed prompt. Each prompt is deleted on its own; failures are reported per id.
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=services.BulkResult}
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /prompts/trash [delete]
func (h *Handler) EmptyTrash(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	result, err := h.prompts.EmptyTrash(c.Request.Context(), u.ID)
	if err != nil {
		httperr.Write(c, err, "Failed to empty trash")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Trash emptied", result))
}

// CreatePrompt godoc
// @Summary Create a prompt
// @Description Create a prompt. Variables are synchronized with the double-brace placeholders found in the content.
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreatePromptRequest true "Prompt"
// @Success 201 {object} utils.Response{data=models.Prompt}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts [post]
func (h *Handler) CreatePrompt(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	var req CreatePromptRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	prompt, err := h.prompts.Create(c.Request.Context(), u.ID, req.input())
	if err != nil {
		httperr.Write(c, err, "Failed to create prompt")
		return
	}
	c.JSON(http.StatusCreated, utils.NewCreatedResponse("Prompt created successfully", prompt))
}

// GetPrompt godoc
// @Summary Get a prompt
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response{data=models.Prompt}
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [get]
func (h *Handler) GetPrompt(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	prompt, err := h.prompts.Get(c.Request.Context(), u.ID, id)
	if err != nil {
		httperr.Write(c, err, "Failed to get prompt")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt retrieved successfully", prompt))
}

// UpdatePrompt godoc
// @Summary Update a prompt
// @Description Update the fields present in the body. Changing title, content, description or variables stores the previous state as a version.
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param request body UpdatePromptRequest true "Changes"
// @Success 200 {object} utils.Response{data=models.Prompt}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [put]
func (h *Handler) UpdatePrompt(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	var req UpdatePromptRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	prompt, err := h.prompts.Update(c.Request.Context(), u.ID, id, req.update())
	if err != nil {
		httperr.Write(c, err, "Failed to update prompt")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt updated successfully", prompt))
}

// DeletePrompt godoc
// @Summary Move a prompt to the trash
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [delete]
func (h *Handler) DeletePrompt(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	if err := h.prompts.SoftDelete(c.Request.Context(), u.ID, id); err != nil {
		httperr.Write(c, err, "Failed to delete prompt")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt moved to trash", nil))
}

// RestorePrompt godoc
// @Summary Restore a prompt from the trash
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/restore [post]
func (h *Handler) RestorePrompt(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	if err := h.prompts.Restore(c.Request.Context(), u.ID, id); err != nil {
		httperr.Write(c, err, "Failed to restore prompt")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt restored", nil))
}

// PermanentDeletePrompt godoc
// @Summary Permanently delete a prompt
// @Description Erase a trashed prompt together with its versions and attachments.
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/permanent [delete]
func (h *Handler) PermanentDeletePrompt(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	if err := h.prompts.PermanentDelete(c.Request.Context(), u.ID, id); err != nil {
		httperr.Write(c, err, "Failed to delete prompt")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt deleted permanently", nil))
}

// SetFavorite godoc
// @Summary Favorite or unfavorite a prompt
// @Description Set the favorite flag, or toggle it when no value is given.
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param request body FlagRequest false "Flag"
// @Success 200 {object} utils.Response{data=models.Prompt}
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/favorite [post]
func (h *Handler) SetFavorite(c *gin.Context) {
	h.setFlag(c, func(p *models.Prompt) bool { return p.IsFavorite }, h.prompts.SetFavorite)
}

// SetPinned godoc
// @Summary Pin or unpin a prompt
// @Description Set the pinned flag, or toggle it when no value is given.
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param request body FlagRequest false "Flag"
// @Success 200 {object} utils.Response{data=models.Prompt}
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/pin [post]
func (h *Handler) SetPinned(c *gin.Context) {
	h.setFlag(c, func(p *models.Prompt) bool { return p.IsPinned }, h.prompts.SetPinned)
}

type setter func(ctx context.Context, userID, id uint, value bool) error

func (h *Handler) setFlag(c *gin.Context, current func(*models.Prompt) bool, set setter) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	var req FlagRequest
	if c.Request.ContentLength != 0 && !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	prompt, err := h.prompts.Get(ctx, u.ID, id)
	if err != nil {
		httperr.Write(c, err, "Failed to update prompt")
		return
	}
	value := !current(prompt)
	if req.Value != nil {
		value = *req.Value
	}
	if err := set(ctx, u.ID, id, value); err != nil {
		httperr.Write(c, err, "Failed to update prompt")
		return
	}

	prompt, err = h.prompts.Get(ctx, u.ID, id)
	if err != nil {
		httperr.Write(c, err, "Failed to update prompt")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt updated successfully", prompt))
}

// RecordUsage godoc
// @Summary Record a prompt use
// @Description Increment the usage counter, typically after the prompt was copied.
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response{data=UsageResponse}
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/usage [post]
func (h *Handler) RecordUsage(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	count, err := h.prompts.IncrementUsage(c.Request.Context(), u.ID, id)
	if err != nil {
		httperr.Write(c, err, "Failed to record usage")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Usage recorded", UsageResponse{UsageCount: count}))
}

// DuplicatePrompt godoc
// @Summary Duplicate a prompt
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 201 {object} utils.Response{data=models.Prompt}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/duplicate [post]
func (h *Handler) DuplicatePrompt(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	prompt, err := h.prompts.Duplicate(c.Request.Context(), u.ID, id)
	if err != nil {
		httperr.Write(c, err, "Failed to duplicate prompt")
		return
	}
	c.JSON(http.StatusCreated, utils.NewCreatedResponse("Prompt duplicated successfully", prompt))
}

// RenderPrompt godoc
// @Summary Fill a prompt's variables
// @Description Replace double-brace placeholders with the given values layered over the variable defaults and report missing required variables.
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param request body RenderRequest true "Values"
// @Success 200 {object} utils.Response{data=services.RenderResult}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/render [post]
func (h *Handler) RenderPrompt(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	var req RenderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	result, err := h.prompts.Render(c.Request.Context(), u.ID, id, template.Stringify(req.Values))
	if err != nil {
		httperr.Write(c, err, "Failed to render prompt")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt rendered", result))
}

// ListVersions godoc
// @Summary List a prompt's versions
// @Description List stored earlier versions, newest first.
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response{data=[]models.PromptVersion}
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/versions [get]
func (h *Handler) ListVersions(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	versions, err := h.prompts.ListVersions(c.Request.Context(), u.ID, id)
	if err != nil {
		httperr.Write(c, err, "Failed to list versions")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Versions retrieved successfully", versions))
}

// RestoreVersion godoc
// @Summary Restore a prompt version
// @Description Bring back an earlier version. The current state is stored as a new version first.
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param versionId path int true "Version ID"
// @Success 200 {object} utils.Response{data=models.Prompt}
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/versions/{versionId}/restore [post]
func (h *Handler) RestoreVersion(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	versionID, ok := httperr.ParamID(c, "versionId")
	if !ok {
		return
	}
	prompt, err := h.prompts.RestoreVersion(c.Request.Context(), u.ID, id, versionID)
	if err != nil {
		httperr.Write(c, err, "Failed to restore version")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Version restored", prompt))
}

func userAndID(c *gin.Context) (*models.User, uint, bool) {
	u, ok := session.User(c)
	if !ok {
		return nil, 0, false
	}
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return nil, 0, false
	}
	return u, id, true
}

func parseFilters(c *gin.Context) (models.Filters, error) {
	var f models.Filters
	var err error
	if f.CategoryID, err = queryUint(c, "categoryId"); err != nil {
		return f, err
	}
	if f.SubcategoryID, err = queryUint(c, "subcategoryId"); err != nil {
		return f, err
	}
	if f.ExpertRoleID, err = queryUint(c, "expertRoleId"); err != nil {
		return f, err
	}
	if f.Favorite, err = queryBool(c, "favorite"); err != nil {
		return f, err
	}
	if f.Pinned, err = queryBool(c, "pinned"); err != nil {
		return f, err
	}
	if raw := c.Query("tagIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return f, fmt.Errorf("invalid tagIds value %q", part)
			}
			f.TagIDs = append(f.TagIDs, uint(id))
		}
	}
	f.Query = c.Query("q")
	return f, nil
}

func queryUint(c *gin.Context, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q", key, raw)
	}
	id := uint(v)
	return &id, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q", key, raw)
	}
	return &v, nil
}
