package prompt

import (
	"context"
	"net/http"

	"promptvault-backend/internal/api/v1/httperr"
	"promptvault-backend/internal/api/v1/session"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// Bulk endpoints apply the operation to each id on its own and report
// per-id failures in the result instead of failing the request.

// BulkDelete godoc
// @Summary Move prompts to the trash
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body BulkRequest true "Prompt ids"
// @Success 200 {object} utils.Response{data=services.BulkResult}
// @Failure 400 {object} utils.Response
// @Router /prompts/bulk/delete [post]
func (h *Handler) BulkDelete(c *gin.Context) {
	h.bulkIDs(c, h.prompts.BulkSoftDelete)
}

// BulkRestore godoc
// @Summary Restore prompts from the trash
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body BulkRequest true "Prompt ids"
// @Success 200 {object} utils.Response{data=services.BulkResult}
// @Failure 400 {object} utils.Response
// @Router /prompts/bulk/restore [post]
func (h *Handler) BulkRestore(c *gin.Context) {
	h.bulkIDs(c, h.prompts.BulkRestore)
}

// BulkPermanentDelete godoc
// @Summary Permanently delete trashed prompts
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body BulkRequest true "Prompt ids"
// @Success 200 {object} utils.Response{data=services.BulkResult}
// @Failure 400 {object} utils.Response
// @Router /prompts/bulk/permanent [post]
func (h *Handler) BulkPermanentDelete(c *gin.Context) {
	h.bulkIDs(c, h.prompts.BulkPermanentDelete)
}

func (h *Handler) bulkIDs(c *gin.Context, run func(ctx context.Context, userID uint, ids []uint) *services.BulkResult) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	var req BulkRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Bulk operation finished", run(c.Request.Context(), u.ID, req.IDs)))
}

// BulkMove godoc
// @Summary Move prompts to a category
// @Description File every prompt under the category and subcategory. Omitted or 0 ids clear the reference.
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body BulkMoveRequest true "Prompt ids and target"
// @Success 200 {object} utils.Response{data=services.BulkResult}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/bulk/move [post]
func (h *Handler) BulkMove(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	var req BulkMoveRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	result, err := h.prompts.BulkMove(c.Request.Context(), u.ID, req.IDs, req.CategoryID, req.SubcategoryID)
	if err != nil {
		httperr.Write(c, err, "Failed to move prompts")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Bulk operation finished", result))
}

// BulkAddTags godoc
// @Summary Tag prompts
// @Description Add the tags to every prompt, keeping its existing tags.
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body BulkTagsRequest true "Prompt ids and tags"
// @Success 200 {object} utils.Response{data=services.BulkResult}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/bulk/tags [post]
func (h *Handler) BulkAddTags(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	var req BulkTagsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	result, err := h.prompts.BulkAddTags(c.Request.Context(), u.ID, req.IDs, req.TagIDs)
	if err != nil {
		httperr.Write(c, err, "Failed to tag prompts")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Bulk operation finished", result))
}

// BulkFavorite godoc
// @Summary Favorite or unfavorite prompts
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body BulkFavoriteRequest true "Prompt ids and flag"
// @Success 200 {object} utils.Response{data=services.BulkResult}
// @Failure 400 {object} utils.Response
// @Router /prompts/bulk/favorite [post]
func (h *Handler) BulkFavorite(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	var req BulkFavoriteRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Bulk operation finished",
		h.prompts.BulkSetFavorite(c.Request.Context(), u.ID, req.IDs, *req.Value)))
}
