package category

import (
	"net/http"
	"strconv"

	"promptvault-backend/internal/api/v1/httperr"
	"promptvault-backend/internal/api/v1/session"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/store"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	categories *services.CategoryService
	registry   *store.Registry
}

func NewHandler(categories *services.CategoryService, registry *store.Registry) *Handler {
	return &Handler{categories: categories, registry: registry}
}

// ListCategories godoc
// @Summary List categories
// @Description List categories in display order with their prompt counts. With parentId only its subcategories are returned.
// @Tags categories
// @Produce json
// @Security ApiKeyAuth
// @Param parentId query int false "Parent category ID"
// @Success 200 {object} utils.Response{data=[]store.CategoryView}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	_, s, ok := session.Library(c, h.registry)
	if !ok {
		return
	}

	if raw := c.Query("parentId"); raw != "" {
		parentID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid parentId"))
			return
		}
		c.JSON(http.StatusOK, utils.NewSuccessResponse("Subcategories retrieved successfully", s.Subcategories(uint(parentID))))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Categories retrieved successfully", s.Categories()))
}

// CreateCategory godoc
// @Summary Create a category
// @Description Create a main category, or a subcategory when parentId is set. A color is picked from the palette when omitted.
// @Tags categories
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} utils.Response{data=models.Category}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	var req CreateCategoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Create(c.Request.Context(), u.ID, services.CategoryInput{
		Name:     req.Name,
		Color:    req.Color,
		ParentID: req.ParentID,
	})
	if err != nil {
		httperr.Write(c, err, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, utils.NewCreatedResponse("Category created successfully", category))
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category ID"
// @Param request body UpdateCategoryRequest true "Changes"
// @Success 200 {object} utils.Response{data=models.Category}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /categories/{id} [put]
func (h *Handler) UpdateCategory(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Update(c.Request.Context(), u.ID, id, services.CategoryUpdate{
		Name:     req.Name,
		Color:    req.Color,
		ParentID: req.ParentID,
		Detach:   req.Detach,
	})
	if err != nil {
		httperr.Write(c, err, "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Category updated successfully", category))
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Delete a category without subcategories. Prompts filed under it become uncategorized.
// @Tags categories
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category ID"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /categories/{id} [delete]
func (h *Handler) DeleteCategory(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), u.ID, id); err != nil {
		httperr.Write(c, err, "Failed to delete category")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Category deleted successfully", nil))
}

// ReorderCategories godoc
// @Summary Reorder categories
// @Description Assign order indexes to sibling categories following the given id order.
// @Tags categories
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ReorderRequest true "Ordered ids"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /categories/reorder [put]
func (h *Handler) ReorderCategories(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	var req ReorderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := h.categories.Reorder(c.Request.Context(), u.ID, req.IDs); err != nil {
		httperr.Write(c, err, "Failed to reorder categories")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Categories reordered successfully", nil))
}
