package category

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	group := router.Group("/categories")
	{
		group.GET("", h.ListCategories)
		group.POST("", h.CreateCategory)
		group.PUT("/reorder", h.ReorderCategories)
		group.PUT("/:id", h.UpdateCategory)
		group.DELETE("/:id", h.DeleteCategory)
	}
}
