package tag

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	group := router.Group("/tags")
	{
		group.GET("", h.ListTags)
		group.POST("", h.CreateTag)
		group.PUT("/:id", h.UpdateTag)
		group.DELETE("/:id", h.DeleteTag)
	}
}
