package expert_role

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	group := router.Group("/expert-roles")
	{
		group.GET("", h.ListExpertRoles)
		group.POST("", h.CreateExpertRole)
		group.PUT("/:id", h.UpdateExpertRole)
		group.DELETE("/:id", h.DeleteExpertRole)
	}
}
