package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	auth := router.Group("/auth")
	auth.GET("/user", h.CurrentUser)
}
