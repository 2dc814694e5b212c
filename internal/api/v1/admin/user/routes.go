package user

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the user administration endpoints on an admin-only
// group.
func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/users", h.ListUsers)
	router.PATCH("/users/:id", h.UpdateUser)
}
