package backup

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	group := router.Group("/backup")
	{
		group.GET("", h.DownloadBackup)
		group.POST("/import", h.ImportBackup)
	}
}
