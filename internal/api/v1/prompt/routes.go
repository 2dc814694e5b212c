package prompt

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	group := router.Group("/prompts")
	{
		group.GET("", h.ListPrompts)
		group.POST("", h.CreatePrompt)
		group.GET("/trash", h.ListTrash)
		group.DELETE("/trash", h.EmptyTrash)
		group.POST("/export", h.ExportPrompts)

		bulk := group.Group("/bulk")
		bulk.POST("/delete", h.BulkDelete)
		bulk.POST("/restore", h.BulkRestore)
		bulk.POST("/permanent", h.BulkPermanentDelete)
		bulk.POST("/move", h.BulkMove)
		bulk.POST("/tags", h.BulkAddTags)
		bulk.POST("/favorite", h.BulkFavorite)

		group.GET("/:id", h.GetPrompt)
		group.PUT("/:id", h.UpdatePrompt)
		group.DELETE("/:id", h.DeletePrompt)
		group.POST("/:id/restore", h.RestorePrompt)
		group.DELETE("/:id/permanent", h.PermanentDeletePrompt)
		group.POST("/:id/favorite", h.SetFavorite)
		group.POST("/:id/pin", h.SetPinned)
		group.POST("/:id/usage", h.RecordUsage)
		group.POST("/:id/duplicate", h.DuplicatePrompt)
		group.POST("/:id/render", h.RenderPrompt)
		group.GET("/:id/export", h.ExportPrompt)
		group.GET("/:id/versions", h.ListVersions)
		group.POST("/:id/versions/:versionId/restore", h.RestoreVersion)
		group.GET("/:id/attachments", h.ListAttachments)
		group.POST("/:id/attachments", h.UploadAttachment)
		group.DELETE("/:id/attachments/:attachmentId", h.DeleteAttachment)
	}
}
