package prompt

import (
	"net/http"

	"promptvault-backend/internal/api/v1/httperr"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// ListAttachments godoc
// @Summary List a prompt's attachments
// @Tags attachments
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response{data=[]models.Attachment}
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/attachments [get]
func (h *Handler) ListAttachments(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	attachments, err := h.attachments.List(c.Request.Context(), u.ID, id)
	if err != nil {
		httperr.Write(c, err, "Failed to list attachments")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Attachments retrieved successfully", attachments))
}

// UploadAttachment godoc
// @Summary Attach a file to a prompt
// @Description Upload a file to object storage and link it to the prompt.
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param file formData file true "File"
// @Success 201 {object} utils.Response{data=models.Attachment}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/attachments [post]
func (h *Handler) UploadAttachment(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "A file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Could not read the uploaded file"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	a, err := h.attachments.Upload(c.Request.Context(), u.ID, id, header.Filename, contentType, header.Size, file)
	if err != nil {
		httperr.Write(c, err, "Failed to upload attachment")
		return
	}
	c.JSON(http.StatusCreated, utils.NewCreatedResponse("Attachment uploaded successfully", a))
}

// DeleteAttachment godoc
// @Summary Remove an attachment
// @Tags attachments
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param attachmentId path int true "Attachment ID"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/attachments/{attachmentId} [delete]
func (h *Handler) DeleteAttachment(c *gin.Context) {
	u, id, ok := userAndID(c)
	if !ok {
		return
	}
	attachmentID, ok := httperr.ParamID(c, "attachmentId")
	if !ok {
		return
	}
	if err := h.attachments.Delete(c.Request.Context(), u.ID, id, attachmentID); err != nil {
		httperr.Write(c, err, "Failed to delete attachment")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Attachment deleted successfully", nil))
}
