package prompt

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"promptvault-backend/internal/api/v1/httperr"
	"promptvault-backend/internal/api/v1/session"
	"promptvault-backend/internal/export"
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// ExportPrompt godoc
// @Summary Export a prompt
// @Description Download one prompt as a JSON, Markdown or plain text file.
// @Tags prompts
// @Produce json,plain,octet-stream
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param format query string false "File format" Enums(json, markdown, text) default(json)
// @Param metadata query bool false "Include metadata" default(true)
// @Param variables query bool false "Include variables" default(true)
// @Success 200 {file} file
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/export [get]
func (h *Handler) ExportPrompt(c *gin.Context) {
	u, s, ok := session.Library(c, h.registry)
	if !ok {
		return
	}
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}
	opts := export.Options{IncludeMetadata: true, IncludeVariables: true}
	for key, dst := range map[string]*bool{"metadata": &opts.IncludeMetadata, "variables": &opts.IncludeVariables} {
		if raw := c.Query(key); raw != "" {
			if *dst, err = strconv.ParseBool(raw); err != nil {
				c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid "+key))
				return
			}
		}
	}

	prompt, err := h.prompts.Get(c.Request.Context(), u.ID, id)
	if err != nil {
		httperr.Write(c, err, "Failed to export prompt")
		return
	}
	data, err := export.Render(prompt, format, s, opts)
	if err != nil {
		httperr.Write(c, err, "Failed to export prompt")
		return
	}
	attachment(c, export.FileName(prompt, format), format.ContentType(), data)
}

// ExportPrompts godoc
// @Summary Export several prompts
// @Description Download the listed prompts, or every prompt outside the trash when no ids are given. A single prompt is returned as a file, more as a ZIP archive.
// @Tags prompts
// @Accept json
// @Produce json,plain,octet-stream
// @Security ApiKeyAuth
// @Param request body ExportRequest true "Export options"
// @Success 200 {file} file
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/export [post]
func (h *Handler) ExportPrompts(c *gin.Context) {
	u, s, ok := session.Library(c, h.registry)
	if !ok {
		return
	}
	var req ExportRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}
	opts := export.Options{IncludeMetadata: req.IncludeMetadata, IncludeVariables: req.IncludeVariables}

	var prompts []models.Prompt
	if len(req.IDs) == 0 {
		prompts = s.FilteredPrompts(models.Filters{}, models.DefaultSort)
	} else {
		seen := make(map[uint]bool, len(req.IDs))
		for _, id := range req.IDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			prompt, err := h.prompts.Get(c.Request.Context(), u.ID, id)
			if err != nil {
				httperr.Write(c, err, "Failed to export prompts")
				return
			}
			prompts = append(prompts, *prompt)
		}
	}
	if len(prompts) == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "No prompts to export"))
		return
	}

	if len(prompts) == 1 {
		data, err := export.Render(&prompts[0], format, s, opts)
		if err != nil {
			httperr.Write(c, err, "Failed to export prompts")
			return
		}
		attachment(c, export.FileName(&prompts[0], format), format.ContentType(), data)
		return
	}

	var buf bytes.Buffer
	if err := export.Bundle(&buf, prompts, format, s, opts); err != nil {
		httperr.Write(c, err, "Failed to export prompts")
		return
	}
	name := fmt.Sprintf("prompts-%s.zip", time.Now().Format("20060102-150405"))
	attachment(c, name, "application/zip", buf.Bytes())
}

func attachment(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, data)
}
