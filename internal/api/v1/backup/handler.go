package backup

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"promptvault-backend/internal/api/v1/httperr"
	"promptvault-backend/internal/api/v1/session"
	"promptvault-backend/internal/export"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const maxImportBytes = 32 << 20

type Handler struct {
	backups *services.BackupService
}

func NewHandler(backups *services.BackupService) *Handler {
	return &Handler{backups: backups}
}

// DownloadBackup godoc
// @Summary Download a backup
// @Description Download the whole library, trash included, as a JSON backup file.
// @Tags backup
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} export.Backup
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /backup [get]
func (h *Handler) DownloadBackup(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	b, err := h.backups.Export(c.Request.Context(), u.ID)
	if err != nil {
		httperr.Write(c, err, "Failed to create backup")
		return
	}

	name := fmt.Sprintf("promptvault-backup-%s.json", b.ExportedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.IndentedJSON(http.StatusOK, b)
}

// ImportBackup godoc
// @Summary Import a backup
// @Description Merge a backup file into the library. The file may be sent as the multipart field "file" or as the raw JSON body. Entries whose names already exist are reused; failures are reported per entry.
// @Tags backup
// @Accept json,mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file false "Backup file"
// @Success 200 {object} utils.Response{data=services.ImportResult}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /backup/import [post]
func (h *Handler) ImportBackup(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}

	data, err := readImport(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}
	b, err := export.ParseImport(data)
	if err != nil {
		httperr.Write(c, err, "Failed to read backup")
		return
	}

	result, err := h.backups.Import(c.Request.Context(), u.ID, b)
	if err != nil {
		httperr.Write(c, err, "Failed to import backup")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Backup imported", result))
}

func readImport(c *gin.Context) ([]byte, error) {
	var r io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("a backup file is required")
		}
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("could not read the uploaded file")
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("could not read the backup: %v", err)
	}
	if len(data) > maxImportBytes {
		return nil, fmt.Errorf("backup exceeds %d bytes", maxImportBytes)
	}
	return data, nil
}
