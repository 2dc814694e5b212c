package upload

import (
	"net/http"

	"promptvault-backend/config"
	"promptvault-backend/internal/api/v1/httperr"
	"promptvault-backend/internal/api/v1/session"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	cfg *config.Config
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

// GetOSSToken godoc
// @Summary Get OSS STS Token
// @Description Get STS token for uploading attachments directly to Alibaba Cloud OSS
// @Tags common
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=services.STSCredentials}
// @Failure 400 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /common/upload/token [get]
func (h *Handler) GetOSSToken(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}

	token, err := services.GetOSSSTSToken(h.cfg, u.ID)
	if err != nil {
		httperr.Write(c, err, "Failed to get OSS token")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("OSS token retrieved successfully", token))
}
