package realtime

import (
	"net/http"
	"time"

	"promptvault-backend/internal/api/v1/session"
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/store"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	EventSnapshot = "snapshot"
	EventPing     = "ping"
)

type Handler struct {
	registry  *store.Registry
	heartbeat time.Duration
	log       *zap.Logger
}

func NewHandler(registry *store.Registry, heartbeat time.Duration, log *zap.Logger) *Handler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &Handler{registry: registry, heartbeat: heartbeat, log: log.Named("sse")}
}

// Stream godoc
// @Summary Stream library snapshots
// @Description Server-sent events. A snapshot event carrying the whole library is sent on connect and after every change; ping events keep the connection open. EventSource clients may pass the token as a query parameter.
// @Tags realtime
// @Produce text/event-stream
// @Security ApiKeyAuth
// @Param token query string false "JWT when the Authorization header cannot be set"
// @Success 200 {object} store.Snapshot
// @Failure 401 {object} utils.Response
// @Router /realtime/stream [get]
func (h *Handler) Stream(c *gin.Context) {
	u, ok := session.User(c)
	if !ok {
		return
	}
	s, release, err := h.registry.Hold(u.ID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load library"))
		return
	}
	// logout in another session must not cut this stream off
	defer release()

	// one pending signal is enough: every snapshot is read fresh
	changed := make(chan struct{}, 1)
	unsubscribe := s.Subscribe(func(models.Collection) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	log := h.log.With(zap.Uint("user_id", u.ID))
	log.Debug("stream opened")
	defer log.Debug("stream closed")

	c.SSEvent(EventSnapshot, s.Snapshot())
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			c.SSEvent(EventPing, time.Now().Unix())
		case <-changed:
			c.SSEvent(EventSnapshot, s.Snapshot())
		}
		c.Writer.Flush()
	}
}
