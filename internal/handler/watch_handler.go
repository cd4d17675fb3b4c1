package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"transcendent/backend/internal/hub"
	"transcendent/backend/internal/metrics"
)

const watchBuffer = 16

// WatchServers godoc
// @Summary      Watch lobbies
// @Description  Streams hosted, renewed, migrated and removed events for a game mode as server-sent events.
// @Tags         server
// @Produce      text/event-stream
// @Param        auth      query string true "Session token"
// @Param        game_mode query string true "Game mode"
// @Success      200  {object}  hub.Event
// @Failure      400  {object}  StatusResponse
// @Failure      401  {object}  StatusResponse
// @Router       /server/watch [get]
func (h *Handler) WatchServers(c *gin.Context) error {
	gameMode := param(c, "game_mode")
	if gameMode == "" {
		return missingParam("game_mode")
	}

	client := make(hub.Client, watchBuffer)
	h.hub.Subscribe(gameMode, client)
	metrics.LobbyWatchers.Inc()
	defer func() {
		h.hub.Unsubscribe(gameMode, client)
		metrics.LobbyWatchers.Dec()
		h.log.Debug("Lobby watcher left", zap.String("game_mode", gameMode))
	}()
	h.log.Debug("Lobby watcher joined", zap.String("game_mode", gameMode))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case message, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("lobby", string(message))
			return true
		}
	})
	return nil
}
