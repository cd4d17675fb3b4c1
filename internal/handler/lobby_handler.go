package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"transcendent/backend/internal/hub"
	"transcendent/backend/internal/lobby"
	"transcendent/backend/internal/metrics"
	"transcendent/backend/internal/models"
)

const lobbyNotFound = "Lobby not found"

// region --- DTOs ---

// ServerEntry describes one joinable lobby.
type ServerEntry struct {
	ID         string `json:"id" example:"9f1c2a7be3d54c0a8e6b1f2d3c4b5a69"`
	HostGUID   string `json:"host-GUID"`
	GameMode   string `json:"game-mode" example:"deathmatch"`
	MaxPlayers int    `json:"max-players" example:"8"`
}

func newServerEntry(l models.Lobby) ServerEntry {
	return ServerEntry{
		ID:         l.ID.Hex(),
		HostGUID:   l.HostGUID,
		GameMode:   l.GameMode,
		MaxPlayers: l.MaxPlayers,
	}
}

type ServerListResponse struct {
	Success     bool          `json:"success"`
	ServerCount int           `json:"server-count"`
	ServerList  []ServerEntry `json:"server-list"`
}

type HostResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// endregion

// FindServers godoc
// @Summary      Find lobbies
// @Description  Lists the lobbies of a game mode that are still alive.
// @Tags         server
// @Produce      json
// @Param        auth      query string true "Session token"
// @Param        game_mode query string true "Game mode"
// @Success      200  {object}  ServerListResponse
// @Failure      400  {object}  StatusResponse
// @Failure      401  {object}  StatusResponse
// @Router       /server/find [get]
func (h *Handler) FindServers(c *gin.Context) error {
	gameMode := param(c, "game_mode")
	if gameMode == "" {
		return missingParam("game_mode")
	}

	result, err := h.finder.FindGames(c.Request.Context(), gameMode)
	if err != nil {
		return err
	}

	servers := make([]ServerEntry, 0, result.Count())
	result.Each(func(l models.Lobby) bool {
		servers = append(servers, newServerEntry(l))
		return true
	})

	c.JSON(http.StatusOK, ServerListResponse{
		Success:     true,
		ServerCount: len(servers),
		ServerList:  servers,
	})
	return nil
}

// HostGame godoc
// @Summary      Host a lobby
// @Description  Registers a lobby hosted by the caller.
// @Tags         server
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        auth        formData string true  "Session token"
// @Param        guid        formData string true  "Host network GUID"
// @Param        game_mode   formData string true  "Game mode"
// @Param        max_players formData int    false "Player capacity"
// @Success      200  {object}  HostResponse
// @Failure      400  {object}  StatusResponse
// @Failure      401  {object}  StatusResponse
// @Router       /server/host [post]
func (h *Handler) HostGame(c *gin.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}

	guid := param(c, "guid")
	if guid == "" {
		return missingParam("guid")
	}
	gameMode := param(c, "game_mode")
	if gameMode == "" {
		return missingParam("game_mode")
	}
	maxPlayers := h.lobbies.DefaultMaxPlayers()
	if raw := param(c, "max_players"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: max_players must be a positive integer", models.ErrInvalidArgument)
		}
		maxPlayers = n
	}

	l, err := h.lobbies.Create(c.Request.Context(), guid, gameMode, session.UserID, maxPlayers)
	if err != nil {
		metrics.LobbyOperation("host", false)
		return err
	}

	metrics.LobbyOperation("host", true)
	h.log.Info("Lobby hosted",
		zap.String("lobby_id", l.ID.Hex()),
		zap.String("game_mode", l.GameMode),
		zap.Uint("user_id", session.UserID))
	h.publish(hub.EventHosted, l)

	c.JSON(http.StatusOK, HostResponse{Success: true, ID: l.ID.Hex()})
	return nil
}

// RenewGame godoc
// @Summary      Renew a lobby
// @Description  Keeps a lobby hosted by the caller alive for another expiry window.
// @Tags         server
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        auth formData string true "Session token"
// @Param        id   formData string true "Lobby id"
// @Success      200  {object}  StatusResponse "success is false when the lobby is gone or hosted by someone else"
// @Failure      400  {object}  StatusResponse
// @Failure      401  {object}  StatusResponse
// @Router       /server/renew [post]
func (h *Handler) RenewGame(c *gin.Context) error {
	owned, err := h.ownedLobby(c)
	if err != nil || owned == nil {
		metrics.LobbyOperation("renew", false)
		return err
	}

	renewed, err := h.lobbies.Renew(c.Request.Context(), owned)
	if err != nil {
		metrics.LobbyOperation("renew", false)
		return err
	}
	metrics.LobbyOperation("renew", renewed)
	if renewed {
		h.publish(hub.EventRenewed, owned.Lobby())
	}

	c.JSON(http.StatusOK, StatusResponse{Success: renewed})
	return nil
}

// DeleteGame godoc
// @Summary      Remove a lobby
// @Description  Removes a lobby hosted by the caller.
// @Tags         server
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        auth formData string true "Session token"
// @Param        id   formData string true "Lobby id"
// @Success      200  {object}  StatusResponse "success is false when the lobby is gone or hosted by someone else"
// @Failure      400  {object}  StatusResponse
// @Failure      401  {object}  StatusResponse
// @Router       /server/remove [post]
func (h *Handler) DeleteGame(c *gin.Context) error {
	owned, err := h.ownedLobby(c)
	if err != nil || owned == nil {
		metrics.LobbyOperation("remove", false)
		return err
	}

	deleted, err := h.lobbies.Delete(c.Request.Context(), owned)
	if err != nil {
		metrics.LobbyOperation("remove", false)
		return err
	}
	metrics.LobbyOperation("remove", deleted)
	if deleted {
		h.log.Info("Lobby removed", zap.String("lobby_id", owned.Lobby().ID.Hex()))
		h.publish(hub.EventRemoved, owned.Lobby())
	}

	c.JSON(http.StatusOK, StatusResponse{Success: deleted})
	return nil
}

// MigrateGame godoc
// @Summary      Migrate a lobby
// @Description  Hands a lobby to the caller at a new host GUID and renews it.
// @Tags         server
// @Produce      json
// @Param        auth query string true "Session token"
// @Param        id   query string true "Lobby id"
// @Param        guid query string true "New host network GUID"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  StatusResponse
// @Failure      401  {object}  StatusResponse
// @Router       /server/migrate [get]
// @Router       /server/migrate [post]
func (h *Handler) MigrateGame(c *gin.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}

	id := param(c, "id")
	if id == "" {
		return missingParam("id")
	}
	guid := param(c, "guid")
	if guid == "" {
		return missingParam("guid")
	}

	ctx := c.Request.Context()
	l, err := h.lobbies.GetByHex(ctx, id)
	if err != nil {
		return err
	}
	if l == nil {
		metrics.LobbyOperation("migrate", false)
		c.JSON(http.StatusOK, StatusResponse{Success: false, Message: lobbyNotFound})
		return nil
	}

	if !lobby.HostsLobby(session.UserID, l) {
		if h.opts.StrictMigration {
			metrics.LobbyOperation("migrate", false)
			c.JSON(http.StatusOK, StatusResponse{Success: false, Message: lobbyNotFound})
			return nil
		}
		h.log.Warn("Lobby migrated by a user who does not host it",
			zap.String("lobby_id", l.ID.Hex()),
			zap.Uint("previous_host", l.HostingUserID),
			zap.Uint("user_id", session.UserID))
	}

	changed, err := h.lobbies.ChangeHost(ctx, l, session.UserID, guid)
	if err != nil {
		metrics.LobbyOperation("migrate", false)
		return err
	}
	metrics.LobbyOperation("migrate", changed)
	if !changed {
		c.JSON(http.StatusOK, StatusResponse{Success: false, Message: lobbyNotFound})
		return nil
	}

	h.publish(hub.EventMigrated, l)
	c.JSON(http.StatusOK, StatusResponse{Success: true})
	return nil
}

// ownedLobby resolves the "id" parameter to an alive lobby hosted by the
// caller. It returns nil, and answers {success:false}, when there is none.
func (h *Handler) ownedLobby(c *gin.Context) (*lobby.Owned, error) {
	session, err := currentSession(c)
	if err != nil {
		return nil, err
	}
	id := param(c, "id")
	if id == "" {
		return nil, missingParam("id")
	}

	l, err := h.lobbies.GetByHex(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	owned, ok := h.lobbies.Authorize(session.UserID, l)
	if !ok {
		c.JSON(http.StatusOK, StatusResponse{Success: false})
		return nil, nil
	}
	return owned, nil
}

func (h *Handler) publish(eventType string, l *models.Lobby) {
	h.hub.Broadcast(l.GameMode, hub.Event{Type: eventType, Payload: newServerEntry(*l)})
}
