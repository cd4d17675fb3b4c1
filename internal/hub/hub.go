package hub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event types published for lobbies.
const (
	EventHosted   = "hosted"
	EventRenewed  = "renewed"
	EventMigrated = "migrated"
	EventRemoved  = "removed"
)

// Event represents a lobby change sent to watchers.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is a single watcher. The SSE handler drains it.
type Client chan []byte

// Hub fans lobby events out to the clients watching a game mode.
type Hub struct {
	modes map[string]map[Client]bool
	mu    sync.RWMutex
	log   *zap.Logger
}

func New(log *zap.Logger) *Hub {
	return &Hub{
		modes: make(map[string]map[Client]bool),
		log:   log,
	}
}

// Subscribe adds a client to a game mode.
func (h *Hub) Subscribe(gameMode string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.modes[gameMode]; !ok {
		h.modes[gameMode] = make(map[Client]bool)
	}
	h.modes[gameMode][client] = true
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(gameMode string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.modes[gameMode]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client)
			if len(clients) == 0 {
				delete(h.modes, gameMode)
			}
		}
	}
}

// Watchers returns the number of clients subscribed to a game mode.
func (h *Hub) Watchers(gameMode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.modes[gameMode])
}

// Broadcast sends an event to every client of a game mode.
func (h *Hub) Broadcast(gameMode string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.modes[gameMode]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		h.log.Error("Failed to encode lobby event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	for client := range clients {
		// A full buffer means a slow watcher; it misses this event.
		select {
		case client <- messageBytes:
		default:
			h.log.Debug("Dropped lobby event for slow watcher", zap.String("game_mode", gameMode))
		}
	}
}

// Close disconnects every client. Streams draining a closed client end.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for gameMode, clients := range h.modes {
		for client := range clients {
			close(client)
		}
		delete(h.modes, gameMode)
	}
}
