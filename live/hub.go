// Package live pushes leaderboard updates to WebSocket clients. Clients
// subscribe to a group room; whenever a game is recorded for that group the
// refreshed leaderboard is broadcast to the room.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is the envelope sent to subscribed clients.
type Message struct {
	Type    string      `json:"type"` // e.g. "LEADERBOARD_UPDATED"
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

const MessageTypeLeaderboardUpdated = "LEADERBOARD_UPDATED"

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Info("live client registered",
				slog.String("room", client.room),
				slog.Int("room_clients", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, exists := clients[client]; exists {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
					h.logger.Info("live client unregistered", slog.String("room", client.room))
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom sends a message to every client subscribed to the room.
// Clients whose send buffer is full are skipped rather than blocked on.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	envelope := Message{
		Type:    MessageTypeLeaderboardUpdated,
		Payload: message,
		RoomID:  roomID,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("failed to encode live message", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		select {
		case client.send <- data:
		default:
		}
	}
}
