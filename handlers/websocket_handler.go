package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tsumo-app/tsumo-server/live"
	"github.com/tsumo-app/tsumo-server/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the app's origins before exposing publicly.
		return true
	},
}

type WebSocketHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
	}
}

// ServeGroupWs subscribes the caller to live leaderboard updates for one
// group. Clients connect to /ws/groups/{groupID}.
func (h *WebSocketHandler) ServeGroupWs(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		http.Error(w, "Missing groupID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection",
			slog.String("group_id", groupID),
			slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, services.GroupRoomID(groupID))
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
