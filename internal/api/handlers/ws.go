package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/posthub/posthub/internal/api/respond"
	"github.com/posthub/posthub/internal/realtime"
	"github.com/posthub/posthub/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler serves the live engagement feed. Clients authenticate with
// an access token passed as a query parameter because browsers cannot set
// headers on websocket upgrades.
type WebSocketHandler struct {
	hub    *realtime.Hub
	tokens *service.TokenService
}

func NewWebSocketHandler(hub *realtime.Hub, tokens *service.TokenService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tokens: tokens}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "Token query parameter required")
		return
	}

	userID, err := h.tokens.VerifyAccess(token)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR [ws] upgrade failed: %v", err)
		return
	}

	client := realtime.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
