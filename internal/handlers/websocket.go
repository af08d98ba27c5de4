package handlers

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/arshitcc/Ping-Park/internal/ports"
	"github.com/arshitcc/Ping-Park/internal/services"
	websocket "github.com/arshitcc/Ping-Park/internal/websocet"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub    *websocket.Hub
	auth   *services.AuthService
	logger *slog.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, auth *services.AuthService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, auth: auth, logger: logger}
}

// Handle upgrades the request and registers the connection with the hub.
// Credentials come from the accessToken cookie, the Authorization header,
// or a token query parameter for clients that cannot set headers.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	conn, err := websocket.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	token := socketToken(c)
	userID, err := h.auth.ValidateToken(c.Request.Context(), token)
	if err != nil {
		h.logger.Warn("socket auth failed", "error", err)
		payload, _ := json.Marshal(websocket.Envelope{
			Event:   ports.EventSocketError,
			Payload: "Token is invalid, please try again",
		})
		_ = conn.WriteMessage(gws.TextMessage, payload)
		_ = conn.Close()
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	// Registration completes before the read pump starts, so a join frame
	// sent right after the handshake always finds the connection.
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("socket connected", "userID", userID)
}

func socketToken(c *gin.Context) string {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
