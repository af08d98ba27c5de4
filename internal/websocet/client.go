package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one live connection. Rooms is guarded by the hub mutex.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
	Rooms  map[string]bool

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
		Rooms:  make(map[string]bool),
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// enqueue offers data to the connection without blocking. A false return
// marks the consumer as too slow to keep.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

type clientRequest struct {
	Event  string `json:"event"`
	ChatID string `json:"chatId"`
}

// ReadPump handles inbound frames. The only request a client may make is
// joining a chat room; chat-membership enforcement happens when events are
// published, not at join time.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.Logger.Error("websocket error", "error", err, "userID", c.UserID)
			}
			break
		}

		var req clientRequest
		if err := json.Unmarshal(message, &req); err != nil {
			c.Hub.Logger.Warn("failed to parse client frame", "error", err, "userID", c.UserID)
			continue
		}

		switch req.Event {
		case "join-chat":
			c.Hub.JoinRoom(c, req.ChatID)
		default:
			c.Hub.Logger.Debug("ignoring client frame", "event", req.Event, "userID", c.UserID)
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		c.Conn.Close()
	}()

	for message := range c.Send {
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}

	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
