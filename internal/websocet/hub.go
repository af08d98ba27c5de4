package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Envelope is the wire frame for every event on the bus.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Hub is the fan-out bus. Rooms are named multicast groups: each connection
// is auto-joined to its personal room (keyed by user id) at registration and
// may join chat rooms explicitly. Publishing to a room delivers to every
// currently joined live connection, at most once, fire and forget.
type Hub struct {
	Clients    map[*Client]bool
	Rooms      map[string]map[*Client]bool
	Unregister chan *Client
	Mutex      sync.RWMutex
	Logger     *slog.Logger

	connGauge prometheus.Gauge
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Rooms:      make(map[string]map[*Client]bool),
		Unregister: make(chan *Client),
		Logger:     logger,
	}
}

// SetConnectionsGauge wires the active-connections metric. Optional.
func (h *Hub) SetConnectionsGauge(gauge prometheus.Gauge) {
	h.connGauge = gauge
}

// Register adds the connection and auto-joins its personal room. It is
// synchronous: once it returns, the connection is visible to JoinRoom and
// EmitToRoom, so callers must register before starting the read pump.
func (h *Hub) Register(client *Client) {
	h.Mutex.Lock()
	h.Clients[client] = true
	if client.Rooms == nil {
		client.Rooms = make(map[string]bool)
	}
	h.joinRoomLocked(client, client.UserID)
	h.Mutex.Unlock()

	if h.connGauge != nil {
		h.connGauge.Inc()
	}
	client.enqueue(mustMarshal(Envelope{Event: "connected"}))
	h.Logger.Info("client registered", "userID", client.UserID)
}

func (h *Hub) Run() {
	for client := range h.Unregister {
		h.Mutex.Lock()
		if _, ok := h.Clients[client]; ok {
			delete(h.Clients, client)
			for roomID := range client.Rooms {
				h.leaveRoomLocked(client, roomID)
			}
			client.closeSend()
			if h.connGauge != nil {
				h.connGauge.Dec()
			}
			h.Logger.Info("client unregistered", "userID", client.UserID)
		}
		h.Mutex.Unlock()
	}
}

func (h *Hub) joinRoomLocked(client *Client, roomID string) {
	if h.Rooms[roomID] == nil {
		h.Rooms[roomID] = make(map[*Client]bool)
	}
	h.Rooms[roomID][client] = true
	client.Rooms[roomID] = true
}

func (h *Hub) leaveRoomLocked(client *Client, roomID string) {
	if members, ok := h.Rooms[roomID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.Rooms, roomID)
		}
	}
	delete(client.Rooms, roomID)
}

// JoinRoom adds the connection to a room. Idempotent: joining twice still
// yields a single delivery per event.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	if roomID == "" {
		return
	}

	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if !h.Clients[client] {
		return
	}
	h.joinRoomLocked(client, roomID)
	h.Logger.Info("client joined room", "userID", client.UserID, "roomID", roomID)
}

// EmitToRoom multicasts an event to the room's live connections. Connections
// not currently joined silently miss the event; an empty room is a no-op.
// Slow consumers are dropped rather than blocking the publish.
func (h *Hub) EmitToRoom(roomID, event string, payload any) {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		h.Logger.Error("failed to marshal event", "event", event, "error", err)
		return
	}

	h.Mutex.RLock()
	members := h.Rooms[roomID]
	var slow []*Client
	for client := range members {
		if !client.enqueue(data) {
			slow = append(slow, client)
		}
	}
	h.Mutex.RUnlock()

	for _, client := range slow {
		h.Logger.Warn("client channel full, dropping connection", "userID", client.UserID)
		go func(c *Client) { h.Unregister <- c }(client)
	}

	h.Logger.Debug("event emitted", "roomID", roomID, "event", event, "receivers", len(members))
}

func mustMarshal(envelope Envelope) []byte {
	data, _ := json.Marshal(envelope)
	return data
}
