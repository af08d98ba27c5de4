package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserID = "11111111-1111-4111-8111-111111111111"
	testChatID = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
)

func newTestHub() *Hub {
	hub := NewHub(slog.Default())
	go hub.Run()
	return hub
}

// receive pops one frame off the client's send queue or fails the test.
func receive(t *testing.T, client *Client) Envelope {
	t.Helper()
	select {
	case data, ok := <-client.Send:
		require.True(t, ok, "send channel closed")
		var envelope Envelope
		require.NoError(t, json.Unmarshal(data, &envelope))
		return envelope
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return Envelope{}
	}
}

func assertNoFrame(t *testing.T, client *Client) {
	t.Helper()
	select {
	case data := <-client.Send:
		t.Fatalf("unexpected frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func register(t *testing.T, hub *Hub, userID string) *Client {
	t.Helper()
	client := NewClient(hub, nil, userID)
	hub.Register(client)

	envelope := receive(t, client)
	require.Equal(t, "connected", envelope.Event)
	return client
}

func TestHub_RegisterAutoJoinsPersonalRoom(t *testing.T) {
	hub := newTestHub()
	client := register(t, hub, testUserID)

	hub.EmitToRoom(testUserID, "new-chat", map[string]string{"chatId": testChatID})

	envelope := receive(t, client)
	assert.Equal(t, "new-chat", envelope.Event)
}

func TestHub_JoinRoomIsIdempotent(t *testing.T) {
	hub := newTestHub()
	client := register(t, hub, testUserID)

	hub.JoinRoom(client, testChatID)
	hub.JoinRoom(client, testChatID)

	hub.EmitToRoom(testChatID, "messages-received", nil)

	envelope := receive(t, client)
	assert.Equal(t, "messages-received", envelope.Event)
	assertNoFrame(t, client)
}

func TestHub_EmitToEmptyRoomIsNoOp(t *testing.T) {
	hub := newTestHub()
	client := register(t, hub, testUserID)

	hub.EmitToRoom(testChatID, "messages-received", nil)

	assertNoFrame(t, client)
}

// Registration is synchronous, so a join issued straight after it must land
// even before the connected frame has been consumed.
func TestHub_JoinRightAfterRegisterLands(t *testing.T) {
	hub := newTestHub()
	client := NewClient(hub, nil, testUserID)
	hub.Register(client)
	hub.JoinRoom(client, testChatID)

	hub.EmitToRoom(testChatID, "messages-received", nil)

	envelope := receive(t, client)
	require.Equal(t, "connected", envelope.Event)
	envelope = receive(t, client)
	assert.Equal(t, "messages-received", envelope.Event)
}

func TestHub_JoinUnknownClientIsNoOp(t *testing.T) {
	hub := newTestHub()
	stranger := NewClient(hub, nil, testUserID)

	hub.JoinRoom(stranger, testChatID)

	hub.Mutex.RLock()
	defer hub.Mutex.RUnlock()
	assert.Empty(t, hub.Rooms[testChatID])
}

func TestHub_NonMembersMissRoomEvents(t *testing.T) {
	hub := newTestHub()
	member := register(t, hub, testUserID)
	outsider := register(t, hub, "22222222-2222-4222-8222-222222222222")

	hub.JoinRoom(member, testChatID)
	hub.EmitToRoom(testChatID, "messages-received", nil)

	envelope := receive(t, member)
	assert.Equal(t, "messages-received", envelope.Event)
	assertNoFrame(t, outsider)
}

func TestHub_UnregisterLeavesAllRooms(t *testing.T) {
	hub := newTestHub()
	client := register(t, hub, testUserID)
	hub.JoinRoom(client, testChatID)

	hub.Unregister <- client

	assert.Eventually(t, func() bool {
		hub.Mutex.RLock()
		defer hub.Mutex.RUnlock()
		return !hub.Clients[client] && len(hub.Rooms[testChatID]) == 0 && len(hub.Rooms[testUserID]) == 0
	}, time.Second, 5*time.Millisecond)

	// The send channel is closed so the write pump can exit.
	_, ok := <-client.Send
	assert.False(t, ok)
}

func TestHub_SlowConsumerIsDropped(t *testing.T) {
	hub := newTestHub()
	client := register(t, hub, testUserID)

	for client.enqueue([]byte("x")) {
	}

	hub.EmitToRoom(testUserID, "new-chat", nil)

	assert.Eventually(t, func() bool {
		hub.Mutex.RLock()
		defer hub.Mutex.RUnlock()
		return !hub.Clients[client]
	}, time.Second, 5*time.Millisecond)
}
