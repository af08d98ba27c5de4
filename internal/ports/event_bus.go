package ports

// Event names published on the fan-out bus. Payloads are fully joined chat or
// message views, never bare ids.
const (
	EventConnected        = "connected"
	EventSocketError      = "socketError"
	EventJoinChat         = "join-chat"
	EventNewChat          = "new-chat"
	EventChatUpdated      = "chat-updated"
	EventLeftChat         = "left-chat"
	EventRemovedFromChat  = "removed-from-chat"
	EventMessagesReceived = "messages-received"
	EventMessagesDeleted  = "messages-deleted"
)

// IEventBus multicasts an event to every live connection currently joined to
// a room. Personal rooms are keyed by user id, chat rooms by chat id.
// Delivery is best-effort, at-most-once; publishing to an empty room is a
// silent no-op.
type IEventBus interface {
	EmitToRoom(roomID, event string, payload any)
}
