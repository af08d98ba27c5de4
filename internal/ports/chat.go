package ports

import (
	"context"

	"github.com/arshitcc/Ping-Park/internal/models"
)

// IChatRepository persists chat documents. Every mutation on an existing chat
// is a guarded conditional update: the guard (admin, group flag, membership)
// and the write happen in one statement, and a zero matched count means the
// guard did not hold at write time.
type IChatRepository interface {
	CreateChat(ctx context.Context, chat *models.Chat) (string, error)
	GetChatByID(ctx context.Context, chatID string) (*models.Chat, error)
	FindDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error)

	AddParticipants(ctx context.Context, chatID, adminID string, newIDs []string) (int64, error)
	RemoveParticipants(ctx context.Context, chatID, adminID string, removeIDs []string) (int64, error)
	LeaveChat(ctx context.Context, chatID, userID string) (int64, error)
	RenameChat(ctx context.Context, chatID, adminID, chatName string) (int64, error)
	UpdateAvatar(ctx context.Context, chatID, adminID string, avatar models.Asset) (*models.Asset, error)
	SetLatestMessage(ctx context.Context, chatID, requesterID, messageID string) (int64, error)
	DeleteChat(ctx context.Context, chatID string) error

	GetChatView(ctx context.Context, chatID string) (*models.ChatView, error)
	GetChatViewsForUser(ctx context.Context, userID string) ([]models.ChatView, error)
}

type IMessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) (string, error)
	GetMessagesByChatID(ctx context.Context, chatID string) ([]models.Message, error)
	GetMessageViewsByIDs(ctx context.Context, chatID string, messageIDs []string) ([]models.MessageView, error)
	GetMessagesWithSender(ctx context.Context, chatID string, limit int) ([]models.MessageView, error)
	FindOwnMessages(ctx context.Context, chatID, senderID string, messageIDs []string) ([]models.Message, error)

	// DeleteMessages removes the given messages from the chat. If the chat's
	// latest-message pointer sits in the deleted set it is rewritten to the
	// newest surviving message (or cleared), inside the same transaction as
	// the deletion. The returned flag reports whether the pointer moved.
	DeleteMessages(ctx context.Context, chatID string, messageIDs []string) (bool, error)
}
