package repositories

import (
	"context"
	"database/sql"

	"github.com/arshitcc/Ping-Park/internal/models"
)

// Read-model joins. Each call reflects the database state at call time so the
// services can re-run a join right after any mutation before publishing.

func (r *ChatRepository) loadParticipants(ctx context.Context, chatID string) ([]models.UserProfile, error) {
	query := `
		SELECT u.id, u.username, u.email, u.avatar_url
		FROM users u
		JOIN chat_participants cp ON cp.user_id = u.id
		WHERE cp.chat_id = $1
		ORDER BY cp.joined_at`

	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.UserProfile
	for rows.Next() {
		var p models.UserProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.AvatarURL); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *ChatRepository) loadLatestMessage(ctx context.Context, messageID string) (*models.MessageView, error) {
	query := `
		SELECT ` + messageViewColumns + `
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = $1`

	view, err := scanMessageView(r.db.QueryRowContext(ctx, query, messageID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return view, nil
}

func (r *ChatRepository) buildChatView(ctx context.Context, chat *models.Chat) (*models.ChatView, error) {
	view := models.ChatView{Chat: *chat}

	var err error
	view.Participants, err = r.loadParticipants(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	if chat.LatestMessageID != "" {
		view.LatestMessage, err = r.loadLatestMessage(ctx, chat.LatestMessageID)
		if err != nil {
			return nil, err
		}
	}

	return &view, nil
}

// GetChatView returns the chat merged with participant profiles and the
// joined latest message, or nil when the chat does not exist.
func (r *ChatRepository) GetChatView(ctx context.Context, chatID string) (*models.ChatView, error) {
	chat, err := r.GetChatByID(ctx, chatID)
	if err != nil || chat == nil {
		return nil, err
	}
	return r.buildChatView(ctx, chat)
}

// GetChatViewsForUser lists every chat the user belongs to, most recently
// updated first, each fully joined.
func (r *ChatRepository) GetChatViewsForUser(ctx context.Context, userID string) ([]models.ChatView, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM chats c
		JOIN chat_participants cp ON cp.chat_id = c.id
		WHERE cp.user_id = $1
		ORDER BY c.updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		chat, err := r.scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	views := make([]models.ChatView, 0, len(chats))
	for i := range chats {
		chats[i].ParticipantIDs, err = r.loadParticipantIDs(ctx, chats[i].ID)
		if err != nil {
			return nil, err
		}

		view, err := r.buildChatView(ctx, &chats[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	return views, nil
}
