package repositories

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"

	"github.com/arshitcc/Ping-Park/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

//go:embed migrations/004_create_messages_table_up.sql
var createMessagesTableQuery string

type MessageRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewMessageRepository(db *sql.DB, logger *slog.Logger) (*MessageRepository, error) {
	var repo = MessageRepository{db: db, logger: logger}
	if _, err := repo.db.Exec(createMessagesTableQuery); err != nil {
		return nil, err
	}
	return &repo, nil
}

const messageColumns = `m.id, m.chat_id, m.sender_id, m.content_kind, m.content_text,
	m.caption, m.file_public_id, m.file_url, m.file_name, m.file_resource_type,
	m.created_at, m.updated_at`

const messageViewColumns = messageColumns + `, u.id, u.username, u.email, u.avatar_url`

func scanMessage(row interface{ Scan(...any) error }) (*models.Message, error) {
	var msg models.Message
	var kind string
	var text, caption string
	var file models.Asset

	err := row.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &kind, &text,
		&caption, &file.PublicID, &file.URL, &file.OriginalFilename, &file.ResourceType,
		&msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return nil, err
	}

	switch models.ContentKind(kind) {
	case models.ContentFile:
		msg.Content = models.FileMessageContent(caption, file)
	default:
		msg.Content = models.TextContent(text)
	}
	return &msg, nil
}

func scanMessageView(row interface{ Scan(...any) error }) (*models.MessageView, error) {
	var view models.MessageView
	var kind string
	var text, caption string
	var file models.Asset

	err := row.Scan(&view.ID, &view.ChatID, &view.SenderID, &kind, &text,
		&caption, &file.PublicID, &file.URL, &file.OriginalFilename, &file.ResourceType,
		&view.CreatedAt, &view.UpdatedAt,
		&view.Sender.ID, &view.Sender.Name, &view.Sender.Email, &view.Sender.AvatarURL)
	if err != nil {
		return nil, err
	}

	switch models.ContentKind(kind) {
	case models.ContentFile:
		view.Content = models.FileMessageContent(caption, file)
	default:
		view.Content = models.TextContent(text)
	}
	return &view, nil
}

func (r *MessageRepository) CreateMessage(ctx context.Context, message *models.Message) (string, error) {
	if err := message.Content.Validate(); err != nil {
		return "", err
	}

	messageID := uuid.New().String()

	var text, caption string
	var file models.Asset
	switch message.Content.Kind {
	case models.ContentText:
		text = message.Content.Text
	case models.ContentFile:
		caption = message.Content.File.Caption
		file = message.Content.File.File
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, sender_id, content_kind, content_text,
			caption, file_public_id, file_url, file_name, file_resource_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		messageID, message.ChatID, message.SenderID, string(message.Content.Kind), text,
		caption, file.PublicID, file.URL, file.OriginalFilename, file.ResourceType)
	if err != nil {
		return "", err
	}
	return messageID, nil
}

func (r *MessageRepository) queryMessages(ctx context.Context, query string, args ...any) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepository) GetMessagesByChatID(ctx context.Context, chatID string) ([]models.Message, error) {
	return r.queryMessages(ctx,
		"SELECT "+messageColumns+" FROM messages m WHERE m.chat_id = $1 ORDER BY m.created_at DESC", chatID)
}

// FindOwnMessages returns the subset of messageIDs that belong to chatID and
// were sent by senderID. Non-matching ids are simply absent from the result.
func (r *MessageRepository) FindOwnMessages(ctx context.Context, chatID, senderID string, messageIDs []string) ([]models.Message, error) {
	return r.queryMessages(ctx,
		`SELECT `+messageColumns+` FROM messages m
		 WHERE m.chat_id = $1 AND m.sender_id = $2 AND m.id = ANY($3)
		 ORDER BY m.created_at DESC`,
		chatID, senderID, pq.Array(messageIDs))
}

func (r *MessageRepository) queryMessageViews(ctx context.Context, query string, args ...any) ([]models.MessageView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.MessageView
	for rows.Next() {
		view, err := scanMessageView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, rows.Err()
}

func (r *MessageRepository) GetMessageViewsByIDs(ctx context.Context, chatID string, messageIDs []string) ([]models.MessageView, error) {
	return r.queryMessageViews(ctx,
		`SELECT `+messageViewColumns+` FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 WHERE m.chat_id = $1 AND m.id = ANY($2)
		 ORDER BY m.created_at DESC`,
		chatID, pq.Array(messageIDs))
}

func (r *MessageRepository) GetMessagesWithSender(ctx context.Context, chatID string, limit int) ([]models.MessageView, error) {
	return r.queryMessageViews(ctx,
		`SELECT `+messageViewColumns+` FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 WHERE m.chat_id = $1
		 ORDER BY m.created_at DESC
		 LIMIT $2`,
		chatID, limit)
}

// DeleteMessages removes the given messages. The chat row is locked for the
// duration of the transaction; when the chat's latest-message pointer sits in
// the deleted set it is rewritten to the newest surviving message before the
// lock is released, so concurrent deletions can never leave it dangling. The
// returned flag reports whether the pointer was rewritten.
func (r *MessageRepository) DeleteMessages(ctx context.Context, chatID string, messageIDs []string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var pointer sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT latest_message_id FROM chats WHERE id = $1 FOR UPDATE",
		chatID).Scan(&pointer)
	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM messages WHERE chat_id = $1 AND id = ANY($2)",
		chatID, pq.Array(messageIDs))
	if err != nil {
		return false, err
	}

	recompute := false
	if pointer.Valid {
		for _, id := range messageIDs {
			if id == pointer.String {
				recompute = true
				break
			}
		}
	}

	if recompute {
		var latest sql.NullString
		err = tx.QueryRowContext(ctx,
			"SELECT id FROM messages WHERE chat_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1",
			chatID).Scan(&latest)
		if err != nil && err != sql.ErrNoRows {
			return false, err
		}

		var latestValue any
		if latest.Valid {
			latestValue = latest.String
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE chats SET latest_message_id = $2, updated_at = now() WHERE id = $1",
			chatID, latestValue)
		if err != nil {
			return false, err
		}
	}

	return recompute, tx.Commit()
}
