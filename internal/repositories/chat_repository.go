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

//go:embed migrations/002_create_chats_table_up.sql
var createChatsTableQuery string

//go:embed migrations/003_create_chat_participants_up.sql
var createChatParticipantsQuery string

type ChatRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewChatRepository(db *sql.DB, logger *slog.Logger) (*ChatRepository, error) {
	var repo = ChatRepository{db: db, logger: logger}
	if _, err := repo.db.Exec(createChatsTableQuery); err != nil {
		return nil, err
	}
	if _, err := repo.db.Exec(createChatParticipantsQuery); err != nil {
		return nil, err
	}
	return &repo, nil
}

func (r *ChatRepository) CreateChat(ctx context.Context, chat *models.Chat) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	chatID := uuid.New().String()

	var admin any
	if chat.Admin != "" {
		admin = chat.Admin
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chats (id, chat_name, is_group_chat, admin_id, avatar_public_id, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		chatID, chat.ChatName, chat.IsGroupChat, admin, chat.Avatar.PublicID, chat.Avatar.URL)
	if err != nil {
		return "", err
	}

	for _, member := range chat.ParticipantIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)",
			chatID, member)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return chatID, nil
}

const chatColumns = `c.id, c.chat_name, c.is_group_chat, c.admin_id, c.avatar_public_id,
	c.avatar_url, c.latest_message_id, c.created_at, c.updated_at`

func (r *ChatRepository) scanChat(row interface{ Scan(...any) error }) (*models.Chat, error) {
	var chat models.Chat
	var admin, latest sql.NullString

	err := row.Scan(&chat.ID, &chat.ChatName, &chat.IsGroupChat, &admin,
		&chat.Avatar.PublicID, &chat.Avatar.URL, &latest, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return nil, err
	}

	chat.Admin = admin.String
	chat.LatestMessageID = latest.String
	return &chat, nil
}

func (r *ChatRepository) loadParticipantIDs(ctx context.Context, chatID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM chat_participants WHERE chat_id = $1 ORDER BY joined_at", chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		members = append(members, userID)
	}
	return members, rows.Err()
}

func (r *ChatRepository) GetChatByID(ctx context.Context, chatID string) (*models.Chat, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+chatColumns+" FROM chats c WHERE c.id = $1", chatID)
	chat, err := r.scanChat(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	chat.ParticipantIDs, err = r.loadParticipantIDs(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// FindDirectChat looks up the direct chat whose membership set is exactly
// {userA, userB}. Match is by membership equality, not chat identity.
func (r *ChatRepository) FindDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM chats c
		WHERE c.is_group_chat = FALSE
		  AND EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = c.id AND cp.user_id = $1)
		  AND EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = c.id AND cp.user_id = $2)
		  AND (SELECT COUNT(*) FROM chat_participants cp WHERE cp.chat_id = c.id) = 2
		LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, userA, userB)
	chat, err := r.scanChat(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	chat.ParticipantIDs, err = r.loadParticipantIDs(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// AddParticipants union-adds newIDs in a single guarded statement. The guard
// requires a group chat administered by adminID who is still a participant,
// with none of newIDs already present. Returns the number of rows inserted:
// zero means the guard did not hold.
func (r *ChatRepository) AddParticipants(ctx context.Context, chatID, adminID string, newIDs []string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		WITH target AS (
			SELECT c.id FROM chats c
			WHERE c.id = $1 AND c.is_group_chat AND c.admin_id = $2
			  AND EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = c.id AND cp.user_id = $2)
			  AND NOT EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = c.id AND cp.user_id = ANY($3))
			FOR UPDATE
		)
		INSERT INTO chat_participants (chat_id, user_id)
		SELECT target.id, u FROM target, unnest($3::uuid[]) AS u`

	res, err := tx.ExecContext(ctx, query, chatID, adminID, pq.Array(newIDs))
	if err != nil {
		return 0, err
	}

	added, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if added == 0 {
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx, "UPDATE chats SET updated_at = now() WHERE id = $1", chatID); err != nil {
		return 0, err
	}

	return added, tx.Commit()
}

// RemoveParticipants removes removeIDs, guarded on adminID administering the
// group and every id in removeIDs (plus the admin) being a current member.
func (r *ChatRepository) RemoveParticipants(ctx context.Context, chatID, adminID string, removeIDs []string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		WITH target AS (
			SELECT c.id FROM chats c
			WHERE c.id = $1 AND c.is_group_chat AND c.admin_id = $2
			  AND EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = c.id AND cp.user_id = $2)
			  AND NOT EXISTS (
				SELECT 1 FROM unnest($3::uuid[]) AS u
				WHERE NOT EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = c.id AND cp.user_id = u)
			  )
			FOR UPDATE
		)
		DELETE FROM chat_participants cp
		USING target
		WHERE cp.chat_id = target.id AND cp.user_id = ANY($3)`

	res, err := tx.ExecContext(ctx, query, chatID, adminID, pq.Array(removeIDs))
	if err != nil {
		return 0, err
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx, "UPDATE chats SET updated_at = now() WHERE id = $1", chatID); err != nil {
		return 0, err
	}

	return removed, tx.Commit()
}

// LeaveChat is self-removal from a group chat. The admin cannot leave, only
// delete the chat, which keeps the admin-is-participant invariant.
func (r *ChatRepository) LeaveChat(ctx context.Context, chatID, userID string) (int64, error) {
	query := `
		DELETE FROM chat_participants cp
		USING chats c
		WHERE cp.chat_id = $1 AND cp.user_id = $2
		  AND c.id = cp.chat_id AND c.is_group_chat AND c.admin_id <> cp.user_id`

	res, err := r.db.ExecContext(ctx, query, chatID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ChatRepository) RenameChat(ctx context.Context, chatID, adminID, chatName string) (int64, error) {
	query := `
		UPDATE chats SET chat_name = $3, updated_at = now()
		WHERE id = $1 AND is_group_chat AND admin_id = $2
		  AND EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = $1 AND cp.user_id = $2)`

	res, err := r.db.ExecContext(ctx, query, chatID, adminID, chatName)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateAvatar swaps the avatar reference and returns the replaced asset so
// the caller can delete it from the store after the swap has committed.
// A nil result means the guard did not match.
func (r *ChatRepository) UpdateAvatar(ctx context.Context, chatID, adminID string, avatar models.Asset) (*models.Asset, error) {
	query := `
		WITH prev AS (
			SELECT avatar_public_id, avatar_url FROM chats WHERE id = $1
		)
		UPDATE chats SET avatar_public_id = $3, avatar_url = $4, updated_at = now()
		WHERE id = $1 AND is_group_chat AND admin_id = $2
		  AND EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = $1 AND cp.user_id = $2)
		RETURNING (SELECT avatar_public_id FROM prev), (SELECT avatar_url FROM prev)`

	var old models.Asset
	err := r.db.QueryRowContext(ctx, query, chatID, adminID, avatar.PublicID, avatar.URL).
		Scan(&old.PublicID, &old.URL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &old, nil
}

// SetLatestMessage rewrites the latest-message pointer, guarded on the
// requester still being a participant. Last writer wins between concurrent
// sends to the same chat.
func (r *ChatRepository) SetLatestMessage(ctx context.Context, chatID, requesterID, messageID string) (int64, error) {
	query := `
		UPDATE chats SET latest_message_id = $3, updated_at = now()
		WHERE id = $1
		  AND EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = $1 AND cp.user_id = $2)`

	res, err := r.db.ExecContext(ctx, query, chatID, requesterID, messageID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteChat removes the chat document, its membership rows and all of its
// messages. Asset cleanup is the caller's concern.
func (r *ChatRepository) DeleteChat(ctx context.Context, chatID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = $1", chatID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chat_participants WHERE chat_id = $1", chatID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chats WHERE id = $1", chatID); err != nil {
		return err
	}

	return tx.Commit()
}
