package repositories

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"

	"github.com/arshitcc/Ping-Park/internal/models"

	"github.com/google/uuid"
)

//go:embed migrations/001_create_users_table_up.sql
var createUsersTableQuery string

type UserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewUserRepository(db *sql.DB, logger *slog.Logger) (*UserRepository, error) {
	var repo = UserRepository{db: db, logger: logger}
	if _, err := repo.db.Exec(createUsersTableQuery); err != nil {
		logger.Error(err.Error())
		return nil, err
	}
	return &repo, nil
}

const userColumns = "id, username, email, password_hash, avatar_public_id, avatar_url, is_verified, verify_token"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	var verifyToken sql.NullString

	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password,
		&user.AvatarPublicID, &user.AvatarURL, &user.IsVerified, &verifyToken)
	if err != nil {
		return nil, err
	}

	user.VerifyToken = verifyToken.String
	return &user, nil
}

func (r *UserRepository) getUserWhere(ctx context.Context, where string, arg any) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByName(ctx context.Context, username string) (*models.User, error) {
	return r.getUserWhere(ctx, "username = $1", username)
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUserWhere(ctx, "id = $1", id)
}

func (r *UserRepository) GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	return r.getUserWhere(ctx, "verify_token = $1", token)
}

func (r *UserRepository) CreateUser(ctx context.Context, username, passwordHash, email, verifyToken string) (string, error) {
	userID := uuid.New().String()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash, verify_token) VALUES ($1, $2, $3, $4, $5)",
		userID, username, email, passwordHash, verifyToken)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (r *UserRepository) MarkUserAsVerified(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET is_verified = TRUE, verify_token = NULL WHERE username = $1", username)
	return err
}

func (r *UserRepository) ListUsers(ctx context.Context, excludeUserID string) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id <> $1 ORDER BY username", excludeUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateUserAvatar(ctx context.Context, userID string, avatar models.Asset) (*models.Asset, error) {
	query := `
		WITH prev AS (
			SELECT avatar_public_id, avatar_url FROM users WHERE id = $1
		)
		UPDATE users SET avatar_public_id = $2, avatar_url = $3
		WHERE id = $1
		RETURNING (SELECT avatar_public_id FROM prev), (SELECT avatar_url FROM prev)`

	var old models.Asset
	err := r.db.QueryRowContext(ctx, query, userID, avatar.PublicID, avatar.URL).
		Scan(&old.PublicID, &old.URL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &old, nil
}

func (r *UserRepository) UpdateUserPassword(ctx context.Context, userID, passwordHash string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $2 WHERE id = $1", userID, passwordHash)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
