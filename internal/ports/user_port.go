package ports

import (
	"context"

	"github.com/arshitcc/Ping-Park/internal/models"
)

type IUserRepository interface {
	IUserRepositoryReader
	IUserRepositoryWriter
}

type IUserRepositoryReader interface {
	GetUserByName(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error)

	// ListUsers returns every user except the excluded one, for picking chat
	// participants.
	ListUsers(ctx context.Context, excludeUserID string) ([]models.User, error)
}

type IUserRepositoryWriter interface {
	CreateUser(ctx context.Context, username, passwordHash, email, verifyToken string) (string, error)
	MarkUserAsVerified(ctx context.Context, username string) error

	// UpdateUserAvatar swaps the user's profile photo and returns the one it
	// replaced. A nil asset with nil error means the user no longer exists.
	UpdateUserAvatar(ctx context.Context, userID string, avatar models.Asset) (*models.Asset, error)
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) (int64, error)
}
