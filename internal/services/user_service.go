package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arshitcc/Ping-Park/internal/models"
	"github.com/arshitcc/Ping-Park/internal/ports"
)

// UserService covers the account surface beyond authentication: the user
// directory for picking chat participants, profile photo swaps and password
// changes.
type UserService struct {
	userRepo ports.IUserRepository
	assets   ports.IAssetStore
	hasher   IHasher
	logger   *slog.Logger
}

func NewUserService(userRepo ports.IUserRepository, assets ports.IAssetStore,
	hasher IHasher, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		assets:   assets,
		hasher:   hasher,
		logger:   logger,
	}
}

// GetUsers lists everyone except the requester, as public profiles.
func (s *UserService) GetUsers(ctx context.Context, requesterID string) ([]models.UserProfile, error) {
	users, err := s.userRepo.ListUsers(ctx, requesterID)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, NewDependencyError("failed to list users", err)
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Profile())
	}
	return profiles, nil
}

// ChangeAvatar uploads the new photo, swaps it in and only then deletes the
// replaced one, so the user never points at a missing asset.
func (s *UserService) ChangeAvatar(ctx context.Context, requesterID string, upload ports.Upload) (*models.UserProfile, error) {
	uploaded, err := s.assets.Upload(ctx, upload)
	if err != nil {
		s.logger.Error("failed to upload avatar", "userID", requesterID, "error", err)
		return nil, NewDependencyError("failed to upload avatar", err)
	}

	previous, err := s.userRepo.UpdateUserAvatar(ctx, requesterID, *uploaded)
	if err != nil {
		s.deleteAvatar(ctx, *uploaded)
		s.logger.Error("failed to update avatar", "userID", requesterID, "error", err)
		return nil, NewDependencyError("failed to update avatar", err)
	}
	if previous == nil {
		s.deleteAvatar(ctx, *uploaded)
		return nil, ErrUserNotFound
	}

	s.deleteAvatar(ctx, *previous)

	user, err := s.userRepo.GetUserByID(ctx, requesterID)
	if err != nil || user == nil {
		s.logger.Error("failed to reload user", "userID", requesterID, "error", err)
		return nil, NewDependencyError("failed to load user", err)
	}

	s.logger.Info("avatar changed", "userID", requesterID, "publicId", uploaded.PublicID)
	profile := user.Profile()
	return &profile, nil
}

// ChangePassword verifies the current password before rehashing the new one.
func (s *UserService) ChangePassword(ctx context.Context, requesterID, oldPassword, newPassword string) error {
	if strings.TrimSpace(oldPassword) == "" || strings.TrimSpace(newPassword) == "" {
		return NewValidationError("all fields are required")
	}

	user, err := s.userRepo.GetUserByID(ctx, requesterID)
	if err != nil {
		s.logger.Error("failed to load user", "userID", requesterID, "error", err)
		return NewDependencyError("failed to load user", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.hasher.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		s.logger.Warn("password change with wrong password", "userID", requesterID)
		return NewAuthorizationError("wrong password")
	}

	hash, err := s.hasher.GenerateFromPassword([]byte(newPassword), s.hasher.DefaultCost())
	if err != nil {
		s.logger.Error("failed to hash password", "userID", requesterID, "error", err)
		return NewDependencyError("failed to hash password", err)
	}

	updated, err := s.userRepo.UpdateUserPassword(ctx, requesterID, string(hash))
	if err != nil {
		s.logger.Error("failed to update password", "userID", requesterID, "error", err)
		return NewDependencyError("failed to update password", err)
	}
	if updated == 0 {
		return ErrUserNotFound
	}

	s.logger.Info("password changed", "userID", requesterID)
	return nil
}

// deleteAvatar is best-effort cleanup, logged and swallowed.
func (s *UserService) deleteAvatar(ctx context.Context, asset models.Asset) {
	if asset.IsZero() {
		return
	}

	resourceType := asset.ResourceType
	if resourceType == "" {
		resourceType = "image"
	}
	if err := s.assets.Delete(ctx, asset.PublicID, resourceType); err != nil {
		s.logger.Warn("failed to delete avatar", "publicId", asset.PublicID, "error", err)
	}
}
