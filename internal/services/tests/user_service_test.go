package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/arshitcc/Ping-Park/app/tests"
	"github.com/arshitcc/Ping-Park/internal/models"
	"github.com/arshitcc/Ping-Park/internal/ports"
	"github.com/arshitcc/Ping-Park/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type userServiceFixture struct {
	userRepo *tests.MockRepository
	assets   *tests.MockAssetStore
	hasher   *tests.MockHasher
	service  *services.UserService
}

func newUserServiceFixture() *userServiceFixture {
	f := &userServiceFixture{
		userRepo: new(tests.MockRepository),
		assets:   new(tests.MockAssetStore),
		hasher:   new(tests.MockHasher),
	}
	f.service = services.NewUserService(f.userRepo, f.assets, f.hasher, slog.Default())
	return f
}

func TestUserService_GetUsers_ListsProfilesWithoutRequester(t *testing.T) {
	ctx := context.Background()
	f := newUserServiceFixture()

	f.userRepo.On("ListUsers", ctx, userAlice).Return([]models.User{
		{ID: userBob, Username: "bob", Email: "bob@example.com", AvatarURL: "https://cdn/bob.jpg"},
		{ID: userCarol, Username: "carol", Email: "carol@example.com"},
	}, nil)

	profiles, err := f.service.GetUsers(ctx, userAlice)

	assert.NoError(t, err)
	assert.Equal(t, []models.UserProfile{
		{ID: userBob, Name: "bob", Email: "bob@example.com", AvatarURL: "https://cdn/bob.jpg"},
		{ID: userCarol, Name: "carol", Email: "carol@example.com"},
	}, profiles)
}

func TestUserService_ChangeAvatar_SwapThenDeletePrior(t *testing.T) {
	ctx := context.Background()
	f := newUserServiceFixture()

	uploaded := &models.Asset{PublicID: "avatar-new", URL: "https://cdn/avatar-new.jpg", ResourceType: "image"}
	f.assets.On("Upload", ctx, mock.MatchedBy(func(u ports.Upload) bool {
		return u.Filename == "me.jpg"
	})).Return(uploaded, nil)

	previous := &models.Asset{PublicID: "avatar-old", URL: "https://cdn/avatar-old.jpg"}
	f.userRepo.On("UpdateUserAvatar", ctx, userAlice, *uploaded).Return(previous, nil)
	f.assets.On("Delete", ctx, "avatar-old", "image").Return(nil)

	f.userRepo.On("GetUserByID", ctx, userAlice).Return(&models.User{
		ID:             userAlice,
		Username:       "alice",
		Email:          "alice@example.com",
		AvatarPublicID: "avatar-new",
		AvatarURL:      "https://cdn/avatar-new.jpg",
	}, nil)

	profile, err := f.service.ChangeAvatar(ctx, userAlice, ports.Upload{Filename: "me.jpg"})

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn/avatar-new.jpg", profile.AvatarURL)
	f.assets.AssertCalled(t, "Delete", ctx, "avatar-old", "image")
}

func TestUserService_ChangeAvatar_MissingUserCleansUpload(t *testing.T) {
	ctx := context.Background()
	f := newUserServiceFixture()

	uploaded := &models.Asset{PublicID: "avatar-new", URL: "https://cdn/avatar-new.jpg", ResourceType: "image"}
	f.assets.On("Upload", ctx, mock.Anything).Return(uploaded, nil)
	f.userRepo.On("UpdateUserAvatar", ctx, userAlice, *uploaded).Return(nil, nil)
	f.assets.On("Delete", ctx, "avatar-new", "image").Return(nil)

	_, err := f.service.ChangeAvatar(ctx, userAlice, ports.Upload{Filename: "me.jpg"})

	assert.Equal(t, services.ErrUserNotFound, err)
	f.assets.AssertCalled(t, "Delete", ctx, "avatar-new", "image")
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	aliceWithHash := func() *models.User {
		return &models.User{ID: userAlice, Username: "alice", Password: "stored-hash"}
	}

	t.Run("Rejects empty fields", func(t *testing.T) {
		f := newUserServiceFixture()

		err := f.service.ChangePassword(ctx, userAlice, "  ", "next")

		assert.Equal(t, services.KindValidation, services.KindOf(err))
		f.userRepo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})

	t.Run("Rejects wrong current password", func(t *testing.T) {
		f := newUserServiceFixture()

		f.userRepo.On("GetUserByID", ctx, userAlice).Return(aliceWithHash(), nil)
		f.hasher.On("CompareHashAndPassword", []byte("stored-hash"), []byte("wrong")).Return(assert.AnError)

		err := f.service.ChangePassword(ctx, userAlice, "wrong", "next")

		assert.Equal(t, services.KindAuthorization, services.KindOf(err))
		f.userRepo.AssertNotCalled(t, "UpdateUserPassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Rehashes and stores the new password", func(t *testing.T) {
		f := newUserServiceFixture()

		f.userRepo.On("GetUserByID", ctx, userAlice).Return(aliceWithHash(), nil)
		f.hasher.On("CompareHashAndPassword", []byte("stored-hash"), []byte("current")).Return(nil)
		f.hasher.On("DefaultCost").Return(10)
		f.hasher.On("GenerateFromPassword", []byte("next"), 10).Return([]byte("next-hash"), nil)
		f.userRepo.On("UpdateUserPassword", ctx, userAlice, "next-hash").Return(1, nil)

		err := f.service.ChangePassword(ctx, userAlice, "current", "next")

		assert.NoError(t, err)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("Missing user", func(t *testing.T) {
		f := newUserServiceFixture()

		f.userRepo.On("GetUserByID", ctx, userAlice).Return(nil, nil)

		err := f.service.ChangePassword(ctx, userAlice, "current", "next")

		assert.Equal(t, services.ErrUserNotFound, err)
	})
}
