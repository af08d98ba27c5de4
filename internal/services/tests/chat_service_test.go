package services_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/arshitcc/Ping-Park/app/tests"
	"github.com/arshitcc/Ping-Park/internal/models"
	"github.com/arshitcc/Ping-Park/internal/ports"
	"github.com/arshitcc/Ping-Park/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	userAlice = "11111111-1111-4111-8111-111111111111"
	userBob   = "22222222-2222-4222-8222-222222222222"
	userCarol = "33333333-3333-4333-8333-333333333333"
	chatID    = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	messageID = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
)

var defaultAvatar = models.Asset{
	PublicID:     "ping-park",
	URL:          "https://res.cloudinary.com/ping-park/image/upload/ping-park-group.png",
	ResourceType: "image",
}

type chatServiceFixture struct {
	chatRepo    *tests.MockChatRepository
	messageRepo *tests.MockMessageRepository
	userRepo    *tests.MockRepository
	assets      *tests.MockAssetStore
	bus         *tests.BusRecorder
	service     *services.ChatService
}

func newChatServiceFixture() *chatServiceFixture {
	f := &chatServiceFixture{
		chatRepo:    new(tests.MockChatRepository),
		messageRepo: new(tests.MockMessageRepository),
		userRepo:    new(tests.MockRepository),
		assets:      new(tests.MockAssetStore),
		bus:         new(tests.BusRecorder),
	}
	f.service = services.NewChatService(f.chatRepo, f.messageRepo, f.userRepo, f.assets, f.bus, defaultAvatar, slog.Default())
	return f
}

func groupChatView(participants ...string) *models.ChatView {
	return &models.ChatView{
		Chat: models.Chat{
			ID:             chatID,
			ChatName:       "Weekend Plans",
			IsGroupChat:    true,
			ParticipantIDs: participants,
			Admin:          userAlice,
			Avatar:         defaultAvatar,
		},
	}
}

func TestChatService_CreateChat_Validation(t *testing.T) {
	ctx := context.Background()

	ts := []struct {
		name  string
		input services.CreateChatInput
	}{
		{
			name:  "No participants",
			input: services.CreateChatInput{IsGroupChat: true, ChatName: "Weekend Plans"},
		},
		{
			name: "Creator listed as participant",
			input: services.CreateChatInput{
				IsGroupChat:    true,
				ChatName:       "Weekend Plans",
				ParticipantIDs: []string{userAlice, userBob},
			},
		},
		{
			name: "Malformed participant id",
			input: services.CreateChatInput{
				IsGroupChat:    true,
				ChatName:       "Weekend Plans",
				ParticipantIDs: []string{"not-a-uuid", userBob},
			},
		},
	}

	for _, tc := range ts {
		t.Run(tc.name, func(t *testing.T) {
			f := newChatServiceFixture()

			view, err := f.service.CreateChat(ctx, userAlice, tc.input)

			assert.Nil(t, view)
			assert.Equal(t, services.KindValidation, services.KindOf(err))
			f.chatRepo.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything)
		})
	}
}

func TestChatService_CreateChat_GroupRequiresNameAndThreeMembers(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing group name", func(t *testing.T) {
		f := newChatServiceFixture()
		f.userRepo.On("GetUserByID", ctx, mock.Anything).Return(&models.User{}, nil)

		_, err := f.service.CreateChat(ctx, userAlice, services.CreateChatInput{
			IsGroupChat:    true,
			ParticipantIDs: []string{userBob, userCarol},
		})

		assert.Equal(t, services.KindValidation, services.KindOf(err))
	})

	t.Run("Single other participant", func(t *testing.T) {
		f := newChatServiceFixture()
		f.userRepo.On("GetUserByID", ctx, mock.Anything).Return(&models.User{}, nil)

		_, err := f.service.CreateChat(ctx, userAlice, services.CreateChatInput{
			IsGroupChat:    true,
			ChatName:       "Weekend Plans",
			ParticipantIDs: []string{userBob},
		})

		assert.Equal(t, services.KindValidation, services.KindOf(err))
	})

	t.Run("Duplicates collapse below three members", func(t *testing.T) {
		f := newChatServiceFixture()
		f.userRepo.On("GetUserByID", ctx, mock.Anything).Return(&models.User{}, nil)

		_, err := f.service.CreateChat(ctx, userAlice, services.CreateChatInput{
			IsGroupChat:    true,
			ChatName:       "Weekend Plans",
			ParticipantIDs: []string{userBob, userBob},
		})

		assert.Equal(t, services.KindValidation, services.KindOf(err))
	})
}

func TestChatService_CreateChat_GroupSuccess(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.userRepo.On("GetUserByID", ctx, userBob).Return(&models.User{ID: userBob}, nil)
	f.userRepo.On("GetUserByID", ctx, userCarol).Return(&models.User{ID: userCarol}, nil)

	f.chatRepo.On("CreateChat", ctx, mock.MatchedBy(func(chat *models.Chat) bool {
		return chat.IsGroupChat &&
			chat.Admin == userAlice &&
			chat.Avatar == defaultAvatar &&
			len(chat.ParticipantIDs) == 3
	})).Return(chatID, nil)

	view := groupChatView(userAlice, userBob, userCarol)
	f.chatRepo.On("GetChatView", ctx, chatID).Return(view, nil)

	got, err := f.service.CreateChat(ctx, userAlice, services.CreateChatInput{
		IsGroupChat:    true,
		ChatName:       "Weekend Plans",
		ParticipantIDs: []string{userBob, userCarol},
	})

	assert.NoError(t, err)
	assert.Equal(t, view, got)

	assert.Empty(t, f.bus.EventsFor(userAlice))
	for _, member := range []string{userBob, userCarol} {
		events := f.bus.EventsFor(member)
		assert.Len(t, events, 1)
		assert.Equal(t, ports.EventNewChat, events[0].Event)
	}
	f.chatRepo.AssertExpectations(t)
}

func TestChatService_CreateChat_AvatarUploadFailureAborts(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.userRepo.On("GetUserByID", ctx, mock.Anything).Return(&models.User{}, nil)
	f.assets.On("Upload", ctx, mock.Anything).Return(nil, errors.New("store unavailable"))

	_, err := f.service.CreateChat(ctx, userAlice, services.CreateChatInput{
		IsGroupChat:    true,
		ChatName:       "Weekend Plans",
		ParticipantIDs: []string{userBob, userCarol},
		Avatar:         &ports.Upload{Filename: "group.png"},
	})

	assert.Equal(t, services.KindDependency, services.KindOf(err))
	f.chatRepo.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything)
	assert.Empty(t, f.bus.Events)
}

func TestChatService_CreateChat_DirectDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.userRepo.On("GetUserByID", ctx, userBob).Return(&models.User{ID: userBob}, nil)
	f.chatRepo.On("FindDirectChat", ctx, userAlice, userBob).Return(&models.Chat{ID: chatID}, nil)

	_, err := f.service.CreateChat(ctx, userAlice, services.CreateChatInput{
		ParticipantIDs: []string{userBob},
	})

	assert.Equal(t, services.KindConflict, services.KindOf(err))
	f.chatRepo.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything)
}

func TestChatService_CreateChat_DirectSuccess(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.userRepo.On("GetUserByID", ctx, userBob).Return(&models.User{ID: userBob}, nil)
	f.chatRepo.On("FindDirectChat", ctx, userAlice, userBob).Return(nil, nil)
	f.chatRepo.On("CreateChat", ctx, mock.MatchedBy(func(chat *models.Chat) bool {
		return !chat.IsGroupChat && len(chat.ParticipantIDs) == 2
	})).Return(chatID, nil)

	view := &models.ChatView{Chat: models.Chat{ID: chatID, ParticipantIDs: []string{userAlice, userBob}}}
	f.chatRepo.On("GetChatView", ctx, chatID).Return(view, nil)

	got, err := f.service.CreateChat(ctx, userAlice, services.CreateChatInput{
		ParticipantIDs: []string{userBob},
	})

	assert.NoError(t, err)
	assert.Equal(t, view, got)

	events := f.bus.EventsFor(userBob)
	assert.Len(t, events, 1)
	assert.Equal(t, ports.EventNewChat, events[0].Event)
}

func TestChatService_AddParticipants_GuardMiss(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.chatRepo.On("AddParticipants", ctx, chatID, userAlice, []string{userCarol}).Return(0, nil)

	_, err := f.service.AddParticipants(ctx, userAlice, chatID, []string{userCarol})

	assert.Equal(t, services.ErrChatNotFound, err)
	assert.Empty(t, f.bus.Events)
}

func TestChatService_AddParticipants_NotifiesNewMembers(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.chatRepo.On("AddParticipants", ctx, chatID, userAlice, []string{userCarol}).Return(1, nil)
	f.chatRepo.On("GetChatView", ctx, chatID).Return(groupChatView(userAlice, userBob, userCarol), nil)

	view, err := f.service.AddParticipants(ctx, userAlice, chatID, []string{userCarol})

	assert.NoError(t, err)
	assert.NotNil(t, view)

	events := f.bus.EventsFor(userCarol)
	assert.Len(t, events, 1)
	assert.Equal(t, ports.EventNewChat, events[0].Event)
	assert.Empty(t, f.bus.EventsFor(userBob))
}

func TestChatService_RemoveParticipants_RejectsRemovingSelf(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	_, err := f.service.RemoveParticipants(ctx, userAlice, chatID, []string{userAlice, userBob})

	assert.Equal(t, services.KindValidation, services.KindOf(err))
	f.chatRepo.AssertNotCalled(t, "RemoveParticipants", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_RemoveParticipants_NotifiesRemoved(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.chatRepo.On("RemoveParticipants", ctx, chatID, userAlice, []string{userCarol}).Return(1, nil)
	f.chatRepo.On("GetChatView", ctx, chatID).Return(groupChatView(userAlice, userBob), nil)

	_, err := f.service.RemoveParticipants(ctx, userAlice, chatID, []string{userCarol})

	assert.NoError(t, err)

	events := f.bus.EventsFor(userCarol)
	assert.Len(t, events, 1)
	assert.Equal(t, ports.EventRemovedFromChat, events[0].Event)
}

func TestChatService_LeaveChat_NotifiesRemaining(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.chatRepo.On("LeaveChat", ctx, chatID, userCarol).Return(1, nil)
	f.chatRepo.On("GetChatView", ctx, chatID).Return(groupChatView(userAlice, userBob), nil)

	view, err := f.service.LeaveChat(ctx, userCarol, chatID)

	assert.NoError(t, err)
	assert.NotNil(t, view)

	for _, member := range []string{userAlice, userBob} {
		events := f.bus.EventsFor(member)
		assert.Len(t, events, 1)
		assert.Equal(t, ports.EventLeftChat, events[0].Event)
	}
}

func TestChatService_LeaveChat_GuardMiss(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.chatRepo.On("LeaveChat", ctx, chatID, userAlice).Return(0, nil)

	_, err := f.service.LeaveChat(ctx, userAlice, chatID)

	assert.Equal(t, services.ErrChatNotFound, err)
}

func TestChatService_RenameChat(t *testing.T) {
	ctx := context.Background()

	t.Run("Guard miss", func(t *testing.T) {
		f := newChatServiceFixture()
		f.chatRepo.On("RenameChat", ctx, chatID, userBob, "New Name").Return(0, nil)

		_, err := f.service.RenameChat(ctx, userBob, chatID, "New Name")

		assert.Equal(t, services.ErrChatNotFound, err)
	})

	t.Run("Broadcasts to every member", func(t *testing.T) {
		f := newChatServiceFixture()
		f.chatRepo.On("RenameChat", ctx, chatID, userAlice, "New Name").Return(1, nil)
		f.chatRepo.On("GetChatView", ctx, chatID).Return(groupChatView(userAlice, userBob, userCarol), nil)

		_, err := f.service.RenameChat(ctx, userAlice, chatID, "New Name")

		assert.NoError(t, err)
		assert.Len(t, f.bus.Events, 3)
		for _, event := range f.bus.Events {
			assert.Equal(t, ports.EventChatUpdated, event.Event)
		}
	})
}

func TestChatService_ChangeChatAvatar_SwapThenDeletePrior(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	uploaded := &models.Asset{PublicID: "new-avatar", URL: "https://cdn/new-avatar.png", ResourceType: "image"}
	previous := &models.Asset{PublicID: "old-avatar", URL: "https://cdn/old-avatar.png", ResourceType: "image"}

	f.assets.On("Upload", ctx, mock.Anything).Return(uploaded, nil)
	f.chatRepo.On("UpdateAvatar", ctx, chatID, userAlice, *uploaded).Return(previous, nil)
	f.assets.On("Delete", ctx, "old-avatar", "image").Return(nil)
	f.chatRepo.On("GetChatView", ctx, chatID).Return(groupChatView(userAlice, userBob, userCarol), nil)

	view, err := f.service.ChangeChatAvatar(ctx, userAlice, chatID, ports.Upload{Filename: "next.png"})

	assert.NoError(t, err)
	assert.NotNil(t, view)
	f.assets.AssertCalled(t, "Delete", ctx, "old-avatar", "image")
	f.assets.AssertNotCalled(t, "Delete", ctx, "new-avatar", "image")
	assert.Len(t, f.bus.Events, 3)
}

func TestChatService_ChangeChatAvatar_GuardMissCleansUpload(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	uploaded := &models.Asset{PublicID: "new-avatar", URL: "https://cdn/new-avatar.png", ResourceType: "image"}

	f.assets.On("Upload", ctx, mock.Anything).Return(uploaded, nil)
	f.chatRepo.On("UpdateAvatar", ctx, chatID, userBob, *uploaded).Return(nil, nil)
	f.assets.On("Delete", ctx, "new-avatar", "image").Return(nil)

	_, err := f.service.ChangeChatAvatar(ctx, userBob, chatID, ports.Upload{Filename: "next.png"})

	assert.Equal(t, services.ErrChatNotFound, err)
	f.assets.AssertCalled(t, "Delete", ctx, "new-avatar", "image")
	assert.Empty(t, f.bus.Events)
}

func TestChatService_DeleteChat_GroupRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.chatRepo.On("GetChatByID", ctx, chatID).Return(&models.Chat{
		ID:             chatID,
		IsGroupChat:    true,
		ParticipantIDs: []string{userAlice, userBob, userCarol},
		Admin:          userAlice,
	}, nil)

	err := f.service.DeleteChat(ctx, userBob, chatID)

	assert.Equal(t, services.KindAuthorization, services.KindOf(err))
	f.chatRepo.AssertNotCalled(t, "DeleteChat", mock.Anything, mock.Anything)
}

func TestChatService_DeleteChat_NonParticipant(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	f.chatRepo.On("GetChatByID", ctx, chatID).Return(&models.Chat{
		ID:             chatID,
		ParticipantIDs: []string{userAlice, userBob},
	}, nil)

	err := f.service.DeleteChat(ctx, userCarol, chatID)

	assert.Equal(t, services.KindAuthorization, services.KindOf(err))
}

func TestChatService_DeleteChat_CascadesAssets(t *testing.T) {
	ctx := context.Background()
	f := newChatServiceFixture()

	groupAvatar := models.Asset{PublicID: "group-avatar", URL: "https://cdn/group-avatar.png", ResourceType: "image"}
	chat := &models.Chat{
		ID:             chatID,
		IsGroupChat:    true,
		ParticipantIDs: []string{userAlice, userBob, userCarol},
		Admin:          userAlice,
		Avatar:         groupAvatar,
	}

	f.chatRepo.On("GetChatByID", ctx, chatID).Return(chat, nil)
	f.chatRepo.On("GetChatView", ctx, chatID).Return(groupChatView(userAlice, userBob, userCarol), nil)

	attachment := models.Asset{PublicID: "photo-1", URL: "https://cdn/photo-1.jpg", ResourceType: "image"}
	f.messageRepo.On("GetMessagesByChatID", ctx, chatID).Return([]models.Message{
		{ID: messageID, ChatID: chatID, SenderID: userBob, Content: models.FileMessageContent("", attachment)},
		{ID: "cccccccc-cccc-4ccc-8ccc-cccccccccccc", ChatID: chatID, SenderID: userAlice, Content: models.TextContent("hello")},
	}, nil)

	f.assets.On("Delete", ctx, "photo-1", "image").Return(nil)
	f.assets.On("Delete", ctx, "group-avatar", "image").Return(nil)
	f.chatRepo.On("DeleteChat", ctx, chatID).Return(nil)

	err := f.service.DeleteChat(ctx, userAlice, chatID)

	assert.NoError(t, err)
	f.assets.AssertCalled(t, "Delete", ctx, "photo-1", "image")
	f.assets.AssertCalled(t, "Delete", ctx, "group-avatar", "image")

	assert.Empty(t, f.bus.EventsFor(userAlice))
	for _, member := range []string{userBob, userCarol} {
		events := f.bus.EventsFor(member)
		assert.Len(t, events, 1)
		assert.Equal(t, ports.EventLeftChat, events[0].Event)
	}
}

func TestChatService_GetGroupChat(t *testing.T) {
	ctx := context.Background()

	t.Run("Member sees the chat", func(t *testing.T) {
		f := newChatServiceFixture()
		view := groupChatView(userAlice, userBob, userCarol)
		f.chatRepo.On("GetChatView", ctx, chatID).Return(view, nil)

		got, err := f.service.GetGroupChat(ctx, userBob, chatID)

		assert.NoError(t, err)
		assert.Equal(t, view, got)
	})

	t.Run("Non-member gets not found", func(t *testing.T) {
		f := newChatServiceFixture()
		f.chatRepo.On("GetChatView", ctx, chatID).Return(groupChatView(userAlice, userBob), nil)

		_, err := f.service.GetGroupChat(ctx, userCarol, chatID)

		assert.Equal(t, services.ErrChatNotFound, err)
	})

	t.Run("Direct chat is not a group", func(t *testing.T) {
		f := newChatServiceFixture()
		f.chatRepo.On("GetChatView", ctx, chatID).Return(&models.ChatView{
			Chat: models.Chat{ID: chatID, ParticipantIDs: []string{userAlice, userBob}},
		}, nil)

		_, err := f.service.GetGroupChat(ctx, userAlice, chatID)

		assert.Equal(t, services.ErrChatNotFound, err)
	})
}
