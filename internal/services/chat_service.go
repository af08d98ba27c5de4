package services

import (
	"context"
	"log/slog"

	"github.com/arshitcc/Ping-Park/internal/models"
	"github.com/arshitcc/Ping-Park/internal/ports"

	"github.com/google/uuid"
)

type CreateChatInput struct {
	IsGroupChat    bool
	ChatName       string
	ParticipantIDs []string
	Avatar         *ports.Upload
}

type ChatService struct {
	chatRepo      ports.IChatRepository
	messageRepo   ports.IMessageRepository
	userRepo      ports.IUserRepositoryReader
	assets        ports.IAssetStore
	bus           ports.IEventBus
	defaultAvatar models.Asset
	logger        *slog.Logger
}

func NewChatService(chatRepo ports.IChatRepository, messageRepo ports.IMessageRepository, userRepo ports.IUserRepositoryReader,
	assets ports.IAssetStore, bus ports.IEventBus, defaultAvatar models.Asset, logger *slog.Logger) *ChatService {
	return &ChatService{
		chatRepo:      chatRepo,
		messageRepo:   messageRepo,
		userRepo:      userRepo,
		assets:        assets,
		bus:           bus,
		defaultAvatar: defaultAvatar,
		logger:        logger,
	}
}

func validIDs(ids ...string) bool {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return false
		}
	}
	return true
}

func dedup(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// deleteAsset is best-effort cleanup: failures are logged and swallowed,
// never failing the primary operation.
func (s *ChatService) deleteAsset(ctx context.Context, asset models.Asset) {
	if asset.IsZero() || asset.PublicID == s.defaultAvatar.PublicID {
		return
	}

	resourceType := asset.ResourceType
	if resourceType == "" {
		resourceType = "image"
	}

	if err := s.assets.Delete(ctx, asset.PublicID, resourceType); err != nil {
		s.logger.Warn("failed to delete asset", "publicId", asset.PublicID, "error", err)
	}
}

func (s *ChatService) reloadChatView(ctx context.Context, chatID string) (*models.ChatView, error) {
	view, err := s.chatRepo.GetChatView(ctx, chatID)
	if err != nil {
		s.logger.Error("failed to load chat view", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to load chat", err)
	}
	if view == nil {
		return nil, ErrChatNotFound
	}
	return view, nil
}

func (s *ChatService) CreateChat(ctx context.Context, requesterID string, in CreateChatInput) (*models.ChatView, error) {
	if len(in.ParticipantIDs) == 0 {
		return nil, NewValidationError("participants are required")
	}
	if contains(in.ParticipantIDs, requesterID) {
		return nil, NewValidationError("participants should not contain the chat creator")
	}
	if !validIDs(in.ParticipantIDs...) {
		return nil, NewValidationError("invalid participant ids")
	}

	for _, id := range in.ParticipantIDs {
		user, err := s.userRepo.GetUserByID(ctx, id)
		if err != nil {
			s.logger.Error("failed to check user existence", "userID", id, "error", err)
			return nil, NewDependencyError("failed to check participants", err)
		}
		if user == nil {
			s.logger.Warn("participant not found", "userID", id)
			return nil, ErrUserNotFound
		}
	}

	var chat models.Chat
	if in.IsGroupChat {
		group, err := s.validateGroupChat(ctx, requesterID, in)
		if err != nil {
			return nil, err
		}
		chat = *group
	} else {
		direct, err := s.validateDirectChat(ctx, requesterID, in)
		if err != nil {
			return nil, err
		}
		chat = *direct
	}

	chatID, err := s.chatRepo.CreateChat(ctx, &chat)
	if err != nil {
		s.logger.Error("failed to create chat in repository", "error", err)
		// A persisted asset with no document is unreachable; still clean up
		// the upload so nothing orphans in the store.
		if chat.IsGroupChat {
			s.deleteAsset(ctx, chat.Avatar)
		}
		return nil, NewDependencyError("failed to create chat", err)
	}

	view, err := s.reloadChatView(ctx, chatID)
	if err != nil {
		return nil, err
	}

	for _, participantID := range view.ParticipantIDs {
		if participantID == requesterID {
			continue
		}
		s.bus.EmitToRoom(participantID, ports.EventNewChat, view)
	}

	s.logger.Info("chat created", "chatID", chatID, "isGroupChat", chat.IsGroupChat, "memberCount", len(chat.ParticipantIDs))
	return view, nil
}

func (s *ChatService) validateGroupChat(ctx context.Context, requesterID string, in CreateChatInput) (*models.Chat, error) {
	if in.ChatName == "" {
		return nil, NewValidationError("group name is required")
	}
	if len(in.ParticipantIDs) < 2 {
		return nil, NewValidationError("participants cannot be less than 2 for group chat")
	}

	members := dedup(append(append([]string{}, in.ParticipantIDs...), requesterID))
	if len(members) < 3 {
		return nil, NewValidationError("duplicate participants passed")
	}

	avatar := s.defaultAvatar
	if in.Avatar != nil {
		uploaded, err := s.assets.Upload(ctx, *in.Avatar)
		if err != nil {
			s.logger.Error("failed to upload group avatar", "error", err)
			return nil, NewDependencyError("failed to upload group avatar", err)
		}
		avatar = *uploaded
	}

	return &models.Chat{
		ChatName:       in.ChatName,
		IsGroupChat:    true,
		ParticipantIDs: members,
		Admin:          requesterID,
		Avatar:         avatar,
	}, nil
}

func (s *ChatService) validateDirectChat(ctx context.Context, requesterID string, in CreateChatInput) (*models.Chat, error) {
	if len(in.ParticipantIDs) > 1 {
		return nil, NewValidationError("participants cannot be more than 1 for single chat")
	}

	other := in.ParticipantIDs[0]

	existing, err := s.chatRepo.FindDirectChat(ctx, requesterID, other)
	if err != nil {
		s.logger.Error("failed to check for existing chat", "error", err)
		return nil, NewDependencyError("failed to check for existing chat", err)
	}
	if existing != nil {
		return nil, NewConflictError("chat already exists")
	}

	return &models.Chat{
		IsGroupChat:    false,
		ParticipantIDs: []string{requesterID, other},
	}, nil
}

func (s *ChatService) GetMyChats(ctx context.Context, requesterID string) ([]models.ChatView, error) {
	views, err := s.chatRepo.GetChatViewsForUser(ctx, requesterID)
	if err != nil {
		s.logger.Error("failed to list chats", "userID", requesterID, "error", err)
		return nil, NewDependencyError("failed to list chats", err)
	}
	return views, nil
}

func (s *ChatService) GetGroupChat(ctx context.Context, requesterID, chatID string) (*models.ChatView, error) {
	if !validIDs(chatID) {
		return nil, NewValidationError("invalid chat id")
	}

	view, err := s.reloadChatView(ctx, chatID)
	if err != nil {
		return nil, err
	}

	// "Absent" and "exists but not yours" are deliberately the same answer.
	if !view.IsGroupChat || !view.HasParticipant(requesterID) {
		return nil, ErrChatNotFound
	}
	return view, nil
}

func (s *ChatService) AddParticipants(ctx context.Context, requesterID, chatID string, newIDs []string) (*models.ChatView, error) {
	if len(newIDs) == 0 {
		return nil, NewValidationError("participant ids are required")
	}
	if !validIDs(append([]string{chatID}, newIDs...)...) {
		return nil, NewValidationError("invalid chat or participant ids")
	}

	added, err := s.chatRepo.AddParticipants(ctx, chatID, requesterID, dedup(newIDs))
	if err != nil {
		s.logger.Error("failed to add participants", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to add participants", err)
	}
	if added == 0 {
		return nil, ErrChatNotFound
	}

	view, err := s.reloadChatView(ctx, chatID)
	if err != nil {
		return nil, err
	}

	for _, participantID := range newIDs {
		s.bus.EmitToRoom(participantID, ports.EventNewChat, view)
	}

	s.logger.Info("participants added", "chatID", chatID, "added", added)
	return view, nil
}

func (s *ChatService) RemoveParticipants(ctx context.Context, requesterID, chatID string, removeIDs []string) (*models.ChatView, error) {
	if len(removeIDs) == 0 {
		return nil, NewValidationError("participant ids are required")
	}
	if !validIDs(append([]string{chatID}, removeIDs...)...) {
		return nil, NewValidationError("invalid chat or participant ids")
	}
	// The admin must stay a participant for the chat's whole lifetime.
	if contains(removeIDs, requesterID) {
		return nil, NewValidationError("admin cannot be removed from the chat")
	}

	removed, err := s.chatRepo.RemoveParticipants(ctx, chatID, requesterID, dedup(removeIDs))
	if err != nil {
		s.logger.Error("failed to remove participants", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to remove participants", err)
	}
	if removed == 0 {
		return nil, ErrChatNotFound
	}

	view, err := s.reloadChatView(ctx, chatID)
	if err != nil {
		return nil, err
	}

	for _, participantID := range removeIDs {
		s.bus.EmitToRoom(participantID, ports.EventRemovedFromChat, view)
	}

	s.logger.Info("participants removed", "chatID", chatID, "removed", removed)
	return view, nil
}

func (s *ChatService) LeaveChat(ctx context.Context, requesterID, chatID string) (*models.ChatView, error) {
	if !validIDs(chatID) {
		return nil, NewValidationError("invalid chat id")
	}

	left, err := s.chatRepo.LeaveChat(ctx, chatID, requesterID)
	if err != nil {
		s.logger.Error("failed to leave chat", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to leave chat", err)
	}
	if left == 0 {
		return nil, ErrChatNotFound
	}

	view, err := s.reloadChatView(ctx, chatID)
	if err != nil {
		return nil, err
	}

	for _, participantID := range view.ParticipantIDs {
		s.bus.EmitToRoom(participantID, ports.EventLeftChat, view)
	}

	s.logger.Info("user left chat", "chatID", chatID, "userID", requesterID)
	return view, nil
}

func (s *ChatService) RenameChat(ctx context.Context, requesterID, chatID, chatName string) (*models.ChatView, error) {
	if !validIDs(chatID) {
		return nil, NewValidationError("invalid chat id")
	}
	if chatName == "" {
		return nil, NewValidationError("chat name is required")
	}

	renamed, err := s.chatRepo.RenameChat(ctx, chatID, requesterID, chatName)
	if err != nil {
		s.logger.Error("failed to rename chat", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to rename chat", err)
	}
	if renamed == 0 {
		return nil, ErrChatNotFound
	}

	view, err := s.reloadChatView(ctx, chatID)
	if err != nil {
		return nil, err
	}

	for _, participantID := range view.ParticipantIDs {
		s.bus.EmitToRoom(participantID, ports.EventChatUpdated, view)
	}

	s.logger.Info("chat renamed", "chatID", chatID, "chatName", chatName)
	return view, nil
}

func (s *ChatService) ChangeChatAvatar(ctx context.Context, requesterID, chatID string, upload ports.Upload) (*models.ChatView, error) {
	if !validIDs(chatID) {
		return nil, NewValidationError("invalid chat id")
	}

	uploaded, err := s.assets.Upload(ctx, upload)
	if err != nil {
		s.logger.Error("failed to upload chat avatar", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to upload chat avatar", err)
	}

	previous, err := s.chatRepo.UpdateAvatar(ctx, chatID, requesterID, *uploaded)
	if err != nil {
		s.logger.Error("failed to update chat avatar", "chatID", chatID, "error", err)
		s.deleteAsset(ctx, *uploaded)
		return nil, NewDependencyError("failed to update chat avatar", err)
	}
	if previous == nil {
		s.deleteAsset(ctx, *uploaded)
		return nil, ErrChatNotFound
	}

	// The prior asset is deleted only after the swap has committed.
	s.deleteAsset(ctx, *previous)

	view, err := s.reloadChatView(ctx, chatID)
	if err != nil {
		return nil, err
	}

	for _, participantID := range view.ParticipantIDs {
		s.bus.EmitToRoom(participantID, ports.EventChatUpdated, view)
	}

	s.logger.Info("chat avatar updated", "chatID", chatID)
	return view, nil
}

// DeleteChat destroys a chat with cascading message and asset cleanup. Only
// the admin may delete a group chat; any current participant may delete a
// direct chat.
func (s *ChatService) DeleteChat(ctx context.Context, requesterID, chatID string) error {
	if !validIDs(chatID) {
		return NewValidationError("invalid chat id")
	}

	chat, err := s.chatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		s.logger.Error("failed to load chat", "chatID", chatID, "error", err)
		return NewDependencyError("failed to load chat", err)
	}
	if chat == nil {
		return ErrChatNotFound
	}

	if chat.IsGroupChat && chat.Admin != requesterID {
		return NewAuthorizationError("you are not authorized to delete this chat")
	}
	if !chat.HasParticipant(requesterID) {
		return NewAuthorizationError("you are not authorized to delete this chat")
	}

	view, err := s.reloadChatView(ctx, chatID)
	if err != nil {
		return err
	}

	messages, err := s.messageRepo.GetMessagesByChatID(ctx, chatID)
	if err != nil {
		s.logger.Error("failed to load chat messages", "chatID", chatID, "error", err)
		return NewDependencyError("failed to load chat messages", err)
	}

	for _, message := range messages {
		if message.Content.Kind == models.ContentFile {
			s.deleteAsset(ctx, message.Content.File.File)
		}
	}
	if chat.IsGroupChat {
		s.deleteAsset(ctx, chat.Avatar)
	}

	if err := s.chatRepo.DeleteChat(ctx, chatID); err != nil {
		s.logger.Error("failed to delete chat", "chatID", chatID, "error", err)
		return NewDependencyError("failed to delete chat", err)
	}

	for _, participantID := range chat.ParticipantIDs {
		if participantID == requesterID {
			continue
		}
		s.bus.EmitToRoom(participantID, ports.EventLeftChat, view)
	}

	s.logger.Info("chat deleted", "chatID", chatID, "deletedBy", requesterID)
	return nil
}
