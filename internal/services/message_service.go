package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arshitcc/Ping-Park/internal/models"
	"github.com/arshitcc/Ping-Park/internal/ports"
)

// SendMessagesInput carries one of two mutually exclusive shapes: a batch of
// attachments paired positionally with optional captions, or a single text.
type SendMessagesInput struct {
	Text        string
	Captions    []string
	Attachments []ports.Upload
}

type DeleteMessagesResult struct {
	Deleted []models.Message
	// Chat is the refreshed view when the deletion forced a latest-message
	// recompute, nil otherwise.
	Chat *models.ChatView
}

type MessageService struct {
	chatRepo    ports.IChatRepository
	messageRepo ports.IMessageRepository
	assets      ports.IAssetStore
	bus         ports.IEventBus
	logger      *slog.Logger
}

func NewMessageService(chatRepo ports.IChatRepository, messageRepo ports.IMessageRepository,
	assets ports.IAssetStore, bus ports.IEventBus, logger *slog.Logger) *MessageService {
	return &MessageService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		assets:      assets,
		bus:         bus,
		logger:      logger,
	}
}

func (s *MessageService) loadMemberChat(ctx context.Context, requesterID, chatID string) (*models.Chat, error) {
	chat, err := s.chatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		s.logger.Error("failed to load chat", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to load chat", err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	if !chat.HasParticipant(requesterID) {
		s.logger.Warn("user is not a member of the chat", "userID", requesterID, "chatID", chatID)
		return nil, ErrNotChatMember
	}
	return chat, nil
}

func (s *MessageService) SendMessages(ctx context.Context, requesterID, chatID string, in SendMessagesInput) ([]models.MessageView, error) {
	if !validIDs(chatID) {
		return nil, NewValidationError("invalid chat id")
	}

	if _, err := s.loadMemberChat(ctx, requesterID, chatID); err != nil {
		return nil, err
	}

	var messageIDs []string
	if len(in.Attachments) > 0 {
		for idx, attachment := range in.Attachments {
			asset, err := s.assets.Upload(ctx, attachment)
			if err != nil {
				s.logger.Error("failed to upload attachment", "chatID", chatID, "error", err)
				return nil, NewDependencyError("failed to upload attachment", err)
			}

			var caption string
			if idx < len(in.Captions) {
				caption = in.Captions[idx]
			}

			message := models.Message{
				ChatID:   chatID,
				SenderID: requesterID,
				Content:  models.FileMessageContent(caption, *asset),
			}
			messageID, err := s.messageRepo.CreateMessage(ctx, &message)
			if err != nil {
				s.logger.Error("failed to create message", "chatID", chatID, "error", err)
				// The upload succeeded but nothing references it; claw it back.
				if derr := s.assets.Delete(ctx, asset.PublicID, asset.ResourceType); derr != nil {
					s.logger.Warn("failed to delete orphaned attachment", "publicId", asset.PublicID, "error", derr)
				}
				return nil, NewDependencyError("failed to create message", err)
			}
			messageIDs = append(messageIDs, messageID)
		}
	} else {
		if strings.TrimSpace(in.Text) == "" {
			return nil, NewValidationError("message cannot be empty")
		}

		message := models.Message{
			ChatID:   chatID,
			SenderID: requesterID,
			Content:  models.TextContent(in.Text),
		}
		messageID, err := s.messageRepo.CreateMessage(ctx, &message)
		if err != nil {
			s.logger.Error("failed to create message", "chatID", chatID, "error", err)
			return nil, NewDependencyError("failed to create message", err)
		}
		messageIDs = append(messageIDs, messageID)
	}

	// Optimistic re-check: the pointer write is conditioned on the sender
	// still being a participant. Last writer wins between concurrent sends.
	latest := messageIDs[len(messageIDs)-1]
	updated, err := s.chatRepo.SetLatestMessage(ctx, chatID, requesterID, latest)
	if err != nil {
		s.logger.Error("failed to update latest message", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to update the chat", err)
	}
	if updated == 0 {
		return nil, NewConflictError("unable to update the chat")
	}

	views, err := s.messageRepo.GetMessageViewsByIDs(ctx, chatID, messageIDs)
	if err != nil {
		s.logger.Error("failed to load sent messages", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to load sent messages", err)
	}

	s.bus.EmitToRoom(chatID, ports.EventMessagesReceived, views)

	s.logger.Info("messages sent", "chatID", chatID, "senderID", requesterID, "count", len(views))
	return views, nil
}

// DeleteMessages removes the requester's own messages from a chat. Ids that
// belong to another sender or another chat are silently excluded rather than
// erred; the call fails only when nothing matches.
func (s *MessageService) DeleteMessages(ctx context.Context, requesterID, chatID string, messageIDs []string) (*DeleteMessagesResult, error) {
	if len(messageIDs) == 0 {
		return nil, NewValidationError("message ids are required")
	}
	if !validIDs(append([]string{chatID}, messageIDs...)...) {
		return nil, NewValidationError("invalid chat or message ids")
	}

	if _, err := s.loadMemberChat(ctx, requesterID, chatID); err != nil {
		return nil, err
	}

	deletable, err := s.messageRepo.FindOwnMessages(ctx, chatID, requesterID, messageIDs)
	if err != nil {
		s.logger.Error("failed to find messages", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to find messages", err)
	}
	if len(deletable) == 0 {
		return nil, ErrMessageNotFound
	}

	deletableIDs := make([]string, 0, len(deletable))
	for _, message := range deletable {
		deletableIDs = append(deletableIDs, message.ID)

		if message.Content.Kind == models.ContentFile {
			file := message.Content.File.File
			if err := s.assets.Delete(ctx, file.PublicID, file.ResourceType); err != nil {
				s.logger.Warn("failed to delete attachment", "publicId", file.PublicID, "error", err)
			}
		}
	}

	// Whether the chat's latest-message pointer moved is decided inside the
	// delete transaction, against the locked chat row rather than the chat
	// loaded above: a concurrent deletion may have moved the pointer since.
	recomputed, err := s.messageRepo.DeleteMessages(ctx, chatID, deletableIDs)
	if err != nil {
		s.logger.Error("failed to delete messages", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to delete messages", err)
	}

	s.bus.EmitToRoom(chatID, ports.EventMessagesDeleted, deletable)

	result := DeleteMessagesResult{Deleted: deletable}
	if recomputed {
		view, err := s.chatRepo.GetChatView(ctx, chatID)
		if err != nil {
			s.logger.Error("failed to load chat view", "chatID", chatID, "error", err)
			return nil, NewDependencyError("failed to load chat", err)
		}
		result.Chat = view
	}

	s.logger.Info("messages deleted", "chatID", chatID, "senderID", requesterID, "count", len(deletable))
	return &result, nil
}

func (s *MessageService) GetChatMessages(ctx context.Context, requesterID, chatID string, limit int) ([]models.MessageView, error) {
	if !validIDs(chatID) {
		return nil, NewValidationError("invalid chat id")
	}

	if _, err := s.loadMemberChat(ctx, requesterID, chatID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	views, err := s.messageRepo.GetMessagesWithSender(ctx, chatID, limit)
	if err != nil {
		s.logger.Error("failed to get chat messages", "chatID", chatID, "error", err)
		return nil, NewDependencyError("failed to get chat messages", err)
	}

	s.logger.Debug("retrieved chat messages", "chatID", chatID, "messageCount", len(views))
	return views, nil
}
