package handlers

import (
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/arshitcc/Ping-Park/internal/ports"
	"github.com/arshitcc/Ping-Park/internal/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *services.ChatService
	logger  *slog.Logger
}

func NewChatHandler(service *services.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

func openUpload(header *multipart.FileHeader) (*ports.Upload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	upload := ports.Upload{Filename: header.Filename, Size: header.Size, Reader: file}
	return &upload, func() { file.Close() }, nil
}

// CreateChat accepts multipart form data: a chatData JSON field plus an
// optional groupPhoto file.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		IsGroupChat    bool     `json:"isGroupChat"`
		ChatName       string   `json:"chatName"`
		ParticipantIDs []string `json:"participantIds"`
	}

	if err := json.Unmarshal([]byte(c.PostForm("chatData")), &req); err != nil {
		h.logger.Warn("invalid chat data", "error", err)
		respond(c, http.StatusBadRequest, "Invalid chat data", nil)
		return
	}

	in := services.CreateChatInput{
		IsGroupChat:    req.IsGroupChat,
		ChatName:       req.ChatName,
		ParticipantIDs: req.ParticipantIDs,
	}

	if header, err := c.FormFile("groupPhoto"); err == nil {
		upload, closeFn, err := openUpload(header)
		if err != nil {
			respond(c, http.StatusBadRequest, "Invalid group photo", nil)
			return
		}
		defer closeFn()
		in.Avatar = upload
	}

	view, err := h.service.CreateChat(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "Chat Created Successfully", view)
}

func (h *ChatHandler) GetMyChats(c *gin.Context) {
	userID := c.GetString("userID")

	views, err := h.service.GetMyChats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Chats Fetched Successfully", views)
}

func (h *ChatHandler) GetGroupChat(c *gin.Context) {
	userID := c.GetString("userID")

	view, err := h.service.GetGroupChat(c.Request.Context(), userID, c.Param("chatId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Group chat found successfully", view)
}

func (h *ChatHandler) AddParticipants(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		NewParticipantIDs []string `json:"newParticipantIds"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid input", nil)
		return
	}

	view, err := h.service.AddParticipants(c.Request.Context(), userID, c.Param("chatId"), req.NewParticipantIDs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Participants added successfully", view)
}

func (h *ChatHandler) RemoveParticipants(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		RemoveParticipantIDs []string `json:"removeParticipantIds"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid input", nil)
		return
	}

	view, err := h.service.RemoveParticipants(c.Request.Context(), userID, c.Param("chatId"), req.RemoveParticipantIDs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Participants removed successfully", view)
}

func (h *ChatHandler) LeaveChat(c *gin.Context) {
	userID := c.GetString("userID")

	view, err := h.service.LeaveChat(c.Request.Context(), userID, c.Param("chatId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Group chat updated successfully", view)
}

func (h *ChatHandler) RenameChat(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		ChatName string `json:"chatName"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid input", nil)
		return
	}

	view, err := h.service.RenameChat(c.Request.Context(), userID, c.Param("chatId"), req.ChatName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Group chat renamed successfully", view)
}

func (h *ChatHandler) UpdateChatAvatar(c *gin.Context) {
	userID := c.GetString("userID")

	header, err := c.FormFile("groupPhoto")
	if err != nil {
		respond(c, http.StatusBadRequest, "Chat avatar is required", nil)
		return
	}

	upload, closeFn, err := openUpload(header)
	if err != nil {
		respond(c, http.StatusBadRequest, "Invalid chat avatar", nil)
		return
	}
	defer closeFn()

	view, err := h.service.ChangeChatAvatar(c.Request.Context(), userID, c.Param("chatId"), *upload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Chat avatar updated successfully", view)
}

func (h *ChatHandler) DeleteChat(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.service.DeleteChat(c.Request.Context(), userID, c.Param("chatId")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Chat deleted successfully", nil)
}
