package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/arshitcc/Ping-Park/internal/services"

	"github.com/gin-gonic/gin"
)

const maxAttachments = 4

type MessageHandler struct {
	service *services.MessageService
	logger  *slog.Logger
}

func NewMessageHandler(service *services.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{service: service, logger: logger}
}

// SendMessages accepts multipart form data: either an attachments file batch
// with a comma-separated captionText field, or a message text field.
func (h *MessageHandler) SendMessages(c *gin.Context) {
	userID := c.GetString("userID")

	in := services.SendMessagesInput{Text: c.PostForm("message")}

	if captionText := strings.TrimSpace(c.PostForm("captionText")); captionText != "" {
		for _, caption := range strings.Split(captionText, ",") {
			in.Captions = append(in.Captions, strings.TrimSpace(caption))
		}
	}

	if form, err := c.MultipartForm(); err == nil {
		attachments := form.File["attachments"]
		if len(attachments) > maxAttachments {
			respond(c, http.StatusBadRequest, "Too many attachments", nil)
			return
		}

		for _, header := range attachments {
			upload, closeFn, err := openUpload(header)
			if err != nil {
				respond(c, http.StatusBadRequest, "Invalid attachment", nil)
				return
			}
			defer closeFn()
			in.Attachments = append(in.Attachments, *upload)
		}
	}

	views, err := h.service.SendMessages(c.Request.Context(), userID, c.Param("chatId"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Messages Sent Successfully", views)
}

func (h *MessageHandler) DeleteMessages(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		ToDeleteMessageIDs []string `json:"toDeleteMessageIds"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid input", nil)
		return
	}

	result, err := h.service.DeleteMessages(c.Request.Context(), userID, c.Param("chatId"), req.ToDeleteMessageIDs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// The refreshed chat is returned when the deletion moved the
	// latest-message pointer.
	if result.Chat != nil {
		respond(c, http.StatusOK, "Messages Deleted Successfully", result.Chat)
		return
	}
	respond(c, http.StatusOK, "Messages Deleted Successfully", result.Deleted)
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID := c.GetString("userID")

	limit, _ := strconv.Atoi(c.Query("limit"))

	views, err := h.service.GetChatMessages(c.Request.Context(), userID, c.Param("chatId"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Messages Fetched Successfully", views)
}
