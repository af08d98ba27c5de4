package handlers

import (
	"log/slog"
	"net/http"

	"github.com/arshitcc/Ping-Park/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.UserService
	logger  *slog.Logger
}

func NewUserHandler(service *services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	userID := c.GetString("userID")

	profiles, err := h.service.GetUsers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Users found successfully", profiles)
}

// ChangeAvatar accepts a multipart form with a single profile file.
func (h *UserHandler) ChangeAvatar(c *gin.Context) {
	userID := c.GetString("userID")

	header, err := c.FormFile("profile")
	if err != nil {
		respond(c, http.StatusBadRequest, "Profile photo is required", nil)
		return
	}

	upload, closeFn, err := openUpload(header)
	if err != nil {
		respond(c, http.StatusBadRequest, "Invalid profile photo", nil)
		return
	}
	defer closeFn()

	profile, err := h.service.ChangeAvatar(c.Request.Context(), userID, *upload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Avatar changed successfully", gin.H{"user": profile})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Password changed successfully", nil)
}
