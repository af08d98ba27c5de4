package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/arshitcc/Ping-Park/internal/services"

	"github.com/gin-gonic/gin"
)

// APIResponse is the uniform envelope returned by every endpoint.
type APIResponse struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Data       any      `json:"data"`
	Errors     []string `json:"errors"`
}

func respond(c *gin.Context, statusCode int, message string, data any) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(statusCode, APIResponse{
		Success:    statusCode < 400,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Errors:     []string{},
	})
}

func statusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation, services.KindConflict:
		return http.StatusBadRequest
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)

	// Internal detail stays in the logs, not in the envelope.
	message := "internal server error"
	var svcErr *services.Error
	if errors.As(err, &svcErr) && svcErr.Kind != services.KindDependency {
		message = svcErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "path", c.FullPath())
	}

	c.JSON(status, APIResponse{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Data:       gin.H{},
		Errors:     []string{message},
	})
}
