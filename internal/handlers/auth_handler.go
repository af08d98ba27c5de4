package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arshitcc/Ping-Park/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *services.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(service *services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (a *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		a.logger.Warn("invalid input format", "error", err.Error())
		respond(c, http.StatusBadRequest, "Invalid input format", nil)
		return
	}

	err := a.service.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		a.logger.Warn("register failed", "username", req.Username, "error", err)
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", nil)
}

func (a *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		a.logger.Warn("invalid input format", "error", err.Error())
		respond(c, http.StatusBadRequest, "Invalid input format", nil)
		return
	}

	token, err := a.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		a.logger.Warn("login failed", "username", req.Username, "error", err)
		respond(c, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	c.SetCookie("accessToken", token, int(time.Hour.Seconds()), "/", "", false, true)

	a.logger.Info("login successful", "username", req.Username)
	respond(c, http.StatusOK, "User Logged In Successfully", gin.H{"token": token})
}

func (a *AuthHandler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token != "" {
		if err := a.service.RevokeToken(c.Request.Context(), token, time.Hour); err != nil {
			a.logger.Warn("token revocation failed", "error", err)
		}
	}

	c.SetCookie("accessToken", "", -1, "/", "", false, true)
	respond(c, http.StatusOK, "User Logged Out Successfully", nil)
}

func (a *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := a.service.VerifyEmail(c.Request.Context(), c.Query("token")); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	respond(c, http.StatusOK, "Email verified successfully", nil)
}

func (a *AuthHandler) GetVerificationToken(c *gin.Context) {
	token, err := a.service.GetVerificationToken(c.Request.Context(), c.Query("username"))
	if err != nil {
		respond(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	respond(c, http.StatusOK, "Verification token fetched", gin.H{"token": token})
}

func (a *AuthHandler) GetVerificationStatus(c *gin.Context) {
	verified, err := a.service.GetUserVerificationStatus(c.Request.Context(), c.Query("username"))
	if err != nil {
		respond(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	respond(c, http.StatusOK, "Verification status fetched", gin.H{"verified": verified})
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie
	}
	return ""
}

func (a *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			a.logger.Warn("missing bearer credential")
			respond(c, http.StatusUnauthorized, "missing token", nil)
			c.Abort()
			return
		}

		userID, err := a.service.ValidateToken(c.Request.Context(), token)
		if err != nil {
			a.logger.Warn("token validation failed", "error", err)
			respond(c, http.StatusUnauthorized, err.Error(), nil)
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("token", token)

		a.logger.Debug("request authorized", "userID", userID)
		c.Next()
	}
}
