package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prereg-portal-api/internal/service"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
	"github.com/noah-isme/prereg-portal-api/pkg/response"
)

type sessionDropper interface {
	DropSession(sessionID string)
}

// AuthHandler exposes login/logout and the current-profile endpoint.
type AuthHandler struct {
	auth          *service.AuthService
	notifications *service.NotificationService
	prereg        sessionDropper
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService, notifications *service.NotificationService, prereg sessionDropper) *AuthHandler {
	return &AuthHandler{auth: auth, notifications: notifications, prereg: prereg}
}

// Login godoc
// @Summary Login with registrar credentials
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Logout godoc
// @Summary End the current session
// @Tags Auth
// @Produce json
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), session.ID); err != nil {
		response.Error(c, err)
		return
	}
	h.prereg.DropSession(session.ID)
	h.notifications.DropSession(session.ID)
	response.NoContent(c)
}

// Me godoc
// @Summary Current student profile
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, session.Student)
}
