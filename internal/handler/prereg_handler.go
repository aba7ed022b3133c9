package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prereg-portal-api/internal/dto"
	"github.com/noah-isme/prereg-portal-api/internal/models"
	"github.com/noah-isme/prereg-portal-api/internal/service"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
	"github.com/noah-isme/prereg-portal-api/pkg/response"
)

// PreRegHandler exposes the pre-registration workflow: the selection state,
// toggling and mode changes, batch submission and de-registration.
type PreRegHandler struct {
	prereg        *service.PreRegService
	notifications *service.NotificationService
}

// NewPreRegHandler constructs PreRegHandler.
func NewPreRegHandler(prereg *service.PreRegService, notifications *service.NotificationService) *PreRegHandler {
	return &PreRegHandler{prereg: prereg, notifications: notifications}
}

// State godoc
// @Summary Current pre-registration state
// @Tags PreRegistration
// @Produce json
// @Security BearerAuth
// @Param refresh query bool false "Refetch the catalog before responding"
// @Success 200 {object} response.Envelope
// @Router /prereg [get]
func (h *PreRegHandler) State(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		state *dto.PreRegState
		err   error
	)
	if c.Query("refresh") == "true" {
		state, err = h.prereg.Refresh(c.Request.Context(), session)
	} else {
		state, err = h.prereg.State(c.Request.Context(), session)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// Toggle godoc
// @Summary Toggle a course selection
// @Tags PreRegistration
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /prereg/selections/{courseId}/toggle [post]
func (h *PreRegHandler) Toggle(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	state, err := h.prereg.Toggle(c.Request.Context(), session, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// SetMode godoc
// @Summary Change the enrollment mode of a pending selection
// @Tags PreRegistration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Param payload body dto.SetModeRequest true "Enrollment mode"
// @Success 200 {object} response.Envelope
// @Router /prereg/selections/{courseId}/mode [put]
func (h *PreRegHandler) SetMode(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mode, ok := models.ParseEnrollmentMode(req.Mode)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment type"))
		return
	}

	state, err := h.prereg.SetMode(c.Request.Context(), session, c.Param("courseId"), mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// Submit godoc
// @Summary Submit all pending selections
// @Tags PreRegistration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /prereg/submit [post]
func (h *PreRegHandler) Submit(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.prereg.Submit(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Deregister godoc
// @Summary Remove a confirmed registration
// @Tags PreRegistration
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /prereg/registrations/{courseId} [delete]
func (h *PreRegHandler) Deregister(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	state, err := h.prereg.Deregister(c.Request.Context(), session, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// Registered godoc
// @Summary Confirmed registrations with enrollment modes
// @Tags PreRegistration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /prereg/registered [get]
func (h *PreRegHandler) Registered(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courses, err := h.prereg.Registered(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	if courses == nil {
		courses = []dto.RegisteredCourse{}
	}
	response.JSON(c, http.StatusOK, courses)
}

// Notifications godoc
// @Summary Pending notifications for the session
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *PreRegHandler) Notifications(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, h.notifications.List(session.ID))
}

// DismissNotification godoc
// @Summary Dismiss a notification
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id} [delete]
func (h *PreRegHandler) DismissNotification(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.notifications.Remove(session.ID, c.Param("id"))
	response.NoContent(c)
}
