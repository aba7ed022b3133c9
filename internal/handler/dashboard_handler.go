package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prereg-portal-api/internal/service"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
	"github.com/noah-isme/prereg-portal-api/pkg/response"
)

// DashboardHandler serves the student dashboard.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Show godoc
// @Summary Student dashboard with degree progress
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param refresh query bool false "Refetch the profile from the registrar"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Show(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.dashboard.Dashboard(c.Request.Context(), session, c.Query("refresh") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}
