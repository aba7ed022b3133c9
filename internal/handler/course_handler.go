package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prereg-portal-api/internal/models"
	"github.com/noah-isme/prereg-portal-api/internal/service"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
	"github.com/noah-isme/prereg-portal-api/pkg/response"
)

// CourseHandler serves the eligible-course catalog.
type CourseHandler struct {
	catalog *service.CatalogService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(catalog *service.CatalogService) *CourseHandler {
	return &CourseHandler{catalog: catalog}
}

// List godoc
// @Summary Eligible courses grouped by slot
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	session := currentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courses, err := h.catalog.Courses(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"grouped_courses": models.GroupCoursesBySlot(courses),
		"total":           len(courses),
	})
}
