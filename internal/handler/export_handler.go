package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prereg-portal-api/internal/service"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
	"github.com/noah-isme/prereg-portal-api/pkg/response"
)

// ExportHandler streams registered-course exports.
type ExportHandler struct {
	prereg *service.PreRegService
	export *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(prereg *service.PreRegService, export *service.ExportService) *ExportHandler {
	return &ExportHandler{prereg: prereg, export: export}
}

// Download godoc
// @Summary Export registered courses
// @Tags PreRegistration
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string true "Export format" Enums(csv, pdf)
// @Success 200 {file} binary
// @Router /prereg/export [get]
func (h *ExportHandler) Download(c *gin.Context) {
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

	file, err := h.export.Render(service.ExportFormat(c.Query("format")), session.Student, courses)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
