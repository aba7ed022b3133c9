package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prereg-portal-api/internal/middleware"
	"github.com/noah-isme/prereg-portal-api/internal/models"
)

// currentSession extracts the session injected by the session middleware.
func currentSession(c *gin.Context) *models.Session {
	if v, exists := c.Get(middleware.ContextSessionKey); exists {
		if session, ok := v.(*models.Session); ok {
			return session
		}
	}
	return nil
}
