package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/noah-isme/prereg-portal-api/internal/middleware"
	"github.com/noah-isme/prereg-portal-api/internal/models"
	"github.com/noah-isme/prereg-portal-api/internal/service"
)

type stubRefresher struct {
	profile *models.StudentProfile
	calls   int
}

func (s *stubRefresher) RefreshProfile(ctx context.Context, session *models.Session) (*models.StudentProfile, error) {
	s.calls++
	return s.profile, nil
}

type stubFetcher struct {
	courses []models.Course
}

func (s *stubFetcher) PreRegCourses(ctx context.Context, token string, student models.StudentProfile) ([]models.Course, error) {
	return s.courses, nil
}

func newDashboardTestRouter(refresher *stubRefresher) *gin.Engine {
	gin.SetMode(gin.TestMode)

	dashboard := service.NewDashboardService(refresher, nil, zap.NewNop())
	catalog := service.NewCatalogService(&stubFetcher{courses: testCatalog()}, nil, time.Minute, nil, zap.NewNop())

	dashboardHandler := NewDashboardHandler(dashboard)
	courseHandler := NewCourseHandler(catalog)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-Session") != "" {
			c.Set(internalmiddleware.ContextSessionKey, &models.Session{
				ID:      "sess-1",
				Student: models.StudentProfile{StudentID: "S123", Name: "Cached Name"},
			})
		}
		c.Next()
	})
	router.GET("/dashboard", dashboardHandler.Show)
	router.GET("/courses", courseHandler.List)
	return router
}

func TestDashboardEndpoint(t *testing.T) {
	refresher := &stubRefresher{}
	router := newDashboardTestRouter(refresher)

	req, _ := http.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("X-Test-Session", "1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, `"Cached Name"`)
	assert.Contains(t, body, `"course_progress"`)
	assert.Contains(t, body, `"progress_stats"`)
	assert.Equal(t, 0, refresher.calls)
}

func TestDashboardEndpointRefresh(t *testing.T) {
	refresher := &stubRefresher{profile: &models.StudentProfile{StudentID: "S123", Name: "Fresh Name"}}
	router := newDashboardTestRouter(refresher)

	req, _ := http.NewRequest(http.MethodGet, "/dashboard?refresh=true", nil)
	req.Header.Set("X-Test-Session", "1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"Fresh Name"`)
	assert.Equal(t, 1, refresher.calls)
}

func TestDashboardEndpointUnauthorized(t *testing.T) {
	router := newDashboardTestRouter(&stubRefresher{})

	req, _ := http.NewRequest(http.MethodGet, "/dashboard", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCoursesEndpoint(t *testing.T) {
	router := newDashboardTestRouter(&stubRefresher{})

	req, _ := http.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("X-Test-Session", "1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, `"grouped_courses"`)
	assert.Contains(t, body, `"total":3`)
	assert.Contains(t, body, `"CS101"`)
}
