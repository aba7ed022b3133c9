package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/prereg-portal-api/internal/models"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
)

const catalogKeyPrefix = "portal:catalog:"

type catalogFetcher interface {
	PreRegCourses(ctx context.Context, token string, student models.StudentProfile) ([]models.Course, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CatalogService fetches the eligible course list for a student, caching the
// decoded catalog per student. The fetch honours the caller's context: when
// the originating request is torn down the fetch is cancelled and no state
// is touched.
type CatalogService struct {
	fetcher catalogFetcher
	cache   catalogCache
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(fetcher catalogFetcher, cache catalogCache, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{fetcher: fetcher, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

func catalogKey(studentID string) string {
	return catalogKeyPrefix + studentID
}

// Courses returns the student's eligible catalog, from cache when fresh.
func (s *CatalogService) Courses(ctx context.Context, session *models.Session) ([]models.Course, error) {
	key := catalogKey(session.Student.StudentID)

	var cached []models.Course
	if s.cache != nil {
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.String("student_id", session.Student.StudentID), zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	courses, err := s.fetcher.PreRegCourses(ctx, session.UpstreamToken, session.Student)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, courses, s.ttl); err != nil {
			s.logger.Warn("catalog cache write failed", zap.String("student_id", session.Student.StudentID), zap.Error(err))
		}
	}
	return courses, nil
}

// Invalidate drops the cached catalog after a registration change so the
// next fetch reflects the registrar's state.
func (s *CatalogService) Invalidate(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, catalogKey(studentID)); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
