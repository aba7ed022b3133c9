package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/prereg-portal-api/internal/models"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
)

type mockFetcher struct {
	courses []models.Course
	err     error
	calls   int
}

func (m *mockFetcher) PreRegCourses(ctx context.Context, token string, student models.StudentProfile) ([]models.Course, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.courses, nil
}

type memoryCache struct {
	entries map[string][]byte
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.Clone(appErrors.ErrCacheMiss, "")
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func TestCatalogCoursesCachesPerStudent(t *testing.T) {
	fetcher := &mockFetcher{courses: catalogFixture()}
	cache := newMemoryCache()
	svc := NewCatalogService(fetcher, cache, time.Minute, nil, zap.NewNop())
	session := sessionFixture()

	first, err := svc.Courses(context.Background(), session)
	require.NoError(t, err)
	assert.Len(t, first, 4)
	assert.Equal(t, 1, fetcher.calls)

	second, err := svc.Courses(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls, "second read served from cache")
}

func TestCatalogInvalidateForcesRefetch(t *testing.T) {
	fetcher := &mockFetcher{courses: catalogFixture()}
	cache := newMemoryCache()
	svc := NewCatalogService(fetcher, cache, time.Minute, nil, zap.NewNop())
	session := sessionFixture()

	_, err := svc.Courses(context.Background(), session)
	require.NoError(t, err)

	svc.Invalidate(context.Background(), session.Student.StudentID)

	_, err = svc.Courses(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestCatalogFetchErrorPropagates(t *testing.T) {
	fetcher := &mockFetcher{err: appErrors.Clone(appErrors.ErrUpstreamUnavailable, "")}
	svc := NewCatalogService(fetcher, newMemoryCache(), time.Minute, nil, zap.NewNop())

	_, err := svc.Courses(context.Background(), sessionFixture())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErrors.FromError(err).Code)
}

func TestCatalogCacheWriteFailureStillServes(t *testing.T) {
	fetcher := &mockFetcher{courses: catalogFixture()}
	cache := newMemoryCache()
	cache.setErr = assert.AnError
	svc := NewCatalogService(fetcher, cache, time.Minute, nil, zap.NewNop())

	courses, err := svc.Courses(context.Background(), sessionFixture())
	require.NoError(t, err)
	assert.Len(t, courses, 4)
}

func TestCatalogWorksWithoutCache(t *testing.T) {
	fetcher := &mockFetcher{courses: catalogFixture()}
	svc := NewCatalogService(fetcher, nil, time.Minute, nil, zap.NewNop())
	session := sessionFixture()

	_, err := svc.Courses(context.Background(), session)
	require.NoError(t, err)
	_, err = svc.Courses(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)

	svc.Invalidate(context.Background(), session.Student.StudentID)
}
