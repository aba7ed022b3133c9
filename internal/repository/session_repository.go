package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/prereg-portal-api/internal/models"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
)

const sessionKeyPrefix = "portal:session:"

// SessionRepository persists gateway sessions (upstream token + cached
// student profile) in Redis so a restart does not force every student to
// re-login.
type SessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{client: client, logger: logger}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Save stores the session until its expiry.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", session.ID, err)
	}
	return nil
}

// Find loads a session by id. A missing key maps to ErrSessionExpired; a
// corrupted record is deleted and treated the same way so the client simply
// re-authenticates.
func (r *SessionRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
		}
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		r.logger.Warn("discarding malformed session record", zap.String("session_id", id), zap.Error(err))
		if delErr := r.client.Del(ctx, sessionKey(id)).Err(); delErr != nil {
			r.logger.Warn("failed to delete malformed session record", zap.String("session_id", id), zap.Error(delErr))
		}
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	return &session, nil
}

// Delete removes a session record.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}
