package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/prereg-portal-api/internal/models"
)

// NotificationService keeps a short-lived, per-session queue of user-facing
// messages. Every notification auto-expires after the configured TTL; manual
// dismissal wins over the timer and never disturbs other entries.
type NotificationService struct {
	mu     sync.Mutex
	queues map[string][]models.Notification
	ttl    time.Duration
	logger *zap.Logger
}

// NewNotificationService constructs the notification center.
func NewNotificationService(ttl time.Duration, logger *zap.Logger) *NotificationService {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		queues: make(map[string][]models.Notification),
		ttl:    ttl,
		logger: logger,
	}
}

// Add appends a notification to the session's queue and schedules its
// removal. The expiry timer is fixed at enqueue time; later additions never
// extend it.
func (s *NotificationService) Add(sessionID string, level models.NotificationLevel, message string) models.Notification {
	notification := models.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.queues[sessionID] = append(s.queues[sessionID], notification)
	s.mu.Unlock()

	time.AfterFunc(s.ttl, func() {
		s.Remove(sessionID, notification.ID)
	})

	return notification
}

// Remove deletes a notification immediately. Removing an already-expired id
// is a no-op, which is how a fired timer and a manual dismissal coexist.
func (s *NotificationService) Remove(sessionID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[sessionID]
	for i, n := range queue {
		if n.ID == id {
			s.queues[sessionID] = append(queue[:i], queue[i+1:]...)
			return
		}
	}
}

// List returns the session's notifications in insertion order.
func (s *NotificationService) List(sessionID string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[sessionID]
	out := make([]models.Notification, len(queue))
	copy(out, queue)
	return out
}

// DropSession discards a session's queue on logout. Outstanding timers fire
// against an empty queue and no-op.
func (s *NotificationService) DropSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, sessionID)
}
