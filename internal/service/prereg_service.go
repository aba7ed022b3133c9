package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/prereg-portal-api/internal/dto"
	"github.com/noah-isme/prereg-portal-api/internal/models"
	"github.com/noah-isme/prereg-portal-api/internal/upstream"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
)

type registrarClient interface {
	SubmitPreReg(ctx context.Context, token, courseID string, payload upstream.SubmissionPayload) error
	Deregister(ctx context.Context, token, courseID string) error
}

type catalogProvider interface {
	Courses(ctx context.Context, session *models.Session) ([]models.Course, error)
	Invalidate(ctx context.Context, studentID string)
}

type notifier interface {
	Add(sessionID string, level models.NotificationLevel, message string) models.Notification
}

// PreRegService owns the per-session selection state and orchestrates
// submissions against the registrar. One logical writer exists per session
// (the student's browser); the registry mutex covers the server-side races
// gin's concurrency introduces.
type PreRegService struct {
	mu       sync.Mutex
	sessions map[string]*SelectionState

	catalog   catalogProvider
	registrar registrarClient
	notifier  notifier
	logger    *zap.Logger
}

// NewPreRegService constructs a PreRegService.
func NewPreRegService(catalog catalogProvider, registrar registrarClient, notifier notifier, logger *zap.Logger) *PreRegService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreRegService{
		sessions:  make(map[string]*SelectionState),
		catalog:   catalog,
		registrar: registrar,
		notifier:  notifier,
		logger:    logger,
	}
}

// state returns the session's selection state, building it from a fresh
// catalog fetch on first use.
func (s *PreRegService) state(ctx context.Context, session *models.Session) (*SelectionState, error) {
	s.mu.Lock()
	if st, ok := s.sessions[session.ID]; ok {
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()

	courses, err := s.catalog.Courses(ctx, session)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[session.ID]; ok {
		return st, nil
	}
	st := NewSelectionState(courses)
	s.sessions[session.ID] = st
	return st, nil
}

// State returns the full pre-registration view for the session.
func (s *PreRegService) State(ctx context.Context, session *models.Session) (*dto.PreRegState, error) {
	st, err := s.state(ctx, session)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(st), nil
}

// Refresh discards the cached catalog, refetches it and rebuilds the state,
// re-applying pending selections that still pass the slot constraint.
func (s *PreRegService) Refresh(ctx context.Context, session *models.Session) (*dto.PreRegState, error) {
	s.catalog.Invalidate(ctx, session.Student.StudentID)

	courses, err := s.catalog.Courses(ctx, session)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []models.CourseSelection
	if prev, ok := s.sessions[session.ID]; ok {
		pending = prev.NewSelections()
	}

	st := NewSelectionState(courses)
	for _, sel := range pending {
		if changed, selected, err := st.Toggle(sel.CourseID); err == nil && changed && selected {
			st.SetMode(sel.CourseID, sel.Mode)
		}
	}
	s.sessions[session.ID] = st
	return s.snapshot(st), nil
}

// Toggle flips the pending selection for a course. A slot conflict emits one
// error notification and leaves the selection set unchanged.
func (s *PreRegService) Toggle(ctx context.Context, session *models.Session, courseID string) (*dto.PreRegState, error) {
	st, err := s.state(ctx, session)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, err := st.Toggle(courseID); err != nil {
		s.notifier.Add(session.ID, models.NotificationError, appErrors.FromError(err).Message)
		return nil, err
	}
	return s.snapshot(st), nil
}

// SetMode updates the enrollment mode of a pending selection. Confirmed
// registrations are immutable.
func (s *PreRegService) SetMode(ctx context.Context, session *models.Session, courseID string, mode models.EnrollmentMode) (*dto.PreRegState, error) {
	st, err := s.state(ctx, session)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st.SetMode(courseID, mode)
	return s.snapshot(st), nil
}

// Submit drains the new selections against the registrar, one request in
// flight at a time so each confirmation lands before the next item's slot
// check. A failed item never aborts the remainder; there is no retry and no
// rollback.
func (s *PreRegService) Submit(ctx context.Context, session *models.Session) (*dto.SubmissionResult, error) {
	st, err := s.state(ctx, session)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if len(st.Selections()) == 0 {
		s.mu.Unlock()
		s.notifier.Add(session.ID, models.NotificationError, "Please select at least one course before submitting.")
		return nil, appErrors.Clone(appErrors.ErrEmptySelection, "")
	}
	if !st.beginSubmit() {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrSubmissionInFlight, "")
	}
	batch := st.NewSelections()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		st.endSubmit()
		s.mu.Unlock()
	}()

	result := &dto.SubmissionResult{}

	for _, sel := range batch {
		payload := upstream.SubmissionPayload{
			StudentID:  session.Student.StudentID,
			UID:        session.Student.UID,
			CourseMode: sel.Mode,
			CourseType: sel.Category,
		}

		if err := s.registrar.SubmitPreReg(ctx, session.UpstreamToken, sel.CourseID, payload); err != nil {
			name := sel.CourseID
			s.mu.Lock()
			if course, ok := st.Course(sel.CourseID); ok {
				name = course.DisplayName()
			}
			s.mu.Unlock()

			message := appErrors.FromError(err).Message
			s.logger.Warn("course submission failed",
				zap.String("student_id", session.Student.StudentID),
				zap.String("course_id", sel.CourseID),
				zap.Error(err))
			s.notifier.Add(session.ID, models.NotificationError, fmt.Sprintf("%s: %s", name, message))
			result.Failed = append(result.Failed, dto.FailedSubmission{CourseID: sel.CourseID, Course: name, Message: message})
			continue
		}

		s.mu.Lock()
		st.MarkConfirmed(sel.CourseID)
		s.mu.Unlock()
		result.Submitted++
	}

	if result.Submitted > 0 {
		s.notifier.Add(session.ID, models.NotificationSuccess,
			fmt.Sprintf("Successfully submitted %d %s!", result.Submitted, pluralCourse(result.Submitted)))
		s.catalog.Invalidate(ctx, session.Student.StudentID)
	}
	if len(result.Failed) > 0 {
		s.notifier.Add(session.ID, models.NotificationError,
			fmt.Sprintf("Failed to submit %d %s. Check individual error messages above.", len(result.Failed), pluralCourse(len(result.Failed))))
	}

	return result, nil
}

// Deregister removes a confirmed registration via the registrar and updates
// the local state on success.
func (s *PreRegService) Deregister(ctx context.Context, session *models.Session, courseID string) (*dto.PreRegState, error) {
	st, err := s.state(ctx, session)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	confirmed := st.IsConfirmed(courseID)
	course, known := st.Course(courseID)
	s.mu.Unlock()

	if !confirmed {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course is not registered")
	}

	if err := s.registrar.Deregister(ctx, session.UpstreamToken, courseID); err != nil {
		name := courseID
		if known {
			name = course.DisplayName()
		}
		s.notifier.Add(session.ID, models.NotificationError, fmt.Sprintf("%s: %s", name, appErrors.FromError(err).Message))
		return nil, err
	}

	s.mu.Lock()
	st.Unconfirm(courseID)
	snapshot := s.snapshot(st)
	s.mu.Unlock()

	name := courseID
	if known {
		name = course.DisplayName()
	}
	s.notifier.Add(session.ID, models.NotificationSuccess, fmt.Sprintf("Removed registration for %s.", name))
	s.catalog.Invalidate(ctx, session.Student.StudentID)
	return snapshot, nil
}

// Registered lists the session's confirmed courses with their modes.
func (s *PreRegService) Registered(ctx context.Context, session *models.Session) ([]dto.RegisteredCourse, error) {
	st, err := s.state(ctx, session)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	modes := make(map[string]models.EnrollmentMode)
	for _, sel := range st.Selections() {
		modes[sel.CourseID] = sel.Mode
	}

	var out []dto.RegisteredCourse
	for _, id := range st.ConfirmedIDs() {
		course, ok := st.Course(id)
		if !ok {
			continue
		}
		mode, has := modes[id]
		if !has {
			mode = models.ModeRegular
		}
		out = append(out, dto.RegisteredCourse{Course: course, Mode: mode})
	}
	return out, nil
}

// DropSession discards in-memory selection state on logout.
func (s *PreRegService) DropSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *PreRegService) snapshot(st *SelectionState) *dto.PreRegState {
	stats := st.Stats()
	return &dto.PreRegState{
		GroupedCourses: st.SlotGroups(),
		Selections:     st.Selections(),
		Confirmed:      st.ConfirmedIDs(),
		TotalCredits:   stats.TotalCredits,
		CategoryCounts: stats.CategoryCounts,
		Submitting:     st.Submitting(),
	}
}

func pluralCourse(n int) string {
	if n == 1 {
		return "course"
	}
	return "courses"
}
