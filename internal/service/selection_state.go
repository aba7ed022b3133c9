package service

import (
	"fmt"

	"github.com/noah-isme/prereg-portal-api/internal/models"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
)

// SelectionState is one student's in-progress pre-registration: the catalog
// snapshot, the pending selections and the set of registrar-confirmed
// course ids. Methods are not safe for concurrent use; PreRegService guards
// each state with the session registry lock.
type SelectionState struct {
	courses    []models.Course
	slotGroups models.SlotGroups
	index      map[string]*models.Course
	selections []models.CourseSelection
	confirmed  map[string]struct{}
	submitting bool
}

// NewSelectionState seeds state from a fetched catalog. Courses the
// registrar reports as registered join the confirmed set and receive a
// regular-mode selection so the summary reflects them.
func NewSelectionState(courses []models.Course) *SelectionState {
	state := &SelectionState{
		courses:    courses,
		slotGroups: models.GroupCoursesBySlot(courses),
		index:      models.BuildCourseIndex(courses),
		confirmed:  make(map[string]struct{}),
	}
	for _, course := range courses {
		if course.Registered {
			state.confirmed[course.CourseID] = struct{}{}
			state.selections = append(state.selections, models.CourseSelection{
				CourseID: course.CourseID,
				Mode:     models.ModeRegular,
				Category: course.Category,
			})
		}
	}
	return state
}

// Course looks up a catalog course by id.
func (s *SelectionState) Course(courseID string) (models.Course, bool) {
	if c, ok := s.index[courseID]; ok {
		return *c, true
	}
	return models.Course{}, false
}

// SlotGroups exposes the slot partition of the catalog.
func (s *SelectionState) SlotGroups() models.SlotGroups {
	return s.slotGroups
}

// Selections returns a copy of the current selection list in insertion order.
func (s *SelectionState) Selections() []models.CourseSelection {
	out := make([]models.CourseSelection, len(s.selections))
	copy(out, s.selections)
	return out
}

// ConfirmedIDs lists registrar-confirmed course ids in catalog order.
func (s *SelectionState) ConfirmedIDs() []string {
	ids := make([]string, 0, len(s.confirmed))
	for _, course := range s.courses {
		if _, ok := s.confirmed[course.CourseID]; ok {
			ids = append(ids, course.CourseID)
		}
	}
	return ids
}

// IsConfirmed reports whether the registrar holds a confirmed registration.
func (s *SelectionState) IsConfirmed(courseID string) bool {
	_, ok := s.confirmed[courseID]
	return ok
}

// Submitting reports whether a submission batch is in flight.
func (s *SelectionState) Submitting() bool {
	return s.submitting
}

// Toggle adds or removes the pending selection for a course. Confirmed and
// unknown courses are silent no-ops. A new selection is rejected when the
// course's slot already holds a confirmed registration; the check runs fresh
// on every call because the confirmed set grows mid-session.
func (s *SelectionState) Toggle(courseID string) (changed bool, selected bool, err error) {
	if s.IsConfirmed(courseID) {
		return false, false, nil
	}

	for i, sel := range s.selections {
		if sel.CourseID == courseID {
			s.selections = append(s.selections[:i], s.selections[i+1:]...)
			return true, false, nil
		}
	}

	course, ok := s.Course(courseID)
	if !ok {
		return false, false, nil
	}

	if s.hasConfirmedInSlot(course.Slot) {
		msg := fmt.Sprintf("You cannot select another course in slot %s as you already have a pre-registered course in this slot.", course.Slot)
		return false, false, appErrors.Clone(appErrors.ErrSlotConflict, msg)
	}

	s.selections = append(s.selections, models.CourseSelection{
		CourseID: courseID,
		Mode:     models.ModeRegular,
		Category: course.Category,
	})
	return true, true, nil
}

// SetMode updates the enrollment mode of a pending selection. Confirmed
// courses are immutable; unselected courses are a no-op.
func (s *SelectionState) SetMode(courseID string, mode models.EnrollmentMode) bool {
	if s.IsConfirmed(courseID) {
		return false
	}
	for i := range s.selections {
		if s.selections[i].CourseID == courseID {
			s.selections[i].Mode = mode
			return true
		}
	}
	return false
}

// Stats recomputes the derived summary: total credits over selected courses
// (missing lookups contribute 0) and per-category counts. Unknown category
// tags are tolerated but never counted.
func (s *SelectionState) Stats() models.SelectionStats {
	stats := models.SelectionStats{
		CategoryCounts: make(map[models.CourseCategory]int, len(models.CourseCategories)),
	}
	for _, category := range models.CourseCategories {
		stats.CategoryCounts[category] = 0
	}
	for _, sel := range s.selections {
		course, ok := s.Course(sel.CourseID)
		if !ok {
			continue
		}
		stats.TotalCredits += course.Credits
		if _, known := models.CategoryNames[course.Category]; known {
			stats.CategoryCounts[course.Category]++
		}
	}
	return stats
}

// NewSelections returns pending selections not yet confirmed, in insertion
// order. These form the next submission batch.
func (s *SelectionState) NewSelections() []models.CourseSelection {
	var out []models.CourseSelection
	for _, sel := range s.selections {
		if !s.IsConfirmed(sel.CourseID) {
			out = append(out, sel)
		}
	}
	return out
}

// MarkConfirmed records a successful per-course submission immediately so
// later items in the same batch see the updated slot constraint.
func (s *SelectionState) MarkConfirmed(courseID string) {
	s.confirmed[courseID] = struct{}{}
}

// Unconfirm reverses a confirmation after deregistration and drops the
// matching selection.
func (s *SelectionState) Unconfirm(courseID string) {
	delete(s.confirmed, courseID)
	for i, sel := range s.selections {
		if sel.CourseID == courseID {
			s.selections = append(s.selections[:i], s.selections[i+1:]...)
			break
		}
	}
}

// beginSubmit flips the submitting flag, rejecting re-entry while a batch
// is in flight.
func (s *SelectionState) beginSubmit() bool {
	if s.submitting {
		return false
	}
	s.submitting = true
	return true
}

func (s *SelectionState) endSubmit() {
	s.submitting = false
}

func (s *SelectionState) hasConfirmedInSlot(slot string) bool {
	if slot == "" {
		slot = models.UnslottedLabel
	}
	for _, course := range s.slotGroups[slot] {
		if s.IsConfirmed(course.CourseID) {
			return true
		}
	}
	return false
}
