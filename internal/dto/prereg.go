package dto

import "github.com/noah-isme/prereg-portal-api/internal/models"

// PreRegState is the full pre-registration view: catalog grouped by slot,
// pending selections, confirmed course ids and the derived summary.
type PreRegState struct {
	GroupedCourses models.SlotGroups             `json:"grouped_courses"`
	Selections     []models.CourseSelection      `json:"selected_courses"`
	Confirmed      []string                      `json:"pre_registered_courses"`
	TotalCredits   int                           `json:"total_credits"`
	CategoryCounts map[models.CourseCategory]int `json:"course_type_counts"`
	Submitting     bool                          `json:"is_submitting"`
}

// SetModeRequest updates the enrollment mode of a pending selection.
type SetModeRequest struct {
	Mode string `json:"enrollment_type" validate:"required"`
}

// FailedSubmission describes one course the registrar rejected.
type FailedSubmission struct {
	CourseID string `json:"course_id"`
	Course   string `json:"course"`
	Message  string `json:"message"`
}

// SubmissionResult aggregates per-course outcomes of one submission batch.
// Partial success is a normal terminal outcome.
type SubmissionResult struct {
	Submitted int                `json:"submitted"`
	Failed    []FailedSubmission `json:"failed"`
}

// RegisteredCourse is a confirmed registration with its enrollment mode.
type RegisteredCourse struct {
	models.Course
	Mode models.EnrollmentMode `json:"enrollment_type"`
}
