package models

// EnrollmentMode is the basis under which a student takes a course.
type EnrollmentMode string

// Supported enrollment modes.
const (
	ModeRegular    EnrollmentMode = "regular"
	ModePassFail   EnrollmentMode = "pass_fail"
	ModeEquivalent EnrollmentMode = "equivalent"
	ModeAudit      EnrollmentMode = "audit"
	ModeBacklog    EnrollmentMode = "backlog"
)

var enrollmentModes = map[EnrollmentMode]struct{}{
	ModeRegular:    {},
	ModePassFail:   {},
	ModeEquivalent: {},
	ModeAudit:      {},
	ModeBacklog:    {},
}

// ParseEnrollmentMode validates a raw enrollment mode.
func ParseEnrollmentMode(raw string) (EnrollmentMode, bool) {
	m := EnrollmentMode(raw)
	_, ok := enrollmentModes[m]
	return m, ok
}

// CourseSelection is a pending, client-initiated enrollment choice. At most
// one selection exists per course id.
type CourseSelection struct {
	CourseID string         `json:"course_id"`
	Mode     EnrollmentMode `json:"enrollment_type"`
	Category CourseCategory `json:"course_type"`
}

// SelectionStats are the derived summary figures recomputed on every change
// to the selection set.
type SelectionStats struct {
	TotalCredits   int                    `json:"total_credits"`
	CategoryCounts map[CourseCategory]int `json:"course_type_counts"`
}
