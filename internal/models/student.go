package models

// StudentProfile is the registrar's view of the logged-in student. The batch
// year doubles as the catalog "year" query parameter.
type StudentProfile struct {
	StudentID string `json:"student_id" validate:"required"`
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Branch    string `json:"branch"`
	Batch     int    `json:"batch"`
	Program   string `json:"program"`
	School    string `json:"school"`
}
