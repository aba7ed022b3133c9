package dto

import "github.com/noah-isme/prereg-portal-api/internal/models"

// Dashboard bundles the student profile with degree-progress statistics.
type Dashboard struct {
	Student  models.StudentProfile     `json:"student"`
	Progress []models.CategoryProgress `json:"course_progress"`
	Stats    models.ProgressStats      `json:"progress_stats"`
}
