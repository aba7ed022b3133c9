package models

// CategoryRequirement is the institution's credit requirement for one
// degree-requirement category.
type CategoryRequirement struct {
	Category         CourseCategory `json:"category"`
	CategoryName     string         `json:"category_name"`
	RequiredCredits  int            `json:"total_credits"`
	CompletedCredits int            `json:"completed_credits"`
}

// CategoryProgress is the per-category completion figure shown on the
// dashboard.
type CategoryProgress struct {
	CategoryRequirement
	Percentage int `json:"percentage"`
}

// ProgressStats aggregates degree progress across all categories.
type ProgressStats struct {
	TotalCredits         int `json:"total_credits"`
	CompletedCredits     int `json:"completed_credits"`
	OverallPercentage    int `json:"overall_percentage"`
	CategoriesCompleted  int `json:"categories_completed"`
	CategoriesInProgress int `json:"categories_in_progress"`
	CategoriesNotStarted int `json:"categories_not_started"`
}
