package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/prereg-portal-api/internal/dto"
	"github.com/noah-isme/prereg-portal-api/internal/models"
)

// defaultRequirements is the institution's credit requirement table.
// TODO: source completed credits from the transcript service once it exposes
// per-category totals; until then these mirror the published curriculum.
var defaultRequirements = []models.CategoryRequirement{
	{Category: models.CategoryInstituteCore, CategoryName: models.CategoryNames[models.CategoryInstituteCore], RequiredCredits: 12, CompletedCredits: 8},
	{Category: models.CategoryDisciplineCore, CategoryName: models.CategoryNames[models.CategoryDisciplineCore], RequiredCredits: 24, CompletedCredits: 16},
	{Category: models.CategoryDisciplineElective, CategoryName: models.CategoryNames[models.CategoryDisciplineElective], RequiredCredits: 16, CompletedCredits: 12},
	{Category: models.CategoryHumanities, CategoryName: models.CategoryNames[models.CategoryHumanities], RequiredCredits: 8, CompletedCredits: 4},
	{Category: models.CategoryFreeElective, CategoryName: models.CategoryNames[models.CategoryFreeElective], RequiredCredits: 8, CompletedCredits: 0},
}

type profileRefresher interface {
	RefreshProfile(ctx context.Context, session *models.Session) (*models.StudentProfile, error)
}

// DashboardService assembles the student dashboard: profile plus
// degree-progress statistics.
type DashboardService struct {
	auth         profileRefresher
	requirements []models.CategoryRequirement
	logger       *zap.Logger
}

// NewDashboardService constructs a DashboardService. A nil requirements
// slice falls back to the default curriculum table.
func NewDashboardService(auth profileRefresher, requirements []models.CategoryRequirement, logger *zap.Logger) *DashboardService {
	if requirements == nil {
		requirements = defaultRequirements
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{auth: auth, requirements: requirements, logger: logger}
}

// Dashboard returns the dashboard view. With refresh set the profile is
// refetched from the registrar; a failed refresh falls back to the cached
// profile rather than blanking the page.
func (s *DashboardService) Dashboard(ctx context.Context, session *models.Session, refresh bool) (*dto.Dashboard, error) {
	student := session.Student
	if refresh {
		profile, err := s.auth.RefreshProfile(ctx, session)
		if err != nil {
			s.logger.Warn("profile refresh failed, serving cached profile",
				zap.String("student_id", student.StudentID), zap.Error(err))
		} else {
			student = *profile
		}
	}

	progress := CategoryProgress(s.requirements)
	return &dto.Dashboard{
		Student:  student,
		Progress: progress,
		Stats:    ComputeProgressStats(progress),
	}, nil
}

// CategoryProgress derives per-category completion percentages. A category
// with zero required credits counts as complete.
func CategoryProgress(requirements []models.CategoryRequirement) []models.CategoryProgress {
	out := make([]models.CategoryProgress, 0, len(requirements))
	for _, req := range requirements {
		percentage := 100
		if req.RequiredCredits > 0 {
			percentage = req.CompletedCredits * 100 / req.RequiredCredits
			if percentage > 100 {
				percentage = 100
			}
		}
		out = append(out, models.CategoryProgress{CategoryRequirement: req, Percentage: percentage})
	}
	return out
}

// ComputeProgressStats aggregates overall degree progress. Safe on an empty
// table: every figure is zero.
func ComputeProgressStats(progress []models.CategoryProgress) models.ProgressStats {
	stats := models.ProgressStats{}
	for _, p := range progress {
		stats.TotalCredits += p.RequiredCredits
		stats.CompletedCredits += p.CompletedCredits
		switch {
		case p.Percentage >= 100:
			stats.CategoriesCompleted++
		case p.Percentage > 0:
			stats.CategoriesInProgress++
		default:
			stats.CategoriesNotStarted++
		}
	}
	if stats.TotalCredits > 0 {
		stats.OverallPercentage = stats.CompletedCredits * 100 / stats.TotalCredits
	}
	return stats
}
