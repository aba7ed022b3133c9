package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prereg-portal-api/internal/dto"
	"github.com/noah-isme/prereg-portal-api/internal/models"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
)

func registeredFixture() []dto.RegisteredCourse {
	return []dto.RegisteredCourse{
		{
			Course: models.Course{CourseID: "c1", Code: "CS101", Name: "Programming", Slot: "A", Credits: 4, Lecture: 3, Tutorial: 1, Practical: 2, Category: models.CategoryInstituteCore},
			Mode:   models.ModeRegular,
		},
		{
			Course: models.Course{CourseID: "c3", Code: "HS101", Name: "Economics", Slot: "B", Credits: 3, Category: models.CategoryHumanities},
			Mode:   models.ModeAudit,
		},
	}
}

func TestExportCSV(t *testing.T) {
	svc := NewExportService()
	student := models.StudentProfile{StudentID: "S123"}

	file, err := svc.Render(ExportCSV, student, registeredFixture())
	require.NoError(t, err)

	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "registered-courses-S123.csv", file.Filename)

	content := string(file.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Code,Name,Slot,Credits,L,T,P,Category,Mode", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "CS101")
	assert.Contains(t, lines[1], "regular")
	assert.Contains(t, lines[2], "audit")
}

func TestExportPDF(t *testing.T) {
	svc := NewExportService()
	student := models.StudentProfile{StudentID: "S123"}

	file, err := svc.Render(ExportPDF, student, registeredFixture())
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "registered-courses-S123.pdf", file.Filename)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportEmptyList(t *testing.T) {
	svc := NewExportService()

	file, err := svc.Render(ExportCSV, models.StudentProfile{StudentID: "S123"}, nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	assert.Len(t, lines, 1, "headers only")
}

func TestExportUnknownFormat(t *testing.T) {
	svc := NewExportService()

	_, err := svc.Render(ExportFormat("xlsx"), models.StudentProfile{StudentID: "S123"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
