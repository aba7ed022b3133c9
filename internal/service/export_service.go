package service

import (
	"fmt"
	"strconv"

	"github.com/noah-isme/prereg-portal-api/internal/dto"
	"github.com/noah-isme/prereg-portal-api/internal/models"
	"github.com/noah-isme/prereg-portal-api/pkg/export"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
)

// ExportFormat selects the export renderer.
type ExportFormat string

// Supported export formats.
const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders a student's registered courses as CSV or PDF.
type ExportService struct {
	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewExportService constructs an ExportService.
func NewExportService() *ExportService {
	return &ExportService{csv: export.NewCSVExporter(), pdf: export.NewPDFExporter()}
}

var exportHeaders = []string{"Code", "Name", "Slot", "Credits", "L", "T", "P", "Category", "Mode"}

// Render produces the export file for the given format.
func (s *ExportService) Render(format ExportFormat, student models.StudentProfile, courses []dto.RegisteredCourse) (*ExportFile, error) {
	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(courses))}
	for _, c := range courses {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Code":     c.Code,
			"Name":     c.Name,
			"Slot":     c.Slot,
			"Credits":  strconv.Itoa(c.Credits),
			"L":        strconv.Itoa(c.Lecture),
			"T":        strconv.Itoa(c.Tutorial),
			"P":        strconv.Itoa(c.Practical),
			"Category": string(c.Category),
			"Mode":     string(c.Mode),
		})
	}

	switch format {
	case ExportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("registered-courses-%s.csv", student.StudentID),
		}, nil
	case ExportPDF:
		title := fmt.Sprintf("Registered Courses - %s", student.StudentID)
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("registered-courses-%s.pdf", student.StudentID),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
