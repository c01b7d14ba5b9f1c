package interfaces

import (
	"context"

	"github.com/ternarybob/travelpdf/internal/models"
)

// ReportService turns research records into PDF travel reports
type ReportService interface {
	// Generate decodes a serialized record and writes the report.
	// outputPath may be empty, in which case a path is derived from the destination.
	Generate(ctx context.Context, payload []byte, outputPath string) (*models.ReportResult, error)

	// GenerateRecord writes the report for an already decoded record.
	GenerateRecord(ctx context.Context, record *models.ResearchRecord, outputPath string) (*models.ReportResult, error)

	// Render produces the report bytes without writing them anywhere.
	Render(ctx context.Context, record *models.ResearchRecord) (*models.RenderedReport, error)
}
