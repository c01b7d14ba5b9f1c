// -----------------------------------------------------------------------
// Report Assembler - turns research records into PDF travel reports
// -----------------------------------------------------------------------

package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/travelpdf/internal/common"
	"github.com/ternarybob/travelpdf/internal/interfaces"
	"github.com/ternarybob/travelpdf/internal/models"
	"github.com/ternarybob/travelpdf/internal/services/pdf"
	"github.com/ternarybob/travelpdf/internal/services/validation"
)

// Service implements interfaces.ReportService
type Service struct {
	config     *common.Config
	parser     interfaces.RecordParser
	fetcher    interfaces.ImageFetcher
	normalizer interfaces.TextNormalizer
	inspector  interfaces.PDFInspector
	style      pdf.Style
	logger     arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ReportService = (*Service)(nil)

// NewService creates a new report service. normalizer may be nil, in which
// case record text is only trimmed. inspector may be nil when
// config.Output.Verify is off.
func NewService(
	config *common.Config,
	parser interfaces.RecordParser,
	fetcher interfaces.ImageFetcher,
	normalizer interfaces.TextNormalizer,
	inspector interfaces.PDFInspector,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:     config,
		parser:     parser,
		fetcher:    fetcher,
		normalizer: normalizer,
		inspector:  inspector,
		style:      pdf.StyleFromConfig(config),
		logger:     logger,
	}
}

// Generate decodes the payload and writes the report. Decode and validation
// failures return *models.InputError before anything is rendered or written.
func (s *Service) Generate(ctx context.Context, payload []byte, outputPath string) (*models.ReportResult, error) {
	record, err := s.parser.Parse(payload)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Rejected research record")
		return nil, err
	}
	return s.GenerateRecord(ctx, record, outputPath)
}

// GenerateRecord renders the record and writes it to outputPath, or to a path
// derived from the destination when outputPath is empty.
func (s *Service) GenerateRecord(ctx context.Context, record *models.ResearchRecord, outputPath string) (*models.ReportResult, error) {
	if err := validation.ValidateRecord(record); err != nil {
		return nil, err
	}

	path := ResolveOutputPath(outputPath, s.config.OutputDir(), record.Destination)

	rendered, err := s.Render(ctx, record)
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(path, rendered.Data, 0644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to write report")
		return nil, &models.RenderError{Op: "write", Err: err}
	}

	result := rendered.ReportResult
	result.Path = path

	s.logger.Info().
		Str("report_id", result.ReportID).
		Str("destination", record.Destination).
		Str("path", path).
		Int("pages", result.PageCount).
		Int64("size", result.Size).
		Int("images_placed", result.ImagesPlaced).
		Int("images_omitted", result.ImagesOmitted).
		Dur("duration", result.Duration).
		Msg("Report generated")

	return &result, nil
}

// Render lays out the record and returns the PDF bytes. Images are fetched
// concurrently up front; blocks are always placed in plan order.
func (s *Service) Render(ctx context.Context, record *models.ResearchRecord) (*models.RenderedReport, error) {
	if err := validation.ValidateRecord(record); err != nil {
		return nil, err
	}

	start := time.Now()
	reportID := common.NewReportID()

	blocks := Plan(record, s.normalize)
	urls := ImageURLs(blocks)

	s.logger.Debug().
		Str("report_id", reportID).
		Str("destination", record.Destination).
		Int("blocks", len(blocks)).
		Int("images", len(urls)).
		Msg("Rendering report")

	var images []models.ImageResult
	if len(urls) > 0 {
		images = s.fetcher.Prefetch(ctx, urls)
	}

	builder, err := pdf.NewBuilder(s.style, s.documentInfo(record), s.logger)
	if err != nil {
		return nil, err
	}

	if err := renderBlocks(builder, blocks, images); err != nil {
		return nil, err
	}

	data, err := builder.Finish()
	if err != nil {
		return nil, err
	}

	layout := builder.Layout()
	placed := 0
	for _, b := range layout {
		if b.Kind == models.BlockImage {
			placed++
		}
	}

	result := models.RenderedReport{
		ReportResult: models.ReportResult{
			ReportID:      reportID,
			Size:          int64(len(data)),
			PageCount:     builder.PageCount(),
			ImagesPlaced:  placed,
			ImagesOmitted: len(urls) - placed,
			Layout:        layout,
		},
		Data: data,
	}

	if err := s.verify(ctx, &result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return &result, nil
}

// renderBlocks feeds the plan to the builder. images[i] belongs to the i-th
// image block.
func renderBlocks(builder interfaces.DocumentBuilder, blocks []models.ContentBlock, images []models.ImageResult) error {
	next := 0
	for _, block := range blocks {
		switch block.Kind {
		case models.BlockTitle:
			builder.RenderTitle(block.Text)
		case models.BlockSectionHeading:
			builder.RenderSectionHeading(block.Text)
		case models.BlockSubsectionHeading:
			builder.RenderSubsectionHeading(block.Text)
		case models.BlockParagraph:
			builder.RenderParagraph(block.Text)
		case models.BlockBullet:
			builder.RenderBullet(block.Text)
		case models.BlockImage:
			image := models.AbsentImage(block.URL, "not fetched")
			if next < len(images) {
				image = images[next]
			}
			next++
			builder.RenderImage(image, block.Width)
		default:
			return &models.RenderError{Op: "plan", Err: fmt.Errorf("unknown block kind %q", block.Kind)}
		}
	}
	return builder.Err()
}

// verify reads the document back and checks its page count. The check runs
// even when ctx is already cancelled, since cancellation only drops images.
func (s *Service) verify(ctx context.Context, rendered *models.RenderedReport) error {
	if !s.config.Output.Verify || s.inspector == nil {
		return nil
	}

	meta, err := s.inspector.Inspect(context.WithoutCancel(ctx), rendered.Data)
	if err != nil {
		s.logger.Error().Err(err).Str("report_id", rendered.ReportID).Msg("Generated PDF failed verification")
		return &models.RenderError{Op: "verify", Err: err}
	}
	if meta.PageCount != rendered.PageCount {
		return &models.RenderError{
			Op:  "verify",
			Err: fmt.Errorf("page count mismatch: laid out %d, document has %d", rendered.PageCount, meta.PageCount),
		}
	}
	return nil
}

func (s *Service) normalize(text string) string {
	if s.normalizer == nil || !s.config.Render.NormalizeText {
		return strings.TrimSpace(text)
	}
	return s.normalizer.PlainText(text)
}

func (s *Service) documentInfo(record *models.ResearchRecord) pdf.DocumentInfo {
	return pdf.DocumentInfo{
		Title:    record.Destination,
		Subject:  "Travel research report: " + record.Destination,
		Author:   s.config.Render.Author,
		Creator:  s.config.Render.Creator,
		Keywords: []string{"travel", "itinerary", record.Destination},
	}
}
