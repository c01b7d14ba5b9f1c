package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/travelpdf/internal/common"
	"github.com/ternarybob/travelpdf/internal/services/images"
	"github.com/ternarybob/travelpdf/internal/services/pdf"
	"github.com/ternarybob/travelpdf/internal/services/report"
	"github.com/ternarybob/travelpdf/internal/services/transform"
	"github.com/ternarybob/travelpdf/internal/services/validation"
)

// App holds the wired report engine components
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Input
	Parser     *validation.RecordValidationService
	Normalizer *transform.Service

	// Rendering
	Fetcher   *images.Fetcher
	Inspector *pdf.Inspector

	// Assembly
	ReportService *report.Service
}

// New initializes the application with all dependencies
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = common.NewQuietLogger()
	}

	app := &App{
		Config: config,
		Logger: logger,
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Debug().
		Str("page_size", config.Render.PageSize).
		Bool("normalize_text", config.Render.NormalizeText).
		Bool("verify_output", config.Output.Verify).
		Msg("Application initialized")

	return app, nil
}

// initServices wires the services in dependency order
func (a *App) initServices() error {
	// 1. Record parsing and text normalization
	a.Parser = validation.NewRecordValidationService(a.Logger)
	a.Normalizer = transform.NewService(a.Logger)

	// 2. Image fetching
	a.Fetcher = images.NewFetcher(images.ConfigFromApp(a.Config), a.Logger)

	// 3. PDF read-back
	a.Inspector = pdf.NewInspector(a.Logger)

	// 4. Report assembly
	if _, err := pdf.NewBuilder(pdf.StyleFromConfig(a.Config), pdf.DocumentInfo{}, a.Logger); err != nil {
		return fmt.Errorf("invalid render configuration: %w", err)
	}
	a.ReportService = report.NewService(
		a.Config,
		a.Parser,
		a.Fetcher,
		a.Normalizer,
		a.Inspector,
		a.Logger,
	)

	return nil
}

// Close releases application resources
func (a *App) Close() error {
	a.Logger.Debug().Msg("Application closed")
	return nil
}
