package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the resolved settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print("TravelPDF", GetVersion())

	logger.Debug().
		Str("environment", config.Environment).
		Str("page_size", config.Render.PageSize).
		Str("image_timeout", config.Images.Timeout).
		Int("image_concurrency", config.Images.Concurrency).
		Str("output_dir", config.OutputDir()).
		Bool("verify_output", config.Output.Verify).
		Msg("Resolved configuration")
}
