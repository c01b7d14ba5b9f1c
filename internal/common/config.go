package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig `toml:"logging"`
	Images      ImagesConfig  `toml:"images"`
	Render      RenderConfig  `toml:"render"`
	Output      OutputConfig  `toml:"output"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for console/file logs
}

// ImagesConfig controls remote image retrieval
type ImagesConfig struct {
	Timeout           string  `toml:"timeout"`             // Per-image fetch budget, duration string (default: "10s")
	MaxBytes          int64   `toml:"max_bytes"`           // Maximum response body size
	MaxPixels         int     `toml:"max_pixels"`          // Maximum width*height accepted for decode
	Concurrency       int     `toml:"concurrency"`         // Concurrent prefetches per report
	RequestsPerSecond float64 `toml:"requests_per_second"` // 0 = unlimited
	UserAgent         string  `toml:"user_agent"`
	Retries           int     `toml:"retries"`     // Extra attempts after a transport error or 5xx
	RetryDelay        string  `toml:"retry_delay"` // Initial backoff between attempts (default: "200ms")
}

// RenderConfig controls document layout and metadata
type RenderConfig struct {
	PageSize      string `toml:"page_size"`      // "A4", "Letter", ...
	HeaderText    string `toml:"header_text"`    // Text printed at the top of every page
	Author        string `toml:"author"`         // PDF metadata
	Creator       string `toml:"creator"`        // PDF metadata
	Compress      bool   `toml:"compress"`       // Compress page content streams
	NormalizeText bool   `toml:"normalize_text"` // Convert markdown/HTML in record text to plain text
}

// OutputConfig controls where reports are written
type OutputConfig struct {
	Dir    string `toml:"dir"`    // Directory for generated reports when no path is given (default: OS temp dir)
	Verify bool   `toml:"verify"` // Read the PDF back with pdfcpu before committing it
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Images: ImagesConfig{
			Timeout:           "10s",
			MaxBytes:          10 * 1024 * 1024, // 10MB
			MaxPixels:         40_000_000,
			Concurrency:       4,
			RequestsPerSecond: 0,
			UserAgent:         "travelpdf/" + GetVersion(),
			Retries:           1,
			RetryDelay:        "200ms",
		},
		Render: RenderConfig{
			PageSize:      "A4",
			HeaderText:    "Travel Research Report",
			Creator:       "travelpdf",
			Compress:      true,
			NormalizeText: true,
		},
		Output: OutputConfig{
			Dir:    "",
			Verify: true,
		},
	}
}

// ImageTimeout returns the parsed per-image timeout, falling back to 10s.
func (c *Config) ImageTimeout() time.Duration {
	d, err := time.ParseDuration(c.Images.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// ImageRetryDelay returns the parsed retry backoff, falling back to 200ms.
func (c *Config) ImageRetryDelay() time.Duration {
	d, err := time.ParseDuration(c.Images.RetryDelay)
	if err != nil || d <= 0 {
		return 200 * time.Millisecond
	}
	return d
}

// OutputDir returns the directory for reports written without an explicit path.
func (c *Config) OutputDir() string {
	if strings.TrimSpace(c.Output.Dir) != "" {
		return c.Output.Dir
	}
	return os.TempDir()
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Images.Timeout); err != nil {
		return fmt.Errorf("invalid images.timeout %q: %w", c.Images.Timeout, err)
	}
	if c.Images.Concurrency < 1 {
		return fmt.Errorf("images.concurrency must be at least 1, got %d", c.Images.Concurrency)
	}
	if c.Images.MaxBytes <= 0 {
		return fmt.Errorf("images.max_bytes must be positive, got %d", c.Images.MaxBytes)
	}
	if c.Images.Retries < 0 {
		return fmt.Errorf("images.retries must not be negative, got %d", c.Images.Retries)
	}
	if c.Images.RequestsPerSecond < 0 {
		return fmt.Errorf("images.requests_per_second must not be negative")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TRAVELPDF_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Logging configuration
	if level := os.Getenv("TRAVELPDF_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("TRAVELPDF_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Image configuration
	if timeout := os.Getenv("TRAVELPDF_IMAGES_TIMEOUT"); timeout != "" {
		config.Images.Timeout = timeout
	}
	if maxBytes := os.Getenv("TRAVELPDF_IMAGES_MAX_BYTES"); maxBytes != "" {
		if mb, err := strconv.ParseInt(maxBytes, 10, 64); err == nil {
			config.Images.MaxBytes = mb
		}
	}
	if concurrency := os.Getenv("TRAVELPDF_IMAGES_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Images.Concurrency = c
		}
	}
	if rps := os.Getenv("TRAVELPDF_IMAGES_RPS"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil {
			config.Images.RequestsPerSecond = r
		}
	}
	if retries := os.Getenv("TRAVELPDF_IMAGES_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			config.Images.Retries = r
		}
	}
	if userAgent := os.Getenv("TRAVELPDF_IMAGES_USER_AGENT"); userAgent != "" {
		config.Images.UserAgent = userAgent
	}

	// Render configuration
	if header := os.Getenv("TRAVELPDF_RENDER_HEADER_TEXT"); header != "" {
		config.Render.HeaderText = header
	}
	if compress := os.Getenv("TRAVELPDF_RENDER_COMPRESS"); compress != "" {
		if c, err := strconv.ParseBool(compress); err == nil {
			config.Render.Compress = c
		}
	}

	// Output configuration
	if dir := os.Getenv("TRAVELPDF_OUTPUT_DIR"); dir != "" {
		config.Output.Dir = dir
	}
	if verify := os.Getenv("TRAVELPDF_OUTPUT_VERIFY"); verify != "" {
		if v, err := strconv.ParseBool(verify); err == nil {
			config.Output.Verify = v
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, logLevel, outputDir string) {
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
	if outputDir != "" {
		config.Output.Dir = outputDir
	}
}
