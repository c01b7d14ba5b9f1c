// -----------------------------------------------------------------------
// Image Fetcher
// Downloads remote images for report pages; failures degrade to "absent"
// -----------------------------------------------------------------------

package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/travelpdf/internal/common"
	"github.com/ternarybob/travelpdf/internal/httpclient"
	"github.com/ternarybob/travelpdf/internal/interfaces"
	"github.com/ternarybob/travelpdf/internal/models"
)

// Config holds configuration for image fetching
type Config struct {
	// Timeout bounds each fetch from request to decoded raster
	Timeout time.Duration

	// MaxImageSize is the maximum response body accepted (default: 10MB)
	MaxImageSize int64

	// MaxPixels rejects images whose width*height exceeds it before full decode
	MaxPixels int

	// Concurrency for Prefetch
	Concurrency int

	// RequestsPerSecond throttles fetch starts; 0 disables throttling
	RequestsPerSecond float64

	// UserAgent for HTTP requests
	UserAgent string

	// Retries is the number of extra attempts after a transport error or 5xx
	Retries int

	// RetryDelay is the initial backoff between attempts
	RetryDelay time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		MaxImageSize: 10 * 1024 * 1024, // 10MB
		MaxPixels:    40_000_000,
		Concurrency:  4,
		UserAgent:    "travelpdf/" + common.GetVersion(),
		Retries:      1,
		RetryDelay:   200 * time.Millisecond,
	}
}

// ConfigFromApp maps the [images] section of the application config
func ConfigFromApp(cfg *common.Config) Config {
	return Config{
		Timeout:           cfg.ImageTimeout(),
		MaxImageSize:      cfg.Images.MaxBytes,
		MaxPixels:         cfg.Images.MaxPixels,
		Concurrency:       cfg.Images.Concurrency,
		RequestsPerSecond: cfg.Images.RequestsPerSecond,
		UserAgent:         cfg.Images.UserAgent,
		Retries:           cfg.Images.Retries,
		RetryDelay:        cfg.ImageRetryDelay(),
	}
}

// Fetcher downloads and decodes images. It keeps no state between calls
// apart from the HTTP client, the retry policy and the optional rate limiter.
type Fetcher struct {
	config  Config
	logger  arbor.ILogger
	client  *http.Client
	limiter *rate.Limiter
	retrier retry.Retry[*download]
}

// download is the raw body of one successful response
type download struct {
	data        []byte
	contentType string
}

// errPermanent marks failures that a retry cannot fix
var errPermanent = errors.New("permanent fetch failure")

type permanentError struct {
	reason string
}

func (e *permanentError) Error() string { return e.reason }

func (e *permanentError) Is(target error) bool { return target == errPermanent }

func permanent(format string, args ...any) error {
	return &permanentError{reason: fmt.Sprintf(format, args...)}
}

var _ interfaces.ImageFetcher = (*Fetcher)(nil)

// NewFetcher creates a new image fetcher
func NewFetcher(config Config, logger arbor.ILogger) *Fetcher {
	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxImageSize <= 0 {
		config.MaxImageSize = defaults.MaxImageSize
	}
	if config.MaxPixels <= 0 {
		config.MaxPixels = defaults.MaxPixels
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.Retries < 0 {
		config.Retries = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}

	f := &Fetcher{
		config: config,
		logger: logger,
		client: httpclient.NewImageClient(config.Timeout, config.UserAgent),
	}
	f.retrier = retry.New[*download](retry.Config{
		MaxAttempts:        config.Retries + 1,
		InitialDelay:       config.RetryDelay,
		BackoffPolicy:      retry.BackoffExponential,
		Multiplier:         2.0,
		NonRetryableErrors: []error{errPermanent},
	})
	if config.RequestsPerSecond > 0 {
		burst := int(config.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}
	return f
}

// Fetch downloads a single image. It never returns an error: every network,
// status, content-type, size or decode problem yields an absent result. All
// attempts share the per-image timeout.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) models.ImageResult {
	imageURL = strings.TrimSpace(imageURL)
	result := f.fetch(ctx, imageURL)
	if result.Absent() {
		f.logger.Debug().
			Str("url", imageURL).
			Str("reason", result.Reason).
			Msg("Image omitted")
	}
	return result
}

func (f *Fetcher) fetch(ctx context.Context, imageURL string) models.ImageResult {
	if imageURL == "" {
		return models.AbsentImage(imageURL, "empty url")
	}
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return models.AbsentImage(imageURL, fmt.Sprintf("invalid url: %v", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return models.AbsentImage(imageURL, "unsupported scheme "+parsed.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	body, err := f.retrier.Do(ctx, func(ctx context.Context) (*download, error) {
		return f.download(ctx, imageURL)
	})
	if err != nil {
		return models.AbsentImage(imageURL, err.Error())
	}

	img, err := safeDecode(body.data, body.contentType, f.config.MaxPixels)
	if err != nil {
		return models.AbsentImage(imageURL, fmt.Sprintf("decode: %v", err))
	}
	img.URL = imageURL

	f.logger.Debug().
		Str("url", imageURL).
		Str("content_type", body.contentType).
		Str("format", string(img.Format)).
		Bool("declared_format_match", declaredFormat(body.contentType) == img.Format).
		Int("width", img.Width).
		Int("height", img.Height).
		Int("size", len(img.Data)).
		Msg("Image fetched")

	return models.ImageResult{URL: imageURL, Image: img}
}

// download performs one GET attempt. Transport errors and 5xx responses are
// retried; every other rejection is permanent.
func (f *Fetcher) download(ctx context.Context, imageURL string) (*download, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, permanent("rate limit wait: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, permanent("create request: %v", err)
	}
	req.Header.Set("Accept", "image/png,image/jpeg,image/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, permanent("HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isImageContentType(contentType) {
		return nil, permanent("not an image: %q", contentType)
	}

	// Read body with size limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if int64(len(data)) > f.config.MaxImageSize {
		return nil, permanent("image too large (over %d bytes)", f.config.MaxImageSize)
	}

	return &download{data: data, contentType: contentType}, nil
}

// Prefetch downloads images concurrently. Results are indexed like urls so
// callers can place them in their own order regardless of completion order.
func (f *Fetcher) Prefetch(ctx context.Context, urls []string) []models.ImageResult {
	results := make([]models.ImageResult, len(urls))
	for i, u := range urls {
		results[i] = models.AbsentImage(u, "not fetched")
	}

	var wg sync.WaitGroup

	// Semaphore for concurrency control
	sem := make(chan struct{}, f.config.Concurrency)

	for i, imgURL := range urls {
		wg.Add(1)
		idx, imageURL := i, imgURL
		common.SafeGo(f.logger, "image-prefetch", func() {
			defer wg.Done()

			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			results[idx] = f.Fetch(ctx, imageURL)
		})
	}

	wg.Wait()
	return results
}

// isImageContentType checks if content type is an image
func isImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
