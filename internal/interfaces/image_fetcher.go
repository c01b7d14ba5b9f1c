package interfaces

import (
	"context"

	"github.com/ternarybob/travelpdf/internal/models"
)

// ImageFetcher retrieves remote images. Failures never surface as errors;
// they come back as absent results.
type ImageFetcher interface {
	// Fetch retrieves and decodes a single image.
	Fetch(ctx context.Context, url string) models.ImageResult

	// Prefetch retrieves several images concurrently. Result i belongs to urls[i].
	Prefetch(ctx context.Context, urls []string) []models.ImageResult
}
