package interfaces

import "github.com/ternarybob/travelpdf/internal/models"

// DocumentBuilder lays out content blocks onto PDF pages.
// A builder serves exactly one document and is not safe for concurrent use.
type DocumentBuilder interface {
	RenderTitle(text string)
	RenderSectionHeading(text string)
	RenderSubsectionHeading(text string)
	RenderParagraph(text string)
	RenderBullet(text string)
	// RenderImage places a fetched image; an absent result is a no-op.
	RenderImage(result models.ImageResult, widthHint float64)

	// Finish serializes the document. It may be called once.
	Finish() ([]byte, error)

	// Layout returns the blocks placed so far, in placement order.
	Layout() []models.PlacedBlock

	// PageCount returns the number of pages laid out so far.
	PageCount() int

	// Err returns the terminal error recorded by the builder, if any.
	Err() error
}
