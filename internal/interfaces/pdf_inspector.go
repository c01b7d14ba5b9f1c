// -----------------------------------------------------------------------
// PDF Inspector Interface - Read generated PDF documents back
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/travelpdf/internal/models"
)

// PDFInspector reads PDF documents back for verification and reporting.
type PDFInspector interface {
	// Inspect validates the document and returns its metadata.
	Inspect(ctx context.Context, pdf []byte) (*models.PDFMetadata, error)

	// InspectFile reads a PDF from disk and inspects it.
	InspectFile(ctx context.Context, path string) (*models.PDFMetadata, error)

	// PageText returns the text drawn on each page, in page order.
	PageText(ctx context.Context, pdf []byte) ([]string, error)
}
