package interfaces

import "github.com/ternarybob/travelpdf/internal/models"

// RecordParser decodes and validates serialized research records
type RecordParser interface {
	// Parse decodes a JSON or YAML payload. Failures are *models.InputError.
	Parse(payload []byte) (*models.ResearchRecord, error)
}
