// -----------------------------------------------------------------------
// Package validation decodes and validates research record payloads
// -----------------------------------------------------------------------

package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/travelpdf/internal/interfaces"
	"github.com/ternarybob/travelpdf/internal/models"
)

// Payload formats accepted by Parse
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// RecordValidationService decodes research records from JSON or YAML
type RecordValidationService struct {
	logger arbor.ILogger
}

// ValidationResult contains the result of payload validation
type ValidationResult struct {
	Valid   bool                   `json:"valid"`
	Format  string                 `json:"format,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Message string                 `json:"message"`
	Record  *models.ResearchRecord `json:"record,omitempty"`

	// Err is the *models.InputError behind an invalid result
	Err error `json:"-"`
}

// Compile-time assertion
var _ interfaces.RecordParser = (*RecordValidationService)(nil)

// NewRecordValidationService creates a new record validation service
func NewRecordValidationService(logger arbor.ILogger) *RecordValidationService {
	return &RecordValidationService{
		logger: logger,
	}
}

// DetectFormat reports whether the payload is JSON (first non-space byte is
// '{') or YAML (anything else).
func DetectFormat(payload []byte) string {
	if bytes.HasPrefix(bytes.TrimSpace(payload), []byte("{")) {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes and validates a payload. Every failure is a *models.InputError.
func (s *RecordValidationService) Parse(payload []byte) (*models.ResearchRecord, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, &models.InputError{Reason: "empty payload"}
	}

	format := DetectFormat(payload)
	record, err := decode(payload, format)
	if err != nil {
		s.logger.Debug().Str("format", format).Err(err).Msg("Payload decode failed")
		return nil, err
	}

	record.Destination = strings.TrimSpace(record.Destination)
	if err := ValidateRecord(record); err != nil {
		s.logger.Debug().Str("format", format).Err(err).Msg("Record validation failed")
		return nil, err
	}

	s.logger.Debug().
		Str("format", format).
		Str("destination", record.Destination).
		Int("attractions", len(record.Attractions)).
		Int("itinerary_days", len(record.Itinerary)).
		Int("tips", len(record.Tips)).
		Msg("Research record parsed")

	return record, nil
}

// Validate parses the payload and reports the outcome without returning an error
func (s *RecordValidationService) Validate(payload []byte) ValidationResult {
	format := DetectFormat(payload)
	record, err := s.Parse(payload)
	if err != nil {
		return ValidationResult{
			Valid:   false,
			Format:  format,
			Error:   err.Error(),
			Message: fmt.Sprintf("Research record validation failed: %v", err),
			Err:     err,
		}
	}
	return ValidationResult{
		Valid:   true,
		Format:  format,
		Message: fmt.Sprintf("Research record for %q is valid", record.Destination),
		Record:  record,
	}
}

func decode(payload []byte, format string) (*models.ResearchRecord, error) {
	record := &models.ResearchRecord{}

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(payload))
		if err := dec.Decode(record); err != nil {
			return nil, &models.InputError{Reason: "malformed JSON", Err: err}
		}
		if dec.More() {
			return nil, &models.InputError{Reason: "unexpected data after JSON object"}
		}
	default:
		if err := yaml.Unmarshal(payload, record); err != nil {
			return nil, &models.InputError{Reason: "malformed YAML", Err: err}
		}
	}

	return record, nil
}

// ValidateRecord runs struct validation and maps validator failures onto
// InputError so callers only ever see one error type.
func ValidateRecord(record *models.ResearchRecord) error {
	err := record.Validate()
	if err == nil {
		return nil
	}

	var inputErr *models.InputError
	if errors.As(err, &inputErr) {
		return inputErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return &models.InputError{
			Field:  fieldPath(fe.Namespace()),
			Reason: fmt.Sprintf("failed %q validation", fe.Tag()),
			Err:    err,
		}
	}

	return &models.InputError{Reason: "validation failed", Err: err}
}

// fieldPath drops the root struct name from a validator namespace
// ("ResearchRecord.Itinerary[0].Day" -> "Itinerary[0].Day").
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
