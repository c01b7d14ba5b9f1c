package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/travelpdf/internal/models"
)

const tokyoJSON = `{
  "destination": "  Tokyo  ",
  "overview": "Capital of Japan.",
  "attractions": [{"name": "Senso-ji", "description": "Oldest temple.", "image_url": "https://example.com/sensoji.jpg"}],
  "logistics": {"weather": "Mild", "visa": "On arrival", "currency": "JPY"},
  "itinerary": [{"day": 1, "theme": "Old Tokyo", "activities": "Asakusa"}],
  "tips": ["Carry cash"],
  "image_urls": []
}`

const tokyoYAML = `
destination: Tokyo
logistics:
  weather: Mild
  visa: On arrival
  currency: JPY
itinerary:
  - day: 1
    theme: Old Tokyo
    activities: Asakusa
`

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat([]byte(`{"destination":"x"}`)))
	assert.Equal(t, FormatJSON, DetectFormat([]byte("\n  {}")))
	assert.Equal(t, FormatYAML, DetectFormat([]byte("destination: x")))
	assert.Equal(t, FormatYAML, DetectFormat([]byte(`["not", "an", "object"]`)))
}

func TestParse_JSON(t *testing.T) {
	service := NewRecordValidationService(arbor.NewLogger())

	record, err := service.Parse([]byte(tokyoJSON))
	require.NoError(t, err)

	assert.Equal(t, "Tokyo", record.Destination)
	require.Len(t, record.Attractions, 1)
	assert.Equal(t, "https://example.com/sensoji.jpg", record.Attractions[0].ImageURL)
	assert.Empty(t, record.HeroImageURL())

	entries := record.LogisticsEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"weather", "visa", "currency"}, []string{entries[0].Key, entries[1].Key, entries[2].Key})
}

func TestParse_YAMLKeepsLogisticsOrder(t *testing.T) {
	service := NewRecordValidationService(arbor.NewLogger())

	record, err := service.Parse([]byte(tokyoYAML))
	require.NoError(t, err)

	assert.Equal(t, "Tokyo", record.Destination)
	entries := record.LogisticsEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "weather", entries[0].Key)
	assert.Equal(t, "visa", entries[1].Key)
	assert.Equal(t, "currency", entries[2].Key)
	require.Len(t, record.Itinerary, 1)
	assert.Equal(t, 1, record.Itinerary[0].Day)
}

func TestParse_Failures(t *testing.T) {
	service := NewRecordValidationService(arbor.NewLogger())

	tests := []struct {
		name      string
		payload   string
		wantField string
		wantText  string
	}{
		{name: "empty payload", payload: "  \n", wantText: "empty payload"},
		{name: "malformed JSON", payload: `{"destination": "Tokyo"`, wantText: "malformed JSON"},
		{name: "trailing data", payload: `{"destination": "Tokyo"} {"destination": "Osaka"}`, wantText: "unexpected data after JSON object"},
		{name: "malformed YAML", payload: "destination: [unclosed", wantText: "malformed YAML"},
		{name: "missing destination", payload: `{"overview": "Somewhere"}`, wantField: "Destination"},
		{name: "blank destination", payload: `{"destination": "   "}`, wantField: "Destination"},
		{name: "wrong field type", payload: `{"destination": "Tokyo", "tips": "not a list"}`, wantText: "malformed JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := service.Parse([]byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, record)

			var inputErr *models.InputError
			require.True(t, errors.As(err, &inputErr), "expected InputError, got %T", err)
			assert.True(t, errors.Is(err, models.ErrInvalidRecord))
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, inputErr.Field)
			}
			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
		})
	}
}

func TestParse_AnyIntegerDay(t *testing.T) {
	service := NewRecordValidationService(arbor.NewLogger())

	record, err := service.Parse([]byte(`{"destination": "Tokyo", "itinerary": [{"day": -1, "theme": "Arrival eve"}, {"day": 0}]}`))
	require.NoError(t, err)
	require.Len(t, record.Itinerary, 2)
	assert.Equal(t, -1, record.Itinerary[0].Day)
	assert.Equal(t, 0, record.Itinerary[1].Day)

	_, err = service.Parse([]byte(`{"destination": "Tokyo", "itinerary": [{"day": 1.5}]}`))
	assert.ErrorIs(t, err, models.ErrInvalidRecord)
}

func TestValidate(t *testing.T) {
	service := NewRecordValidationService(arbor.NewLogger())

	result := service.Validate([]byte(tokyoYAML))
	assert.True(t, result.Valid)
	assert.Equal(t, FormatYAML, result.Format)
	assert.Contains(t, result.Message, "Tokyo")
	require.NotNil(t, result.Record)
	assert.NoError(t, result.Err)

	result = service.Validate([]byte(`{"destination": ""}`))
	assert.False(t, result.Valid)
	assert.Equal(t, FormatJSON, result.Format)
	assert.NotEmpty(t, result.Error)
	assert.Nil(t, result.Record)
	assert.ErrorIs(t, result.Err, models.ErrInvalidRecord)
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "Itinerary[0].Day", fieldPath("ResearchRecord.Itinerary[0].Day"))
	assert.Equal(t, "Destination", fieldPath("Destination"))
}
