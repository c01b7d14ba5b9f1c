// -----------------------------------------------------------------------
// ResearchRecord - Structured travel research handed to the report engine
// -----------------------------------------------------------------------

package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ResearchRecord is the compiled output of the research pipeline.
// Only Destination is required; every other field is optional and an empty
// field suppresses its whole section in the rendered report.
type ResearchRecord struct {
	Destination   string                                `json:"destination" yaml:"destination" validate:"required"`
	Overview      string                                `json:"overview,omitempty" yaml:"overview,omitempty"`
	Attractions   []Attraction                          `json:"attractions,omitempty" yaml:"attractions,omitempty" validate:"dive"`
	Logistics     *orderedmap.OrderedMap[string, string] `json:"logistics,omitempty" yaml:"logistics,omitempty" validate:"-"`
	Itinerary     []ItineraryDay                        `json:"itinerary,omitempty" yaml:"itinerary,omitempty" validate:"dive"`
	Tips          []string                              `json:"tips,omitempty" yaml:"tips,omitempty"`
	HeroImageURLs []string                              `json:"image_urls,omitempty" yaml:"image_urls,omitempty"`
}

// Attraction is a single point of interest.
type Attraction struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	ImageURL    string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// ItineraryDay is one day of the suggested itinerary.
type ItineraryDay struct {
	Day        int    `json:"day" yaml:"day"`
	Theme      string `json:"theme" yaml:"theme"`
	Activities string `json:"activities" yaml:"activities"`
}

// LogisticsEntry is a single key/value pair from the logistics map.
type LogisticsEntry struct {
	Key   string
	Value string
}

// Validate validates the record using go-playground/validator.
// Destination must be non-blank after trimming.
func (r *ResearchRecord) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if strings.TrimSpace(r.Destination) == "" {
		return &InputError{Field: "destination", Reason: "must not be blank"}
	}
	return nil
}

// LogisticsEntries returns the logistics pairs in insertion order.
func (r *ResearchRecord) LogisticsEntries() []LogisticsEntry {
	if r.Logistics == nil {
		return nil
	}
	entries := make([]LogisticsEntry, 0, r.Logistics.Len())
	for pair := r.Logistics.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, LogisticsEntry{Key: pair.Key, Value: pair.Value})
	}
	return entries
}

// HeroImageURL returns the first entry of HeroImageURLs, or "" when there is none.
func (r *ResearchRecord) HeroImageURL() string {
	if len(r.HeroImageURLs) == 0 {
		return ""
	}
	return strings.TrimSpace(r.HeroImageURLs[0])
}

// NewLogistics builds an ordered logistics map from alternating key/value pairs.
// A trailing key without a value is ignored.
func NewLogistics(kv ...string) *orderedmap.OrderedMap[string, string] {
	om := orderedmap.New[string, string]()
	for i := 0; i+1 < len(kv); i += 2 {
		om.Set(kv[i], kv[i+1])
	}
	return om
}
