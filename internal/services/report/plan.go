package report

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ternarybob/travelpdf/internal/models"
)

// Section headings, in document order
const (
	SectionOverview      = "Overview"
	SectionAttractions   = "Top Attractions"
	SectionPractical     = "Practical Information"
	SectionItinerary     = "Day-by-Day Itinerary"
	SectionTips          = "Tips & Recommendations"
	HeroImageWidth       = 120.0 // mm
	AttractionImageWidth = 80.0  // mm
)

// Plan maps a record onto the ordered block sequence of its report. Sections
// whose source data is empty are left out entirely. normalize converts free
// text to plain text; nil means trim only.
func Plan(record *models.ResearchRecord, normalize func(string) string) []models.ContentBlock {
	if normalize == nil {
		normalize = strings.TrimSpace
	}
	heading := func(s string) string {
		return strings.Join(strings.Fields(normalize(s)), " ")
	}

	blocks := []models.ContentBlock{
		{Kind: models.BlockTitle, Text: strings.TrimSpace(record.Destination)},
	}

	if hero := record.HeroImageURL(); hero != "" {
		blocks = append(blocks, models.ContentBlock{Kind: models.BlockImage, URL: hero, Width: HeroImageWidth})
	}

	if overview := normalize(record.Overview); overview != "" {
		blocks = append(blocks,
			models.ContentBlock{Kind: models.BlockSectionHeading, Text: SectionOverview},
			models.ContentBlock{Kind: models.BlockParagraph, Text: overview},
		)
	}

	if len(record.Attractions) > 0 {
		blocks = append(blocks, models.ContentBlock{Kind: models.BlockSectionHeading, Text: SectionAttractions})
		for i, attraction := range record.Attractions {
			name := heading(attraction.Name)
			if name == "" {
				name = fmt.Sprintf("Attraction %d", i+1)
			}
			blocks = append(blocks, models.ContentBlock{Kind: models.BlockSubsectionHeading, Text: name})
			if description := normalize(attraction.Description); description != "" {
				blocks = append(blocks, models.ContentBlock{Kind: models.BlockParagraph, Text: description})
			}
			if imageURL := strings.TrimSpace(attraction.ImageURL); imageURL != "" {
				blocks = append(blocks, models.ContentBlock{Kind: models.BlockImage, URL: imageURL, Width: AttractionImageWidth})
			}
		}
	}

	if entries := record.LogisticsEntries(); len(entries) > 0 {
		blocks = append(blocks, models.ContentBlock{Kind: models.BlockSectionHeading, Text: SectionPractical})
		for _, entry := range entries {
			label := HumanizeKey(entry.Key)
			if label == "" {
				label = "Other"
			}
			blocks = append(blocks, models.ContentBlock{Kind: models.BlockSubsectionHeading, Text: label})
			if value := normalize(entry.Value); value != "" {
				blocks = append(blocks, models.ContentBlock{Kind: models.BlockParagraph, Text: value})
			}
		}
	}

	if len(record.Itinerary) > 0 {
		blocks = append(blocks, models.ContentBlock{Kind: models.BlockSectionHeading, Text: SectionItinerary})
		for _, day := range record.Itinerary {
			blocks = append(blocks, models.ContentBlock{Kind: models.BlockSubsectionHeading, Text: dayHeading(day.Day, heading(day.Theme))})
			if activities := normalize(day.Activities); activities != "" {
				blocks = append(blocks, models.ContentBlock{Kind: models.BlockParagraph, Text: activities})
			}
		}
	}

	var tips []string
	for _, tip := range record.Tips {
		if t := normalize(tip); t != "" {
			tips = append(tips, t)
		}
	}
	if len(tips) > 0 {
		blocks = append(blocks, models.ContentBlock{Kind: models.BlockSectionHeading, Text: SectionTips})
		for _, tip := range tips {
			blocks = append(blocks, models.ContentBlock{Kind: models.BlockBullet, Text: tip})
		}
	}

	return blocks
}

func dayHeading(day int, theme string) string {
	if theme == "" {
		return fmt.Sprintf("Day %d", day)
	}
	return fmt.Sprintf("Day %d: %s", day, theme)
}

// HumanizeKey turns a logistics key into a label: underscores become spaces
// and every word is title-cased ("best_time_to_visit" -> "Best Time To Visit").
// A letter is upper-cased when it follows a non-letter and lower-cased
// otherwise.
func HumanizeKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	key = strings.Join(strings.Fields(key), " ")

	var sb strings.Builder
	prevLetter := false
	for _, r := range key {
		switch {
		case unicode.IsLetter(r) && !prevLetter:
			sb.WriteRune(unicode.ToUpper(r))
		case unicode.IsLetter(r):
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return sb.String()
}

// ImageURLs returns the URLs of the image blocks in plan order.
func ImageURLs(blocks []models.ContentBlock) []string {
	var urls []string
	for _, b := range blocks {
		if b.Kind == models.BlockImage {
			urls = append(urls, b.URL)
		}
	}
	return urls
}
