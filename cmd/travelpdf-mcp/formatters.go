package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/travelpdf/internal/models"
	"github.com/ternarybob/travelpdf/internal/services/validation"
)

// formatReportSummary formats a generated report as markdown
func formatReportSummary(result *models.ReportResult) string {
	var sb strings.Builder
	sb.WriteString("## Travel Report Generated\n\n")
	sb.WriteString(fmt.Sprintf("**Path:** %s\n", result.Path))
	sb.WriteString(fmt.Sprintf("**Report ID:** %s\n", result.ReportID))
	sb.WriteString(fmt.Sprintf("**Pages:** %d\n", result.PageCount))
	sb.WriteString(fmt.Sprintf("**Size:** %d bytes\n", result.Size))
	sb.WriteString(fmt.Sprintf("**Images:** %d placed, %d omitted\n", result.ImagesPlaced, result.ImagesOmitted))

	var sections []string
	for _, block := range result.Layout {
		if block.Kind == models.BlockSectionHeading {
			sections = append(sections, block.Text)
		}
	}
	if len(sections) > 0 {
		sb.WriteString("\n#### Sections:\n")
		for _, s := range sections {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
	}

	return sb.String()
}

// formatValidationResult formats a validation outcome as markdown
func formatValidationResult(result validation.ValidationResult) string {
	var sb strings.Builder
	if !result.Valid {
		sb.WriteString("## Report Data Invalid\n\n")
		sb.WriteString(fmt.Sprintf("**Error:** %s\n", result.Error))
		return sb.String()
	}

	record := result.Record
	sb.WriteString("## Report Data Valid\n\n")
	sb.WriteString(fmt.Sprintf("**Destination:** %s\n", record.Destination))
	sb.WriteString(fmt.Sprintf("**Attractions:** %d\n", len(record.Attractions)))
	sb.WriteString(fmt.Sprintf("**Logistics entries:** %d\n", len(record.LogisticsEntries())))
	sb.WriteString(fmt.Sprintf("**Itinerary days:** %d\n", len(record.Itinerary)))
	sb.WriteString(fmt.Sprintf("**Tips:** %d\n", len(record.Tips)))
	sb.WriteString(fmt.Sprintf("**Hero image:** %t\n", record.HeroImageURL() != ""))
	return sb.String()
}
