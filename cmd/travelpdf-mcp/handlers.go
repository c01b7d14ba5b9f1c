package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/travelpdf/internal/interfaces"
	"github.com/ternarybob/travelpdf/internal/models"
	"github.com/ternarybob/travelpdf/internal/services/validation"
)

// recordValidator is the part of the validation service the tools need
type recordValidator interface {
	Validate(payload []byte) validation.ValidationResult
}

// handleGeneratePDFReport implements the generate_pdf_report tool
func handleGeneratePDFReport(reportService interfaces.ReportService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse report_data_json parameter (required)
		payload, err := request.RequireString("report_data_json")
		if err != nil || payload == "" {
			return errorResult("Error: report_data_json parameter is required"), nil
		}

		outputPath := request.GetString("output_path", "")

		result, err := reportService.Generate(ctx, []byte(payload), outputPath)
		if err != nil {
			var inputErr *models.InputError
			if errors.As(err, &inputErr) {
				return errorResult(fmt.Sprintf("Invalid report data: %v", err)), nil
			}
			logger.Error().Err(err).Str("output_path", outputPath).Msg("Report generation failed")
			return errorResult(fmt.Sprintf("Report generation failed: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(result.Path),
				mcp.NewTextContent(formatReportSummary(result)),
			},
		}, nil
	}
}

// handleValidateReportData implements the validate_report_data tool
func handleValidateReportData(validator recordValidator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := request.RequireString("report_data_json")
		if err != nil || payload == "" {
			return errorResult("Error: report_data_json parameter is required"), nil
		}

		result := validator.Validate([]byte(payload))
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatValidationResult(result)),
			},
			IsError: !result.Valid,
		}, nil
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
