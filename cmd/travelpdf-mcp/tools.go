package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGeneratePDFReportTool returns the generate_pdf_report tool definition
func createGeneratePDFReportTool() mcp.Tool {
	return mcp.NewTool("generate_pdf_report",
		mcp.WithDescription("Generate a PDF travel report from structured research data and return the file path"),
		mcp.WithString("report_data_json",
			mcp.Required(),
			mcp.Description("JSON object with keys: destination (required), overview, attractions [{name, description, image_url}], logistics {key: text}, itinerary [{day, theme, activities}], tips [text], image_urls [url]"),
		),
		mcp.WithString("output_path",
			mcp.Description("Optional path for the output PDF. If empty, the report is written to the output directory as travel_report_<destination>.pdf"),
		),
	)
}

// createValidateReportDataTool returns the validate_report_data tool definition
func createValidateReportDataTool() mcp.Tool {
	return mcp.NewTool("validate_report_data",
		mcp.WithDescription("Check structured research data without rendering a report"),
		mcp.WithString("report_data_json",
			mcp.Required(),
			mcp.Description("JSON object in the generate_pdf_report format"),
		),
	)
}
