package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/travelpdf/internal/app"
	"github.com/ternarybob/travelpdf/internal/common"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	config := common.NewDefaultConfig()
	config.Output.Dir = t.TempDir()
	application, err := app.New(config, common.NewQuietLogger())
	require.NoError(t, err)
	return application
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) []string {
	t.Helper()
	var texts []string
	for _, c := range result.Content {
		text, ok := c.(mcp.TextContent)
		require.True(t, ok, "unexpected content type %T", c)
		texts = append(texts, text.Text)
	}
	return texts
}

func TestGeneratePDFReport_WritesReport(t *testing.T) {
	application := newTestApp(t)
	handler := handleGeneratePDFReport(application.ReportService, application.Logger)

	target := filepath.Join(t.TempDir(), "kyoto.pdf")
	result, err := handler(context.Background(), toolRequest(map[string]any{
		"report_data_json": `{"destination": "Kyoto", "tips": ["Visit Fushimi Inari at dawn."]}`,
		"output_path":      target,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	texts := resultText(t, result)
	require.NotEmpty(t, texts)
	assert.Equal(t, target, texts[0])
	assert.Contains(t, texts[1], "Tips & Recommendations")

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGeneratePDFReport_DefaultPath(t *testing.T) {
	application := newTestApp(t)
	handler := handleGeneratePDFReport(application.ReportService, application.Logger)

	result, err := handler(context.Background(), toolRequest(map[string]any{
		"report_data_json": `{"destination": "Paris, France"}`,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	texts := resultText(t, result)
	assert.Equal(t, filepath.Join(application.Config.Output.Dir, "travel_report_Paris_France.pdf"), texts[0])
}

func TestGeneratePDFReport_InvalidData(t *testing.T) {
	application := newTestApp(t)
	handler := handleGeneratePDFReport(application.ReportService, application.Logger)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing argument", args: map[string]any{}, want: "required"},
		{name: "malformed json", args: map[string]any{"report_data_json": `{"destination": `}, want: "Invalid report data"},
		{name: "blank destination", args: map[string]any{"report_data_json": `{"destination": "  "}`}, want: "Invalid report data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), toolRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result)[0], tt.want)
		})
	}

	matches, _ := filepath.Glob(filepath.Join(application.Config.Output.Dir, "*.pdf"))
	assert.Empty(t, matches)
}

func TestValidateReportData(t *testing.T) {
	application := newTestApp(t)
	handler := handleValidateReportData(application.Parser)

	result, err := handler(context.Background(), toolRequest(map[string]any{
		"report_data_json": `{"destination": "Rome", "image_urls": ["https://example.com/rome.jpg"]}`,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := resultText(t, result)[0]
	assert.Contains(t, text, "Rome")
	assert.Contains(t, text, "**Hero image:** true")

	result, err = handler(context.Background(), toolRequest(map[string]any{
		"report_data_json": `{"overview": "missing destination"}`,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result)[0], "Report Data Invalid")
}

func TestNewServer_RegistersTools(t *testing.T) {
	application := newTestApp(t)
	assert.NotNil(t, newServer(application))
	assert.Equal(t, "generate_pdf_report", createGeneratePDFReportTool().Name)
	assert.Equal(t, []string{"report_data_json"}, createGeneratePDFReportTool().InputSchema.Required)
	assert.Equal(t, "validate_report_data", createValidateReportDataTool().Name)
}
