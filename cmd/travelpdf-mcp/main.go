package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ternarybob/travelpdf/internal/app"
	"github.com/ternarybob/travelpdf/internal/common"
)

func main() {
	defer common.RecoverWithCrashFile()

	// Load configuration; a missing default file falls back to built-in defaults
	var configFiles []string
	if configPath := os.Getenv("TRAVELPDF_CONFIG"); configPath != "" {
		configFiles = append(configFiles, configPath)
	} else if _, err := os.Stat("travelpdf.toml"); err == nil {
		configFiles = append(configFiles, "travelpdf.toml")
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := common.NewQuietLogger()

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	mcpServer := newServer(application)

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}

// newServer creates the MCP server and registers the report tools
func newServer(application *app.App) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		"travelpdf",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createGeneratePDFReportTool(), handleGeneratePDFReport(application.ReportService, application.Logger))
	mcpServer.AddTool(createValidateReportDataTool(), handleValidateReportData(application.Parser))

	return mcpServer
}
