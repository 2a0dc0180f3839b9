// EDGAR MCP Server - A Model Context Protocol server for SEC EDGAR
// Provides tools for company lookup, filing history, filing documents,
// and XBRL financial data
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/leopoldodonnell/edgar-mcp/internal/edgar"
	"github.com/leopoldodonnell/edgar-mcp/tools"
	"github.com/leopoldodonnell/edgar-mcp/tracing"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "edgar-mcp-server"
	ServerVersion = "1.0.0"
)

const serverInstructions = `EDGAR MCP Server provides tools for querying SEC EDGAR, the United States company registry of filings and financial data.

Available tools:
- edgar_search_companies: Find companies and their CIK by ticker or name
- edgar_get_company_info: Get registration details for a CIK
- edgar_get_filings: List recent filings, optionally filtered by form type
- edgar_get_filing_document: Read the primary document of one filing
- edgar_get_financial_statement: Get one XBRL financial figure for a fiscal period

Typical flow: search for the company first to obtain its CIK, then pass that
CIK to the other tools.

Configure via environment variables:
- EDGAR_API_USER_AGENT: Contact identity sent to SEC, e.g. "Sample Company admin@sample.com" (strongly recommended; SEC rate-limits anonymous clients)
- EDGAR_HTTP_TIMEOUT: HTTP timeout as a Go duration (default 30s)
- EDGAR_MAX_RETRIES: Attempts per request (default 3)
- LOG_LEVEL: Logging verbosity, one of debug, info, warn, error (default info)`

// logLevel reads LOG_LEVEL from the environment. Unset or unrecognized
// values fall back to info rather than failing startup.
func logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func main() {
	// .env is a development convenience; deployments set the environment directly
	_ = godotenv.Load()

	// Configure logging to stderr (stdout is used for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	// Load configuration from environment
	config := edgar.LoadConfig()
	if config.UserAgentDefaulted {
		logger.Warn("EDGAR_API_USER_AGENT is not set, using a placeholder; SEC asks for a contact identity like \"Sample Company admin@sample.com\"",
			"user_agent", config.UserAgent)
	}

	ctx := context.Background()

	// Tracing is opt-in via OTEL_ENABLED or OTEL_EXPORTER_OTLP_ENDPOINT
	shutdownTracing, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		logger.Warn("Tracing setup failed, continuing without traces", "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	// Create EDGAR client
	client := edgar.NewClient(config, edgar.WithLogger(logger))
	defer client.Close()

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})

	// Register all tools
	registry := tools.NewHandlerRegistry(client, logger)
	registry.RegisterAll(server)

	// Run server on stdio transport
	logger.Info("Starting EDGAR MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"user_agent", config.UserAgent,
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
