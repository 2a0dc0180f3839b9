package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/leopoldodonnell/edgar-mcp/internal/edgar"
	"github.com/leopoldodonnell/edgar-mcp/metrics"
	"github.com/leopoldodonnell/edgar-mcp/tracing"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *edgar.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *edgar.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	case "SearchCompanies":
		h.register(server, tool, spec, h.client.SearchCompaniesMCP)
	case "GetCompanyInfo":
		h.register(server, tool, spec, h.client.GetCompanyInfoMCP)
	case "GetFilings":
		h.register(server, tool, spec, h.client.GetFilingsMCP)
	case "GetFinancialStatement":
		h.register(server, tool, spec, h.client.GetFinancialStatementMCP)
	case "GetFilingDocument":
		h.register(server, tool, spec, h.client.GetFilingDocumentMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the client method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (*mcp.CallToolResult, Result, error) {
		defer h.recoverPanic(spec.Name)

		requestID := uuid.NewString()

		// Start trace span
		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(
			attribute.String("mcp.request.id", requestID),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		// Track in-flight requests
		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, requestID, args, result)
		return nil, result, nil
	})
}

// recoverPanic recovers from panics in tool handlers.
func (h *HandlerRegistry) recoverPanic(toolName string) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, requestID string, args, result any) {
	attrs := []any{"tool", spec.Name, "request_id", requestID}

	// Add extractable fields from args using type assertions
	switch a := args.(type) {
	case edgar.SearchCompaniesArgs:
		attrs = append(attrs, "query", a.Query)
	case edgar.GetCompanyInfoArgs:
		attrs = append(attrs, "cik", a.CIK)
	case edgar.GetFilingsArgs:
		attrs = append(attrs, "cik", a.CIK, "form_type", a.FormType)
	case edgar.GetFinancialStatementArgs:
		attrs = append(attrs, "cik", a.CIK, "concept", a.Concept, "period", a.Period, "year", a.Year)
	case edgar.GetFilingDocumentArgs:
		attrs = append(attrs, "cik", a.CIK, "accession_number", a.AccessionNumber)
	}

	// Add extractable fields from result
	switch r := result.(type) {
	case edgar.SearchCompaniesResult:
		attrs = append(attrs, "results_count", r.Count)
	case edgar.GetCompanyInfoResult:
		attrs = append(attrs, "found", r.Found)
	case edgar.GetFilingsResult:
		attrs = append(attrs, "found", r.Found, "filings", r.Count)
	case edgar.FinancialStatementResult:
		attrs = append(attrs, "concept_found", r.ConceptFound())
	case edgar.FilingDocument:
		attrs = append(attrs, "content_length", r.ContentLength, "truncated", r.Truncated)
	}

	h.logger.Info("Tool executed", attrs...)
}

// Convenience function to call the generic register with method receiver
func (h *HandlerRegistry) register(server *mcp.Server, tool *mcp.Tool, spec ToolSpec, method any) {
	switch m := method.(type) {
	case func(context.Context, edgar.SearchCompaniesArgs) (edgar.SearchCompaniesResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, edgar.GetCompanyInfoArgs) (edgar.GetCompanyInfoResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, edgar.GetFilingsArgs) (edgar.GetFilingsResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, edgar.GetFinancialStatementArgs) (edgar.FinancialStatementResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, edgar.GetFilingDocumentArgs) (edgar.FilingDocument, error):
		register(h, server, tool, spec, m)
	default:
		h.logger.Error("Unknown method type, tool not registered", "tool", spec.Name)
	}
}
