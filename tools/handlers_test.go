package tools

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/leopoldodonnell/edgar-mcp/internal/edgar"
)

// newCapturedRegistry builds a registry whose log output lands in the
// returned buffer.
func newCapturedRegistry(t *testing.T) (*HandlerRegistry, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	client := edgar.NewClient(edgar.Config{UserAgent: "Example Research research@example.com"}, edgar.WithLogger(logger))
	t.Cleanup(client.Close)
	return NewHandlerRegistry(client, logger), &buf
}

func TestNewHandlerRegistry(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	client := edgar.NewClient(edgar.Config{UserAgent: "Example Research research@example.com"}, edgar.WithLogger(logger))
	t.Cleanup(client.Close)

	registry := NewHandlerRegistry(client, logger)
	if registry == nil {
		t.Fatal("NewHandlerRegistry returned nil")
	}
	if registry.client != client {
		t.Error("registry does not hold the EDGAR client")
	}
	if registry.logger != logger {
		t.Error("registry does not hold the logger")
	}
}

func TestBuildTool(t *testing.T) {
	registry, _ := newCapturedRegistry(t)

	tests := []struct {
		name     string
		spec     ToolSpec
		wantRO   bool
		wantIdem bool
		wantOpen bool
	}{
		{
			name: "read-only idempotent search",
			spec: ToolSpec{
				Name:        "edgar_search_companies",
				Title:       "Search Companies",
				Description: "Search companies by ticker or name",
				Method:      "SearchCompanies",
				Category:    "search",
				ReadOnly:    true,
				Idempotent:  true,
			},
			wantRO:   true,
			wantIdem: true,
		},
		{
			name: "open world lookup",
			spec: ToolSpec{
				Name:        "edgar_get_company_info",
				Title:       "Get Company Info",
				Description: "Get company details by CIK",
				Method:      "GetCompanyInfo",
				Category:    "company",
				OpenWorld:   true,
			},
			wantOpen: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := registry.buildTool(tt.spec)

			if tool.Name != tt.spec.Name {
				t.Errorf("Name = %q, want %q", tool.Name, tt.spec.Name)
			}
			if tool.Description != tt.spec.Description {
				t.Errorf("Description = %q, want %q", tool.Description, tt.spec.Description)
			}
			if tool.Annotations == nil {
				t.Fatal("tool has no annotations")
			}
			if tool.Annotations.ReadOnlyHint != tt.wantRO {
				t.Errorf("ReadOnlyHint = %v, want %v", tool.Annotations.ReadOnlyHint, tt.wantRO)
			}
			if tool.Annotations.IdempotentHint != tt.wantIdem {
				t.Errorf("IdempotentHint = %v, want %v", tool.Annotations.IdempotentHint, tt.wantIdem)
			}
			if tt.wantOpen && (tool.Annotations.OpenWorldHint == nil || !*tool.Annotations.OpenWorldHint) {
				t.Error("OpenWorldHint not set")
			}
			if !tt.wantOpen && tool.Annotations.OpenWorldHint != nil {
				t.Error("OpenWorldHint set for a closed-world tool")
			}
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	registry, buf := newCapturedRegistry(t)

	func() {
		defer registry.recoverPanic("edgar_get_filings")
		panic("submissions payload was nil")
	}()

	out := buf.String()
	if !strings.Contains(out, "Panic recovered") {
		t.Errorf("log output missing recovery record: %q", out)
	}
	if !strings.Contains(out, "edgar_get_filings") {
		t.Errorf("log output missing tool name: %q", out)
	}
	if !strings.Contains(out, "submissions payload was nil") {
		t.Errorf("log output missing panic value: %q", out)
	}
}

func TestLogExecution(t *testing.T) {
	tests := []struct {
		name   string
		spec   ToolSpec
		args   any
		result any
		want   []string
	}{
		{
			name:   "search",
			spec:   ToolSpec{Name: "edgar_search_companies", Category: "search"},
			args:   edgar.SearchCompaniesArgs{Query: "apple"},
			result: edgar.SearchCompaniesResult{Companies: []edgar.CompanyRecord{{CIK: "0000320193", Name: "Apple Inc."}}, Count: 1},
			want:   []string{"tool=edgar_search_companies", "query=apple", "results_count=1"},
		},
		{
			name:   "company info",
			spec:   ToolSpec{Name: "edgar_get_company_info", Category: "company"},
			args:   edgar.GetCompanyInfoArgs{CIK: "320193"},
			result: edgar.GetCompanyInfoResult{Found: true},
			want:   []string{"cik=320193", "found=true"},
		},
		{
			name:   "filings",
			spec:   ToolSpec{Name: "edgar_get_filings", Category: "filings"},
			args:   edgar.GetFilingsArgs{CIK: "320193", FormType: "10-K"},
			result: edgar.GetFilingsResult{Found: true, Count: 2},
			want:   []string{"form_type=10-K", "filings=2"},
		},
		{
			name:   "financial statement",
			spec:   ToolSpec{Name: "edgar_get_financial_statement", Category: "financials"},
			args:   edgar.GetFinancialStatementArgs{CIK: "320193", Concept: "NetIncomeLoss", Period: "FY", Year: 2023},
			result: edgar.FinancialStatementResult{Data: map[string]any{"conceptFound": true}},
			want:   []string{"concept=NetIncomeLoss", "period=FY", "year=2023", "concept_found=true"},
		},
		{
			name:   "filing document",
			spec:   ToolSpec{Name: "edgar_get_filing_document", Category: "filings"},
			args:   edgar.GetFilingDocumentArgs{CIK: "320193", AccessionNumber: "0000320193-23-000106"},
			result: edgar.FilingDocument{ContentLength: 1200, Truncated: true},
			want:   []string{"accession_number=0000320193-23-000106", "content_length=1200", "truncated=true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, buf := newCapturedRegistry(t)

			registry.logExecution(tt.spec, "req-1", tt.args, tt.result)

			out := buf.String()
			for _, want := range append(tt.want, "request_id=req-1") {
				if !strings.Contains(out, want) {
					t.Errorf("log output missing %q: %q", want, out)
				}
			}
		})
	}
}

func TestAllTools(t *testing.T) {
	if len(AllTools) != 5 {
		t.Fatalf("AllTools has %d entries, want 5", len(AllTools))
	}

	knownMethods := map[string]bool{
		"SearchCompanies":       true,
		"GetCompanyInfo":        true,
		"GetFilings":            true,
		"GetFinancialStatement": true,
		"GetFilingDocument":     true,
	}

	for _, spec := range AllTools {
		if spec.Name == "" || spec.Description == "" || spec.Category == "" {
			t.Errorf("tool %+v is missing required fields", spec)
		}
		if !knownMethods[spec.Method] {
			t.Errorf("tool %s names unknown method %s", spec.Name, spec.Method)
		}
		if !spec.ReadOnly {
			t.Errorf("tool %s is not read-only; EDGAR tools never mutate state", spec.Name)
		}
	}
}

func TestToolsByCategory(t *testing.T) {
	for _, tool := range ToolsByCategory("search") {
		if tool.Category != "search" {
			t.Errorf("tool %s has category %s, want search", tool.Name, tool.Category)
		}
	}
	if n := len(ToolsByCategory("search")); n == 0 {
		t.Error("no search tools found")
	}
	if n := len(ToolsByCategory("filings")); n != 2 {
		t.Errorf("filings tools = %d, want 2", n)
	}
	if n := len(ToolsByCategory("treasury")); n != 0 {
		t.Errorf("unknown category returned %d tools, want 0", n)
	}
}
