package tools

// AllTools contains all tool specifications for the EDGAR MCP server.
// Tools are organized by category for easier maintenance.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// SEARCH TOOLS
	// ==========================================================================
	{
		Name:     "edgar_search_companies",
		Method:   "SearchCompanies",
		Title:    "Search Companies",
		Category: "search",
		Description: `Search SEC-registered companies by ticker symbol or company name.

USE WHEN: User names a company ("Apple", "AAPL", "Microsoft") and you need its CIK (Central Index Key) before calling any other EDGAR tool.

NOT FOR: Looking up details when you already have a CIK (use edgar_get_company_info instead).

PARAMETERS:
- query: Ticker or name fragment, case-insensitive (required)

RETURNS: Matching companies with zero-padded 10-digit CIK, official name, and ticker symbols. Empty list when nothing matches.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// COMPANY TOOLS
	// ==========================================================================
	{
		Name:     "edgar_get_company_info",
		Method:   "GetCompanyInfo",
		Title:    "Get Company Info",
		Category: "company",
		Description: `Get registration details for one company from SEC EDGAR.

USE WHEN: User asks "what industry is X in", "what exchange does X trade on", or you have a CIK and need the official name and classification.

NOT FOR: Finding a CIK (use edgar_search_companies) or listing filings (use edgar_get_filings).

PARAMETERS:
- cik: Central Index Key, with or without leading zeros (required)

RETURNS: Official name, padded CIK, SIC industry code and description, ticker symbols, and exchanges. Reports not found when the CIK is unknown.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// FILING TOOLS
	// ==========================================================================
	{
		Name:     "edgar_get_filings",
		Method:   "GetFilings",
		Title:    "Get Filings",
		Category: "filings",
		Description: `List a company's recent SEC filings, newest first.

USE WHEN: User asks "what has X filed recently", "show me X's annual reports", or you need an accession number for edgar_get_filing_document.

NOT FOR: Reading filing contents (use edgar_get_filing_document) or extracting financial figures (use edgar_get_financial_statement).

PARAMETERS:
- cik: Central Index Key, with or without leading zeros (required)
- form_type: Filter to one form, case-insensitive, e.g. "10-K", "10-Q", "8-K" (optional)
- limit: Max filings to return, 1-100 (default 10)

RETURNS: Filings with form type, filing date, report date, accession number, primary document name, and a direct document URL.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "edgar_get_filing_document",
		Method:   "GetFilingDocument",
		Title:    "Get Filing Document",
		Category: "filings",
		Description: `Fetch the primary document of one SEC filing as plain text.

USE WHEN: User wants to read what a filing actually says, and you have the accession number and primary document name from edgar_get_filings.

NOT FOR: Structured financial figures (use edgar_get_financial_statement). Full 10-K documents are large; the text is truncated at max_length.

PARAMETERS:
- cik: Central Index Key, with or without leading zeros (required)
- accession_number: Filing accession number, e.g. "0000320193-23-000106" (required)
- primary_document: Document filename from the filing listing, e.g. "aapl-20230930.htm" (required)
- max_length: Max characters of extracted text (default 50000)

RETURNS: Document text with HTML markup stripped, the source URL, and a truncation flag.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// FINANCIAL TOOLS
	// ==========================================================================
	{
		Name:     "edgar_get_financial_statement",
		Method:   "GetFinancialStatement",
		Title:    "Get Financial Statement",
		Category: "financials",
		Description: `Get one reported XBRL financial figure for a company and fiscal period.

USE WHEN: User asks for a specific number as reported to the SEC: "Apple's net income for fiscal 2023", "Microsoft's Q2 2024 revenue".

NOT FOR: Full statements or narrative sections (use edgar_get_filing_document), or figures EDGAR does not tag in XBRL.

PARAMETERS:
- cik: Central Index Key, with or without leading zeros (required)
- concept: US-GAAP concept name, e.g. "NetIncomeLoss", "Revenues", "Assets" (required)
- period: "FY" for annual or "Q1"-"Q4" for quarterly (required)
- year: Fiscal year, e.g. 2023 (required)

RETURNS: The reported value with its unit, fiscal period end date, and the form and date of the filing it came from. Always returns a result; when the figure is unavailable the result explains why instead of failing.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}
