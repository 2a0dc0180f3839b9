package edgar

// SearchCompaniesArgs are the arguments for the edgar_search_companies tool
type SearchCompaniesArgs struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"Company name or ticker symbol to search for, e.g. 'Apple' or 'AAPL'"`
}

// SearchCompaniesResult is the result of a company search
type SearchCompaniesResult struct {
	Companies []CompanyRecord `json:"companies"`
	Count     int             `json:"count"`
}

// GetCompanyInfoArgs are the arguments for the edgar_get_company_info tool
type GetCompanyInfoArgs struct {
	CIK string `json:"cik" jsonschema:"required" jsonschema_description:"SEC Central Index Key, with or without leading zeros, e.g. '320193' or '0000320193'"`
}

// GetCompanyInfoResult is the result of a company info lookup
type GetCompanyInfoResult struct {
	Found   bool           `json:"found"`
	Company *CompanyRecord `json:"company,omitempty"`
	Message string         `json:"message,omitempty"`
}

// GetFilingsArgs are the arguments for the edgar_get_filings tool
type GetFilingsArgs struct {
	CIK      string `json:"cik" jsonschema:"required" jsonschema_description:"SEC Central Index Key, with or without leading zeros"`
	FormType string `json:"form_type,omitempty" jsonschema_description:"Optional exact form type filter such as '10-K', '10-Q', or '8-K'"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Maximum number of filings to return, between 1 and 100 (default 10)"`
}

// GetFilingsResult is the result of a filings lookup
type GetFilingsResult struct {
	Found   bool           `json:"found"`
	CIK     string         `json:"cik,omitempty"`
	Company string         `json:"company_name,omitempty"`
	Filings []FilingRecord `json:"filings,omitempty"`
	Count   int            `json:"count"`
	Message string         `json:"message,omitempty"`
}

// GetFinancialStatementArgs are the arguments for the
// edgar_get_financial_statement tool
type GetFinancialStatementArgs struct {
	CIK     string `json:"cik" jsonschema:"required" jsonschema_description:"SEC Central Index Key, with or without leading zeros"`
	Concept string `json:"concept" jsonschema:"required" jsonschema_description:"US-GAAP concept tag such as 'Revenues', 'NetIncomeLoss', or 'Assets'"`
	Period  string `json:"period" jsonschema:"required" jsonschema_description:"Fiscal period: 'FY', 'Q1', 'Q2', 'Q3', or 'Q4' (case-insensitive)"`
	Year    int    `json:"year" jsonschema:"required" jsonschema_description:"Fiscal year, e.g. 2023"`
}

// GetFilingDocumentArgs are the arguments for the edgar_get_filing_document tool
type GetFilingDocumentArgs struct {
	CIK             string `json:"cik" jsonschema:"required" jsonschema_description:"SEC Central Index Key, with or without leading zeros"`
	AccessionNumber string `json:"accession_number" jsonschema:"required" jsonschema_description:"Filing accession number, with or without hyphens, e.g. '0000320193-23-000106'"`
	PrimaryDocument string `json:"primary_document" jsonschema:"required" jsonschema_description:"Primary document filename from the filing record, e.g. 'aapl-20230930.htm'"`
	MaxLength       int    `json:"max_length,omitempty" jsonschema_description:"Maximum characters of extracted text to return (default 50000)"`
}
