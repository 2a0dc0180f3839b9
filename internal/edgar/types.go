// Package edgar provides a client for the SEC EDGAR full-text company,
// filing, and XBRL financial-concept APIs. It handles the registry's
// fair-access pacing requirements and its parallel-array payload shapes,
// with best-effort decoding of slow or truncated responses.
package edgar

import "encoding/json"

// CompanyRecord is one registered EDGAR filer.
type CompanyRecord struct {
	CIK                  string   `json:"cik"`
	Name                 string   `json:"name"`
	SIC                  string   `json:"sic,omitempty"`
	SICDescription       string   `json:"sic_description,omitempty"`
	Tickers              []string `json:"tickers,omitempty"`
	Exchanges            []string `json:"exchanges,omitempty"`
	StateOfIncorporation string   `json:"state_of_incorporation,omitempty"`
	FiscalYearEnd        string   `json:"fiscal_year_end,omitempty"`
}

// FilingRecord is one submitted document from a company's filing history.
type FilingRecord struct {
	AccessionNumber string `json:"accession_number"`
	FilingDate      string `json:"filing_date"`
	ReportDate      string `json:"report_date,omitempty"`
	Form            string `json:"form"`
	PrimaryDocument string `json:"primary_document,omitempty"`
	DocumentURL     string `json:"document_url,omitempty"`
	Description     string `json:"description,omitempty"`
	Size            int64  `json:"size,omitempty"`
}

// FilingCollection is the result of a filings query for one company.
type FilingCollection struct {
	CIK     string         `json:"cik"`
	Name    string         `json:"company_name"`
	Filings []FilingRecord `json:"filings"`
}

// FinancialStatementResult is the outcome of one concept/period/year lookup.
// It is always populated, even on total failure: diagnostics travel in the
// Data map ("conceptFound", "error", "valueIsNull", "timedOut") instead of
// being raised, so the protocol layer always has a well-formed record to
// serialize.
type FinancialStatementResult struct {
	CIK          string         `json:"cik"`
	Name         string         `json:"company_name"`
	Form         string         `json:"form,omitempty"`
	FilingDate   string         `json:"filing_date,omitempty"`
	FiscalYear   int            `json:"fiscal_year"`
	FiscalPeriod string         `json:"fiscal_period"`
	Data         map[string]any `json:"data"`
}

// ConceptFound reports whether the lookup matched an entry.
func (r *FinancialStatementResult) ConceptFound() bool {
	found, _ := r.Data["conceptFound"].(bool)
	return found
}

// FilingDocument is the extracted text of one filing's primary document.
type FilingDocument struct {
	CIK             string `json:"cik"`
	AccessionNumber string `json:"accession_number"`
	PrimaryDocument string `json:"primary_document"`
	DocumentURL     string `json:"document_url"`
	Content         string `json:"content"`
	ContentLength   int    `json:"content_length"`
	Truncated       bool   `json:"truncated,omitempty"`
}

// tickerIndexEntry is one row of the bulk company_tickers.json index.
// The index itself is an object keyed by stringified numeric positions.
type tickerIndexEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// submissionsPayload is the shape of data.sec.gov/submissions/CIK{10}.json.
// Every field is optional upstream; absent fields decode to zero values.
type submissionsPayload struct {
	Name                 string   `json:"name"`
	SIC                  string   `json:"sic"`
	SICDescription       string   `json:"sicDescription"`
	Tickers              []string `json:"tickers"`
	Exchanges            []string `json:"exchanges"`
	StateOfIncorporation string   `json:"stateOfIncorporation"`
	FiscalYearEnd        string   `json:"fiscalYearEnd"`
	Filings              struct {
		Recent recentFilings `json:"recent"`
	} `json:"filings"`
}

// recentFilings holds the registry's parallel arrays, one per field,
// correlated by position. The optional arrays (reportDate, description,
// size) may be shorter than the required ones or absent entirely.
type recentFilings struct {
	AccessionNumber       []string `json:"accessionNumber"`
	FilingDate            []string `json:"filingDate"`
	ReportDate            []string `json:"reportDate"`
	Form                  []string `json:"form"`
	PrimaryDocument       []string `json:"primaryDocument"`
	PrimaryDocDescription []string `json:"primaryDocDescription"`
	Size                  []int64  `json:"size"`
}

// conceptEntry is a single XBRL fact from the companyconcept endpoint.
// Val stays a *json.Number so values render exactly as reported; nil means
// the registry returned an explicit null.
type conceptEntry struct {
	Start string       `json:"start,omitempty"`
	End   string       `json:"end,omitempty"`
	Val   *json.Number `json:"val"`
	Accn  string       `json:"accn,omitempty"`
	FY    int          `json:"fy"`
	FP    string       `json:"fp"`
	Form  string       `json:"form,omitempty"`
	Filed string       `json:"filed,omitempty"`
	Frame string       `json:"frame,omitempty"`
}

// unitGroup is one unit-of-measure bucket ("USD", "shares", ...) with its
// fact entries.
type unitGroup struct {
	Unit    string
	Entries []conceptEntry
}

// conceptDocument is the companyconcept payload with unit groups kept in
// document order. The concept-match policy picks the first group containing
// any matching period, so upstream key order is significant and a Go map
// cannot hold it.
type conceptDocument struct {
	EntityName string
	Label      string
	Units      []unitGroup
}
