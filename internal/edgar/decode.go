package edgar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	apierrors "github.com/leopoldodonnell/edgar-mcp/internal/errors"
)

// ArchivesBaseURL is the fixed base for derived filing-document URLs
const ArchivesBaseURL = "https://www.sec.gov/Archives/edgar/data"

// excerptLimit bounds how much raw payload an error message may carry
const excerptLimit = 1000

// parseJSON unmarshals data into v. Truncated payloads from an expired
// fetch deadline are an expected failure mode here, so one repair attempt
// is made before giving up with a PartialPayloadError.
func parseJSON(data []byte, v any, endpoint string) error {
	origErr := json.Unmarshal(data, v)
	if origErr == nil {
		return nil
	}
	if repaired, err := jsonrepair.RepairJSON(string(data)); err == nil {
		if json.Unmarshal([]byte(repaired), v) == nil {
			return nil
		}
	}
	return &apierrors.PartialPayloadError{
		Endpoint:  endpoint,
		ByteCount: len(data),
		Excerpt:   excerpt(data, excerptLimit),
		Err:       origErr,
	}
}

// excerpt returns at most max characters of data for error messages
func excerpt(data []byte, max int) string {
	s := string(data)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// decodeCompany turns a submissions payload into a CompanyRecord. A missing
// name decodes to an empty string, not a failure.
func decodeCompany(data []byte, cik string) (*CompanyRecord, error) {
	var payload submissionsPayload
	if err := parseJSON(data, &payload, "submissions"); err != nil {
		return nil, err
	}
	return companyRecord(cik, &payload), nil
}

func companyRecord(cik string, p *submissionsPayload) *CompanyRecord {
	return &CompanyRecord{
		CIK:                  cik,
		Name:                 p.Name,
		SIC:                  p.SIC,
		SICDescription:       p.SICDescription,
		Tickers:              p.Tickers,
		Exchanges:            p.Exchanges,
		StateOfIncorporation: p.StateOfIncorporation,
		FiscalYearEnd:        p.FiscalYearEnd,
	}
}

// FilingURL derives the document URL for a filing. The accession number
// loses its hyphens in the archive path.
func FilingURL(cik, accessionNumber, primaryDocument string) string {
	accession := strings.ReplaceAll(accessionNumber, "-", "")
	return fmt.Sprintf("%s/%s/%s/%s", ArchivesBaseURL, cik, accession, primaryDocument)
}

// zipFilings correlates the registry's parallel arrays by position into
// filing records. A position yields a record only when both the filing
// date and accession number arrays cover it. The optional arrays
// (reportDate, description, size) contribute their value where present and
// stay empty where they are shorter or absent. Scanning stops once limit
// post-filter records have been collected.
func zipFilings(recent recentFilings, cik, formFilter string, limit int) []FilingRecord {
	if limit <= 0 {
		limit = DefaultFilingsLimit
	}
	records := make([]FilingRecord, 0, limit)
	for i, form := range recent.Form {
		if i >= len(recent.FilingDate) || i >= len(recent.AccessionNumber) {
			break
		}
		if formFilter != "" && !strings.EqualFold(form, formFilter) {
			continue
		}
		rec := FilingRecord{
			Form:            form,
			FilingDate:      recent.FilingDate[i],
			AccessionNumber: recent.AccessionNumber[i],
		}
		if i < len(recent.PrimaryDocument) {
			rec.PrimaryDocument = recent.PrimaryDocument[i]
		}
		if rec.PrimaryDocument != "" {
			rec.DocumentURL = FilingURL(cik, rec.AccessionNumber, rec.PrimaryDocument)
		}
		if i < len(recent.ReportDate) {
			rec.ReportDate = recent.ReportDate[i]
		}
		if i < len(recent.PrimaryDocDescription) {
			rec.Description = recent.PrimaryDocDescription[i]
		}
		if i < len(recent.Size) {
			rec.Size = recent.Size[i]
		}
		records = append(records, rec)
		if len(records) >= limit {
			break
		}
	}
	return records
}

// UnmarshalJSON decodes the companyconcept payload with a token walk so the
// units object keeps its document key order.
func (d *conceptDocument) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("concept payload is not a JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in concept payload", keyTok)
		}
		switch key {
		case "entityName":
			if err := dec.Decode(&d.EntityName); err != nil {
				return fmt.Errorf("decoding entityName: %w", err)
			}
		case "label":
			if err := dec.Decode(&d.Label); err != nil {
				return fmt.Errorf("decoding label: %w", err)
			}
		case "units":
			if err := d.decodeUnits(dec); err != nil {
				return err
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fmt.Errorf("decoding %s: %w", key, err)
			}
		}
	}
	return nil
}

func (d *conceptDocument) decodeUnits(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding units: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		// units was null; no groups to read
		return nil
	}
	if delim != '{' {
		return fmt.Errorf("units is not a JSON object")
	}
	for dec.More() {
		unitTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding unit key: %w", err)
		}
		unit, ok := unitTok.(string)
		if !ok {
			return fmt.Errorf("unexpected unit key %v", unitTok)
		}
		var entries []conceptEntry
		if err := dec.Decode(&entries); err != nil {
			return fmt.Errorf("decoding %s entries: %w", unit, err)
		}
		d.Units = append(d.Units, unitGroup{Unit: unit, Entries: entries})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding units: %w", err)
	}
	return nil
}

// conceptOutcome is the result of scanning a concept document for one
// fiscal year and period.
type conceptOutcome struct {
	Found      bool
	NullValue  bool
	Unit       string
	Value      *json.Number
	Entry      conceptEntry
	Diagnostic string
}

// scanConcept walks unit groups in document order and returns the first
// entry matching the fiscal year and case-normalized period. The first
// group containing any match wins even when a later group matches too; the
// registry's key order decides. An explicit null value reports as
// found-but-null, distinct from no match at all.
func scanConcept(doc *conceptDocument, concept, period string, year int) conceptOutcome {
	want := strings.ToUpper(period)
	for _, group := range doc.Units {
		for _, entry := range group.Entries {
			if entry.FY != year || strings.ToUpper(entry.FP) != want {
				continue
			}
			out := conceptOutcome{Found: true, Unit: group.Unit, Entry: entry}
			if entry.Val == nil {
				out.NullValue = true
			} else {
				out.Value = entry.Val
			}
			return out
		}
	}
	return conceptOutcome{
		Diagnostic: fmt.Sprintf("no %s entry found for fiscal period %s %d", concept, want, year),
	}
}
