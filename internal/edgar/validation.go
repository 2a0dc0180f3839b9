package edgar

import (
	"fmt"
	"regexp"
	"strings"

	apierrors "github.com/leopoldodonnell/edgar-mcp/internal/errors"
)

var (
	cikRegex       = regexp.MustCompile(`^\d{1,10}$`)
	conceptRegex   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	accessionRegex = regexp.MustCompile(`^\d{10}-?\d{2}-?\d{6}$`)
)

// MaxFilingsLimit caps how many filings one request may return
const MaxFilingsLimit = 100

// DefaultFilingsLimit applies when the caller does not specify one
const DefaultFilingsLimit = 10

// NormalizeCIK validates a CIK and left-pads it with zeros to the 10-digit
// form every EDGAR API path expects, e.g. "320193" -> "0000320193".
func NormalizeCIK(cik string) (string, error) {
	cleaned := strings.TrimSpace(cik)
	cleaned = strings.TrimPrefix(strings.ToUpper(cleaned), "CIK")
	if cleaned == "" {
		return "", apierrors.NewValidationError("cik", cik, "CIK is required")
	}
	if !cikRegex.MatchString(cleaned) {
		return "", apierrors.NewValidationError("cik", cik, "CIK must be a numeric string of at most 10 digits")
	}
	return fmt.Sprintf("%010s", cleaned), nil
}

// ValidateSearchQuery validates a company search query.
func ValidateSearchQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return apierrors.NewValidationError("query", query, "search query is required")
	}
	return nil
}

// ValidateConcept validates a US-GAAP concept tag. Tags are alphanumeric
// CamelCase identifiers and are interpolated into a URL path, so anything
// else is rejected.
func ValidateConcept(concept string) error {
	if concept == "" {
		return apierrors.NewValidationError("concept", concept, "concept is required")
	}
	if !conceptRegex.MatchString(concept) {
		return apierrors.NewValidationError("concept", concept, "concept must be an alphanumeric tag such as Revenues or NetIncomeLoss")
	}
	return nil
}

// ValidatePeriod validates a fiscal period and returns its upper-cased form.
func ValidatePeriod(period string) (string, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(period))
	if cleaned == "" {
		return "", apierrors.NewValidationError("period", period, "fiscal period is required, e.g. Q1 or FY")
	}
	return cleaned, nil
}

// ValidateYear validates a four-digit fiscal year.
func ValidateYear(year int) error {
	if year < 1000 || year > 9999 {
		return apierrors.NewValidationError("year", fmt.Sprintf("%d", year), "fiscal year must be a four-digit year")
	}
	return nil
}

// ValidateLimit validates a filings result cap.
func ValidateLimit(limit int) error {
	if limit < 0 {
		return apierrors.NewValidationError("limit", fmt.Sprintf("%d", limit), "limit cannot be negative")
	}
	if limit > MaxFilingsLimit {
		return apierrors.NewValidationError("limit", fmt.Sprintf("%d", limit), fmt.Sprintf("limit cannot exceed %d", MaxFilingsLimit))
	}
	return nil
}

// NormalizeAccessionNumber validates an accession number (with or without
// hyphens) and returns it stripped of hyphens, the form archive URLs use.
func NormalizeAccessionNumber(accession string) (string, error) {
	cleaned := strings.TrimSpace(accession)
	if !accessionRegex.MatchString(cleaned) {
		return "", apierrors.NewValidationError("accession_number", accession, "accession number must look like 0000320193-23-000106")
	}
	return strings.ReplaceAll(cleaned, "-", ""), nil
}

// ValidateDocumentName rejects filenames that could escape the filing's
// archive directory.
func ValidateDocumentName(name string) error {
	if name == "" {
		return apierrors.NewValidationError("primary_document", name, "primary document filename is required")
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return apierrors.NewValidationError("primary_document", name, "primary document must be a plain filename")
	}
	return nil
}
