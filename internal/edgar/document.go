package edgar

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/leopoldodonnell/edgar-mcp/internal/base"
	apierrors "github.com/leopoldodonnell/edgar-mcp/internal/errors"
	"github.com/leopoldodonnell/edgar-mcp/metrics"
	"github.com/leopoldodonnell/edgar-mcp/tracing"
)

const (
	// maxDocumentBytes caps how much of a filing document is fetched;
	// large exhibits can run to hundreds of megabytes
	maxDocumentBytes = 2 << 20

	// DefaultDocumentMaxLength is the default extracted-text cap
	DefaultDocumentMaxLength = 50_000
)

// GetFilingDocument fetches a filing's primary document from the EDGAR
// archives and extracts readable text. HTML is stripped to plain text;
// anything else passes through unmodified. Content longer than maxLength
// characters is cut off and flagged.
func (c *Client) GetFilingDocument(ctx context.Context, cik, accessionNumber, primaryDocument string, maxLength int) (*FilingDocument, error) {
	padded, err := NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}
	accession, err := NormalizeAccessionNumber(accessionNumber)
	if err != nil {
		return nil, err
	}
	if err := ValidateDocumentName(primaryDocument); err != nil {
		return nil, err
	}
	if maxLength <= 0 {
		maxLength = DefaultDocumentMaxLength
	}

	ctx, span := tracing.StartSpan(ctx, "edgar.api.archives")
	defer span.End()
	tracing.AddEdgarAttributes(span, "archives", padded)

	url := c.archivesURL(padded, accession, primaryDocument)
	start := time.Now()
	body, status, err := c.DoRequest(ctx, base.RequestConfig{
		URL:       url,
		UserAgent: c.cfg.UserAgent,
		Endpoint:  "archives",
		Accept:    "text/html,application/xhtml+xml,text/plain",
		MaxRetry:  c.cfg.MaxRetries,
		MaxBytes:  maxDocumentBytes,
	})
	metrics.RecordAPICall("archives", time.Since(start).Seconds(), err == nil && status == http.StatusOK, apiErrorCode(err, status))
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if status == http.StatusNotFound {
		c.RecordSuccess()
		return nil, &apierrors.NotFoundError{EntityType: "filing document", Identifier: accessionNumber + "/" + primaryDocument}
	}
	if status != http.StatusOK {
		c.RecordSuccess()
		return nil, &apierrors.UpstreamError{Endpoint: "archives", StatusCode: status, Snippet: excerpt(body, 200)}
	}
	c.RecordSuccess()
	metrics.DocumentSize.Observe(float64(len(body)))

	content := string(body)
	if isHTMLDocument(primaryDocument, body) {
		if text, err := extractText(body); err == nil {
			content = text
		} else {
			c.Logger.Warn("html extraction failed, returning raw document",
				"document", primaryDocument,
				"error", err)
		}
	}

	truncated := false
	if len(content) > maxLength {
		content = content[:maxLength]
		truncated = true
	}

	return &FilingDocument{
		CIK:             padded,
		AccessionNumber: accessionNumber,
		PrimaryDocument: primaryDocument,
		DocumentURL:     url,
		Content:         content,
		ContentLength:   len(content),
		Truncated:       truncated,
	}, nil
}

// isHTMLDocument decides by file extension first, document prefix second
func isHTMLDocument(name string, body []byte) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 256)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// extractText renders HTML to plain text with scripts, styles, and head
// chrome removed and whitespace collapsed
func extractText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, head").Remove()
	// Text() concatenates text nodes with nothing in between; give block
	// elements a boundary so words do not run together across paragraphs
	doc.Find("p, div, td, th, tr, li, h1, h2, h3, h4, h5, h6, table").AfterHtml("\n")
	return normalizeWhitespace(doc.Text()), nil
}

// normalizeWhitespace collapses runs of spaces within lines and runs of
// blank lines between them
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
