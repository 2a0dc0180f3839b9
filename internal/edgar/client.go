package edgar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/leopoldodonnell/edgar-mcp/internal/base"
	apierrors "github.com/leopoldodonnell/edgar-mcp/internal/errors"
	"github.com/leopoldodonnell/edgar-mcp/internal/infra"
	"github.com/leopoldodonnell/edgar-mcp/metrics"
	"github.com/leopoldodonnell/edgar-mcp/tracing"
)

const (
	// DefaultWWWBaseURL serves the bulk ticker index and filing archives
	DefaultWWWBaseURL = "https://www.sec.gov"

	// DefaultDataBaseURL serves submissions and XBRL concept data
	DefaultDataBaseURL = "https://data.sec.gov"

	// tickerIndexPath is the bulk ticker/name index document
	tickerIndexPath = "/files/company_tickers.json"

	// tickerIndexCacheKey keys the cached index
	tickerIndexCacheKey = "ticker-index"

	// indexCacheTTL keeps the ~1MB bulk index warm; it changes at most daily
	indexCacheTTL = 24 * time.Hour

	// OperationTimeout caps the whole financial-statement operation
	OperationTimeout = 15 * time.Second
)

// Client provides access to the SEC EDGAR registry APIs
type Client struct {
	*base.Client
	cfg         Config
	wwwBaseURL  string
	dataBaseURL string

	// operation budgets, overridable in tests
	opTimeout    time.Duration
	fetchTimeout time.Duration
}

// ClientOption configures the Client (re-export base.ClientOption for compatibility)
type ClientOption = base.ClientOption

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return base.WithHTTPClient(c)
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return base.WithLogger(l)
}

// WithCache sets a custom cache
func WithCache(c *infra.Cache) ClientOption {
	return base.WithCache(c)
}

// WithLimiter sets a custom rate limiter
func WithLimiter(l *infra.RateLimiter) ClientOption {
	return base.WithLimiter(l)
}

// NewClient creates a new EDGAR client. Options are applied after the
// config so tests can override the HTTP client or limiter.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		Client:       base.NewClient(),
		cfg:          cfg,
		wwwBaseURL:   DefaultWWWBaseURL,
		dataBaseURL:  DefaultDataBaseURL,
		opTimeout:    OperationTimeout,
		fetchTimeout: conceptFetchTimeout,
	}
	if c.cfg.UserAgent == "" {
		c.cfg.UserAgent = DefaultUserAgent
		c.cfg.UserAgentDefaulted = true
	}
	if cfg.Timeout > 0 {
		c.HTTPClient.Timeout = cfg.Timeout
	}
	for _, opt := range opts {
		opt(c.Client)
	}
	return c
}

// WithBaseURL points every endpoint at url (for testing)
func (c *Client) WithBaseURL(url string) *Client {
	c.wwwBaseURL = url
	c.dataBaseURL = url
	return c
}

// UserAgent returns the identification header sent upstream
func (c *Client) UserAgent() string {
	return c.cfg.UserAgent
}

func (c *Client) submissionsURL(cik string) string {
	return c.dataBaseURL + "/submissions/CIK" + cik + ".json"
}

func (c *Client) conceptURL(cik, concept string) string {
	return c.dataBaseURL + "/api/xbrl/companyconcept/CIK" + cik + "/us-gaap/" + concept + ".json"
}

func (c *Client) archivesURL(cik, accessionNoHyphens, document string) string {
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s", c.wwwBaseURL, cik, accessionNoHyphens, document)
}

// get performs one instrumented GET through the shared request path
func (c *Client) get(ctx context.Context, endpoint, cik, url string) ([]byte, int, error) {
	ctx, span := tracing.StartSpan(ctx, "edgar.api."+endpoint)
	defer span.End()
	tracing.AddEdgarAttributes(span, endpoint, cik)

	start := time.Now()
	body, status, err := c.DoRequest(ctx, base.RequestConfig{
		URL:       url,
		UserAgent: c.cfg.UserAgent,
		Endpoint:  endpoint,
		MaxRetry:  c.cfg.MaxRetries,
	})
	metrics.RecordAPICall(endpoint, time.Since(start).Seconds(), err == nil && status < 400, apiErrorCode(err, status))
	tracing.RecordError(span, err)
	return body, status, err
}

func apiErrorCode(err error, status int) string {
	switch {
	case err != nil:
		return "transport"
	case status >= 400:
		return fmt.Sprintf("http_%d", status)
	default:
		return ""
	}
}

// tickerIndex returns the bulk ticker/name index in its upstream position
// order. The index is cached for a day and concurrent fetches collapse into
// one flight: refetching ~1MB per search would defeat the pacing the rate
// limiter exists to enforce.
func (c *Client) tickerIndex(ctx context.Context) ([]tickerIndexEntry, error) {
	if cached, ok := c.Cache.Get(tickerIndexCacheKey); ok {
		metrics.RecordCacheAccess(true)
		return cached.([]tickerIndexEntry), nil
	}
	metrics.RecordCacheAccess(false)

	result, _, err := c.Dedup.Do(ctx, tickerIndexCacheKey, func() (any, error) {
		body, status, err := c.get(ctx, "tickers", "", c.wwwBaseURL+tickerIndexPath)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			c.RecordSuccess()
			return nil, &apierrors.UpstreamError{Endpoint: "tickers", StatusCode: status, Snippet: excerpt(body, 200)}
		}
		var raw map[string]tickerIndexEntry
		if err := parseJSON(body, &raw, "tickers"); err != nil {
			return nil, err
		}
		c.RecordSuccess()
		return orderedIndex(raw), nil
	})
	if err != nil {
		return nil, err
	}

	entries := result.([]tickerIndexEntry)
	c.Cache.Set(tickerIndexCacheKey, entries, indexCacheTTL)
	metrics.SetCacheSize(c.Cache.Size())
	return entries, nil
}

// orderedIndex sorts the index rows by their numeric position keys
func orderedIndex(raw map[string]tickerIndexEntry) []tickerIndexEntry {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})
	entries := make([]tickerIndexEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, raw[k])
	}
	return entries
}

// SearchCompanies finds filers whose ticker or name contains query,
// case-insensitively, in index order. An unreachable index is the one
// search failure that propagates: there is no meaningful partial result.
func (c *Client) SearchCompanies(ctx context.Context, query string) ([]CompanyRecord, error) {
	if err := ValidateSearchQuery(query); err != nil {
		return nil, err
	}
	index, err := c.tickerIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching ticker index: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	matches := make([]CompanyRecord, 0)
	for _, entry := range index {
		if !strings.Contains(strings.ToLower(entry.Ticker), needle) &&
			!strings.Contains(strings.ToLower(entry.Title), needle) {
			continue
		}
		matches = append(matches, CompanyRecord{
			CIK:     fmt.Sprintf("%010d", entry.CIK),
			Name:    entry.Title,
			Tickers: []string{entry.Ticker},
		})
	}
	return matches, nil
}

// GetCompanyInfo fetches one filer's registration details by CIK. The CIK
// may be any numeric string; zero-padding is applied here.
func (c *Client) GetCompanyInfo(ctx context.Context, cik string) (*CompanyRecord, error) {
	padded, err := NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}

	body, status, err := c.get(ctx, "submissions", padded, c.submissionsURL(padded))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		c.RecordSuccess()
		return nil, apierrors.NewNotFoundError(padded)
	}
	if status != http.StatusOK {
		c.RecordSuccess()
		return nil, &apierrors.UpstreamError{Endpoint: "submissions", StatusCode: status, Snippet: excerpt(body, 200)}
	}

	record, err := decodeCompany(body, padded)
	if err != nil {
		return nil, err
	}
	c.RecordSuccess()
	return record, nil
}

// GetFilings fetches a company's recent filing history, optionally filtered
// by exact form type (case-insensitive) and capped at limit (default 10).
func (c *Client) GetFilings(ctx context.Context, cik, formFilter string, limit int) (*FilingCollection, error) {
	padded, err := NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultFilingsLimit
	}
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}

	body, status, err := c.get(ctx, "submissions", padded, c.submissionsURL(padded))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		c.RecordSuccess()
		return nil, apierrors.NewNotFoundError(padded)
	}
	if status != http.StatusOK {
		c.RecordSuccess()
		return nil, &apierrors.UpstreamError{Endpoint: "submissions", StatusCode: status, Snippet: excerpt(body, 200)}
	}

	var payload submissionsPayload
	if err := parseJSON(body, &payload, "submissions"); err != nil {
		return nil, err
	}
	c.RecordSuccess()

	return &FilingCollection{
		CIK:     padded,
		Name:    payload.Name,
		Filings: zipFilings(payload.Filings.Recent, padded, formFilter, limit),
	}, nil
}

// GetFinancialStatement looks up one concept value for a fiscal year and
// period. It never returns an error: every failure mode produces a
// populated result whose Data map carries conceptFound=false and an error
// diagnostic. A 15 second watchdog bounds the whole operation and
// substitutes a distinct timed-out placeholder when it fires, regardless
// of inner progress.
func (c *Client) GetFinancialStatement(ctx context.Context, cik, concept, period string, year int) *FinancialStatementResult {
	normalizedPeriod, err := ValidatePeriod(period)
	if err != nil {
		return failedStatement(cik, strings.ToUpper(period), year, err.Error())
	}
	padded, err := NormalizeCIK(cik)
	if err != nil {
		return failedStatement(cik, normalizedPeriod, year, err.Error())
	}
	if err := ValidateConcept(concept); err != nil {
		return failedStatement(padded, normalizedPeriod, year, err.Error())
	}
	if err := ValidateYear(year); err != nil {
		return failedStatement(padded, normalizedPeriod, year, err.Error())
	}

	done := make(chan *FinancialStatementResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.Logger.Error("financial statement lookup panicked",
					"cik", padded,
					"concept", concept,
					"panic", r)
				done <- failedStatement(padded, normalizedPeriod, year, fmt.Sprintf("internal error: %v", r))
			}
		}()
		done <- c.financialStatement(ctx, padded, concept, normalizedPeriod, year)
	}()

	select {
	case res := <-done:
		return res
	case <-time.After(c.opTimeout):
		c.Logger.Warn("financial statement lookup exceeded the operation deadline",
			"cik", padded,
			"concept", concept)
		res := failedStatement(padded, normalizedPeriod, year, fmt.Sprintf("operation timed out after %s", c.opTimeout))
		res.Data["timedOut"] = true
		return res
	}
}

// failedStatement builds the always-populated failure result
func failedStatement(cik, period string, year int, reason string) *FinancialStatementResult {
	return &FinancialStatementResult{
		CIK:          cik,
		Name:         placeholderCompanyName,
		FiscalYear:   year,
		FiscalPeriod: period,
		Data: map[string]any{
			"conceptFound": false,
			"error":        reason,
		},
	}
}

func (c *Client) financialStatement(ctx context.Context, cik, concept, period string, year int) *FinancialStatementResult {
	result := &FinancialStatementResult{
		CIK:          cik,
		Name:         c.lookupCompanyName(ctx, cik),
		FiscalYear:   year,
		FiscalPeriod: period,
		Data:         map[string]any{"conceptFound": false},
	}

	stream, err := c.fetchConceptDocument(ctx, cik, concept)
	if err != nil {
		result.Data["error"] = err.Error()
		return result
	}

	var doc conceptDocument
	if err := parseJSON(stream.Body, &doc, "concept"); err != nil {
		result.Data["error"] = err.Error()
		return result
	}
	if result.Name == placeholderCompanyName && doc.EntityName != "" {
		result.Name = doc.EntityName
	}

	outcome := scanConcept(&doc, concept, period, year)
	if !outcome.Found {
		result.Data["error"] = outcome.Diagnostic
		return result
	}

	result.Form = outcome.Entry.Form
	result.FilingDate = outcome.Entry.Filed
	result.Data["conceptFound"] = true
	result.Data["unit"] = outcome.Unit
	if outcome.Entry.End != "" {
		result.Data["endDate"] = outcome.Entry.End
	}
	if outcome.NullValue {
		result.Data[concept] = nil
		result.Data["valueIsNull"] = true
	} else {
		result.Data[concept] = outcome.Value.String()
	}
	if stream.Truncated {
		result.Data["partialData"] = true
	}
	return result
}
