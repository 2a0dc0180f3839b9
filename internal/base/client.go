// Package base provides shared HTTP client infrastructure for the SEC EDGAR APIs.
package base

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/leopoldodonnell/edgar-mcp/internal/infra"
	"github.com/leopoldodonnell/edgar-mcp/metrics"
)

const (
	// DefaultTimeout is the total budget for a streamed document fetch
	DefaultTimeout = 30 * time.Second

	// ChunkSize is the read size for streamed responses
	ChunkSize = 32 * 1024
)

// Client provides common HTTP client infrastructure with request pacing,
// circuit breaking, caching, and request deduplication.
//
// EDGAR enforces a fair-access policy (max 10 requests/second per client),
// so all requests pass through a single pacing slot with a cool-down
// between consecutive requests.
type Client struct {
	HTTPClient     *http.Client
	Logger         *slog.Logger
	Cache          *infra.Cache
	Dedup          *infra.RequestDeduplicator
	CircuitBreaker *infra.CircuitBreaker
	Limiter        *infra.RateLimiter
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithCache sets a custom cache
func WithCache(c *infra.Cache) ClientOption {
	return func(client *Client) {
		client.Cache = c
	}
}

// WithLimiter sets a custom rate limiter
func WithLimiter(l *infra.RateLimiter) ClientOption {
	return func(client *Client) {
		client.Limiter = l
	}
}

// NewClient creates a new base client. Options run first; defaults fill in
// whatever they left unset.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	if c.HTTPClient == nil {
		c.HTTPClient = newHTTPClient(DefaultTimeout)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Cache == nil {
		c.Cache = infra.NewCache(infra.DefaultCacheCapacity)
	}
	if c.Dedup == nil {
		c.Dedup = infra.NewRequestDeduplicator()
	}
	if c.CircuitBreaker == nil {
		c.CircuitBreaker = infra.NewCircuitBreaker()
	}
	if c.Limiter == nil {
		c.Limiter = infra.NewRateLimiter(infra.DefaultCooldown)
	}
	return c
}

// Close releases resources held by the client
func (c *Client) Close() {
	if c.Cache != nil {
		c.Cache.Close()
	}
}

// CircuitBreakerStats returns the current circuit breaker state
func (c *Client) CircuitBreakerStats() infra.CircuitBreakerStats {
	return c.CircuitBreaker.Stats()
}

// DedupStats returns the number of in-flight deduplicated requests
func (c *Client) DedupStats() int {
	return c.Dedup.Stats()
}

// AcquireSlot blocks until the pacing slot is available or the context is done
func (c *Client) AcquireSlot(ctx context.Context) error {
	start := time.Now()
	if err := c.Limiter.Acquire(ctx); err != nil {
		return fmt.Errorf("context canceled while waiting for pacing slot: %w", err)
	}
	if time.Since(start) > time.Millisecond {
		metrics.RateLimitWaits.Inc()
	}
	return nil
}

// ReleaseSlot frees the pacing slot after the cool-down elapses
func (c *Client) ReleaseSlot() {
	c.Limiter.Release()
}

// CheckCircuitBreaker returns nil if requests are allowed, or an error if the circuit is open
func (c *Client) CheckCircuitBreaker() error {
	if c.CircuitBreaker.Allow() {
		return nil
	}
	stats := c.CircuitBreaker.Stats()
	return &infra.ErrCircuitOpen{
		State:    stats.State,
		RetryAt:  stats.RetryAt,
		Failures: stats.ConsecutiveFails,
	}
}

// RequestConfig configures a single HTTP request
type RequestConfig struct {
	URL       string
	UserAgent string
	Endpoint  string // short label for logs and metrics, e.g. "tickers"
	Accept    string // defaults to "application/json"
	MaxRetry  int    // defaults to 3
	MaxBytes  int64  // response size cap, 0 means unlimited
}

// DoRequest performs an HTTP request with circuit breaker, pacing, and retries.
// The pacing slot is held for the entire retry loop so failed attempts do not
// let another request jump the queue. Returns the response body and status
// code on success; the caller handles response parsing.
func (c *Client) DoRequest(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	if err := c.CheckCircuitBreaker(); err != nil {
		return nil, 0, err
	}

	if err := c.AcquireSlot(ctx); err != nil {
		return nil, 0, err
	}
	defer c.ReleaseSlot()

	req, err := c.newRequest(ctx, cfg)
	if err != nil {
		return nil, 0, err
	}

	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 3
	}

	var lastErr error
	for attempt := range maxRetry {
		if attempt > 0 {
			metrics.EdgarAPIRetries.WithLabelValues(endpointLabel(cfg)).Inc()
			backoff := time.Duration(attempt*attempt) * 100 * time.Millisecond
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, 0, fmt.Errorf("context canceled during backoff: %w", err)
			}
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			c.Logger.Warn("EDGAR request failed, retrying",
				"attempt", attempt+1,
				"url", cfg.URL,
				"error", err)
			continue
		}

		body, err := readAndClose(resp, cfg.MaxBytes)
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			// EDGAR signals fair-access throttling with a Retry-After header.
			if wait, ok := retryAfter(resp); ok {
				if err := sleepCtx(ctx, wait); err != nil {
					return nil, 0, err
				}
			}
			lastErr = fmt.Errorf("rate limited (429)")

		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, truncate(string(body), 200))

		default:
			// Everything below 500 goes back to the caller unchanged. A 404
			// from EDGAR is a meaningful answer (unknown CIK), not a failure.
			return body, resp.StatusCode, nil
		}
	}

	c.CircuitBreaker.RecordFailure()
	return nil, 0, lastErr
}

// StreamResult holds the outcome of a streamed fetch. Truncated is set when
// the deadline expired mid-read; Body then holds whatever bytes arrived
// before the cutoff.
type StreamResult struct {
	Body       []byte
	StatusCode int
	Truncated  bool
}

// DoRequestStream performs a single-attempt HTTP request, reading the
// response in fixed-size chunks. Unlike DoRequest, a deadline that expires
// mid-read is not treated as fatal: the bytes accumulated so far are
// returned with Truncated set so the caller can try to salvage them.
func (c *Client) DoRequestStream(ctx context.Context, cfg RequestConfig) (*StreamResult, error) {
	if err := c.CheckCircuitBreaker(); err != nil {
		return nil, err
	}

	if err := c.AcquireSlot(ctx); err != nil {
		return nil, err
	}
	defer c.ReleaseSlot()

	req, err := c.newRequest(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			// Deadline hit before any byte arrived
			metrics.TruncatedFetches.Inc()
			return &StreamResult{Truncated: true}, nil
		}
		c.CircuitBreaker.RecordFailure()
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	buf := make([]byte, ChunkSize)
	var body []byte
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			body = append(body, buf[:n]...)
			if cfg.MaxBytes > 0 && int64(len(body)) > cfg.MaxBytes {
				return nil, fmt.Errorf("response from %s exceeds %d bytes", cfg.URL, cfg.MaxBytes)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			if isTimeout(readErr) {
				metrics.TruncatedFetches.Inc()
				c.Logger.Warn("deadline expired mid-read, returning partial payload",
					"url", cfg.URL,
					"bytes", len(body))
				return &StreamResult{Body: body, StatusCode: resp.StatusCode, Truncated: true}, nil
			}
			return nil, fmt.Errorf("failed to read response: %w", readErr)
		}
	}

	return &StreamResult{Body: body, StatusCode: resp.StatusCode}, nil
}

// RecordSuccess records a successful request with the circuit breaker
func (c *Client) RecordSuccess() {
	c.CircuitBreaker.RecordSuccess()
}

// RecordFailure records a failed request with the circuit breaker
func (c *Client) RecordFailure() {
	c.CircuitBreaker.RecordFailure()
}

// newRequest builds a GET request with the headers EDGAR expects
func (c *Client) newRequest(ctx context.Context, cfg RequestConfig) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	accept := cfg.Accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)

	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	} else {
		req.Header.Set("User-Agent", "edgar-mcp-server/1.0")
	}

	return req, nil
}

// sleepCtx waits for d or until the context is done, whichever comes first
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryAfter parses the Retry-After header as a second count. The HTTP-date
// form is not used by EDGAR and is ignored here.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(h)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// isTimeout reports whether err is a deadline or timeout error
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// endpointLabel returns the metric label for a request
func endpointLabel(cfg RequestConfig) string {
	if cfg.Endpoint != "" {
		return cfg.Endpoint
	}
	return "unknown"
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response, maxBytes int64) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	if maxBytes > 0 {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
		if err != nil {
			return nil, err
		}
		if int64(len(body)) > maxBytes {
			return nil, fmt.Errorf("response exceeds %d bytes", maxBytes)
		}
		return body, nil
	}
	return io.ReadAll(resp.Body)
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient builds the shared HTTP client. Requests go out one at a
// time, but idle connections to both EDGAR hosts (www.sec.gov and
// data.sec.gov) stay warm across the pacing cool-down.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:          8,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
