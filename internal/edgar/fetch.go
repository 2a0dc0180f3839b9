package edgar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/leopoldodonnell/edgar-mcp/internal/base"
	apierrors "github.com/leopoldodonnell/edgar-mcp/internal/errors"
	"github.com/leopoldodonnell/edgar-mcp/metrics"
	"github.com/leopoldodonnell/edgar-mcp/tracing"
)

const (
	// conceptFetchTimeout is the streaming budget for the concept endpoint,
	// the largest and slowest document this client reads
	conceptFetchTimeout = 30 * time.Second

	// nameLookupTimeout bounds the best-effort company name lookup that
	// precedes a concept fetch
	nameLookupTimeout = 5 * time.Second

	// placeholderCompanyName stands in when the name lookup fails
	placeholderCompanyName = "Unknown"
)

// fetchConceptDocument streams the companyconcept payload under its own
// 30 second budget, detached from the caller's deadline: the operation
// watchdog must not cut the stream short, and a stream that outlives the
// watchdog completes harmlessly in the background. A budget expiring
// mid-read yields the accumulated bytes rather than an error; zero bytes
// and non-success statuses map to their own error types.
func (c *Client) fetchConceptDocument(ctx context.Context, cik, concept string) (res *base.StreamResult, err error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	fetchCtx, span := tracing.StartSpan(fetchCtx, "edgar.api.concept")
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()
	tracing.AddEdgarAttributes(span, "concept", cik)

	start := time.Now()
	res, err = c.DoRequestStream(fetchCtx, base.RequestConfig{
		URL:       c.conceptURL(cik, concept),
		UserAgent: c.cfg.UserAgent,
		Endpoint:  "concept",
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordAPICall("concept", elapsed, false, "transport")
		return nil, err
	}
	if res.StatusCode != 0 && res.StatusCode != http.StatusOK {
		metrics.RecordAPICall("concept", elapsed, false, fmt.Sprintf("http_%d", res.StatusCode))
		if res.StatusCode >= 500 {
			c.RecordFailure()
		} else {
			c.RecordSuccess()
		}
		return nil, &apierrors.UpstreamError{Endpoint: "concept", StatusCode: res.StatusCode, Snippet: excerpt(res.Body, 200)}
	}
	if len(res.Body) == 0 {
		metrics.RecordAPICall("concept", elapsed, false, "empty_response")
		return nil, &apierrors.EmptyResponseError{Endpoint: "concept"}
	}
	metrics.RecordAPICall("concept", elapsed, true, "")
	c.RecordSuccess()
	return res, nil
}

// lookupCompanyName resolves a display name for cik under a short deadline
// of its own. Any failure falls back to the placeholder; the lookup never
// aborts the concept fetch it precedes.
func (c *Client) lookupCompanyName(ctx context.Context, cik string) string {
	nameCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), nameLookupTimeout)
	defer cancel()

	info, err := c.GetCompanyInfo(nameCtx, cik)
	if err != nil {
		c.Logger.Debug("company name lookup failed, using placeholder",
			"cik", cik,
			"error", err)
		return placeholderCompanyName
	}
	if info.Name == "" {
		return placeholderCompanyName
	}
	return info.Name
}
