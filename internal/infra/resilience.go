// Package infra provides shared infrastructure for the EDGAR MCP server:
// upstream request pacing, response caching, and resilience patterns
// (circuit breaker, request deduplication).
package infra

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// RequestDeduplicator coalesces identical in-flight requests. When several
// searches need the bulk ticker index at the same time, only one fetch goes
// upstream and every waiter receives the same result.
type RequestDeduplicator struct {
	group    singleflight.Group
	inflight atomic.Int64
}

// NewRequestDeduplicator creates an empty deduplicator.
func NewRequestDeduplicator() *RequestDeduplicator {
	return &RequestDeduplicator{}
}

// Do runs fn at most once per key across concurrent callers. The bool
// reports whether the result was shared with other callers. A cancelled
// context releases the caller immediately; the underlying fetch keeps
// running so late joiners can still use its result.
func (d *RequestDeduplicator) Do(ctx context.Context, key string, fn func() (any, error)) (any, bool, error) {
	ch := d.group.DoChan(key, func() (any, error) {
		d.inflight.Add(1)
		defer d.inflight.Add(-1)
		return fn()
	})

	select {
	case r := <-ch:
		return r.Val, r.Shared, r.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Stats reports how many distinct fetches are in flight right now.
func (d *RequestDeduplicator) Stats() int {
	return int(d.inflight.Load())
}

// Circuit breaker defaults. EDGAR outages are usually brief throttling
// episodes, so the breaker probes again after half a minute.
const (
	defaultFailureThreshold = 5
	defaultResetTimeout     = 30 * time.Second
	defaultHalfOpenProbes   = 2
)

// CircuitState is the breaker's position.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

var circuitStateNames = [...]string{"closed", "open", "half-open"}

func (s CircuitState) String() string {
	if s < 0 || int(s) >= len(circuitStateNames) {
		return "unknown"
	}
	return circuitStateNames[s]
}

// CircuitBreaker fails fast once EDGAR has refused or broken several
// requests in a row, instead of stacking more load on a struggling
// upstream. After the reset timeout it admits a limited number of probe
// requests and closes again on the first success.
type CircuitBreaker struct {
	mu sync.RWMutex

	threshold    int
	resetTimeout time.Duration
	maxProbes    int

	state       CircuitState
	failures    int
	lastFailure time.Time
	probes      int
}

// NewCircuitBreaker creates a breaker with the package defaults.
func NewCircuitBreaker() *CircuitBreaker {
	return NewCircuitBreakerWithConfig(defaultFailureThreshold, defaultResetTimeout, defaultHalfOpenProbes)
}

// NewCircuitBreakerWithConfig creates a breaker that opens after threshold
// consecutive failures. Once resetTimeout has passed it goes half-open and
// admits at most maxProbes requests until one succeeds.
func NewCircuitBreakerWithConfig(threshold int, resetTimeout time.Duration, maxProbes int) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:    threshold,
		resetTimeout: resetTimeout,
		maxProbes:    maxProbes,
		state:        CircuitClosed,
	}
}

// Allow reports whether a request may proceed, advancing the breaker from
// open to half-open once the reset timeout has passed. The admitting call
// counts as the first probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true

	case CircuitOpen:
		if time.Since(cb.lastFailure) <= cb.resetTimeout {
			return false
		}
		cb.state = CircuitHalfOpen
		cb.probes = 1
		return true

	case CircuitHalfOpen:
		if cb.probes >= cb.maxProbes {
			return false
		}
		cb.probes++
		return true
	}
	return false
}

// RecordSuccess clears the failure streak. A success while half-open closes
// the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state == CircuitHalfOpen {
		cb.state = CircuitClosed
		cb.probes = 0
	}
}

// RecordFailure extends the failure streak. Reaching the threshold opens
// the circuit; any failure while half-open reopens it.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	switch cb.state {
	case CircuitClosed:
		if cb.failures >= cb.threshold {
			cb.state = CircuitOpen
		}
	case CircuitHalfOpen:
		cb.state = CircuitOpen
		cb.probes = 0
	}
}

// State returns the breaker's current position.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Stats returns a snapshot for logging and diagnostics.
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	s := CircuitBreakerStats{
		State:            cb.state.String(),
		ConsecutiveFails: cb.failures,
		LastFailure:      cb.lastFailure,
	}
	if !cb.lastFailure.IsZero() {
		s.RetryAt = cb.lastFailure.Add(cb.resetTimeout)
	}
	return s
}

// CircuitBreakerStats is a point-in-time view of the breaker. RetryAt is
// when an open circuit will admit its next probe; it is zero until the
// first failure.
type CircuitBreakerStats struct {
	State            string    `json:"state"`
	ConsecutiveFails int       `json:"consecutive_failures"`
	LastFailure      time.Time `json:"last_failure,omitempty"`
	RetryAt          time.Time `json:"retry_at,omitempty"`
}

// ErrCircuitOpen reports a request rejected because the circuit is open.
type ErrCircuitOpen struct {
	State    string
	RetryAt  time.Time
	Failures int
}

func (e ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker is open after %d consecutive upstream failures, retry after %s",
		e.Failures, e.RetryAt.Format(time.RFC3339))
}
