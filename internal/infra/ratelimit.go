package infra

import (
	"context"
	"time"
)

// DefaultCooldown is the minimum spacing imposed between consecutive
// upstream requests. EDGAR documents a 10 requests/second ceiling;
// one request in flight plus a 100ms gap stays safely under it.
const DefaultCooldown = 100 * time.Millisecond

// RateLimiter serializes outbound requests to the registry: at most one
// holder at a time, with a fixed cool-down after each Release before the
// next Acquire is admitted.
//
// The slot channel holds a single token. Acquire takes it, Release hands
// it back after the cool-down. Goroutines blocked in Acquire are queued
// by the runtime in arrival order, which gives FIFO admission.
type RateLimiter struct {
	slot     chan struct{}
	cooldown time.Duration
}

// NewRateLimiter creates a rate limiter with the given cool-down.
// Non-positive values fall back to DefaultCooldown.
func NewRateLimiter(cooldown time.Duration) *RateLimiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	rl := &RateLimiter{
		slot:     make(chan struct{}, 1),
		cooldown: cooldown,
	}
	rl.slot <- struct{}{}
	return rl
}

// Acquire blocks until the caller may issue the next upstream request,
// or until ctx is done, whichever comes first.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-rl.slot:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release hands the slot back once the cool-down has elapsed. Callers
// must pair every successful Acquire with exactly one Release, on every
// exit path.
func (rl *RateLimiter) Release() {
	time.AfterFunc(rl.cooldown, func() {
		rl.slot <- struct{}{}
	})
}

// Cooldown reports the configured minimum inter-request spacing.
func (rl *RateLimiter) Cooldown() time.Duration {
	return rl.cooldown
}
