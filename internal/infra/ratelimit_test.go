package infra

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(0)
	if rl.Cooldown() != DefaultCooldown {
		t.Errorf("Cooldown() = %v, want %v", rl.Cooldown(), DefaultCooldown)
	}

	rl = NewRateLimiter(-1 * time.Second)
	if rl.Cooldown() != DefaultCooldown {
		t.Errorf("Cooldown() = %v for negative input, want %v", rl.Cooldown(), DefaultCooldown)
	}

	rl = NewRateLimiter(250 * time.Millisecond)
	if rl.Cooldown() != 250*time.Millisecond {
		t.Errorf("Cooldown() = %v, want 250ms", rl.Cooldown())
	}
}

func TestRateLimiter_AcquireRelease(t *testing.T) {
	rl := NewRateLimiter(time.Millisecond)
	ctx := context.Background()

	if err := rl.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	rl.Release()

	// After the cool-down the slot must be available again.
	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := rl.Acquire(ctx2); err != nil {
		t.Fatalf("Acquire after Release failed: %v", err)
	}
	rl.Release()
}

func TestRateLimiter_MutualExclusion(t *testing.T) {
	rl := NewRateLimiter(time.Millisecond)
	ctx := context.Background()

	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rl.Acquire(ctx); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer rl.Release()

			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()

			time.Sleep(2 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Errorf("max in-flight holders = %d, want 1", maxInFlight)
	}
}

func TestRateLimiter_CooldownSpacing(t *testing.T) {
	cooldown := 50 * time.Millisecond
	rl := NewRateLimiter(cooldown)
	ctx := context.Background()

	var times []time.Time
	for i := 0; i < 3; i++ {
		if err := rl.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
		times = append(times, time.Now())
		rl.Release()
	}

	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		// Allow a small scheduling tolerance below the nominal cool-down.
		if gap < cooldown-5*time.Millisecond {
			t.Errorf("gap between acquire %d and %d = %v, want >= %v", i-1, i, gap, cooldown)
		}
	}
}

func TestRateLimiter_FIFOAdmission(t *testing.T) {
	rl := NewRateLimiter(time.Millisecond)
	ctx := context.Background()

	// Hold the slot so the waiters below queue up.
	if err := rl.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	var mu sync.Mutex
	var order []int
	started := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			started <- struct{}{}
			if err := rl.Acquire(ctx); err != nil {
				t.Errorf("waiter %d: %v", n, err)
				return
			}
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			rl.Release()
		}(i)
		// Wait until the goroutine has launched, then give it a moment
		// to block inside Acquire before starting the next waiter.
		<-started
		time.Sleep(10 * time.Millisecond)
	}

	rl.Release()
	wg.Wait()

	for i, n := range order {
		if n != i {
			t.Fatalf("admission order = %v, want FIFO [0 1 2 3]", order)
		}
	}
}

func TestRateLimiter_AcquireContextCancelled(t *testing.T) {
	rl := NewRateLimiter(time.Millisecond)
	ctx := context.Background()

	if err := rl.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer rl.Release()

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := rl.Acquire(cancelled); err != context.Canceled {
		t.Errorf("Acquire with cancelled context = %v, want context.Canceled", err)
	}

	timed, cancelTimed := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancelTimed()
	start := time.Now()
	err := rl.Acquire(timed)
	if err != context.DeadlineExceeded {
		t.Errorf("Acquire with expiring context = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Acquire blocked %v after context expiry", elapsed)
	}
}

func TestRateLimiter_ReleaseOnErrorPath(t *testing.T) {
	rl := NewRateLimiter(time.Millisecond)
	ctx := context.Background()

	// Simulate a request routine that fails after acquiring. The deferred
	// Release must still free the slot for the next caller.
	func() {
		if err := rl.Acquire(ctx); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		defer rl.Release()
		// request fails here
	}()

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := rl.Acquire(ctx2); err != nil {
		t.Fatalf("slot never released after error path: %v", err)
	}
	rl.Release()
}
