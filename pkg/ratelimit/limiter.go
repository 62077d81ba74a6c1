package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for request pacing
type Limiter interface {
	// Wait blocks until the limiter allows another request or ctx is done
	Wait(ctx context.Context) error
	// Reset clears the limiter state
	Reset()
}

// FixedDelay pauses for a fixed duration before every request except the
// first, so consecutive requests are separated by at least the delay
// measured from the end of the previous one.
type FixedDelay struct {
	delay   time.Duration
	started bool
	mu      sync.Mutex
}

// NewFixedDelay creates a limiter that pauses delay between requests
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay}
}

// Delay returns the configured pause
func (fd *FixedDelay) Delay() time.Duration {
	return fd.delay
}

// Wait returns immediately on the first call and sleeps for the delay on
// every later one
func (fd *FixedDelay) Wait(ctx context.Context) error {
	fd.mu.Lock()
	pause := fd.started && fd.delay > 0
	fd.started = true
	fd.mu.Unlock()

	if !pause {
		return ctx.Err()
	}

	timer := time.NewTimer(fd.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset makes the next Wait return immediately
func (fd *FixedDelay) Reset() {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	fd.started = false
}

// RateCap caps the request rate with a token bucket
type RateCap struct {
	rps     float64
	burst   int
	limiter *rate.Limiter
	mu      sync.Mutex
}

// NewRateCap creates a cap of rps requests per second. A non-positive rps
// disables the cap.
func NewRateCap(rps float64, burst int) *RateCap {
	if burst < 1 {
		burst = 1
	}
	rc := &RateCap{rps: rps, burst: burst}
	rc.Reset()
	return rc
}

// Wait blocks until a token is available
func (rc *RateCap) Wait(ctx context.Context) error {
	rc.mu.Lock()
	limiter := rc.limiter
	rc.mu.Unlock()

	return limiter.Wait(ctx)
}

// Reset refills the bucket
func (rc *RateCap) Reset() {
	limit := rate.Inf
	if rc.rps > 0 {
		limit = rate.Limit(rc.rps)
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.limiter = rate.NewLimiter(limit, rc.burst)
}

// Nop never blocks
type Nop struct{}

// Wait only reports whether ctx is done
func (Nop) Wait(ctx context.Context) error { return ctx.Err() }

// Reset does nothing
func (Nop) Reset() {}
