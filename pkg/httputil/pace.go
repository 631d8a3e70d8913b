package httputil

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPace is the interval GBIF asks bulk clients to keep between
// occurrence-search requests.
const DefaultPace = time.Second

// Pacer spaces out consecutive requests by a fixed interval.
//
// The first call to [Pacer.Wait] returns immediately; each later call blocks
// until the interval has passed since the previous request was admitted.
// A Pacer is safe for concurrent use.
type Pacer struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// NewPacer creates a Pacer with the given interval. Intervals below zero are
// treated as zero, which disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	interval = max(interval, 0)
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{interval: interval, limiter: rate.NewLimiter(limit, 1)}
}

// Interval returns the configured spacing between requests.
func (p *Pacer) Interval() time.Duration { return p.interval }

// Wait blocks until the next request may be issued or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// WithoutPacing returns a Pacer that never waits. It exists for tests against
// fake services; production callers keep a non-zero interval.
func WithoutPacing() *Pacer { return NewPacer(0) }
