// Package ratelimit enforces the fixed delay between requests to the bookseller.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces outgoing requests by a fixed interval. All lookups against
// the site share one limiter so detail fetches and cover downloads never
// burst together.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter with the given minimum interval between requests.
// A non-positive interval disables pacing.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request slot opens or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}
