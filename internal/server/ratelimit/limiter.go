// Package ratelimit bounds reveal attempts per user within a fixed window.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one check. ResetAt is when the current window
// ends; it is meaningful for both allowed and denied checks.
type Decision struct {
	Allowed bool
	ResetAt time.Time
}

// RetryAfter returns how long a denied caller should wait, relative to now.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.Allowed {
		return 0
	}
	if wait := d.ResetAt.Sub(now); wait > 0 {
		return wait
	}
	return 0
}

// Limiter consumes one attempt for key on every call, whether or not the
// guarded operation later succeeds.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (Decision, error)
}
