package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one counted attempt.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts attempts per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
	Reset(ctx context.Context, key string) error
}
