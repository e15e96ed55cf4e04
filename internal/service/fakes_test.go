package service

import (
	"context"
	"time"

	"github.com/campuslane/learning-service/internal/ratelimit"
)

type failingLimiter struct{ err error }

func (f failingLimiter) Allow(context.Context, string, int, time.Duration) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, f.err
}

func (f failingLimiter) Reset(context.Context, string) error { return f.err }
