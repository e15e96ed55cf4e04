package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	data    map[string]*memoryBucket
	maxKeys int
}

type memoryBucket struct {
	count     int
	windowEnd time.Time
}

// MemoryConfig tunes the in-process limiter.
type MemoryConfig struct {
	Now     func() time.Time
	MaxKeys int
}

// NewMemoryLimiter builds a single-process limiter.
func NewMemoryLimiter(cfg MemoryConfig) Limiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 10000
	}
	return &memoryLimiter{
		now:     cfg.Now,
		data:    make(map[string]*memoryBucket),
		maxKeys: cfg.MaxKeys,
	}
}

func (m *memoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[key]
	if ok && !now.Before(bucket.windowEnd) {
		delete(m.data, key)
		ok = false
	}
	if !ok {
		if len(m.data) >= m.maxKeys {
			m.gc(now)
		}
		if len(m.data) >= m.maxKeys {
			// Untracked keys are denied while the table is full of live windows.
			return Decision{Allowed: false, Limit: limit, ResetAt: m.nextExpiry()}, nil
		}
		bucket = &memoryBucket{windowEnd: now.Add(window)}
		m.data[key] = bucket
	}

	bucket.count++
	remaining := limit - bucket.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   bucket.count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   bucket.windowEnd,
	}, nil
}

func (m *memoryLimiter) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryLimiter) gc(now time.Time) {
	for key, bucket := range m.data {
		if !now.Before(bucket.windowEnd) {
			delete(m.data, key)
		}
	}
}

func (m *memoryLimiter) nextExpiry() time.Time {
	var next time.Time
	for _, bucket := range m.data {
		if next.IsZero() || bucket.windowEnd.Before(next) {
			next = bucket.windowEnd
		}
	}
	return next
}
