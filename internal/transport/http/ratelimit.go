package http

import (
	"sync"
	"time"
)

// rateLimiter allows limit requests per key in each fixed window.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	counter int
	reset   time.Time
}

const pruneThreshold = 4096

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		return &rateLimiter{limit: 0}
	}
	return &rateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (r *rateLimiter) allow(key string) bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if len(r.buckets) >= pruneThreshold {
		r.prune(now)
	}
	b, ok := r.buckets[key]
	if !ok || !now.Before(b.reset) {
		b = &bucket{reset: now.Add(r.window)}
		r.buckets[key] = b
	}
	b.counter++
	return b.counter <= r.limit
}

func (r *rateLimiter) prune(now time.Time) {
	for key, b := range r.buckets {
		if !now.Before(b.reset) {
			delete(r.buckets, key)
		}
	}
}
