package ratelimiter

import (
	"net/http"
	"sync"
	"time"
)

const defaultSourceKey = "X-RateLimit-Key"

type Limiter interface {
	Allow(sourceKey string) bool
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// RateLimiter is a per-source token bucket. Buckets idle past cacheTTL are
// discarded on the next sweep to keep the table bounded.
type RateLimiter struct {
	ratePerSecond   float64
	maxBurst        int
	cacheTTL        time.Duration
	sourceHeaderKey string

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	CacheTTL         time.Duration
	SourceHeaderKey  string
}

func New(options Options) Limiter {
	if options.CacheTTL == 0 {
		options.CacheTTL = 10 * time.Second
	}

	if options.MaxBurst <= 0 {
		options.MaxBurst = options.MaxRatePerSecond // Reasonable default
	}

	if options.SourceHeaderKey == "" {
		options.SourceHeaderKey = defaultSourceKey
	}

	return &RateLimiter{
		ratePerSecond:   float64(options.MaxRatePerSecond),
		maxBurst:        options.MaxBurst,
		cacheTTL:        options.CacheTTL,
		sourceHeaderKey: options.SourceHeaderKey,
		buckets:         make(map[string]*bucket),
		lastSweep:       time.Now(),
	}
}

func (rl *RateLimiter) Allow(sourceKey string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.refill(sourceKey, time.Now())
	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

func (rl *RateLimiter) Remaining(sourceKey string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return int(rl.refill(sourceKey, time.Now()).tokens)
}

func (rl *RateLimiter) GetMaxBurst() int {
	return rl.maxBurst
}

func (rl *RateLimiter) GetSourceKey(r *http.Request) string {
	if key := r.Header.Get(rl.sourceHeaderKey); key != "" {
		return key
	}

	// Fall back to IP address
	return r.RemoteAddr
}

// refill is called with rl.mu held.
func (rl *RateLimiter) refill(sourceKey string, now time.Time) *bucket {
	rl.sweep(now)

	b, ok := rl.buckets[sourceKey]
	if !ok {
		b = &bucket{tokens: float64(rl.maxBurst), lastFill: now}
		rl.buckets[sourceKey] = b
		return b
	}

	elapsed := now.Sub(b.lastFill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * rl.ratePerSecond
		if b.tokens > float64(rl.maxBurst) {
			b.tokens = float64(rl.maxBurst)
		}
		b.lastFill = now
	}

	return b
}

// sweep drops buckets that have been idle long enough to be full again.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.cacheTTL {
		return
	}
	rl.lastSweep = now

	for key, b := range rl.buckets {
		if now.Sub(b.lastFill) >= rl.cacheTTL {
			delete(rl.buckets, key)
		}
	}
}
