package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinBurst(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 3})

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("client"), "request %d should pass within the burst", i)
	}
	assert.False(t, rl.Allow("client"), "burst exhausted")
}

func TestAllowRefills(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 100, MaxBurst: 1})

	assert.True(t, rl.Allow("client"))
	assert.False(t, rl.Allow("client"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("client"), "bucket should refill over time")
}

func TestSourcesAreIndependent(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1})

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "a second source has its own bucket")
}

func TestRemaining(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 5})

	assert.Equal(t, 5, rl.Remaining("client"))
	rl.Allow("client")
	assert.Equal(t, 4, rl.Remaining("client"))
	assert.Equal(t, 5, rl.GetMaxBurst())
}

func TestGetSourceKey(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, SourceHeaderKey: "X-Forwarded-For"})

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", rl.GetSourceKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", rl.GetSourceKey(req))
}

func TestMaxBurstDefaultsToRate(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 7})
	assert.Equal(t, 7, rl.GetMaxBurst())
}

func TestSweepDropsIdleBuckets(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1, CacheTTL: 10 * time.Millisecond}).(*RateLimiter)

	rl.Allow("idle")
	time.Sleep(20 * time.Millisecond)

	// Any call past the TTL triggers a sweep of idle buckets.
	rl.Allow("fresh")

	rl.mu.Lock()
	_, stillThere := rl.buckets["idle"]
	rl.mu.Unlock()
	assert.False(t, stillThere, "idle bucket should have been swept")
}
