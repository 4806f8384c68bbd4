package hashsvc

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestRateLimiterBurstAndRefill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	rl := newRateLimiter(3, 2, time.Second, clock.now)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(), "request %d", i)
	}
	assert.False(t, rl.Allow())
	assert.Zero(t, rl.GetTokens())

	clock.advance(500 * time.Millisecond)
	assert.False(t, rl.Allow())

	// the half period already elapsed counts towards the next refill
	clock.advance(500 * time.Millisecond)
	assert.Equal(t, 2, rl.GetTokens())

	clock.advance(10 * time.Second)
	assert.Equal(t, 3, rl.GetTokens())

	for rl.Allow() {
	}
	rl.Reset()
	assert.Equal(t, 3, rl.GetTokens())
}

func TestRateLimiterWithoutPeriodNeverRefills(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	rl := newRateLimiter(1, 1, 0, clock.now)
	assert.True(t, rl.Allow())
	clock.advance(time.Hour)
	assert.False(t, rl.Allow())
}

func TestClientRateLimiter(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	crl := NewClientRateLimiter(2, 1, time.Minute)
	crl.now = clock.now

	assert.Equal(t, 2, crl.GetTokens("a"))
	assert.True(t, crl.Allow("a"))
	assert.True(t, crl.Allow("a"))
	assert.False(t, crl.Allow("a"))
	assert.True(t, crl.Allow("b"))
	assert.Equal(t, 1, crl.GetTokens("b"))

	clock.advance(time.Minute)
	assert.Equal(t, 1, crl.GetTokens("a"))

	crl.ResetAll()
	assert.Equal(t, 2, crl.GetTokens("a"))
	assert.Equal(t, 2, crl.GetTokens("b"))
}

func TestClientRateLimiterEvictsIdleBuckets(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	crl := NewClientRateLimiter(2, 1, time.Minute)
	crl.now = clock.now

	for i := 0; i < 100; i++ {
		assert.True(t, crl.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256)))
	}
	assert.True(t, crl.Allow("busy"))
	assert.True(t, crl.Allow("busy"))
	assert.False(t, crl.Allow("busy"))
	assert.Len(t, crl.limiters, 101)

	// one period refills every single-use bucket but leaves "busy" one short
	clock.advance(time.Minute)
	assert.True(t, crl.Allow("busy"))
	assert.Len(t, crl.limiters, 1)
	assert.Equal(t, 0, crl.GetTokens("busy"))

	// an evicted client starts again from a full bucket
	assert.Equal(t, 2, crl.GetTokens("10.0.0.1"))
	assert.True(t, crl.Allow("10.0.0.1"))
	assert.Equal(t, 1, crl.GetTokens("10.0.0.1"))
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", clientKey(r))

	r.RemoteAddr = "[::1]:80"
	assert.Equal(t, "::1", clientKey(r))

	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientKey(r))
}
