// rate_limiter.go - Per-client rate limiting for the hashing service
package hashsvc

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter implements a simple token bucket rate limiter
type RateLimiter struct {
	mu           sync.Mutex
	tokens       int
	maxTokens    int
	refillRate   int
	lastRefill   time.Time
	refillPeriod time.Duration
	now          func() time.Time
}

// NewRateLimiter creates a new rate limiter holding maxTokens and adding refillRate
// tokens every refillPeriod
func NewRateLimiter(maxTokens int, refillRate int, refillPeriod time.Duration) *RateLimiter {
	return newRateLimiter(maxTokens, refillRate, refillPeriod, time.Now)
}

func newRateLimiter(maxTokens int, refillRate int, refillPeriod time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:       maxTokens,
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		lastRefill:   now(),
		refillPeriod: refillPeriod,
		now:          now,
	}
}

// Allow checks if a request is allowed and consumes a token if so
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// refill adds whole periods worth of tokens; the remainder of a partial period is
// carried over to the next call.
func (rl *RateLimiter) refill() {
	if rl.refillPeriod <= 0 {
		return
	}
	periods := int(rl.now().Sub(rl.lastRefill) / rl.refillPeriod)
	if periods <= 0 {
		return
	}
	rl.tokens = min(rl.tokens+periods*rl.refillRate, rl.maxTokens)
	rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillPeriod)
}

// GetTokens returns the current number of available tokens
func (rl *RateLimiter) GetTokens() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

// Reset resets the rate limiter to its initial state
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = rl.maxTokens
	rl.lastRefill = rl.now()
}

// ClientRateLimiter manages one token bucket per client address
type ClientRateLimiter struct {
	limiters     map[string]*RateLimiter
	mu           sync.Mutex
	maxTokens    int
	refillRate   int
	refillPeriod time.Duration
	lastSweep    time.Time
	now          func() time.Time
}

// NewClientRateLimiter creates a new per-client rate limiter
func NewClientRateLimiter(maxTokens int, refillRate int, refillPeriod time.Duration) *ClientRateLimiter {
	return &ClientRateLimiter{
		limiters:     make(map[string]*RateLimiter),
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
		now:          time.Now,
	}
}

// Allow checks if a request from a client is allowed
func (crl *ClientRateLimiter) Allow(clientID string) bool {
	crl.mu.Lock()
	crl.evictIdle()
	limiter, exists := crl.limiters[clientID]
	if !exists {
		limiter = newRateLimiter(crl.maxTokens, crl.refillRate, crl.refillPeriod, crl.now)
		crl.limiters[clientID] = limiter
	}
	crl.mu.Unlock()

	return limiter.Allow()
}

// evictIdle drops, at most once per refill period, the buckets that have refilled
// completely. A full bucket behaves exactly like a new one, so eviction never
// grants a client extra tokens. Callers hold crl.mu.
func (crl *ClientRateLimiter) evictIdle() {
	if crl.refillPeriod <= 0 {
		return
	}
	now := crl.now()
	if now.Sub(crl.lastSweep) < crl.refillPeriod {
		return
	}
	crl.lastSweep = now
	for id, limiter := range crl.limiters {
		if limiter.GetTokens() >= limiter.maxTokens {
			delete(crl.limiters, id)
		}
	}
}

// GetTokens returns the current number of available tokens for a client
func (crl *ClientRateLimiter) GetTokens(clientID string) int {
	crl.mu.Lock()
	limiter, exists := crl.limiters[clientID]
	crl.mu.Unlock()

	if !exists {
		return crl.maxTokens
	}
	return limiter.GetTokens()
}

// ResetAll resets all client rate limiters
func (crl *ClientRateLimiter) ResetAll() {
	crl.mu.Lock()
	defer crl.mu.Unlock()
	for _, limiter := range crl.limiters {
		limiter.Reset()
	}
}

// clientKey identifies the caller of r by host, falling back to the raw remote address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
