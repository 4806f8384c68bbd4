package hashsvc

import (
	"time"

	"github.com/go-errors/errors"
)

// Options bounds the work a single request may ask for.
type Options struct {
	Version string

	// MaxInputs is the largest number of field elements accepted by /v1/hash.
	MaxInputs int
	// MaxOutLen is the largest number of output lanes accepted by /v1/hash.
	MaxOutLen int
	// MaxBatch is the largest number of pairs accepted by /v1/hash2/batch.
	MaxBatch int
	// MaxConcurrency bounds the goroutines hashing one batch.
	MaxConcurrency int
	// MaxBodyBytes bounds every request body.
	MaxBodyBytes int64

	RateLimit RateLimitOptions
}

// RateLimitOptions configures the per-client token bucket. A zero Burst disables
// rate limiting.
type RateLimitOptions struct {
	Burst  int
	Refill int
	Period time.Duration
}

// DefaultOptions returns the limits used when none are configured.
func DefaultOptions() Options {
	return Options{
		Version:        "dev",
		MaxInputs:      1024,
		MaxOutLen:      64,
		MaxBatch:       4096,
		MaxConcurrency: 4,
		MaxBodyBytes:   1 << 20,
		RateLimit: RateLimitOptions{
			Burst:  200,
			Refill: 100,
			Period: time.Second,
		},
	}
}

// Validate checks that every limit is usable.
func (o Options) Validate() error {
	switch {
	case o.MaxInputs <= 0:
		return errors.Errorf("hashsvc: max inputs must be positive")
	case o.MaxOutLen <= 0:
		return errors.Errorf("hashsvc: max output length must be positive")
	case o.MaxBatch <= 0:
		return errors.Errorf("hashsvc: max batch must be positive")
	case o.MaxConcurrency <= 0:
		return errors.Errorf("hashsvc: max concurrency must be positive")
	case o.MaxBodyBytes <= 0:
		return errors.Errorf("hashsvc: max body bytes must be positive")
	case o.RateLimit.Burst < 0 || o.RateLimit.Refill < 0:
		return errors.Errorf("hashsvc: rate limit must not be negative")
	case o.RateLimit.Burst > 0 && (o.RateLimit.Refill == 0 || o.RateLimit.Period <= 0):
		return errors.Errorf("hashsvc: rate limit needs a refill amount and period")
	}
	return nil
}
