package spotify

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff pacing defaults, matching the provider's observed steady-state
// tolerances.
const (
	initialBackoffDelay = 1 * time.Second
	maxBackoffDelay     = 60 * time.Second
	backoffMultiplier   = 2.0
	jitterRange         = 1 * time.Second

	defaultMaxAttempts = 5
	defaultMinInterval = 500 * time.Millisecond
	defaultBatchDelay  = 100 * time.Millisecond

	defaultTimeout = 30 * time.Second
)

// Backoff computes exponential retry delays with uniform jitter.
type Backoff struct {
	Initial    time.Duration // delay before the first retry
	Max        time.Duration // ceiling for the exponential component
	Multiplier float64       // growth factor per attempt
	Jitter     time.Duration // upper bound of the uniform jitter added to every delay
}

// DefaultBackoff returns the production backoff configuration.
func DefaultBackoff() Backoff {
	return Backoff{
		Initial:    initialBackoffDelay,
		Max:        maxBackoffDelay,
		Multiplier: backoffMultiplier,
		Jitter:     jitterRange,
	}
}

// Delay returns the wait duration for the given 0-based attempt:
// min(Initial*Multiplier^attempt, Max) plus uniform jitter in [0, Jitter).
func (b Backoff) Delay(attempt int) time.Duration {
	d := time.Duration(float64(b.Initial) * math.Pow(b.Multiplier, float64(attempt)))
	if d > b.Max || d <= 0 {
		d = b.Max
	}
	if b.Jitter > 0 {
		d += time.Duration(rand.Int64N(int64(b.Jitter)))
	}
	return d
}

// sleep waits for the specified duration or until the context is cancelled.
// Returns false if the context was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
