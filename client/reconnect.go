package client

import (
	"math"
	"math/rand"
	"time"
)

// reconnector implements the retry schedule:
// delay = min(base * 2^attempt, cap) + jitter, jitter in [0, base/2).
// maxAttempts == 0 means retry forever.
type reconnector struct {
	baseDelay   time.Duration
	maxDelay    time.Duration
	maxAttempts int
	attempt     int
}

func newReconnector(base, cap time.Duration, maxAttempts int) *reconnector {
	return &reconnector{baseDelay: base, maxDelay: cap, maxAttempts: maxAttempts}
}

func (r *reconnector) shouldReconnect() bool {
	return r.maxAttempts == 0 || r.attempt < r.maxAttempts
}

func (r *reconnector) nextDelay() time.Duration {
	exp := float64(r.baseDelay) * math.Pow(2, float64(r.attempt))
	delay := time.Duration(math.Min(exp, float64(r.maxDelay)))
	jitter := time.Duration(rand.Float64() * float64(r.baseDelay) * 0.5)
	r.attempt++
	return delay + jitter
}

func (r *reconnector) attemptCount() int {
	return r.attempt
}

func (r *reconnector) reset() {
	r.attempt = 0
}
