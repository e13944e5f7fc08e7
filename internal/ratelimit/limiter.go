// Package ratelimit provides client-side throttling of API calls using a
// token bucket.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/learnhub/learnadmin/internal/constants"
	"github.com/learnhub/learnadmin/internal/logging"
)

// RateLimiter implements a token bucket rate limiter.
// It allows bursts up to maxTokens, then refills at refillRate tokens/second.
type RateLimiter struct {
	tokens       float64   // Current number of tokens available
	maxTokens    float64   // Maximum bucket capacity
	refillRate   float64   // Tokens added per second
	lastRefill   time.Time // Last time tokens were refilled
	lastWarnTime time.Time // Last time we warned about throttling
	cooldownEnd  time.Time // No tokens are handed out before this instant
	logger       *logging.Logger
	mu           sync.Mutex
}

// NewRateLimiter creates a new rate limiter.
//
// Parameters:
//   - tokensPerSecond: Rate at which tokens are added (e.g., 5.0 for 5 calls/second)
//   - burstSize: Maximum tokens that can accumulate (allows brief bursts)
func NewRateLimiter(tokensPerSecond float64, burstSize float64) *RateLimiter {
	if tokensPerSecond <= 0 {
		tokensPerSecond = constants.DefaultRequestsPerSecond
	}
	if burstSize < 1 {
		burstSize = 1
	}
	return &RateLimiter{
		tokens:     burstSize, // Start with full bucket
		maxTokens:  burstSize,
		refillRate: tokensPerSecond,
		lastRefill: time.Now(),
		logger:     logging.Nop(),
	}
}

// SetLogger attaches a logger used for throttle warnings.
func (rl *RateLimiter) SetLogger(l *logging.Logger) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.logger = logging.OrNop(l)
}

// Wait blocks until a token is available or context is cancelled.
// Returns an error if the context is cancelled before a token becomes available.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := rl.waitCooldown(ctx); err != nil {
		return err
	}

	if rl.tryAcquire() {
		return nil
	}

	waitTime := rl.timeUntilNextToken()
	if waitTime > constants.RateLimitWarnThreshold {
		rl.mu.Lock()
		if time.Since(rl.lastWarnTime) > constants.RateLimitWarnInterval {
			rl.logger.Warn().Dur("wait", waitTime).Msg("Rate limited: waiting for API capacity")
			rl.lastWarnTime = time.Now()
		}
		rl.mu.Unlock()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if rl.tryAcquire() {
			return nil
		}

		timer := time.NewTimer(rl.timeUntilNextToken())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// SetCooldown pauses the limiter for d, e.g. after a 429 with Retry-After.
// An existing longer cooldown is never shortened. The bucket is drained so
// callers resume at the refill rate rather than with a burst.
func (rl *RateLimiter) SetCooldown(d time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	end := time.Now().Add(d)
	if end.After(rl.cooldownEnd) {
		rl.cooldownEnd = end
	}
	rl.tokens = 0
	rl.lastRefill = time.Now()
}

func (rl *RateLimiter) waitCooldown(ctx context.Context) error {
	rl.mu.Lock()
	remaining := time.Until(rl.cooldownEnd)
	rl.mu.Unlock()

	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// tryAcquire attempts to acquire one token without blocking.
func (rl *RateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked(time.Now())

	if rl.tokens >= 1.0 {
		rl.tokens -= 1.0
		return true
	}
	return false
}

// refillLocked adds tokens for the elapsed time (must hold lock).
func (rl *RateLimiter) refillLocked(now time.Time) {
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now
}

// timeUntilNextToken calculates how long to wait until at least one token is available.
func (rl *RateLimiter) timeUntilNextToken() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	tokensNeeded := 1.0 - rl.tokens
	if tokensNeeded <= 0 {
		return 0
	}
	return time.Duration(tokensNeeded / rl.refillRate * float64(time.Second))
}
