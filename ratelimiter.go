package qsim

import (
	"fmt"
	"sync"
	"time"
)

/*
RateLimiter is a token bucket Regulator. Every admitted job takes a token;
tokens come back at one per refillRate up to maxTokens, so short bursts pass
while the sustained rate stays bounded.
*/
type RateLimiter struct {
	mu sync.Mutex

	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time

	now func() time.Time
}

/*
NewRateLimiter creates a token bucket regulator that starts full.

Like a turnstile that hands out a fixed number of tickets and prints a new
one every refillRate, it lets a burst of maxTokens jobs in at once and then
one job per period.

Parameters:
  - maxTokens: Burst capacity
  - refillRate: Time between token replenishments, zero or less refills at once

Returns:
  - *RateLimiter: A new rate limit regulator

Example:

	limiter := NewRateLimiter(100, time.Second) // 100 evaluations a second
*/
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Observe implements Regulator. The bucket depends on time alone.
func (rl *RateLimiter) Observe(*Metrics) {}

// Limit implements Regulator. It consumes a token or refuses the job.
func (rl *RateLimiter) Limit(job Job) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokens > 0 {
		rl.tokens--
		return nil
	}

	return fmt.Errorf("%w: job %s, next token in %s", ErrRateLimited, job.ID, rl.untilNextToken())
}

// Renormalize implements Regulator by refilling the bucket completely.
func (rl *RateLimiter) Renormalize() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokens = rl.maxTokens
	rl.lastRefill = rl.now()
}

// Tokens returns the tokens currently available.
func (rl *RateLimiter) Tokens() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	return rl.tokens
}

// refill assumes the caller holds the lock.
func (rl *RateLimiter) refill() {
	if rl.refillRate <= 0 {
		rl.tokens = rl.maxTokens
		return
	}

	periods := int(rl.now().Sub(rl.lastRefill) / rl.refillRate)
	if periods <= 0 {
		return
	}

	rl.tokens = min(rl.maxTokens, rl.tokens+periods)
	// Only whole periods are consumed so partial progress carries over.
	rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
}

func (rl *RateLimiter) untilNextToken() time.Duration {
	return max(0, rl.refillRate-rl.now().Sub(rl.lastRefill))
}
