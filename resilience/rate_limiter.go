package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	// Name identifies this rate limiter for logging.
	Name string `yaml:"name" json:"name" mapstructure:"name"`
	// Rate is the number of requests allowed per second.
	Rate float64 `yaml:"rate" json:"rate" mapstructure:"rate"`
	// Burst is the maximum burst size.
	Burst int `yaml:"burst" json:"burst" mapstructure:"burst"`
	// OnLimit is called when a request is rate limited.
	OnLimit func(name string) `yaml:"-" json:"-" mapstructure:"-"`
}

// RateLimiter is a token bucket that smooths the request rate against an
// external service. Tokens accrue continuously at Rate per second up to
// Burst; each request spends one. Waiters spend their tokens up front,
// running the bucket into debt, which keeps late arrivals queued behind
// earlier ones.
type RateLimiter struct {
	cfg RateLimiterConfig

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// NewRateLimiter builds a limiter with a full bucket. A non-positive Rate
// falls back to 10 per second and a non-positive Burst to one second's
// worth of tokens.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 10.0
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.Rate)
	}
	return &RateLimiter{
		cfg:    cfg,
		tokens: float64(cfg.Burst),
		last:   time.Now(),
	}
}

// Allow reports whether one request may proceed right now.
func (rl *RateLimiter) Allow() bool { return rl.AllowN(1) }

// AllowN reports whether n requests may proceed right now. A refusal
// leaves the bucket untouched and fires the OnLimit hook.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	ok := rl.tryLocked(n)
	rl.mu.Unlock()

	if !ok && rl.cfg.OnLimit != nil {
		rl.cfg.OnLimit(rl.cfg.Name)
	}
	return ok
}

// Wait blocks until one request may proceed or ctx ends.
func (rl *RateLimiter) Wait(ctx context.Context) error { return rl.WaitN(ctx, 1) }

// WaitN blocks until n requests may proceed or ctx ends. The tokens are
// reserved immediately, so the wait cannot be starved by other callers.
func (rl *RateLimiter) WaitN(ctx context.Context, n int) error {
	rl.mu.Lock()
	delay := rl.reserveLocked(n)
	rl.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	if rl.cfg.OnLimit != nil {
		rl.cfg.OnLimit(rl.cfg.Name)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Tokens returns the current number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.creditLocked(time.Now())
	return rl.tokens
}

// Rate returns the configured requests per second.
func (rl *RateLimiter) Rate() float64 { return rl.cfg.Rate }

// Burst returns the configured burst size.
func (rl *RateLimiter) Burst() int { return rl.cfg.Burst }

// creditLocked accrues tokens for the time elapsed since the last update,
// capped at the burst size. Callers hold mu.
func (rl *RateLimiter) creditLocked(now time.Time) {
	rl.tokens += now.Sub(rl.last).Seconds() * rl.cfg.Rate
	if limit := float64(rl.cfg.Burst); rl.tokens > limit {
		rl.tokens = limit
	}
	rl.last = now
}

// tryLocked spends n tokens if the bucket holds them.
func (rl *RateLimiter) tryLocked(n int) bool {
	rl.creditLocked(time.Now())
	if rl.tokens < float64(n) {
		return false
	}
	rl.tokens -= float64(n)
	return true
}

// reserveLocked spends n tokens even when that overdraws the bucket and
// returns how long the caller must wait for the shortfall to accrue.
func (rl *RateLimiter) reserveLocked(n int) time.Duration {
	rl.creditLocked(time.Now())

	short := float64(n) - rl.tokens
	rl.tokens -= float64(n)
	if short <= 0 {
		return 0
	}
	return time.Duration(short / rl.cfg.Rate * float64(time.Second))
}
