package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryConfig shapes the retry policy: attempt count, backoff curve, and
// which errors are worth another try.
type RetryConfig struct {
	// MaxAttempts counts the first call too; 3 means at most two retries.
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" mapstructure:"max_attempts"`
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff" mapstructure:"initial_backoff"`
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration `yaml:"max_backoff" json:"max_backoff" mapstructure:"max_backoff"`
	// BackoffFactor multiplies the delay after each failed attempt.
	BackoffFactor float64 `yaml:"backoff_factor" json:"backoff_factor" mapstructure:"backoff_factor"`
	// Jitter randomizes each delay by this fraction (0.0 to 1.0).
	Jitter float64 `yaml:"jitter" json:"jitter" mapstructure:"jitter"`
	// RetryIf decides whether an error is worth retrying.
	RetryIf func(error) bool `yaml:"-" json:"-" mapstructure:"-"`
	// OnRetry is invoked before each retry sleep.
	OnRetry func(attempt int, err error, backoff time.Duration) `yaml:"-" json:"-" mapstructure:"-"`
}

// DefaultRetryConfig returns the policy the completion backends start from.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryIf:        DefaultRetryIf,
	}
}

// DefaultRetryIf retries all errors except context cancellation.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (cfg *RetryConfig) applyDefaults() {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 100 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Second
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = 2.0
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}
}

// Retry runs fn until it succeeds, the error is not retryable, the
// attempt limit is reached, or ctx ends. The last error is returned when
// all attempts fail.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	cfg.applyDefaults()

	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !cfg.RetryIf(err) {
			return zero, err
		}

		attempt++
		if attempt >= cfg.MaxAttempts {
			return zero, err
		}
		if err := sleepBackoff(ctx, attempt, err, cfg); err != nil {
			return zero, err
		}
	}
}

// sleepBackoff fires the OnRetry hook and waits out the delay for this
// attempt, aborting early when ctx ends.
func sleepBackoff(ctx context.Context, attempt int, cause error, cfg RetryConfig) error {
	backoff := backoffFor(attempt, cfg)
	if cfg.OnRetry != nil {
		cfg.OnRetry(attempt, cause, backoff)
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryFunc executes a function that returns only an error.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := Retry(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// backoffFor returns the exponential delay for the given attempt, with
// jitter applied and the result clamped into sane bounds.
func backoffFor(attempt int, cfg RetryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffFactor, float64(attempt-1))

	if cfg.Jitter > 0 {
		// Random offset in [-jitter, +jitter] of the base backoff.
		backoff += (rand.Float64()*2 - 1) * backoff * cfg.Jitter
	}

	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	if backoff < 0 {
		backoff = float64(cfg.InitialBackoff)
	}

	return time.Duration(backoff)
}
