// Package retry wraps a single logical operation with classified retries
// and exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // delay before the second attempt
	MaxDelay    time.Duration // clamp for the computed delay
	Jitter      float64       // jitter fraction applied to the computed delay
	Rand        func() float64
	OnWait      func(attempt int, delay time.Duration)
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// Do executes operation up to MaxAttempts times with exponential backoff
// between failed attempts.
//
// An error is retried unless it is permanent: errors wrapped with Fatal(),
// context cancellation, and classified errors whose Retryable() reports
// false all stop the loop immediately. When an error carries a
// RetryAfterHint (rate-limit responses), that hint overrides the computed
// delay. Exhausting all attempts returns an *ExhaustedError wrapping the
// last failure.
func Do(ctx context.Context, operation func(ctx context.Context) error, opts ...Option) error {
	cfg := &Config{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      0.2,
		Rand:        rand.Float64,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if IsFatal(err) {
			return fmt.Errorf("permanent failure (not retrying): %w", err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !retryable(err) {
			return err
		}

		if attempt < cfg.MaxAttempts {
			delay := cfg.backoff(attempt)
			if hint := retryAfterHint(err); hint > 0 {
				delay = hint
			}
			if cfg.OnWait != nil {
				cfg.OnWait(attempt, delay)
			}

			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return &ExhaustedError{Attempts: cfg.MaxAttempts, Err: lastErr}
}

// backoff computes the delay after the given 1-indexed attempt:
// BaseDelay doubled per attempt, clamped to MaxDelay, with a random
// jitter fraction so concurrent orchestrations do not retry in lockstep.
func (c *Config) backoff(attempt int) time.Duration {
	delay := c.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.MaxDelay {
			delay = c.MaxDelay
			break
		}
	}

	if c.Jitter > 0 && c.Rand != nil {
		// Rand in [0,1) mapped to [-Jitter, +Jitter).
		factor := 1 + c.Jitter*(2*c.Rand()-1)
		delay = time.Duration(float64(delay) * factor)
	}
	if delay > time.Duration(float64(c.MaxDelay)*(1+c.Jitter)) {
		delay = time.Duration(float64(c.MaxDelay) * (1 + c.Jitter))
	}
	return delay
}

// classified is implemented by errors that know whether they are transient
// (the api package's classified errors).
type classified interface {
	Retryable() bool
}

// retryable reports whether err is worth another attempt. Unclassified
// errors are retried; callers mark theirs with Fatal() to opt out.
func retryable(err error) bool {
	var c classified
	if errors.As(err, &c) {
		return c.Retryable()
	}
	return true
}

// delayHinter is implemented by errors carrying a server-supplied
// Retry-After hint.
type delayHinter interface {
	RetryAfterHint() time.Duration
}

func retryAfterHint(err error) time.Duration {
	var h delayHinter
	if errors.As(err, &h) {
		return h.RetryAfterHint()
	}
	return 0
}

// WithMaxAttempts sets the total number of attempts.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithBaseDelay sets the delay before the second attempt.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Config) {
		c.BaseDelay = d
	}
}

// WithMaxDelay sets the maximum computed delay.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		c.MaxDelay = d
	}
}

// WithJitter sets the jitter fraction (0 disables jitter).
func WithJitter(fraction float64) Option {
	return func(c *Config) {
		c.Jitter = fraction
	}
}

// WithRand injects the jitter randomness source so retry timing is
// reproducible in tests.
func WithRand(r func() float64) Option {
	return func(c *Config) {
		c.Rand = r
	}
}

// WithOnWait registers a hook invoked before each backoff sleep.
func WithOnWait(fn func(attempt int, delay time.Duration)) Option {
	return func(c *Config) {
		c.OnWait = fn
	}
}

// ExhaustedError reports that all attempts failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// IsExhausted reports whether err wraps an *ExhaustedError.
func IsExhausted(err error) bool {
	var exhausted *ExhaustedError
	return errors.As(err, &exhausted)
}

// FatalError wraps an error to mark it as permanent.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as permanent so it is never retried.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is marked permanent via Fatal.
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
