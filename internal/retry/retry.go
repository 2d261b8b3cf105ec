package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Policy defines how retries should be handled. MaxAttempts counts the
// initial call, so MaxAttempts=3 means at most two retries.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	Jitter         bool
}

// DefaultPolicy returns the policy used for outbound model calls: three
// attempts with a doubling delay starting at one second.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         true,
	}
}

// RetryableError wraps an error to indicate it should be retried.
type RetryableError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%v (retry after %v)", e.Err, e.RetryAfter)
	}
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error should trigger a retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryable *RetryableError
	return errors.As(err, &retryable)
}

// Do executes a function with exponential backoff retry logic.
func Do(ctx context.Context, policy Policy, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		// Don't sleep after the last attempt
		if attempt == policy.MaxAttempts-1 {
			break
		}

		backoff := Backoff(policy, attempt)

		// Honor a RetryAfter hint when present
		var retryErr *RetryableError
		if errors.As(err, &retryErr) && retryErr.RetryAfter > 0 {
			backoff = retryErr.RetryAfter
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("attempts exhausted (%d): %w", policy.MaxAttempts, lastErr)
}

// Backoff computes the backoff duration for a given zero-based attempt.
func Backoff(policy Policy, attempt int) time.Duration {
	backoff := float64(policy.InitialBackoff) * math.Pow(policy.BackoffFactor, float64(attempt))

	if backoff > float64(policy.MaxBackoff) {
		backoff = float64(policy.MaxBackoff)
	}

	duration := time.Duration(backoff)

	// Jitter of ±10% to avoid synchronized retries
	if policy.Jitter {
		jitter := time.Duration(float64(duration) * 0.1 * (2*pseudoRand() - 1))
		duration += jitter
	}

	return duration
}

// pseudoRand returns a value in [0,1). Time-seeded; jitter does not need
// cryptographic quality.
func pseudoRand() float64 {
	nanos := time.Now().UnixNano()
	return float64(nanos%1000) / 1000.0
}

// Retryable wraps an error so Do will retry it.
func Retryable(err error) error {
	return &RetryableError{Err: err}
}

// RetryableAfter wraps an error with an explicit retry delay.
func RetryableAfter(err error, delay time.Duration) error {
	return &RetryableError{Err: err, RetryAfter: delay}
}
