package apierr

import (
	"context"
	"fmt"
	"time"
)

// maxBackoffExponent caps BackoffDelay so large attempt numbers cannot overflow.
const maxBackoffExponent = 16

// BackoffDelay returns the wait that follows failed attempt number attempt
// (1-based): 2^attempt seconds. Attempts below 1 yield zero.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	attempt = min(attempt, maxBackoffExponent)
	return time.Duration(1<<attempt) * time.Second
}

// RetryConfig holds the retry policy.
//
// Zero values are normalized:
//   - MaxAttempts < 1 becomes 1 (single attempt)
//   - Delay nil becomes BackoffDelay
//   - Sleep nil becomes a context-aware timer wait
type RetryConfig struct {
	// MaxAttempts is the total number of calls, the first one included.
	MaxAttempts int

	// Delay maps a failed attempt number to the wait before the next one.
	Delay func(attempt int) time.Duration

	// Sleep blocks for d. It returns early with ctx.Err() on cancellation.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnFailure observes every failed attempt. wait is zero when no
	// further attempt will be made.
	OnFailure func(attempt int, err error, wait time.Duration)
}

// normalize ensures all RetryConfig fields have usable values.
func (c *RetryConfig) normalize() {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.Delay == nil {
		c.Delay = BackoffDelay
	}
	if c.Sleep == nil {
		c.Sleep = SleepContext
	}
	if c.OnFailure == nil {
		c.OnFailure = func(int, error, time.Duration) {}
	}
}

// AlwaysRetry treats every error as a failed attempt worth repeating.
func AlwaysRetry(error) bool { return true }

// RetryWithBackoff calls fn until it succeeds, shouldRetry rejects the
// error, the context ends, or cfg.MaxAttempts calls have failed. fn receives
// the 1-based attempt number.
//
// When every attempt fails the returned error wraps both ErrExhausted and
// the last error from fn.
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func(attempt int) (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg.normalize()

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		if !shouldRetry(err) {
			cfg.OnFailure(attempt, err, 0)
			return zero, err
		}
		if attempt >= cfg.MaxAttempts {
			cfg.OnFailure(attempt, err, 0)
			return zero, fmt.Errorf("%w after %d attempt(s): %w", ErrExhausted, attempt, err)
		}

		wait := cfg.Delay(attempt)
		cfg.OnFailure(attempt, err, wait)
		if err := cfg.Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
}

// SleepContext waits for d or until ctx is done, returning ctx.Err() in
// the latter case.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
