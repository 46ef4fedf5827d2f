// Package retry runs operations with exponential backoff and jitter.
// The dashboard uses it to wait for PostgreSQL and Redis at startup.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERMANENT ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// PermanentError stops retrying immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks err as not worth retrying. A bad connection string is
// permanent; a refused connection is not.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var permanentErr *PermanentError
	return errors.As(err, &permanentErr)
}

// ══════════════════════════════════════════════════════════════════════════════
// POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Policy describes how an operation is retried. Every error is retried
// except permanent ones.
type Policy struct {
	// MaxAttempts - total attempts including the first (default: 3).
	MaxAttempts int

	// InitialDelay - wait before the second attempt.
	InitialDelay time.Duration

	// MaxDelay - upper bound for a single wait.
	MaxDelay time.Duration

	// Multiplier - growth factor of the wait per attempt.
	Multiplier float64

	// Jitter - relative randomization of each wait, 0 to 1.
	Jitter float64

	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultPolicy returns a short policy for in-request operations.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2,
		Jitter:       0.1,
	}
}

// StartupPolicy returns the policy for connecting backing services at boot,
// when containers often start before the database accepts connections.
func StartupPolicy() Policy {
	return Policy{
		MaxAttempts:  6,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2,
		Jitter:       0.2,
	}
}

// Delay returns the wait after the given failed attempt (1-based), before jitter.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

func (p Policy) jittered(attempt int) time.Duration {
	d := float64(p.Delay(attempt))
	if p.Jitter > 0 {
		d += d * p.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(max(d, 0))
}

// ══════════════════════════════════════════════════════════════════════════════
// EXECUTION
// ══════════════════════════════════════════════════════════════════════════════

// Do runs op until it succeeds, returns a permanent error, the attempts run
// out or ctx is done. The last operation error is returned unwrapped.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		var permanentErr *PermanentError
		if errors.As(err, &permanentErr) {
			return permanentErr.Err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		delay := p.jittered(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	return lastErr
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, opErr := op(ctx)
		if opErr == nil {
			result = v
		}
		return opErr
	})
	return result, err
}
