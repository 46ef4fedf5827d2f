package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retries []int

	p := fastPolicy(5)
	p.OnRetry = func(attempt int, _ error, _ time.Duration) { retries = append(retries, attempt) }

	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestDo_ReturnsLastError(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("still down")
	})

	require.EqualError(t, err, "still down")
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentStops(t *testing.T) {
	cause := errors.New("bad url")
	calls := 0

	err := fastPolicy(5).Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(cause)
	})

	assert.Same(t, cause, err)
	assert.Equal(t, 1, calls)
	assert.False(t, IsPermanent(err))
	assert.True(t, IsPermanent(Permanent(cause)))
	assert.NoError(t, Permanent(nil))
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := fastPolicy(3).Do(ctx, func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestDo_CancelDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 3, InitialDelay: time.Hour}
	p.OnRetry = func(int, error, time.Duration) { cancel() }

	err := p.Do(ctx, func(context.Context) error { return errors.New("down") })
	assert.EqualError(t, err, "down")
}

func TestValue(t *testing.T) {
	calls := 0
	v, err := Value(context.Background(), fastPolicy(3), func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 800*time.Millisecond, p.Delay(4))
	assert.Equal(t, time.Second, p.Delay(10))
}

func TestPolicy_JitterBounds(t *testing.T) {
	p := Policy{InitialDelay: 100 * time.Millisecond, Multiplier: 1, Jitter: 0.2}
	for i := 0; i < 100; i++ {
		d := p.jittered(1)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}
}
