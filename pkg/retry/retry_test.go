package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	errs "bskygraph/pkg/errors"
	"bskygraph/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeNetwork, "connection reset")
		}
		return nil
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeServerError, "upstream failure")
	}, testConfig())

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")

	var apiErr *errs.Error
	assert.True(t, stderrors.As(err, &apiErr))
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	wantErr := errs.New(errs.ErrorTypeNotFound, "Profile not found")

	err := Do(func() error {
		calls++
		return wantErr
	}, testConfig())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, wantErr, err)
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := testConfig()
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: time.Second}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(func() error {
			calls++
			return errs.New(errs.ErrorTypeNetwork, "connection reset")
		}, cfg)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
	assert.Equal(t, 1, calls)
}

func TestDoOnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := testConfig()
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_ = Do(func() error {
		return errs.New(errs.ErrorTypeRateLimit, "Rate Limit Exceeded")
	}, cfg)

	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDoNilConfigUsesDefaults(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeAuth, "invalid credentials")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", errs.New(errs.ErrorTypeNetwork, "connection reset")
		}
		return "done", nil
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 2, calls)
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"network error", errs.New(errs.ErrorTypeNetwork, "reset"), true},
		{"rate limit error", errs.New(errs.ErrorTypeRateLimit, "limited"), true},
		{"server error", errs.New(errs.ErrorTypeServerError, "boom"), true},
		{"auth error", errs.New(errs.ErrorTypeAuth, "denied"), false},
		{"not found error", errs.New(errs.ErrorTypeNotFound, "gone"), false},
		{"parsing error", errs.New(errs.ErrorTypeParsing, "bad json"), false},
		{"config error", errs.NewConfig("bad flag"), false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"untyped error", stderrors.New("something"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRetryIf(tt.err))
		})
	}
}

func TestExponentialBackoffGrows(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
		JitterFactor: 0,
	}

	first := eb.NextDelay(1)
	second := eb.NextDelay(2)
	third := eb.NextDelay(3)

	assert.Equal(t, 100*time.Millisecond, first)
	assert.Equal(t, 200*time.Millisecond, second)
	assert.Equal(t, 400*time.Millisecond, third)
}

func TestExponentialBackoffCapsAtMax(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:    time.Second,
		MaxDelay:     2 * time.Second,
		Multiplier:   10.0,
		JitterFactor: 0,
	}

	assert.Equal(t, 2*time.Second, eb.NextDelay(5))
}

func TestExponentialBackoffJitterStaysInRange(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}

	for i := 0; i < 20; i++ {
		delay := eb.NextDelay(1)
		assert.GreaterOrEqual(t, delay, 90*time.Millisecond)
		assert.LessOrEqual(t, delay, 110*time.Millisecond)
	}
}

func TestConstantBackoff(t *testing.T) {
	cb := &ConstantBackoff{Delay: 50 * time.Millisecond}

	assert.Equal(t, 50*time.Millisecond, cb.NextDelay(1))
	assert.Equal(t, 50*time.Millisecond, cb.NextDelay(10))
}

func TestWaitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Wait(ctx, time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitCompletesDelay(t *testing.T) {
	start := time.Now()
	err := Wait(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
