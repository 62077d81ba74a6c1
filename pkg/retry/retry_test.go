package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degreescraper/pkg/config"
	errs "degreescraper/pkg/errors"
)

func alwaysRetry(error) bool { return true }

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{9, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterStaysInRange(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 50; i++ {
		delay := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, delay, 140*time.Millisecond)
		assert.LessOrEqual(t, delay, 260*time.Millisecond)
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	var retried []int

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     alwaysRetry,
		OnRetry:     func(attempt int, err error, delay time.Duration) { retried = append(retried, attempt) },
	}

	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, cfg)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	attempts := 0
	persistent := errors.New("persistent error")

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     alwaysRetry,
	}

	err := Do(context.Background(), func() error {
		attempts++
		return persistent
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, persistent)
	assert.Equal(t, 3, attempts)
}

func TestDoDoesNotRetryNotFound(t *testing.T) {
	attempts := 0
	notFound := errs.FromStatusCode(404, "https://example.org/missing")

	err := Do(context.Background(), func() error {
		attempts++
		return notFound
	}, &Config{MaxAttempts: 5, Backoff: &ConstantBackoff{Delay: time.Millisecond}})

	assert.Same(t, notFound, err)
	assert.Equal(t, 1, attempts)
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", errs.FromStatusCode(503, ""), true},
		{"rate limit", errs.FromStatusCode(429, ""), true},
		{"network", errs.New(errs.ErrorTypeNetwork, 0, "", "connection reset"), true},
		{"not found", errs.FromStatusCode(404, ""), false},
		{"parsing", errs.New(errs.ErrorTypeParsing, 0, "", "bad html"), false},
		{"plain error", errors.New("boom"), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRetryIf(tt.err))
		})
	}
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Second},
		RetryIf:     alwaysRetry,
	}

	err := Do(ctx, func() error {
		attempts++
		cancel()
		return errors.New("error")
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(context.Background(), func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errs.FromStatusCode(502, "")
		}
		return "success", nil
	}, &Config{MaxAttempts: 3, Backoff: &ConstantBackoff{Delay: time.Millisecond}})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 2, attempts)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    time.Second,
		Multiplier:  3,
	}, nil)

	assert.Equal(t, 4, cfg.MaxAttempts)
	require.NotNil(t, cfg.Logger)

	eb, ok := cfg.Backoff.(*ExponentialBackoff)
	require.True(t, ok)
	assert.Equal(t, 200*time.Millisecond, eb.BaseDelay)
	assert.Equal(t, 3.0, eb.Multiplier)
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))
	assert.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
}
