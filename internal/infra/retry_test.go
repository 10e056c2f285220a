package infra_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nova-assistant/internal/infra"
)

func fastRetry() infra.RetryConfig {
	return infra.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := infra.WithRetry(context.Background(), fastRetry(), func() error {
		attempts++
		if attempts < 3 {
			return infra.HTTPStatusError("test", http.StatusServiceUnavailable, nil)
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_GivesUp(t *testing.T) {
	attempts := 0
	boom := errors.New("connection reset")
	err := infra.WithRetry(context.Background(), fastRetry(), func() error {
		attempts++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_StopsOnClientError(t *testing.T) {
	attempts := 0
	err := infra.WithRetry(context.Background(), fastRetry(), func() error {
		attempts++
		return infra.HTTPStatusError("test", http.StatusUnauthorized, []byte("bad key\n"))
	})

	var statusErr *infra.StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "test API error 401: bad key", err.Error())
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := infra.WithRetry(ctx, fastRetry(), func() error {
		attempts++
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	assert.True(t, infra.IsRetryableHTTPStatus(http.StatusTooManyRequests))
	assert.True(t, infra.IsRetryableHTTPStatus(http.StatusBadGateway))
	assert.False(t, infra.IsRetryableHTTPStatus(http.StatusBadRequest))
	assert.False(t, infra.IsRetryableHTTPStatus(http.StatusNotFound))
}
