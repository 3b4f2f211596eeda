package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_KnownServices(t *testing.T) {
	for _, svc := range []ServiceType{ServiceGmail, ServiceCalendar, ServiceDrive, ServiceSheets} {
		limiter := NewRateLimiter(svc)
		require.NotNil(t, limiter)
		assert.True(t, limiter.Allow(), "fresh limiter for %s should allow a request", svc)
	}
}

func TestNewRateLimiter_UnknownServiceUsesFallback(t *testing.T) {
	limiter := NewRateLimiter(ServiceType("contacts"))
	require.NotNil(t, limiter)
	assert.True(t, limiter.Allow())
}

func TestRateLimiter_AllowExhaustsBurst(t *testing.T) {
	limiter := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow(), "burst exhausted")
}

func TestRateLimiter_BackoffBlocksAllow(t *testing.T) {
	limiter := NewRateLimiter(ServiceGmail)

	limiter.RecordRateLimitError(60)
	assert.False(t, limiter.Allow(), "backoff period must block requests")
}

func TestRateLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewRateLimiter(ServiceGmail)
	limiter.RecordRateLimitError(60)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_RecordRateLimitError_DefaultBackoff(t *testing.T) {
	limiter := NewRateLimiter(ServiceDrive)

	limiter.RecordRateLimitError(0)

	limiter.mu.Lock()
	retryAt := limiter.retryAt
	limiter.mu.Unlock()
	assert.True(t, retryAt.After(time.Now().Add(50*time.Second)))
}
