package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		perSecond uint
		burst     uint
		unlimited bool
	}{
		{name: "standard rate", perSecond: 100, burst: 200},
		{name: "default burst", perSecond: 10, burst: 0},
		{name: "unlimited", perSecond: 0, burst: 0, unlimited: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(tt.perSecond, tt.burst)
			require.NotNil(t, limiter)
			assert.Equal(t, tt.unlimited, limiter.Unlimited())
		})
	}
}

func TestAllow(t *testing.T) {
	limiter := New(10, 5)

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Allow(), "payload %d should be admitted within burst", i)
	}
	assert.False(t, limiter.Allow(), "bucket should be empty after burst")

	time.Sleep(110 * time.Millisecond)
	assert.True(t, limiter.Allow(), "one token should be replenished")
}

func TestAllow_Unlimited(t *testing.T) {
	limiter := New(0, 0)
	for i := 0; i < 10000; i++ {
		require.True(t, limiter.Allow())
	}
}

func TestWait(t *testing.T) {
	limiter := New(20, 1)
	require.True(t, limiter.Allow())

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWait_Cancelled(t *testing.T) {
	limiter := New(1, 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSetLimit(t *testing.T) {
	limiter := New(1, 1)
	require.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())

	limiter.SetLimit(0, 0)
	assert.True(t, limiter.Unlimited())
	assert.True(t, limiter.Allow())

	limiter.SetLimit(5, 3)
	assert.False(t, limiter.Unlimited())
}

func TestConcurrentAllow(t *testing.T) {
	limiter := New(1, 50)

	admitted := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		go func() { admitted <- limiter.Allow() }()
	}

	count := 0
	for i := 0; i < 100; i++ {
		if <-admitted {
			count++
		}
	}
	assert.GreaterOrEqual(t, count, 50)
	assert.LessOrEqual(t, count, 52)
}
