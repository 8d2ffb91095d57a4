package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock simulates time: sleeps advance it instead of blocking.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) install(l *Limiter) {
	l.now = func() time.Time { return c.now }
	l.sleep = func(_ context.Context, d time.Duration) error {
		c.sleeps = append(c.sleeps, d)
		c.now = c.now.Add(d)
		return nil
	}
}

func TestThrottle_BurstDelaysSixthCall(t *testing.T) {
	l := New(5, time.Second)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	clock.install(l)

	ctx := context.Background()
	start := clock.now

	// Five back-to-back calls are admitted immediately.
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Throttle(ctx))
	}
	require.Empty(t, clock.sleeps)

	// The 6th waits out the window: it completes >= 1s after the first.
	require.NoError(t, l.Throttle(ctx))
	require.Len(t, clock.sleeps, 1)
	assert.GreaterOrEqual(t, clock.now.Sub(start), time.Second)
}

func TestThrottle_WindowElapsedResets(t *testing.T) {
	l := New(2, time.Second)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	clock.install(l)

	ctx := context.Background()
	require.NoError(t, l.Throttle(ctx))
	require.NoError(t, l.Throttle(ctx))

	// Jump past the window: the next call is admitted without sleeping.
	clock.now = clock.now.Add(2 * time.Second)
	require.NoError(t, l.Throttle(ctx))
	assert.Empty(t, clock.sleeps)
}

func TestThrottle_BurstNeverExceedsCapInAnyWindow(t *testing.T) {
	const cap = 5
	window := time.Second
	l := New(cap, window)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	clock.install(l)

	var admitted []time.Time
	for i := 0; i < 42; i++ {
		require.NoError(t, l.Throttle(context.Background()))
		admitted = append(admitted, clock.now)
	}

	for i := range admitted {
		count := 0
		for j := i; j < len(admitted); j++ {
			if admitted[j].Sub(admitted[i]) < window {
				count++
			}
		}
		assert.LessOrEqual(t, count, cap, "window starting at call %d", i)
	}
}

func TestThrottle_ContextCancelledWhileWaiting(t *testing.T) {
	l := New(2, time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Throttle(ctx))
	require.NoError(t, l.Throttle(ctx)) // fills the window

	cancel()
	err := l.Throttle(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_ClampsInvalidArguments(t *testing.T) {
	l := New(0, -time.Second)
	assert.Equal(t, DefaultMaxRequests, l.maxRequests)
	assert.Equal(t, DefaultWindow, l.window)
}
