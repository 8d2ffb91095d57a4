package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultMaxRequests = 5
	DefaultWindow      = time.Second
)

// Limiter enforces an upper bound on request rate over a sliding window.
// It is a cooperative scheduling primitive: Throttle blocks the caller
// just long enough that no window ever observes more than maxRequests
// admitted calls. Not safe for concurrent use; components that share a
// Limiter must call it sequentially.
type Limiter struct {
	maxRequests      int
	window           time.Duration
	lastRequest      time.Time
	requestsInWindow int

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter admitting at most maxRequests calls per window.
// Non-positive arguments fall back to the defaults (5 per second).
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Throttle admits the caller, sleeping for the remainder of the current
// window when the cap has been reached. It returns early with the
// context's error if the context is cancelled while waiting.
func (l *Limiter) Throttle(ctx context.Context) error {
	now := l.now()
	elapsed := now.Sub(l.lastRequest)

	// Window elapsed: start a new one counting this call, admit
	// immediately. Ties at the boundary favor the reset.
	if elapsed > l.window {
		l.requestsInWindow = 1
		l.lastRequest = now
		return nil
	}

	if l.requestsInWindow >= l.maxRequests {
		if err := l.sleep(ctx, l.window-elapsed); err != nil {
			return err
		}
		l.requestsInWindow = 1
		l.lastRequest = l.now()
		return nil
	}

	l.requestsInWindow++
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
