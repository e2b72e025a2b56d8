package legiscan

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle enforces the minimum spacing between outbound API calls.
// One Throttle is shared by every operation on a Client instance, so
// the spacing holds across retries and across different logical calls.
// It also tracks the cooldown set after a rate-limit rejection.
type Throttle struct {
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
}

// NewThrottle creates a throttle with the given minimum gap between
// call departures.
func NewThrottle(minGap time.Duration) *Throttle {
	return &Throttle{
		limiter: rate.NewLimiter(rate.Every(minGap), 1),
	}
}

// Wait blocks until the next call may depart: first any cooldown from
// a previous rate-limit rejection, then the spacing limiter.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	retryAt := t.retryAt
	t.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return t.limiter.Wait(ctx)
}

// RecordRateLimit sets a cooldown after a rate-limit rejection.
// Subsequent Wait calls block until the cooldown has elapsed.
func (t *Throttle) RecordRateLimit(cooldown time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	until := time.Now().Add(cooldown)
	if until.After(t.retryAt) {
		t.retryAt = until
	}
}
