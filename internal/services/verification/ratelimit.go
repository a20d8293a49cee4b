// File: internal/services/verification/ratelimit.go
package verification

import (
	"context"
	"time"

	"github.com/collabers/backend/internal/repository/ratelimit"
)

// RateLimiter enforces persisted sliding windows per (identifier, action).
type RateLimiter struct {
	windows ratelimit.WindowRepository
	now     func() time.Time
}

func NewRateLimiter(windows ratelimit.WindowRepository) *RateLimiter {
	return &RateLimiter{
		windows: windows,
		now:     time.Now,
	}
}

// Allow checks and increments the window in one step. A missing or expired
// window is replaced with a fresh one at count 1. An active window at or above
// maxAttempts denies without incrementing. The increment itself is atomic at
// the storage layer, so concurrent callers cannot both slip under the cap.
func (l *RateLimiter) Allow(ctx context.Context, identifier, action string, maxAttempts int, window time.Duration) (bool, error) {
	now := l.now().UTC()

	current, err := l.windows.Find(ctx, identifier, action)
	if err != nil {
		return false, err
	}

	if current == nil || current.Expired(now, window) {
		if err := l.windows.Reset(ctx, identifier, action, now); err != nil {
			return false, err
		}
		return true, nil
	}

	if current.AttemptCount >= maxAttempts {
		return false, nil
	}

	count, err := l.windows.Increment(ctx, current.ID)
	if err != nil {
		return false, err
	}
	return count <= maxAttempts, nil
}
