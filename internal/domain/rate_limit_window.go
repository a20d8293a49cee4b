// File: internal/domain/rate_limit_window.go
package domain

import "time"

// RateLimitWindow is a persisted sliding-window counter for one
// (identifier, action) pair. A window older than the configured duration is
// logically expired and must be replaced, not incremented, on next use.
type RateLimitWindow struct {
	ID           uint      `gorm:"primaryKey"`
	Identifier   string    `gorm:"size:255;index:idx_rate_limit_identifier_action;not null"`
	Action       string    `gorm:"size:50;index:idx_rate_limit_identifier_action;not null"`
	AttemptCount int       `gorm:"not null;default:1"`
	WindowStart  time.Time `gorm:"not null"`
}

// Expired reports whether the window started more than duration ago.
func (w *RateLimitWindow) Expired(now time.Time, duration time.Duration) bool {
	return now.Sub(w.WindowStart) > duration
}
