// File: internal/domain/verification_challenge.go
package domain

import (
	"time"
)

// VerificationPurpose distinguishes why a challenge was issued. Purposes are
// independent and never cross-validate.
type VerificationPurpose string

const (
	PurposeEmailVerification VerificationPurpose = "email_verification"
	PurposePasswordReset     VerificationPurpose = "password_reset"
)

// VerificationChallenge pairs a hashed OTP and a hashed link token for one
// verification purpose. At most one non-used challenge exists per
// (user_id, purpose); creating a new one supersedes (deletes) prior ones.
// Both channels are created together but validated independently, and whichever
// succeeds first flips IsUsed, killing the record for both channels.
type VerificationChallenge struct {
	ID      uint                `gorm:"primaryKey"`
	UserID  uint                `gorm:"index:idx_challenge_user_purpose;not null"`
	Purpose VerificationPurpose `gorm:"size:32;index:idx_challenge_user_purpose;not null"`

	// OTP channel (hashed at rest, SHA-256 hex = 64 chars)
	OTPHash         string    `gorm:"size:64;not null"`
	OTPExpiresAt    time.Time `gorm:"not null"`
	OTPAttemptCount int       `gorm:"not null;default:0"`

	// Link channel, expires independently of the OTP
	LinkTokenHash string    `gorm:"size:64;index;not null"`
	LinkExpiresAt time.Time `gorm:"not null"`

	// Terminal flag. Once set the record is dead regardless of other fields.
	IsUsed    bool `gorm:"default:false;index"`
	CreatedAt time.Time
}

// OTPExpired reports whether the OTP channel has passed its expiry.
func (c *VerificationChallenge) OTPExpired(now time.Time) bool {
	return now.After(c.OTPExpiresAt)
}

// LinkExpired reports whether the link channel has passed its expiry.
func (c *VerificationChallenge) LinkExpired(now time.Time) bool {
	return now.After(c.LinkExpiresAt)
}

// Inert reports whether the record can never validate again without being used:
// both channels expired and the used flag never set. Such rows are swept by the
// periodic cleanup.
func (c *VerificationChallenge) Inert(now time.Time) bool {
	return !c.IsUsed && c.OTPExpired(now) && c.LinkExpired(now)
}
