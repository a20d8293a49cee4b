// File: internal/services/verification/config.go
package verification

import (
	"fmt"
	"time"
)

// Rate limit action tags. Resend and verify are throttled independently so
// brute-force guessing cannot hide behind the lower resend threshold.
const (
	ActionResendOTP = "resend_otp"
	ActionVerifyOTP = "verify_otp"
)

// Config carries every tunable of the verification engine. Tests override
// individual fields per case instead of mutating package state.
type Config struct {
	OTPLength         int
	OTPExpiry         time.Duration
	LinkTokenBytes    int
	LinkExpiry        time.Duration
	MaxOTPAttempts    int
	ResendMaxAttempts int
	VerifyMaxAttempts int
	RateLimitWindow   time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		OTPLength:         6,
		OTPExpiry:         5 * time.Minute,
		LinkTokenBytes:    32, // 256 bits of entropy
		LinkExpiry:        30 * time.Minute,
		MaxOTPAttempts:    5,
		ResendMaxAttempts: 3,
		VerifyMaxAttempts: 10,
		RateLimitWindow:   15 * time.Minute,
	}
}

func (c *Config) Validate() error {
	if c.OTPLength <= 0 {
		return fmt.Errorf("OTP length must be positive")
	}
	if c.LinkTokenBytes < 16 {
		return fmt.Errorf("link token entropy must be at least 16 bytes")
	}
	if c.OTPExpiry <= 0 || c.LinkExpiry <= 0 {
		return fmt.Errorf("expiry durations must be positive")
	}
	if c.MaxOTPAttempts <= 0 {
		return fmt.Errorf("max OTP attempts must be positive")
	}
	if c.ResendMaxAttempts <= 0 || c.VerifyMaxAttempts <= 0 {
		return fmt.Errorf("rate limit thresholds must be positive")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}
	return nil
}
