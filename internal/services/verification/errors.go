// File: internal/services/verification/errors.go
package verification

import "errors"

// The closed set of verification failure kinds. Handlers match with errors.Is
// and map each kind to a client response without leaking internals.
var (
	// ErrRateLimitExceeded means the caller must back off before retrying.
	ErrRateLimitExceeded = errors.New("too many verification requests")
	// ErrInvalidOTP covers both "no pending verification" and a wrong code.
	ErrInvalidOTP = errors.New("invalid verification code")
	// ErrExpiredOTP means the OTP channel expired; the caller should resend.
	ErrExpiredOTP = errors.New("verification code has expired")
	// ErrMaxAttemptsExceeded is terminal for the challenge; a new one is needed.
	ErrMaxAttemptsExceeded = errors.New("maximum verification attempts exceeded")
	// ErrTokenAlreadyUsed prevents replay of a consumed challenge.
	ErrTokenAlreadyUsed = errors.New("verification has already been used")
	// ErrInvalidToken means the presented link token matches no active challenge.
	ErrInvalidToken = errors.New("invalid verification link")
	// ErrExpiredToken means the link channel expired; the caller should resend.
	ErrExpiredToken = errors.New("verification link has expired")
)

// errUnavailable is returned for internal storage failures. Details are logged
// server-side; callers only ever see this generic form.
var errUnavailable = errors.New("verification service unavailable")
