// File: internal/services/verification/interface.go
package verification

import "context"

// Logger interface for the verification engine.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Notifier delivers plaintext secrets out-of-band. Delivery failure is never
// fatal to challenge creation; the challenge exists and can be resent.
type Notifier interface {
	SendVerification(ctx context.Context, toEmail, otp, linkToken string) error
	SendPasswordReset(ctx context.Context, toEmail, otp, linkToken string) error
}
