// File: internal/services/email/config.go
package email

import (
	"fmt"
	"time"
)

type Config struct {
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	FromAddress string
	FrontendURL string

	// Expiry hints rendered into the email bodies. Wire these from the
	// verification config so the text never contradicts the real expiries.
	OTPExpiry  time.Duration
	LinkExpiry time.Duration
}

// Configured reports whether SMTP delivery is set up at all. An empty host is
// a valid development configuration: sends become no-ops.
func (c *Config) Configured() bool {
	return c.SMTPHost != ""
}

func (c *Config) Validate() error {
	if c.OTPExpiry <= 0 || c.LinkExpiry <= 0 {
		return fmt.Errorf("email config requires positive OTP and link expiries")
	}
	if !c.Configured() {
		return nil
	}
	if c.SMTPPort == 0 {
		return fmt.Errorf("SMTP_PORT is required when SMTP_HOST is set")
	}
	if c.FromAddress == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}
	return nil
}
