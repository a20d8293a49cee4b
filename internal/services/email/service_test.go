// File: internal/services/email/service_test.go
package email

import (
	"strings"
	"testing"
	"time"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}

func TestExpiryHintsFollowConfig(t *testing.T) {
	svc, err := NewService(&Config{
		FrontendURL: "https://collabers.app",
		OTPExpiry:   7 * time.Minute,
		LinkExpiry:  45 * time.Minute,
	}, noopLogger{})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	body := verificationBody("123456", svc.buildLink("/verify-email", "tok"), svc.otpMinutes, svc.linkMinutes)
	if !strings.Contains(body, "expires in 7 minutes") {
		t.Fatalf("OTP expiry hint does not follow config:\n%s", body)
	}
	if !strings.Contains(body, "valid for 45 minutes") {
		t.Fatalf("link expiry hint does not follow config:\n%s", body)
	}

	body = passwordResetBody("123456", svc.buildLink("/reset-password", "tok"), svc.otpMinutes, svc.linkMinutes)
	if !strings.Contains(body, "expires in 7 minutes") || !strings.Contains(body, "valid for 45 minutes") {
		t.Fatalf("reset body hints do not follow config:\n%s", body)
	}
}

func TestConfigRequiresExpiries(t *testing.T) {
	_, err := NewService(&Config{FrontendURL: "https://collabers.app"}, noopLogger{})
	if err == nil {
		t.Fatal("missing expiries should be rejected")
	}
}

func TestBuildLinkEscapesToken(t *testing.T) {
	svc, err := NewService(&Config{
		FrontendURL: "https://collabers.app",
		OTPExpiry:   5 * time.Minute,
		LinkExpiry:  30 * time.Minute,
	}, noopLogger{})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	link := svc.buildLink("/verify-email", "a+b/c")
	if link != "https://collabers.app/verify-email?token=a%2Bb%2Fc" {
		t.Fatalf("unexpected link: %q", link)
	}
}
