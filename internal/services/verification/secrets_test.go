// File: internal/services/verification/secrets_test.go
package verification

import (
	"strings"
	"testing"
)

func TestGenerateOTPLengthAndDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		otp, err := GenerateOTP(6)
		if err != nil {
			t.Fatalf("GenerateOTP error: %v", err)
		}
		if len(otp) != 6 {
			t.Fatalf("expected 6 characters, got %q", otp)
		}
		for _, r := range otp {
			if r < '0' || r > '9' {
				t.Fatalf("expected digits only, got %q", otp)
			}
		}
	}
}

func TestGenerateOTPPreservesLeadingZeros(t *testing.T) {
	// With 200 draws of a 1-digit code the zero digit is near-certain to
	// appear; padding failures would surface as a short string.
	seenLengthOne := false
	for i := 0; i < 200; i++ {
		otp, err := GenerateOTP(1)
		if err != nil {
			t.Fatalf("GenerateOTP error: %v", err)
		}
		if len(otp) != 1 {
			t.Fatalf("expected 1 character, got %q", otp)
		}
		seenLengthOne = true
	}
	if !seenLengthOne {
		t.Fatal("no draws performed")
	}
}

func TestGenerateLinkTokenURLSafe(t *testing.T) {
	token, err := GenerateLinkToken(32)
	if err != nil {
		t.Fatalf("GenerateLinkToken error: %v", err)
	}
	// 32 bytes, base64 without padding: 43 characters.
	if len(token) != 43 {
		t.Fatalf("expected 43 characters, got %d (%q)", len(token), token)
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("token is not URL-safe: %q", token)
	}
}

func TestGenerateLinkTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateLinkToken(32)
		if err != nil {
			t.Fatalf("GenerateLinkToken error: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %q", token)
		}
		seen[token] = true
	}
}

func TestHashSecretDeterministic(t *testing.T) {
	a := HashSecret("123456")
	b := HashSecret("123456")
	c := HashSecret("654321")

	if a != b {
		t.Fatal("same input must hash identically")
	}
	if a == c {
		t.Fatal("different inputs must hash differently")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(a))
	}
}

func TestSecretHashEqual(t *testing.T) {
	h := HashSecret("123456")

	if !SecretHashEqual(HashSecret("123456"), h) {
		t.Fatal("matching hashes must compare equal")
	}
	if SecretHashEqual(HashSecret("123457"), h) {
		t.Fatal("different hashes must not compare equal")
	}
	if SecretHashEqual("", h) {
		t.Fatal("empty candidate must not compare equal")
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice@example.com", "a***@e***.com"},
		{"ab@example.com", "a***@e***.com"},
		{"a@example.com", "***@e***.com"},
		{"not-an-email", "***@***.***"},
		{"@example.com", "***@***.***"},
		{"alice@", "***@***.***"},
	}
	for _, tt := range tests {
		if got := MaskEmail(tt.in); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
