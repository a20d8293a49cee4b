// File: internal/services/verification/secrets.go
package verification

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// GenerateOTP returns a zero-padded numeric code of the given length, drawn
// uniformly from [0, 10^length) with crypto/rand.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid OTP length: %d", length)
	}
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// GenerateLinkToken returns a URL-safe token built from numBytes of
// cryptographic randomness (32 bytes = 256 bits of entropy).
func GenerateLinkToken(numBytes int) (string, error) {
	if numBytes <= 0 {
		return "", fmt.Errorf("invalid token size: %d", numBytes)
	}
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate link token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashSecret returns the SHA-256 hex digest of a secret. No salt: secrets are
// high-entropy, single-use and short-lived.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// SecretHashEqual compares two digests in constant time.
func SecretHashEqual(candidateHash, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(candidateHash), []byte(storedHash)) == 1
}

// MaskEmail redacts an address for logging: "user@example.com" -> "u***@e***.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "***@***.***"
	}
	local, domain := email[:at], email[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 {
		return "***@***.***"
	}
	maskPart := func(s string) string {
		if len(s) > 1 {
			return s[:1] + "***"
		}
		return "***"
	}
	return maskPart(local) + "@" + maskPart(domain[:dot]) + domain[dot:]
}
