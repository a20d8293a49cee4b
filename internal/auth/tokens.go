// File: internal/auth/tokens.go
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers every decode failure: bad signature, malformed
// token, expired token, wrong algorithm. Callers get no more detail.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by every token. TokenVersion is compared against the
// account's current value on use; bumping the account's version invalidates
// every previously issued token at once.
type Claims struct {
	TokenType    string `json:"type"`
	TokenVersion int    `json:"tv"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates HS256 token pairs.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret []byte, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &TokenIssuer{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

func (t *TokenIssuer) IssueAccessToken(userID uint, tokenVersion int) (string, error) {
	return t.issue(userID, tokenVersion, TokenTypeAccess, t.accessTTL)
}

func (t *TokenIssuer) IssueRefreshToken(userID uint, tokenVersion int) (string, error) {
	return t.issue(userID, tokenVersion, TokenTypeRefresh, t.refreshTTL)
}

// IssuePair mints a matching access + refresh token pair.
func (t *TokenIssuer) IssuePair(userID uint, tokenVersion int) (string, string, error) {
	access, err := t.IssueAccessToken(userID, tokenVersion)
	if err != nil {
		return "", "", err
	}
	refresh, err := t.IssueRefreshToken(userID, tokenVersion)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (t *TokenIssuer) issue(userID uint, tokenVersion int, tokenType string, ttl time.Duration) (string, error) {
	if userID == 0 {
		return "", errors.New("user ID cannot be zero")
	}

	now := t.now().UTC()
	claims := Claims{
		TokenType:    tokenType,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode validates the signature and standard claims and returns the parsed
// claims plus the subject user ID.
func (t *TokenIssuer) Decode(tokenString string) (*Claims, uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now().UTC() }))
	if err != nil || !token.Valid {
		return nil, 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, 0, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, 0, ErrInvalidToken
	}
	return claims, uint(userID), nil
}
