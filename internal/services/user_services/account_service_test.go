// File: internal/services/user_services/account_service_test.go
package user_services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/collabers/backend/internal/auth"
	"github.com/collabers/backend/internal/domain"
	userrepo "github.com/collabers/backend/internal/repository/user"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}

func newTestAccountService(t *testing.T) *AccountService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	issuer, err := auth.NewTokenIssuer([]byte("account-service-test-secret-key-000"), 30*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}
	return NewAccountService(userrepo.NewGormUserRepository(db), issuer, noopLogger{})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAccountService(t)
	ctx := context.Background()

	account, access, refresh, err := svc.Register(ctx, "Alice@Example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if account.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", account.Email)
	}
	if account.EmailVerified {
		t.Fatal("new accounts must start unverified")
	}
	if access == "" || refresh == "" {
		t.Fatal("expected a token pair")
	}

	if _, _, _, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, _, _, err := svc.Login(ctx, "alice@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAccountService(t)
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "not-an-email", "hunter2hunter2"); err == nil {
		t.Fatal("expected error for invalid email")
	}
	if _, _, _, err := svc.Register(ctx, "alice@example.com", "short"); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestAccountService(t)
	ctx := context.Background()

	_, access, refresh, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, _, err := svc.Refresh(ctx, refresh); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if _, _, err := svc.Refresh(ctx, access); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for access token, got %v", err)
	}
	if _, _, err := svc.Refresh(ctx, "garbage"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestPasswordUpdateRevokesOldTokens(t *testing.T) {
	svc := newTestAccountService(t)
	ctx := context.Background()

	account, _, oldRefresh, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := svc.UpdatePassword(ctx, account, "a-brand-new-password"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}

	// The old refresh token carries the pre-bump version and must die.
	if _, _, err := svc.Refresh(ctx, oldRefresh); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after password change, got %v", err)
	}

	// Old password dead, new one works.
	if _, _, _, err := svc.Login(ctx, "alice@example.com", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password to fail, got %v", err)
	}
	_, _, newRefresh, err := svc.Login(ctx, "alice@example.com", "a-brand-new-password")
	if err != nil {
		t.Fatalf("Login with new password error: %v", err)
	}
	if _, _, err := svc.Refresh(ctx, newRefresh); err != nil {
		t.Fatalf("fresh refresh token should work, got %v", err)
	}
}
