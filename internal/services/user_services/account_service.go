// File: internal/services/user_services/account_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/collabers/backend/internal/auth"
	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/repository/user"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not active")
)

type AccountService struct {
	userRepo user.UserRepository
	issuer   *auth.TokenIssuer
	logger   Logger
}

func NewAccountService(userRepo user.UserRepository, issuer *auth.TokenIssuer, logger Logger) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger,
	}
}

// Register creates a new unverified account and returns it with a token pair.
// Email verification is kicked off by the caller so registration still
// succeeds when the verification channel is down.
func (s *AccountService) Register(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateRegistrationInput(email, password); err != nil {
		s.logger.Warn("registration validation failed",
			"email", maskForLog(email),
			"error", err.Error())
		return nil, "", "", err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("registration existence check failed", "error", err, "email", maskForLog(email))
		return nil, "", "", fmt.Errorf("failed to create account: %w", err)
	}
	if exists {
		s.logger.Warn("registration failed - email already exists", "email", maskForLog(email))
		return nil, "", "", ErrEmailTaken
	}

	newUser := &domain.User{
		Email:         email,
		AccountStatus: domain.AccountStatusActive,
	}
	if err := newUser.SetPassword(password); err != nil {
		return nil, "", "", err
	}

	created, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		s.logger.Error("user creation failed", "error", err, "email", maskForLog(email))
		return nil, "", "", fmt.Errorf("failed to create account: %w", err)
	}

	access, refresh, err := s.issuer.IssuePair(created.ID, created.TokenVersion)
	if err != nil {
		s.logger.Error("token issuance failed after registration", "error", err, "user_id", created.ID)
		return nil, "", "", fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.logger.Info("user registered", "user_id", created.ID, "email", maskForLog(email))
	return created, access, refresh, nil
}

// Login authenticates by email and password and returns the user with a
// fresh token pair. Every failure mode looks the same to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", "", ErrInvalidCredentials
	}

	account, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			s.logger.Error("login lookup failed", "error", err, "email", maskForLog(email))
		}
		return nil, "", "", ErrInvalidCredentials
	}

	if err := account.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "user_id", account.ID, "email", maskForLog(email))
		return nil, "", "", ErrInvalidCredentials
	}
	if !account.IsActive() {
		s.logger.Warn("login attempt on inactive account", "user_id", account.ID, "status", account.AccountStatus)
		return nil, "", "", ErrAccountInactive
	}

	access, refresh, err := s.issuer.IssuePair(account.ID, account.TokenVersion)
	if err != nil {
		s.logger.Error("token issuance failed on login", "error", err, "user_id", account.ID)
		return nil, "", "", fmt.Errorf("failed to issue tokens: %w", err)
	}

	if err := s.userRepo.UpdateLastActive(ctx, account.ID); err != nil {
		s.logger.Warn("failed to update last_active", "error", err, "user_id", account.ID)
	}

	s.logger.Info("login successful", "user_id", account.ID, "email", maskForLog(email))
	return account, access, refresh, nil
}

// Refresh exchanges a valid refresh token for a new pair. The token's version
// claim must still match the account, so a password change ends the session.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, userID, err := s.issuer.Decode(refreshToken)
	if err != nil {
		return "", "", auth.ErrInvalidToken
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		s.logger.Warn("refresh attempted with non-refresh token", "user_id", userID, "type", claims.TokenType)
		return "", "", auth.ErrInvalidToken
	}

	account, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", "", auth.ErrInvalidToken
	}
	if claims.TokenVersion != account.TokenVersion {
		s.logger.Warn("refresh with stale token version", "user_id", userID)
		return "", "", auth.ErrInvalidToken
	}
	if !account.IsActive() {
		return "", "", auth.ErrInvalidToken
	}

	access, refresh, err := s.issuer.IssuePair(account.ID, account.TokenVersion)
	if err != nil {
		s.logger.Error("token issuance failed on refresh", "error", err, "user_id", account.ID)
		return "", "", fmt.Errorf("failed to issue tokens: %w", err)
	}
	return access, refresh, nil
}

// UpdatePassword sets a new password and bumps the account's token version in
// the same statement, revoking every outstanding token.
func (s *AccountService) UpdatePassword(ctx context.Context, account *domain.User, newPassword string) error {
	if err := account.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, account.ID, account.PasswordHash); err != nil {
		s.logger.Error("password update failed", "error", err, "user_id", account.ID)
		return fmt.Errorf("failed to update password: %w", err)
	}
	account.TokenVersion++
	s.logger.Info("password updated, sessions revoked", "user_id", account.ID)
	return nil
}

func (s *AccountService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *AccountService) TouchLastActive(ctx context.Context, id uint) error {
	return s.userRepo.UpdateLastActive(ctx, id)
}

func validateRegistrationInput(email, password string) error {
	if email == "" || !strings.Contains(email, "@") || strings.Contains(email, " ") {
		return errors.New("a valid email address is required")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
