// File: internal/services/verification/service.go
package verification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/collabers/backend/internal/domain"
	userrepo "github.com/collabers/backend/internal/repository/user"
	verificationrepo "github.com/collabers/backend/internal/repository/verification"
)

// Service orchestrates generation, delivery and validation of dual-channel
// (OTP + link token) verification challenges.
type Service struct {
	challenges verificationrepo.ChallengeRepository
	users      userrepo.UserRepository
	limiter    *RateLimiter
	notifier   Notifier
	logger     Logger
	config     *Config
	now        func() time.Time
}

func NewService(
	challenges verificationrepo.ChallengeRepository,
	users userrepo.UserRepository,
	limiter *RateLimiter,
	notifier Notifier,
	logger Logger,
	config *Config,
) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid verification config: %w", err)
	}
	return &Service{
		challenges: challenges,
		users:      users,
		limiter:    limiter,
		notifier:   notifier,
		logger:     logger,
		config:     config,
		now:        time.Now,
	}, nil
}

// OTPLength returns the configured code length, so boundary layers can derive
// their input validation from the same config the engine generates with.
func (s *Service) OTPLength() int {
	return s.config.OTPLength
}

// CreateChallenge invalidates any prior challenge for (user, purpose), persists
// a new one with hashed secrets, hands the plaintext to the notifier and
// returns it to the caller. Delivery failure does not fail the operation.
func (s *Service) CreateChallenge(ctx context.Context, user *domain.User, purpose domain.VerificationPurpose) (string, string, error) {
	identifier := strconv.FormatUint(uint64(user.ID), 10)

	allowed, err := s.limiter.Allow(ctx, identifier, ActionResendOTP, s.config.ResendMaxAttempts, s.config.RateLimitWindow)
	if err != nil {
		s.logger.Error("rate limit check failed", "error", err, "user_id", user.ID, "action", ActionResendOTP)
		return "", "", errUnavailable
	}
	if !allowed {
		s.logger.Warn("resend rate limit exceeded", "user_id", user.ID, "purpose", purpose)
		return "", "", fmt.Errorf("%w: please wait before requesting another code", ErrRateLimitExceeded)
	}

	// Supersession: at most one non-used challenge per (user, purpose).
	if err := s.challenges.DeleteByUserAndPurpose(ctx, user.ID, purpose); err != nil {
		s.logger.Error("failed to invalidate prior challenges", "error", err, "user_id", user.ID, "purpose", purpose)
		return "", "", errUnavailable
	}

	otp, err := GenerateOTP(s.config.OTPLength)
	if err != nil {
		s.logger.Error("OTP generation failed", "error", err)
		return "", "", errUnavailable
	}
	linkToken, err := GenerateLinkToken(s.config.LinkTokenBytes)
	if err != nil {
		s.logger.Error("link token generation failed", "error", err)
		return "", "", errUnavailable
	}

	now := s.now().UTC()
	challenge := &domain.VerificationChallenge{
		UserID:        user.ID,
		Purpose:       purpose,
		OTPHash:       HashSecret(otp),
		OTPExpiresAt:  now.Add(s.config.OTPExpiry),
		LinkTokenHash: HashSecret(linkToken),
		LinkExpiresAt: now.Add(s.config.LinkExpiry),
		CreatedAt:     now,
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		s.logger.Error("failed to persist challenge", "error", err, "user_id", user.ID, "purpose", purpose)
		return "", "", errUnavailable
	}

	s.deliver(ctx, user, purpose, otp, linkToken)

	s.logger.Info("verification challenge created", "user_id", user.ID, "purpose", purpose, "email", MaskEmail(user.Email))
	return otp, linkToken, nil
}

// deliver hands the plaintext secrets to the notifier. The challenge already
// exists and is independently resendable, so failures are only logged.
func (s *Service) deliver(ctx context.Context, user *domain.User, purpose domain.VerificationPurpose, otp, linkToken string) {
	var err error
	if purpose == domain.PurposePasswordReset {
		err = s.notifier.SendPasswordReset(ctx, user.Email, otp, linkToken)
	} else {
		err = s.notifier.SendVerification(ctx, user.Email, otp, linkToken)
	}
	if err != nil {
		s.logger.Warn("verification delivery failed", "error", err, "user_id", user.ID, "purpose", purpose, "email", MaskEmail(user.Email))
	}
}

// VerifyOTP validates a submitted code. The attempt counter is incremented and
// persisted before expiry and hash checks, so every guess that gets this far
// costs an attempt no matter how it fails afterwards.
func (s *Service) VerifyOTP(ctx context.Context, user *domain.User, purpose domain.VerificationPurpose, candidate string) error {
	identifier := strconv.FormatUint(uint64(user.ID), 10)

	allowed, err := s.limiter.Allow(ctx, identifier, ActionVerifyOTP, s.config.VerifyMaxAttempts, s.config.RateLimitWindow)
	if err != nil {
		s.logger.Error("rate limit check failed", "error", err, "user_id", user.ID, "action", ActionVerifyOTP)
		return errUnavailable
	}
	if !allowed {
		s.logger.Warn("verify rate limit exceeded", "user_id", user.ID, "purpose", purpose)
		return fmt.Errorf("%w: please wait before trying again", ErrRateLimitExceeded)
	}

	challenge, err := s.challenges.FindActive(ctx, user.ID, purpose)
	if err != nil {
		s.logger.Error("failed to load challenge", "error", err, "user_id", user.ID, "purpose", purpose)
		return errUnavailable
	}
	if challenge == nil {
		return fmt.Errorf("%w: no pending verification found", ErrInvalidOTP)
	}
	if challenge.IsUsed {
		return ErrTokenAlreadyUsed
	}
	if challenge.OTPAttemptCount >= s.config.MaxOTPAttempts {
		return fmt.Errorf("%w: please request a new code", ErrMaxAttemptsExceeded)
	}

	attempts, err := s.challenges.IncrementOTPAttempts(ctx, challenge.ID)
	if err != nil {
		s.logger.Error("failed to record attempt", "error", err, "challenge_id", challenge.ID)
		return errUnavailable
	}

	if challenge.OTPExpired(s.now().UTC()) {
		return fmt.Errorf("%w: please request a new code", ErrExpiredOTP)
	}

	if !SecretHashEqual(HashSecret(candidate), challenge.OTPHash) {
		remaining := s.config.MaxOTPAttempts - attempts
		if remaining > 0 {
			return fmt.Errorf("%w: %d attempts remaining", ErrInvalidOTP, remaining)
		}
		return fmt.Errorf("%w: please request a new code", ErrMaxAttemptsExceeded)
	}

	if err := s.challenges.MarkUsed(ctx, challenge.ID); err != nil {
		s.logger.Error("failed to mark challenge used", "error", err, "challenge_id", challenge.ID)
		return errUnavailable
	}

	if purpose == domain.PurposeEmailVerification {
		if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
			s.logger.Error("failed to mark email verified", "error", err, "user_id", user.ID)
			return errUnavailable
		}
		user.EmailVerified = true
		s.logger.Info("email verified via OTP", "user_id", user.ID, "email", MaskEmail(user.Email))
	}
	return nil
}

// VerifyLinkToken validates a bearer link token. The token itself is the
// lookup key since the caller is unauthenticated. No rate limiting and no
// attempt counter: 256 bits of entropy are the brute-force defense here.
func (s *Service) VerifyLinkToken(ctx context.Context, token string, purpose domain.VerificationPurpose) (*domain.User, error) {
	challenge, err := s.challenges.FindActiveByLinkHash(ctx, HashSecret(token), purpose)
	if err != nil {
		s.logger.Error("failed to look up link token", "error", err, "purpose", purpose)
		return nil, errUnavailable
	}
	if challenge == nil {
		return nil, ErrInvalidToken
	}
	if challenge.IsUsed {
		return nil, ErrTokenAlreadyUsed
	}
	if challenge.LinkExpired(s.now().UTC()) {
		return nil, fmt.Errorf("%w: please request a new one", ErrExpiredToken)
	}

	user, err := s.users.FindByID(ctx, challenge.UserID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("failed to load user for link token", "error", err, "challenge_id", challenge.ID)
		return nil, errUnavailable
	}

	if err := s.challenges.MarkUsed(ctx, challenge.ID); err != nil {
		s.logger.Error("failed to mark challenge used", "error", err, "challenge_id", challenge.ID)
		return nil, errUnavailable
	}

	if purpose == domain.PurposeEmailVerification {
		if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
			s.logger.Error("failed to mark email verified", "error", err, "user_id", user.ID)
			return nil, errUnavailable
		}
		user.EmailVerified = true
		s.logger.Info("email verified via link", "user_id", user.ID, "email", MaskEmail(user.Email))
	}
	return user, nil
}

// CleanupExpired sweeps never-used challenges whose both channels have expired.
// Safe to run concurrently with other operations: such rows are inert.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	count, err := s.challenges.DeleteInert(ctx, s.now().UTC())
	if err != nil {
		s.logger.Error("challenge cleanup failed", "error", err)
		return 0, errUnavailable
	}
	if count > 0 {
		s.logger.Info("expired verification challenges removed", "count", count)
	}
	return count, nil
}
