// File: internal/services/verification/service_test.go
package verification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/collabers/backend/internal/domain"
	ratelimitrepo "github.com/collabers/backend/internal/repository/ratelimit"
	userrepo "github.com/collabers/backend/internal/repository/user"
	verificationrepo "github.com/collabers/backend/internal/repository/verification"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}

// recordingNotifier captures delivered secrets instead of sending email.
type recordingNotifier struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	purpose   domain.VerificationPurpose
	email     string
	otp       string
	linkToken string
}

func (n *recordingNotifier) SendVerification(ctx context.Context, toEmail, otp, linkToken string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{domain.PurposeEmailVerification, toEmail, otp, linkToken})
	return nil
}

func (n *recordingNotifier) SendPasswordReset(ctx context.Context, toEmail, otp, linkToken string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{domain.PurposePasswordReset, toEmail, otp, linkToken})
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type testEnv struct {
	service  *Service
	notifier *recordingNotifier
	clock    *fakeClock
	users    userrepo.UserRepository
	db       *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithConfig(t, DefaultConfig())
}

func newTestEnvWithConfig(t *testing.T, config *Config) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.VerificationChallenge{}, &domain.RateLimitWindow{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}

	users := userrepo.NewGormUserRepository(db)
	challenges := verificationrepo.NewGormChallengeRepository(db)
	limiter := NewRateLimiter(ratelimitrepo.NewGormWindowRepository(db))
	limiter.now = clock.Now

	service, err := NewService(challenges, users, limiter, notifier, noopLogger{}, config)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	service.now = clock.Now

	return &testEnv{service: service, notifier: notifier, clock: clock, users: users, db: db}
}

func (e *testEnv) createUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, AccountStatus: domain.AccountStatusActive}
	if err := u.SetPassword("correct-horse"); err != nil {
		t.Fatalf("SetPassword error: %v", err)
	}
	created, err := e.users.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return created
}

func TestCreateChallengeDeliversAndReturnsSecrets(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")

	otp, linkToken, err := env.service.CreateChallenge(context.Background(), user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}
	if len(otp) != 6 {
		t.Fatalf("expected 6-digit OTP, got %q", otp)
	}
	if len(linkToken) != 43 {
		t.Fatalf("expected 43-char link token, got %q", linkToken)
	}

	if len(env.notifier.sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(env.notifier.sent))
	}
	mail := env.notifier.sent[0]
	if mail.otp != otp || mail.linkToken != linkToken || mail.email != "alice@example.com" {
		t.Fatalf("delivered secrets do not match returned ones: %+v", mail)
	}
}

func TestCreateChallengeStoresOnlyHashes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")

	otp, linkToken, err := env.service.CreateChallenge(context.Background(), user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	var challenge domain.VerificationChallenge
	if err := env.db.First(&challenge).Error; err != nil {
		t.Fatalf("failed to load challenge row: %v", err)
	}
	if challenge.OTPHash == otp || challenge.LinkTokenHash == linkToken {
		t.Fatal("plaintext secret stored in database")
	}
	if challenge.OTPHash != HashSecret(otp) {
		t.Fatal("stored OTP hash does not match the returned OTP")
	}
	if challenge.LinkTokenHash != HashSecret(linkToken) {
		t.Fatal("stored link token hash does not match the returned token")
	}
}

func TestCreateChallengeSupersedesPrior(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	ctx := context.Background()

	firstOTP, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("first CreateChallenge error: %v", err)
	}
	secondOTP, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("second CreateChallenge error: %v", err)
	}

	var count int64
	env.db.Model(&domain.VerificationChallenge{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one challenge row after supersession, got %d", count)
	}

	if err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, firstOTP); !errors.Is(err, ErrInvalidOTP) {
		// The first OTP nearly always differs from the second; on the rare
		// collision the codes are interchangeable anyway.
		if firstOTP != secondOTP {
			t.Fatalf("expected ErrInvalidOTP for superseded code, got %v", err)
		}
	}
	if err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, secondOTP); err != nil {
		t.Fatalf("current OTP should verify, got %v", err)
	}
}

func TestCreateChallengeSurvivesDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("smtp down")
	user := env.createUser(t, "alice@example.com")

	otp, _, err := env.service.CreateChallenge(context.Background(), user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge must not fail on delivery errors, got %v", err)
	}
	if otp == "" {
		t.Fatal("expected secrets despite delivery failure")
	}
}

func TestVerifyOTPSuccessMarksVerifiedAndConsumes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	ctx := context.Background()

	otp, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	if err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, otp); err != nil {
		t.Fatalf("VerifyOTP error: %v", err)
	}

	stored, err := env.users.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if !stored.EmailVerified {
		t.Fatal("expected email_verified after successful OTP")
	}

	// Replay: the consumed challenge no longer matches anything pending.
	if err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, otp); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP on replay, got %v", err)
	}
}

func TestVerifyOTPWithoutChallenge(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")

	err := env.service.VerifyOTP(context.Background(), user, domain.PurposeEmailVerification, "123456")
	if !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}
}

func TestVerifyOTPWrongCodeLadder(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	ctx := context.Background()

	otp, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}
	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}

	// MaxOTPAttempts is 5: four wrong guesses count down the remaining
	// attempts, the fifth flips to the terminal error.
	for i := 1; i <= 4; i++ {
		err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, wrong)
		if !errors.Is(err, ErrInvalidOTP) {
			t.Fatalf("guess %d: expected ErrInvalidOTP, got %v", i, err)
		}
		wantRemaining := fmt.Sprintf("%d attempts remaining", 5-i)
		if err.Error() != ErrInvalidOTP.Error()+": "+wantRemaining {
			t.Fatalf("guess %d: unexpected message %q", i, err.Error())
		}
	}

	if err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, wrong); !errors.Is(err, ErrMaxAttemptsExceeded) {
		t.Fatalf("expected ErrMaxAttemptsExceeded on fifth wrong guess, got %v", err)
	}

	// Even the correct code is refused now: the challenge is burned.
	if err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, otp); !errors.Is(err, ErrMaxAttemptsExceeded) {
		t.Fatalf("expected ErrMaxAttemptsExceeded for correct code after cap, got %v", err)
	}
}

func TestVerifyOTPExpiredStillCountsAttempt(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	ctx := context.Background()

	otp, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	env.clock.Advance(6 * time.Minute) // past the 5-minute OTP expiry

	if err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, otp); !errors.Is(err, ErrExpiredOTP) {
		t.Fatalf("expected ErrExpiredOTP, got %v", err)
	}

	var challenge domain.VerificationChallenge
	if err := env.db.First(&challenge).Error; err != nil {
		t.Fatalf("failed to load challenge: %v", err)
	}
	if challenge.OTPAttemptCount != 1 {
		t.Fatalf("expired guess must still cost an attempt, count = %d", challenge.OTPAttemptCount)
	}
}

func TestVerifyLinkTokenSuccessAndReplay(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	ctx := context.Background()

	_, linkToken, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	verified, err := env.service.VerifyLinkToken(ctx, linkToken, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("VerifyLinkToken error: %v", err)
	}
	if verified.ID != user.ID || !verified.EmailVerified {
		t.Fatalf("unexpected verified user: %+v", verified)
	}

	if _, err := env.service.VerifyLinkToken(ctx, linkToken, domain.PurposeEmailVerification); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on replay, got %v", err)
	}
}

func TestVerifyLinkTokenOutlivesOTPExpiry(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	ctx := context.Background()

	otp, linkToken, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	// 10 minutes in: OTP (5m) is dead, link (30m) still valid.
	env.clock.Advance(10 * time.Minute)

	if err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, otp); !errors.Is(err, ErrExpiredOTP) {
		t.Fatalf("expected ErrExpiredOTP, got %v", err)
	}
	if _, err := env.service.VerifyLinkToken(ctx, linkToken, domain.PurposeEmailVerification); err != nil {
		t.Fatalf("link should still verify, got %v", err)
	}
}

func TestVerifyLinkTokenExpired(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	ctx := context.Background()

	_, linkToken, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	env.clock.Advance(31 * time.Minute)

	if _, err := env.service.VerifyLinkToken(ctx, linkToken, domain.PurposeEmailVerification); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyLinkTokenUnknown(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com")

	if _, err := env.service.VerifyLinkToken(context.Background(), "definitely-not-a-token", domain.PurposeEmailVerification); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPurposesDoNotCrossValidate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	ctx := context.Background()

	_, resetToken, err := env.service.CreateChallenge(ctx, user, domain.PurposePasswordReset)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	// A password-reset token must not verify an email address.
	if _, err := env.service.VerifyLinkToken(ctx, resetToken, domain.PurposeEmailVerification); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for cross-purpose use, got %v", err)
	}
	// And still works for its own purpose.
	if _, err := env.service.VerifyLinkToken(ctx, resetToken, domain.PurposePasswordReset); err != nil {
		t.Fatalf("token should verify for its own purpose, got %v", err)
	}
}

func TestResendRateLimitAndWindowReset(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	ctx := context.Background()

	// ResendMaxAttempts is 3 per 15-minute window.
	for i := 0; i < 3; i++ {
		if _, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification); err != nil {
			t.Fatalf("resend %d should be allowed, got %v", i+1, err)
		}
	}
	if _, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("expected ErrRateLimitExceeded on fourth resend, got %v", err)
	}

	env.clock.Advance(16 * time.Minute)

	if _, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification); err != nil {
		t.Fatalf("resend should be allowed after window expiry, got %v", err)
	}
}

func TestVerifyRateLimitIndependentOfResend(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com")
	ctx := context.Background()

	otp, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}
	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}

	// VerifyMaxAttempts is 10 per window; the per-challenge attempt cap (5)
	// fires first, but the verify window keeps counting every call.
	for i := 0; i < 10; i++ {
		err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, wrong)
		if errors.Is(err, ErrRateLimitExceeded) {
			t.Fatalf("call %d: rate limit must not fire before 10 calls, got %v", i+1, err)
		}
	}
	if err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, wrong); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("expected ErrRateLimitExceeded on eleventh verify call, got %v", err)
	}

	// Resends have their own budget and are unaffected.
	if _, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification); err != nil {
		t.Fatalf("resend should still be allowed, got %v", err)
	}
}

func TestCleanupExpiredSweepsOnlyInertRows(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")
	ctx := context.Background()

	if _, _, err := env.service.CreateChallenge(ctx, alice, domain.PurposeEmailVerification); err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	env.clock.Advance(31 * time.Minute) // both channels of alice's challenge dead

	if _, _, err := env.service.CreateChallenge(ctx, bob, domain.PurposeEmailVerification); err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}

	removed, err := env.service.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 inert row removed, got %d", removed)
	}

	// Idempotent: nothing left to sweep.
	removed, err = env.service.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("second CleanupExpired error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 rows on second sweep, got %d", removed)
	}

	var count int64
	env.db.Model(&domain.VerificationChallenge{}).Count(&count)
	if count != 1 {
		t.Fatalf("bob's live challenge must survive, rows = %d", count)
	}
}

func TestConfiguredOTPLengthHonored(t *testing.T) {
	config := DefaultConfig()
	config.OTPLength = 8
	env := newTestEnvWithConfig(t, config)
	ctx := context.Background()
	user := env.createUser(t, "eight@example.com")

	if got := env.service.OTPLength(); got != 8 {
		t.Fatalf("OTPLength() = %d, want 8", got)
	}

	otp, _, err := env.service.CreateChallenge(ctx, user, domain.PurposeEmailVerification)
	if err != nil {
		t.Fatalf("CreateChallenge error: %v", err)
	}
	if len(otp) != 8 {
		t.Fatalf("expected an 8-digit code, got %q", otp)
	}
	if err := env.service.VerifyOTP(ctx, user, domain.PurposeEmailVerification, otp); err != nil {
		t.Fatalf("VerifyOTP error: %v", err)
	}
}
