// File: internal/repository/verification/verification_repository.go
package verification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/collabers/backend/internal/domain"
)

// ChallengeRepository persists verification challenges. A nil challenge with a
// nil error means "no active record".
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *domain.VerificationChallenge) error
	FindActive(ctx context.Context, userID uint, purpose domain.VerificationPurpose) (*domain.VerificationChallenge, error)
	FindActiveByLinkHash(ctx context.Context, linkTokenHash string, purpose domain.VerificationPurpose) (*domain.VerificationChallenge, error)
	DeleteByUserAndPurpose(ctx context.Context, userID uint, purpose domain.VerificationPurpose) error
	// IncrementOTPAttempts bumps the attempt counter with an atomic
	// UPDATE ... SET n = n + 1 and returns the counter as re-read afterwards,
	// closing the race where two concurrent guesses both observe the same count.
	IncrementOTPAttempts(ctx context.Context, id uint) (int, error)
	MarkUsed(ctx context.Context, id uint) error
	// DeleteInert removes never-used challenges whose both channels expired
	// before the given instant. Returns the number of rows deleted.
	DeleteInert(ctx context.Context, now time.Time) (int64, error)
}

// GormChallengeRepository implements ChallengeRepository using GORM.
type GormChallengeRepository struct {
	db *gorm.DB
}

func NewGormChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &GormChallengeRepository{db: db}
}

func (r *GormChallengeRepository) Create(ctx context.Context, challenge *domain.VerificationChallenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *GormChallengeRepository) FindActive(ctx context.Context, userID uint, purpose domain.VerificationPurpose) (*domain.VerificationChallenge, error) {
	var challenge domain.VerificationChallenge
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ? AND is_used = ?", userID, purpose, false).
		First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *GormChallengeRepository) FindActiveByLinkHash(ctx context.Context, linkTokenHash string, purpose domain.VerificationPurpose) (*domain.VerificationChallenge, error) {
	var challenge domain.VerificationChallenge
	err := r.db.WithContext(ctx).
		Where("link_token_hash = ? AND purpose = ? AND is_used = ?", linkTokenHash, purpose, false).
		First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *GormChallengeRepository) DeleteByUserAndPurpose(ctx context.Context, userID uint, purpose domain.VerificationPurpose) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Delete(&domain.VerificationChallenge{}).Error
}

func (r *GormChallengeRepository) IncrementOTPAttempts(ctx context.Context, id uint) (int, error) {
	result := r.db.WithContext(ctx).Model(&domain.VerificationChallenge{}).
		Where("id = ?", id).
		Update("otp_attempt_count", gorm.Expr("otp_attempt_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var count int
	err := r.db.WithContext(ctx).Model(&domain.VerificationChallenge{}).
		Select("otp_attempt_count").
		Where("id = ?", id).
		Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormChallengeRepository) MarkUsed(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&domain.VerificationChallenge{}).
		Where("id = ?", id).
		Update("is_used", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormChallengeRepository) DeleteInert(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_used = ? AND otp_expires_at < ? AND link_expires_at < ?", false, now, now).
		Delete(&domain.VerificationChallenge{})
	return result.RowsAffected, result.Error
}
