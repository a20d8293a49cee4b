// File: internal/repository/ratelimit/rate_limit_repository.go
package ratelimit

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/collabers/backend/internal/domain"
)

// WindowRepository persists sliding-window rate limit counters.
type WindowRepository interface {
	Find(ctx context.Context, identifier, action string) (*domain.RateLimitWindow, error)
	// Reset replaces any window for (identifier, action) with a fresh one
	// starting at the given instant with attempt_count = 1.
	Reset(ctx context.Context, identifier, action string, start time.Time) error
	// Increment bumps the counter atomically and returns it as re-read.
	Increment(ctx context.Context, id uint) (int, error)
}

// GormWindowRepository implements WindowRepository using GORM.
type GormWindowRepository struct {
	db *gorm.DB
}

func NewGormWindowRepository(db *gorm.DB) WindowRepository {
	return &GormWindowRepository{db: db}
}

func (r *GormWindowRepository) Find(ctx context.Context, identifier, action string) (*domain.RateLimitWindow, error) {
	var window domain.RateLimitWindow
	err := r.db.WithContext(ctx).
		Where("identifier = ? AND action = ?", identifier, action).
		First(&window).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &window, nil
}

func (r *GormWindowRepository) Reset(ctx context.Context, identifier, action string, start time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identifier = ? AND action = ?", identifier, action).
			Delete(&domain.RateLimitWindow{}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.RateLimitWindow{
			Identifier:   identifier,
			Action:       action,
			AttemptCount: 1,
			WindowStart:  start,
		}).Error
	})
}

func (r *GormWindowRepository) Increment(ctx context.Context, id uint) (int, error) {
	result := r.db.WithContext(ctx).Model(&domain.RateLimitWindow{}).
		Where("id = ?", id).
		Update("attempt_count", gorm.Expr("attempt_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var count int
	err := r.db.WithContext(ctx).Model(&domain.RateLimitWindow{}).
		Select("attempt_count").
		Where("id = ?", id).
		Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
