// File: internal/repository/profile/profile_repository.go
package profile

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/collabers/backend/internal/domain"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	FindByUserID(ctx context.Context, userID uint) (*domain.Profile, error)
	Update(ctx context.Context, p *domain.Profile) error
}

type GormProfileRepository struct {
	db *gorm.DB
}

func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		log.Printf("ERROR: failed to create profile for user %d: %v", p.UserID, err)
		return errors.New("database error while creating profile")
	}
	return nil
}

func (r *GormProfileRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		log.Printf("ERROR: failed to find profile for user %d: %v", userID, err)
		return nil, errors.New("database error while finding profile")
	}
	return &p, nil
}

func (r *GormProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		log.Printf("ERROR: failed to update profile %d: %v", p.ID, err)
		return errors.New("database error while updating profile")
	}
	return nil
}
