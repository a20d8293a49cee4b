// File: internal/services/user_services/profile_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/repository/profile"
)

type ProfileService struct {
	profiles profile.ProfileRepository
	logger   Logger
}

func NewProfileService(profiles profile.ProfileRepository, logger Logger) *ProfileService {
	return &ProfileService{profiles: profiles, logger: logger}
}

// Get returns the user's profile, creating an empty one on first access so
// callers never have to special-case a missing row.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*domain.Profile, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, profile.ErrProfileNotFound) {
		return nil, err
	}

	p = &domain.Profile{UserID: userID}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Debug("empty profile created", "user_id", userID)
	return p, nil
}

// Update applies the submitted profile fields onto the stored row. Identity
// columns are never taken from the input.
func (s *ProfileService) Update(ctx context.Context, userID uint, updated *domain.Profile) (*domain.Profile, error) {
	if updated.Availability != "" {
		switch updated.Availability {
		case domain.AvailabilityActivelyLooking, domain.AvailabilityOpenToOffers, domain.AvailabilityNotAvailable:
		default:
			return nil, fmt.Errorf("invalid availability %q", updated.Availability)
		}
	}

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated.ID = current.ID
	updated.UserID = userID
	updated.CreatedAt = current.CreatedAt
	if err := s.profiles.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", userID, "completeness", updated.Completeness())
	return updated, nil
}
