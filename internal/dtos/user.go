// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/collabers/backend/internal/domain"
)

// UserResponseDTO defines what fields to expose in user API responses.
// Sensitive fields like the password hash and token version are excluded.
type UserResponseDTO struct {
	ID            uint   `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	AccountStatus string `json:"account_status"`
	CreatedAt     string `json:"created_at"`
	LastActive    string `json:"last_active,omitempty"`
}

// PublicUserDTO is what other users see: no email, no account status.
type PublicUserDTO struct {
	ID       uint            `json:"id"`
	Profile  *domain.Profile `json:"profile,omitempty"`
	JoinedAt string          `json:"joined_at"`
}

// FromDomain maps a domain.User to UserResponseDTO for the account owner.
func FromDomain(user *domain.User) UserResponseDTO {
	dto := UserResponseDTO{
		ID:            user.ID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		AccountStatus: string(user.AccountStatus),
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
	if !user.LastActive.IsZero() {
		dto.LastActive = user.LastActive.Format(time.RFC3339)
	}
	return dto
}

// ToPublic maps a user and their profile to the public view.
func ToPublic(user *domain.User, profile *domain.Profile) PublicUserDTO {
	return PublicUserDTO{
		ID:       user.ID,
		Profile:  profile,
		JoinedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
