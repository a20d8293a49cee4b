// File: internal/domain/user.go
package domain

import (
	"errors"
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AccountStatus represents the moderation state of an account.
type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "active"
	AccountStatusSuspended   AccountStatus = "suspended"
	AccountStatusDeactivated AccountStatus = "deactivated"
)

type User struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Email         string        `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash  string        `gorm:"size:255;not null" json:"-"`
	EmailVerified bool          `gorm:"default:false" json:"email_verified"`
	// TokenVersion is embedded in every issued session token. Incrementing it
	// invalidates all previously issued tokens for this account at once.
	TokenVersion  int           `gorm:"not null;default:0" json:"-"`
	AccountStatus AccountStatus `gorm:"size:20;not null;default:active" json:"account_status"`
	LastActive    time.Time     `json:"last_active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// SetPassword securely hashes and stores the user's password.
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// ValidatePassword compares a plain-text password with the stored hash.
func (u *User) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsValid() error {
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return errors.New("invalid email address")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

// IsActive reports whether the account may authenticate and act.
func (u *User) IsActive() bool {
	return u.AccountStatus == AccountStatusActive
}
