package user

import (
	"context"

	"github.com/collabers/backend/internal/domain"
)

// UserRepository handles account data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	MarkEmailVerified(ctx context.Context, id uint) error
	// UpdatePassword stores the new hash and atomically increments the
	// account's token version, invalidating every previously issued token.
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateLastActive(ctx context.Context, id uint) error
}
