package message

import (
	"context"

	"github.com/collabers/backend/internal/domain"
)

// MessageRepository handles chat message persistence.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID uint, limit, offset int) ([]domain.Message, error)
	Update(ctx context.Context, message *domain.Message) error
}
