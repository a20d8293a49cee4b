// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/collabers/backend/internal/domain"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *gormMessageRepository) ListByConversation(ctx context.Context, conversationID uint, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Limit(limit).Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *gormMessageRepository) Update(ctx context.Context, message *domain.Message) error {
	if message.ID == 0 {
		return errors.New("invalid message ID")
	}
	return r.db.WithContext(ctx).Save(message).Error
}
