// File: internal/repository/conversation/conversation_repository.go
package conversation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/collabers/backend/internal/domain"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository handles conversation persistence.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)
	FindByID(ctx context.Context, id uint) (*domain.Conversation, error)
	FindTeamChatByProject(ctx context.Context, projectID uint) (*domain.Conversation, error)
	ListByParticipant(ctx context.Context, userID uint) ([]domain.Conversation, error)
	Update(ctx context.Context, conversation *domain.Conversation) error
	TouchLastMessage(ctx context.Context, id uint, at time.Time) error
}

type gormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

func (r *gormConversationRepository) FindByID(ctx context.Context, id uint) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.db.WithContext(ctx).First(&conversation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *gormConversationRepository) FindTeamChatByProject(ctx context.Context, projectID uint) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND type = ?", projectID, domain.ConversationTeamChat).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// ListByParticipant relies on the SQLite json_each table-valued function to
// match against the serialized participant list.
func (r *gormConversationRepository) ListByParticipant(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM json_each(conversations.participant_ids) WHERE json_each.value = ?)", userID).
		Order("last_message_at desc").
		Find(&conversations).Error
	return conversations, err
}

func (r *gormConversationRepository) Update(ctx context.Context, conversation *domain.Conversation) error {
	if conversation.ID == 0 {
		return errors.New("invalid conversation ID")
	}
	return r.db.WithContext(ctx).Save(conversation).Error
}

func (r *gormConversationRepository) TouchLastMessage(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}
