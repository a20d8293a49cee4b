// File: internal/services/messaging_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/repository/conversation"
	"github.com/collabers/backend/internal/repository/message"
)

var (
	ErrNotParticipant = errors.New("you are not a participant in this conversation")
	ErrEmptyMessage   = errors.New("message content cannot be empty")
)

const maxMessageLength = 5000

type MessagingService struct {
	conversations conversation.ConversationRepository
	messages      message.MessageRepository
	notifications *NotificationService
	logger        Logger
	now           func() time.Time
}

func NewMessagingService(
	conversations conversation.ConversationRepository,
	messages message.MessageRepository,
	notifications *NotificationService,
	logger Logger,
) *MessagingService {
	return &MessagingService{
		conversations: conversations,
		messages:      messages,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

// StartDirect opens (or reuses) a direct conversation between two users.
func (s *MessagingService) StartDirect(ctx context.Context, userID, otherID uint) (*domain.Conversation, error) {
	if userID == otherID {
		return nil, errors.New("cannot start a conversation with yourself")
	}

	existing, err := s.conversations.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		c := &existing[i]
		if c.Type == domain.ConversationDirect && c.HasParticipant(otherID) {
			return c, nil
		}
	}

	return s.conversations.Create(ctx, &domain.Conversation{
		ParticipantIDs: []uint{userID, otherID},
		Type:           domain.ConversationDirect,
	})
}

// StartApplicationDiscussion opens (or reuses) a project-scoped conversation
// between the project owner and an applicant.
func (s *MessagingService) StartApplicationDiscussion(ctx context.Context, projectID, ownerID, applicantID uint) (*domain.Conversation, error) {
	existing, err := s.conversations.ListByParticipant(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		c := &existing[i]
		if c.Type == domain.ConversationApplicationDiscussion &&
			c.ProjectID != nil && *c.ProjectID == projectID &&
			c.HasParticipant(applicantID) {
			return c, nil
		}
	}

	return s.conversations.Create(ctx, &domain.Conversation{
		ProjectID:      &projectID,
		ParticipantIDs: []uint{ownerID, applicantID},
		Type:           domain.ConversationApplicationDiscussion,
	})
}

// JoinTeamChat adds a user to the project's team chat, creating the chat with
// the owner as first member when it does not exist yet.
func (s *MessagingService) JoinTeamChat(ctx context.Context, projectID, ownerID, userID uint) error {
	chat, err := s.conversations.FindTeamChatByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if chat == nil {
		_, err := s.conversations.Create(ctx, &domain.Conversation{
			ProjectID:      &projectID,
			ParticipantIDs: []uint{ownerID, userID},
			Type:           domain.ConversationTeamChat,
		})
		return err
	}
	if chat.HasParticipant(userID) {
		return nil
	}
	chat.ParticipantIDs = append(chat.ParticipantIDs, userID)
	return s.conversations.Update(ctx, chat)
}

// ListConversations returns the caller's conversations, most recent first.
func (s *MessagingService) ListConversations(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	return s.conversations.ListByParticipant(ctx, userID)
}

// Send posts a message and notifies the other participants.
func (s *MessagingService) Send(ctx context.Context, conversationID, senderID uint, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if len(content) > maxMessageLength {
		return nil, errors.New("message is too long")
	}

	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	msg, err := s.messages.Create(ctx, &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		ReadBy:         []uint{senderID},
	})
	if err != nil {
		s.logger.Error("failed to create message", "error", err, "conversation_id", conversationID)
		return nil, err
	}

	if err := s.conversations.TouchLastMessage(ctx, conversationID, s.now().UTC()); err != nil {
		s.logger.Warn("failed to bump last_message_at", "error", err, "conversation_id", conversationID)
	}

	for _, participantID := range conv.ParticipantIDs {
		if participantID == senderID {
			continue
		}
		s.notifications.Notify(ctx, participantID, domain.NotificationNewMessage,
			"conversation", conversationID, "New message")
	}
	return msg, nil
}

// ListMessages returns messages in a conversation the caller belongs to,
// oldest first, and records read receipts for the page.
func (s *MessagingService) ListMessages(ctx context.Context, conversationID, callerID uint, limit, offset int) ([]domain.Message, error) {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, ErrNotParticipant
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	msgs, err := s.messages.ListByConversation(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}

	for i := range msgs {
		m := &msgs[i]
		if m.SenderID == callerID || m.ReadByUser(callerID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, callerID)
		if err := s.messages.Update(ctx, m); err != nil {
			s.logger.Warn("failed to record read receipt", "error", err, "message_id", m.ID)
		}
	}
	return msgs, nil
}
