// File: internal/services/messaging_service_test.go
package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	conversationrepo "github.com/collabers/backend/internal/repository/conversation"
	messagerepo "github.com/collabers/backend/internal/repository/message"
	notificationrepo "github.com/collabers/backend/internal/repository/notification"
)

func newMessagingEnv(t *testing.T) (*MessagingService, *NotificationService) {
	t.Helper()
	db := newTestDB(t)
	logger := &NoOpLogger{}
	notifications := NewNotificationService(notificationrepo.NewGormNotificationRepository(db), logger)
	messaging := NewMessagingService(
		conversationrepo.NewGormConversationRepository(db),
		messagerepo.NewGormMessageRepository(db),
		notifications,
		logger,
	)
	return messaging, notifications
}

func TestStartDirectReusesConversation(t *testing.T) {
	messaging, _ := newMessagingEnv(t)
	ctx := context.Background()

	first, err := messaging.StartDirect(ctx, 1, 2)
	if err != nil {
		t.Fatalf("StartDirect error: %v", err)
	}
	second, err := messaging.StartDirect(ctx, 2, 1)
	if err != nil {
		t.Fatalf("StartDirect error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same conversation, got %d and %d", first.ID, second.ID)
	}

	if _, err := messaging.StartDirect(ctx, 1, 1); err == nil {
		t.Fatal("conversation with yourself should be rejected")
	}
}

func TestSendEnforcesParticipation(t *testing.T) {
	messaging, notifications := newMessagingEnv(t)
	ctx := context.Background()

	conv, err := messaging.StartDirect(ctx, 1, 2)
	if err != nil {
		t.Fatalf("StartDirect error: %v", err)
	}

	if _, err := messaging.Send(ctx, conv.ID, 3, "hi"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if _, err := messaging.Send(ctx, conv.ID, 1, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := messaging.Send(ctx, conv.ID, 1, strings.Repeat("x", maxMessageLength+1)); err == nil {
		t.Fatal("oversized message should be rejected")
	}

	msg, err := messaging.Send(ctx, conv.ID, 1, "hello there")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if !msg.ReadByUser(1) || msg.ReadByUser(2) {
		t.Fatalf("sender should be the only reader, got %v", msg.ReadBy)
	}

	// The other participant is notified, the sender is not.
	count, err := notifications.UnreadCount(ctx, 2)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 unread notification for recipient, got %d, %v", count, err)
	}
	count, err = notifications.UnreadCount(ctx, 1)
	if err != nil || count != 0 {
		t.Fatalf("expected no notifications for sender, got %d, %v", count, err)
	}
}

func TestListMessagesRecordsReadReceipts(t *testing.T) {
	messaging, _ := newMessagingEnv(t)
	ctx := context.Background()

	conv, err := messaging.StartDirect(ctx, 1, 2)
	if err != nil {
		t.Fatalf("StartDirect error: %v", err)
	}
	if _, err := messaging.Send(ctx, conv.ID, 1, "first"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if _, err := messaging.Send(ctx, conv.ID, 1, "second"); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if _, err := messaging.ListMessages(ctx, conv.ID, 3, 0, 0); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	msgs, err := messaging.ListMessages(ctx, conv.ID, 2, 0, 0)
	if err != nil {
		t.Fatalf("ListMessages error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	for _, m := range msgs {
		if !m.ReadByUser(2) {
			t.Fatalf("reading the page should record a receipt, got %v", m.ReadBy)
		}
	}

	// Receipts are persisted, not just decorated on the response.
	again, err := messaging.ListMessages(ctx, conv.ID, 1, 0, 0)
	if err != nil {
		t.Fatalf("ListMessages error: %v", err)
	}
	for _, m := range again {
		if !m.ReadByUser(2) {
			t.Fatalf("receipt was not persisted, got %v", m.ReadBy)
		}
	}
}
