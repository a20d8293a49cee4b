// File: internal/services/notification_service.go
package services

import (
	"context"
	"errors"

	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/repository/notification"
)

var ErrNotYourNotification = errors.New("notification belongs to another user")

type NotificationService struct {
	notifications notification.NotificationRepository
	logger        Logger
}

func NewNotificationService(notifications notification.NotificationRepository, logger Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// Notify records an in-app notification. Notifications are advisory: failures
// are logged and swallowed so they never break the triggering operation.
func (s *NotificationService) Notify(ctx context.Context, userID uint, kind domain.NotificationType, refType string, refID uint, message string) {
	_, err := s.notifications.Create(ctx, &domain.Notification{
		UserID:        userID,
		Type:          kind,
		ReferenceType: refType,
		ReferenceID:   refID,
		Message:       message,
	})
	if err != nil {
		s.logger.Warn("failed to create notification", "error", err, "user_id", userID, "type", kind)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, callerID uint) error {
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != callerID {
		return ErrNotYourNotification
	}
	return s.notifications.MarkRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}
