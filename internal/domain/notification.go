// File: internal/domain/notification.go
package domain

import "time"

type NotificationType string

const (
	NotificationNewApplication      NotificationType = "new_application"
	NotificationApplicationAccepted NotificationType = "application_accepted"
	NotificationApplicationRejected NotificationType = "application_rejected"
	NotificationNewMessage          NotificationType = "new_message"
	NotificationProjectUpdate       NotificationType = "project_update"
)

// Notification is an in-app event delivered to a single user.
type Notification struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UserID        uint             `gorm:"index:idx_notifications_user_read;not null" json:"user_id"`
	Type          NotificationType `gorm:"size:40;not null" json:"type"`
	ReferenceType string           `gorm:"size:50;not null" json:"reference_type"`
	ReferenceID   uint             `gorm:"not null" json:"reference_id"`
	Message       string           `gorm:"size:500" json:"message"`
	Read          bool             `gorm:"index:idx_notifications_user_read;default:false" json:"read"`
	CreatedAt     time.Time        `json:"created_at"`
}
