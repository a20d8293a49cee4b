// File: internal/domain/conversation.go
package domain

import "time"

type ConversationType string

const (
	ConversationApplicationDiscussion ConversationType = "application_discussion"
	ConversationTeamChat              ConversationType = "team_chat"
	ConversationDirect                ConversationType = "direct"
)

// Conversation groups messages between a set of participants, optionally
// scoped to a project (team chats, application discussions).
type Conversation struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	ProjectID      *uint            `gorm:"index" json:"project_id,omitempty"`
	ParticipantIDs []uint           `gorm:"serializer:json;not null" json:"participant_ids"`
	Type           ConversationType `gorm:"size:30;not null" json:"type"`
	CreatedAt      time.Time        `json:"created_at"`
	LastMessageAt  *time.Time       `json:"last_message_at,omitempty"`
}

// HasParticipant reports whether the user belongs to this conversation.
func (c *Conversation) HasParticipant(userID uint) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Message is a single chat message inside a conversation.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint      `gorm:"not null" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	ReadBy         []uint    `gorm:"serializer:json" json:"read_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReadByUser reports whether the user has already read this message.
func (m *Message) ReadByUser(userID uint) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
