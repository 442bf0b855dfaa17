package models

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn entry in a conversation. Ordering within a
// conversation is by CreatedAt; role alternation is enforced by the
// orchestrator, not the schema.
type Message struct {
	ID             string `gorm:"primaryKey;size:36"`
	ConversationID string `gorm:"size:32;not null;index"`
	Role           string `gorm:"size:16;not null"`
	Body           string `gorm:"type:text;not null"`
	AuthorID       *uint
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Conversation Conversation `gorm:"foreignKey:ConversationID"`
}
