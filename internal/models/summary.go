package models

import "time"

// ConversationSummary is a rolling summary snapshot. Rows append rather than
// upsert; the latest row by CreatedAt is authoritative, older rows are
// retained as history.
type ConversationSummary struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	ConversationID string `gorm:"size:32;not null;index"`
	Body           string `gorm:"type:text;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
