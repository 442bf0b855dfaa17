package models

import "time"

// MoodEntry is one row of the append-only mood log. The owning
// Conversation's Mood field is a denormalized view of the latest entry.
type MoodEntry struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	ConversationID string `gorm:"size:32;not null;index"`
	Mood           string `gorm:"size:16;not null"`
	MessageID      string `gorm:"size:36"`
	CreatedAt      time.Time
}
