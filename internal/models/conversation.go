package models

import "time"

// Conversation status values. Transitions are active↔killed in both
// directions; neither state is terminal.
const (
	ConversationActive = "active"
	ConversationKilled = "killed"
)

// Conversation is a visitor's chat thread with the assistant.
type Conversation struct {
	ID           string `gorm:"primaryKey;size:32"`
	CustomerName string `gorm:"size:128"`
	Channel      string `gorm:"size:64"`
	Status       string `gorm:"size:16;default:active;index"`
	Mood         string `gorm:"size:16;default:neutral"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Messages    []Message             `gorm:"foreignKey:ConversationID"`
	MoodEntries []MoodEntry           `gorm:"foreignKey:ConversationID"`
	Summaries   []ConversationSummary `gorm:"foreignKey:ConversationID"`
}
