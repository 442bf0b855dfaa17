// Package conversation persists conversations, messages, mood entries, and
// rolling summaries.
package conversation

import (
	"errors"
	"fmt"
	"time"

	"github.com/frontdeskhq/frontdesk/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Placeholder identity for anonymous visitors.
const (
	DefaultCustomerName = "Anonymous"
	DefaultChannel      = "web"
)

// ErrNotFound is returned when a referenced conversation does not exist.
var ErrNotFound = errors.New("conversation: not found")

// Store handles all conversation-scoped persistence.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("conversation: store: db is required")
	}
	return &Store{db: db}, nil
}

// Create starts a new active conversation with neutral mood. Empty identity
// fields get placeholders.
func (s *Store) Create(customerName, channel string) (*models.Conversation, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	if customerName == "" {
		customerName = DefaultCustomerName
	}
	if channel == "" {
		channel = DefaultChannel
	}
	conv := models.Conversation{
		ID:           id,
		CustomerName: customerName,
		Channel:      channel,
		Status:       models.ConversationActive,
		Mood:         "neutral",
	}
	if err := s.db.Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("conversation: create: %w", err)
	}
	return &conv, nil
}

// Get fetches a conversation by ID.
func (s *Store) Get(id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.Where("id = ?", id).First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("conversation: get %s: %w", id, err)
	}
	return &conv, nil
}

// AppendMessage records a message under a conversation and touches the
// conversation's UpdatedAt.
func (s *Store) AppendMessage(conversationID, role, body string) (*models.Message, error) {
	msg := models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Body:           body,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("conversation: append %s message: %w", role, err)
	}
	return &msg, nil
}

// History returns all messages for a conversation, oldest first. Reads made
// in the same process observe messages committed by AppendMessage
// (read-your-writes within a turn).
func (s *Store) History(conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("conversation: history: %w", err)
	}
	return msgs, nil
}

// MessageCount returns the number of messages in a conversation.
func (s *Store) MessageCount(conversationID string) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("conversation: message count: %w", err)
	}
	return count, nil
}

// Kill flips a conversation to killed. Killing an already-killed
// conversation is a no-op that still touches UpdatedAt.
func (s *Store) Kill(id string) error {
	return s.setStatus(id, models.ConversationKilled)
}

// Reactivate flips a conversation back to active.
func (s *Store) Reactivate(id string) error {
	return s.setStatus(id, models.ConversationActive)
}

func (s *Store) setStatus(id, status string) error {
	res := s.db.Model(&models.Conversation{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("conversation: set status %s: %w", status, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordMood appends a MoodEntry and refreshes the conversation's
// denormalized mood field in one transaction. The denormalized value is
// recomputed from the newest log entry inside the transaction, so a slow
// older enrichment run can never overwrite a newer classification.
func (s *Store) RecordMood(conversationID, mood, messageID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry := models.MoodEntry{
			ConversationID: conversationID,
			Mood:           mood,
			MessageID:      messageID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var latest models.MoodEntry
		if err := tx.Where("conversation_id = ?", conversationID).
			Order("created_at DESC, id DESC").First(&latest).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conversationID).
			Updates(map[string]interface{}{"mood": latest.Mood, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return fmt.Errorf("conversation: record mood: %w", err)
	}
	return nil
}

// MoodHistory returns the append-only mood log, oldest first.
func (s *Store) MoodHistory(conversationID string) ([]models.MoodEntry, error) {
	var entries []models.MoodEntry
	if err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("conversation: mood history: %w", err)
	}
	return entries, nil
}

// SaveSummary appends a new summary row. Prior rows are kept as history.
func (s *Store) SaveSummary(conversationID, body string) error {
	sum := models.ConversationSummary{
		ConversationID: conversationID,
		Body:           body,
	}
	if err := s.db.Create(&sum).Error; err != nil {
		return fmt.Errorf("conversation: save summary: %w", err)
	}
	return nil
}

// LatestSummary returns the newest summary row, or nil if none exists.
func (s *Store) LatestSummary(conversationID string) (*models.ConversationSummary, error) {
	var sum models.ConversationSummary
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").First(&sum).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("conversation: latest summary: %w", err)
	}
	return &sum, nil
}

// PendingEnrichment returns IDs of conversations whose newest message is
// more recent than their newest mood entry — turns whose fire-and-forget
// enrichment never ran (for example, across a restart).
func (s *Store) PendingEnrichment(limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	var ids []string
	err := s.db.Model(&models.Conversation{}).
		Select("conversations.id").
		Where("EXISTS (SELECT 1 FROM messages m WHERE m.conversation_id = conversations.id)").
		Where(`COALESCE(
			(SELECT MAX(e.created_at) FROM mood_entries e WHERE e.conversation_id = conversations.id),
			'1970-01-01') <
			(SELECT MAX(m.created_at) FROM messages m WHERE m.conversation_id = conversations.id)`).
		Order("conversations.updated_at ASC").
		Limit(limit).
		Pluck("conversations.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("conversation: pending enrichment: %w", err)
	}
	return ids, nil
}
