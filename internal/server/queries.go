package server

import (
	"fmt"
	"time"

	"github.com/frontdeskhq/frontdesk/internal/models"
	"github.com/frontdeskhq/frontdesk/internal/mood"
	"gorm.io/gorm"
)

// defaultPageSize caps the conversation list when no limit is given.
const defaultPageSize = 50

// ConversationRow is one line of the admin conversation list, with rollups
// derived from the messages table rather than stored.
type ConversationRow struct {
	ID            string     `json:"id"`
	CustomerName  string     `json:"customer_name"`
	Channel       string     `json:"channel"`
	Status        string     `json:"status"`
	Mood          string     `json:"mood"`
	MessageCount  int64      `json:"message_count"`
	LastMessage   string     `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ConversationList returns conversations ordered by recency with message
// rollups, paginated by limit/offset.
func ConversationList(db *gorm.DB, limit, offset int) ([]ConversationRow, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var convs []models.Conversation
	if err := db.Order("updated_at DESC, id DESC").
		Limit(limit).Offset(offset).Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("server: list conversations: %w", err)
	}
	if len(convs) == 0 {
		return []ConversationRow{}, nil
	}

	ids := make([]string, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
	}

	type agg struct {
		ConversationID string
		Count          int64
	}
	var aggs []agg
	if err := db.Model(&models.Message{}).
		Select("conversation_id, count(*) as count").
		Where("conversation_id IN ?", ids).
		Group("conversation_id").
		Find(&aggs).Error; err != nil {
		return nil, fmt.Errorf("server: message rollup: %w", err)
	}
	counts := make(map[string]int64, len(aggs))
	for _, a := range aggs {
		counts[a.ConversationID] = a.Count
	}

	rows := make([]ConversationRow, len(convs))
	for i, c := range convs {
		row := ConversationRow{
			ID:           c.ID,
			CustomerName: c.CustomerName,
			Channel:      c.Channel,
			Status:       c.Status,
			Mood:         c.Mood,
			MessageCount: counts[c.ID],
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		}
		if row.MessageCount > 0 {
			var last models.Message
			err := db.Where("conversation_id = ?", c.ID).
				Order("created_at DESC, id DESC").First(&last).Error
			if err != nil {
				return nil, fmt.Errorf("server: last message for %s: %w", c.ID, err)
			}
			row.LastMessage = last.Body
			at := last.CreatedAt
			row.LastMessageAt = &at
		}
		rows[i] = row
	}
	return rows, nil
}

// Stats holds the global dashboard numbers.
type Stats struct {
	TotalConversations             int64            `json:"total_conversations"`
	TotalMessages                  int64            `json:"total_messages"`
	AverageMessagesPerConversation float64          `json:"average_messages_per_conversation"`
	MoodCounts                     map[string]int64 `json:"mood_counts"`
}

// GlobalStats computes dashboard totals. Mood counts bucket conversations by
// their current denormalized mood.
func GlobalStats(db *gorm.DB) (*Stats, error) {
	s := &Stats{MoodCounts: make(map[string]int64)}

	if err := db.Model(&models.Conversation{}).Count(&s.TotalConversations).Error; err != nil {
		return nil, fmt.Errorf("server: stats: count conversations: %w", err)
	}
	if err := db.Model(&models.Message{}).Count(&s.TotalMessages).Error; err != nil {
		return nil, fmt.Errorf("server: stats: count messages: %w", err)
	}
	if s.TotalConversations > 0 {
		s.AverageMessagesPerConversation = float64(s.TotalMessages) / float64(s.TotalConversations)
	}

	type moodCount struct {
		Mood  string
		Count int64
	}
	var mcs []moodCount
	if err := db.Model(&models.Conversation{}).
		Select("mood, count(*) as count").
		Group("mood").
		Find(&mcs).Error; err != nil {
		return nil, fmt.Errorf("server: stats: mood counts: %w", err)
	}
	for _, mc := range mcs {
		s.MoodCounts[mc.Mood] = mc.Count
	}
	return s, nil
}

// ConversationTrend computes the mood trend buckets for one conversation
// from its chronological mood log.
func ConversationTrend(entries []models.MoodEntry) mood.Trend {
	moods := make([]mood.Mood, len(entries))
	for i, e := range entries {
		moods[i] = mood.Mood(e.Mood)
	}
	return mood.ComputeTrend(moods)
}
