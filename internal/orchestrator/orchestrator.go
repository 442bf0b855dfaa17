// Package orchestrator runs customer chat turns: it validates input, guards
// killed conversations, persists both sides of the exchange, and hands the
// finished turn off for background enrichment.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/frontdeskhq/frontdesk/internal/config"
	"github.com/frontdeskhq/frontdesk/internal/conversation"
	"github.com/frontdeskhq/frontdesk/internal/gateway"
	"github.com/frontdeskhq/frontdesk/internal/models"
)

// FallbackReply is persisted and shown when the model fails after retries.
// The customer's message is already stored at that point, so the turn still
// completes.
const FallbackReply = "I'm having trouble responding right now. Please try again in a moment."

// replyRetries is how many extra model attempts a turn gets before falling
// back.
const replyRetries = 1

// ReplyGenerator is the slice of the gateway a turn needs.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, history []models.Message, summary string) (*gateway.Reply, error)
}

// Orchestrator coordinates one chat turn end to end.
type Orchestrator struct {
	store    *conversation.Store
	gw       ReplyGenerator
	cfg      config.ChatConfig
	schedule func(conversationID string)
	locks    keyLocks
}

// Opts holds parameters for creating an Orchestrator.
type Opts struct {
	Store *conversation.Store
	Reply ReplyGenerator
	Chat  config.ChatConfig
	// Schedule is invoked once per completed turn with the conversation ID,
	// for fire-and-forget enrichment. Nil disables scheduling.
	Schedule func(conversationID string)
}

// New creates an Orchestrator.
func New(opts Opts) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("orchestrator: store is required")
	}
	if opts.Reply == nil {
		return nil, fmt.Errorf("orchestrator: reply generator is required")
	}
	return &Orchestrator{
		store:    opts.Store,
		gw:       opts.Reply,
		cfg:      opts.Chat,
		schedule: opts.Schedule,
	}, nil
}

// TurnResult is the outcome of one completed chat turn.
type TurnResult struct {
	ConversationID     string
	UserMessageID      string
	AssistantMessageID string
	Reply              string
	// Fallback is true when the stored reply is the canned fallback rather
	// than model output.
	Fallback bool
}

// StartConversation creates a conversation from a visitor's opening message
// and runs the first turn. The opening message must reach the configured
// minimum length.
func (o *Orchestrator) StartConversation(ctx context.Context, text string) (*TurnResult, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < o.minLength() {
		return nil, ErrMessageTooShort
	}

	conv, err := o.store.Create("", "")
	if err != nil {
		return nil, err
	}
	return o.HandleTurn(ctx, conv.ID, trimmed)
}

// Converse routes a turn, creating a conversation first when no ID is
// given. Unlike StartConversation, the minimum-length rule does not apply;
// any non-empty message may open a conversation through this path.
func (o *Orchestrator) Converse(ctx context.Context, conversationID, text string) (*TurnResult, error) {
	if conversationID != "" {
		return o.HandleTurn(ctx, conversationID, text)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	conv, err := o.store.Create("", "")
	if err != nil {
		return nil, err
	}
	return o.HandleTurn(ctx, conv.ID, text)
}

// HandleTurn runs one turn of an existing conversation. Turns on the same
// conversation are serialized; the killed check happens before the
// customer's message is persisted, so a killed conversation stays exactly
// as it was when killed.
func (o *Orchestrator) HandleTurn(ctx context.Context, conversationID, text string) (*TurnResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	unlock := o.locks.acquire(conversationID)
	defer unlock()

	conv, err := o.store.Get(conversationID)
	if err != nil {
		if err == conversation.ErrNotFound {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.Status == models.ConversationKilled {
		return nil, ErrConversationClosed
	}

	userMsg, err := o.store.AppendMessage(conv.ID, models.RoleUser, trimmed)
	if err != nil {
		return nil, err
	}

	history, err := o.store.History(conv.ID)
	if err != nil {
		return nil, err
	}

	summary := ""
	if o.cfg.FeedSummaryIntoReply {
		if latest, err := o.store.LatestSummary(conv.ID); err != nil {
			log.Printf("orchestrator: load summary for %s: %v", conv.ID, err)
		} else if latest != nil {
			summary = latest.Body
		}
	}

	replyText, fellBack := o.generateWithRetry(ctx, conv.ID, history, summary)

	assistantMsg, err := o.store.AppendMessage(conv.ID, models.RoleAssistant, replyText)
	if err != nil {
		return nil, err
	}

	if o.schedule != nil {
		o.schedule(conv.ID)
	}

	return &TurnResult{
		ConversationID:     conv.ID,
		UserMessageID:      userMsg.ID,
		AssistantMessageID: assistantMsg.ID,
		Reply:              replyText,
		Fallback:           fellBack,
	}, nil
}

// generateWithRetry asks the model for a reply, retrying once before
// returning the canned fallback. The bool reports whether the fallback was
// used.
func (o *Orchestrator) generateWithRetry(ctx context.Context, conversationID string, history []models.Message, summary string) (string, bool) {
	var lastErr error
	for attempt := 0; attempt <= replyRetries; attempt++ {
		reply, err := o.gw.GenerateReply(ctx, history, summary)
		if err == nil {
			return reply.Text, false
		}
		lastErr = err
		log.Printf("orchestrator: reply attempt %d for %s failed: %v", attempt+1, conversationID, err)
	}
	log.Printf("orchestrator: falling back for %s after %d attempts: %v", conversationID, replyRetries+1, lastErr)
	return FallbackReply, true
}

func (o *Orchestrator) minLength() int {
	if o.cfg.MinNewChatLength > 0 {
		return o.cfg.MinNewChatLength
	}
	return 5
}

// keyLocks serializes work per conversation ID. Entries are never reclaimed;
// the map is bounded by the number of distinct conversations a process
// serves.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyLocks) acquire(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
