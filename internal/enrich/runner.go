// Package enrich runs post-turn background work: mood classification, the
// rolling summary, and staff escalation. Enrichment is best-effort; a failed
// run never surfaces to the customer, and the sweep picks up anything a
// crashed or restarted process missed.
package enrich

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/frontdeskhq/frontdesk/internal/conversation"
	"github.com/frontdeskhq/frontdesk/internal/models"
	"github.com/frontdeskhq/frontdesk/internal/mood"
	"github.com/frontdeskhq/frontdesk/internal/notify"
)

// runTimeout bounds one enrichment run (two model calls plus writes).
const runTimeout = 2 * time.Minute

// Analyzer is the slice of the gateway enrichment needs.
type Analyzer interface {
	ClassifyMood(ctx context.Context, history []models.Message) (mood.Mood, error)
	Summarize(ctx context.Context, history []models.Message, previous string) (string, error)
}

// Runner executes enrichment for one conversation at a time per
// conversation; concurrent runs on the same ID are serialized so mood
// entries land in turn order.
type Runner struct {
	store    *conversation.Store
	analyzer Analyzer
	dispatch *notify.Dispatcher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	wg    sync.WaitGroup
}

// Opts holds parameters for creating a Runner.
type Opts struct {
	Store    *conversation.Store
	Analyzer Analyzer
	Dispatch *notify.Dispatcher // nil disables escalation
}

// NewRunner creates a Runner.
func NewRunner(opts Opts) (*Runner, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("enrich: store is required")
	}
	if opts.Analyzer == nil {
		return nil, fmt.Errorf("enrich: analyzer is required")
	}
	return &Runner{
		store:    opts.Store,
		analyzer: opts.Analyzer,
		dispatch: opts.Dispatch,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// Schedule starts enrichment for a conversation in the background. Errors
// are logged, not returned; this is the fire-and-forget path called at the
// end of a chat turn.
func (r *Runner) Schedule(conversationID string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if err := r.Run(ctx, conversationID); err != nil {
			log.Printf("enrich: %s: %v", conversationID, err)
		}
	}()
}

// Wait blocks until all scheduled runs finish. Used in shutdown and tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Run enriches one conversation synchronously: classify the customer's
// mood, refresh the rolling summary, and escalate if the mood warrants it.
// The two halves are independent; a classification failure does not block
// the summary.
func (r *Runner) Run(ctx context.Context, conversationID string) error {
	unlock := r.acquire(conversationID)
	defer unlock()

	history, err := r.store.History(conversationID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return nil
	}

	var firstErr error

	if err := r.updateMood(ctx, conversationID, history); err != nil {
		firstErr = err
		log.Printf("enrich: mood for %s: %v", conversationID, err)
	}
	if err := r.updateSummary(ctx, conversationID, history); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		log.Printf("enrich: summary for %s: %v", conversationID, err)
	}
	return firstErr
}

// updateMood classifies the customer's mood, appends it to the mood log,
// and escalates hostile moods to staff.
func (r *Runner) updateMood(ctx context.Context, conversationID string, history []models.Message) error {
	m, err := r.analyzer.ClassifyMood(ctx, history)
	if err != nil {
		return err
	}

	lastUser := lastUserMessage(history)
	messageID := ""
	if lastUser != nil {
		messageID = lastUser.ID
	}
	if err := r.store.RecordMood(conversationID, string(m), messageID); err != nil {
		return err
	}

	if r.dispatch != nil && (m == mood.Angry || m == mood.Frustrated) {
		conv, err := r.store.Get(conversationID)
		if err != nil {
			return err
		}
		esc := notify.Escalation{
			ConversationID: conversationID,
			CustomerName:   conv.CustomerName,
			Mood:           string(m),
		}
		if lastUser != nil {
			esc.LastMessage = lastUser.Body
		}
		r.dispatch.Dispatch(ctx, esc)
	}
	return nil
}

// updateSummary folds the previous summary and the transcript into a new
// summary row.
func (r *Runner) updateSummary(ctx context.Context, conversationID string, history []models.Message) error {
	previous := ""
	if latest, err := r.store.LatestSummary(conversationID); err != nil {
		return err
	} else if latest != nil {
		previous = latest.Body
	}

	text, err := r.analyzer.Summarize(ctx, history, previous)
	if err != nil {
		return err
	}
	return r.store.SaveSummary(conversationID, text)
}

func (r *Runner) acquire(key string) (unlock func()) {
	r.mu.Lock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func lastUserMessage(history []models.Message) *models.Message {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			return &history[i]
		}
	}
	return nil
}
