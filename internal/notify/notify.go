// Package notify escalates conversations that need human attention to chat
// platforms (Slack, Discord).
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/frontdeskhq/frontdesk/internal/config"
)

// Escalation describes a conversation flagged for staff attention.
type Escalation struct {
	ConversationID string
	CustomerName   string
	Mood           string
	// LastMessage is the customer message that triggered the escalation.
	LastMessage string
}

// Notifier delivers an escalation to one destination.
type Notifier interface {
	// Name identifies the destination in logs.
	Name() string

	// Notify delivers the escalation.
	Notify(ctx context.Context, esc Escalation) error
}

// Dispatcher fans an escalation out to every configured notifier. Delivery
// failures are logged per destination; one destination failing never blocks
// the others.
type Dispatcher struct {
	notifiers []Notifier
}

// NewDispatcher builds a Dispatcher from config. Destinations with no token
// configured are skipped; an empty config yields a dispatcher that delivers
// nowhere.
func NewDispatcher(cfg config.NotifyConfig) *Dispatcher {
	d := &Dispatcher{}
	if cfg.Slack.BotToken != "" {
		d.notifiers = append(d.notifiers, NewSlackNotifier(cfg.Slack))
	}
	if cfg.Discord.BotToken != "" {
		n, err := NewDiscordNotifier(cfg.Discord)
		if err != nil {
			log.Printf("notify: discord disabled: %v", err)
		} else {
			d.notifiers = append(d.notifiers, n)
		}
	}
	return d
}

// Add registers an extra notifier. Tests use this to inject mocks.
func (d *Dispatcher) Add(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Len reports how many destinations are configured.
func (d *Dispatcher) Len() int {
	return len(d.notifiers)
}

// Dispatch sends the escalation to all destinations.
func (d *Dispatcher) Dispatch(ctx context.Context, esc Escalation) {
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, esc); err != nil {
			log.Printf("notify: %s: deliver escalation for %s: %v", n.Name(), esc.ConversationID, err)
		}
	}
}

// formatEscalation renders the shared plain-text escalation message.
func formatEscalation(esc Escalation) string {
	return fmt.Sprintf("Customer escalation: %s is %s.\nConversation: %s\nLast message: %s",
		esc.CustomerName, esc.Mood, esc.ConversationID, esc.LastMessage)
}
