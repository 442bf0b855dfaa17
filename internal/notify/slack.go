package notify

import (
	"context"
	"fmt"

	"github.com/frontdeskhq/frontdesk/internal/config"
	slackapi "github.com/slack-go/slack"
)

// slackClient is the slice of the Slack API the notifier uses. Tests
// substitute a mock.
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// SlackNotifier posts escalations to a Slack channel.
type SlackNotifier struct {
	client    slackClient
	channelID string
}

// NewSlackNotifier creates a notifier backed by the real Slack API.
func NewSlackNotifier(cfg config.SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		client:    slackapi.New(cfg.BotToken),
		channelID: cfg.ChannelID,
	}
}

// Name implements Notifier.
func (n *SlackNotifier) Name() string { return "slack" }

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, esc Escalation) error {
	if n.channelID == "" {
		return fmt.Errorf("notify: slack channel not configured")
	}
	_, _, err := n.client.PostMessage(n.channelID, slackapi.MsgOptionText(formatEscalation(esc), false))
	if err != nil {
		return fmt.Errorf("notify: slack post: %w", err)
	}
	return nil
}
