package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/frontdeskhq/frontdesk/internal/config"
)

// discordSession is the slice of discordgo the notifier uses. Tests
// substitute a mock.
type discordSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts escalations to a Discord channel. Sends go over the
// REST API only; no gateway connection is opened.
type DiscordNotifier struct {
	sess      discordSession
	channelID string
}

// NewDiscordNotifier creates a notifier backed by the real Discord API.
func NewDiscordNotifier(cfg config.DiscordConfig) (*DiscordNotifier, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("notify: discord session: %w", err)
	}
	return &DiscordNotifier{sess: dg, channelID: cfg.ChannelID}, nil
}

// Name implements Notifier.
func (n *DiscordNotifier) Name() string { return "discord" }

// Notify implements Notifier.
func (n *DiscordNotifier) Notify(ctx context.Context, esc Escalation) error {
	if n.channelID == "" {
		return fmt.Errorf("notify: discord channel not configured")
	}
	if _, err := n.sess.ChannelMessageSend(n.channelID, formatEscalation(esc)); err != nil {
		return fmt.Errorf("notify: discord send: %w", err)
	}
	return nil
}
