package gateway

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/frontdeskhq/frontdesk/internal/models"
	"github.com/frontdeskhq/frontdesk/internal/mood"
)

// maxSummaryWords caps summary output length.
const maxSummaryWords = 200

// moodHistoryWindow is how many trailing user turns the classifier sees in
// full; earlier turns are counted but omitted.
const moodHistoryWindow = 6

const replySystemPrompt = `You are a friendly, professional customer support assistant for a digital services company.

Rules:
- Help customers with questions about our products, orders, pricing, and services.
- When a customer asks about products or pricing, call the product_lookup tool to get current catalog data. Call it at most once per conversation.
- If product data is unavailable, say so honestly and offer to connect the customer with a human.
- If the customer asks about anything unrelated to our products or their support issue, reply exactly: "I'm sorry, I can only help with questions about our products and services."
- Keep answers concise and concrete. Never invent product names or prices.`

// moodSystemPrompt lists the canonical enumeration so the prompt can never
// drift from what storage accepts.
var moodSystemPrompt = fmt.Sprintf(`You classify the emotional state of a customer in a support conversation.

Respond with exactly one word from this list, lowercase, nothing else:
%s

Base your judgment on the customer's messages only, weighting the most recent messages most heavily.`, joinMoods(mood.All))

const summarySystemPrompt = `You summarize customer support conversations for staff review.

Write a factual summary of at most 200 words covering: what the customer wants, what has been discussed, any products mentioned, and the current state of the issue. If a previous summary is provided, fold its content into the new summary rather than discarding it. Output plain text only.`

// buildReplyMessages converts stored history into the model message list,
// prepending the persona and, when configured, the rolling summary.
func buildReplyMessages(history []models.Message, summary string) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, schema.SystemMessage(replySystemPrompt))
	if summary != "" {
		msgs = append(msgs, schema.SystemMessage("Summary of the conversation so far:\n"+summary))
	}
	for _, m := range history {
		switch m.Role {
		case models.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(m.Body, nil))
		default:
			msgs = append(msgs, schema.UserMessage(m.Body))
		}
	}
	return msgs
}

// buildMoodPrompt renders the customer's turns for classification. Only
// user-authored messages are included; older ones beyond the window are
// summarized as a count so recent turns dominate.
func buildMoodPrompt(history []models.Message) string {
	var userTurns []string
	for _, m := range history {
		if m.Role == models.RoleUser {
			userTurns = append(userTurns, m.Body)
		}
	}

	var b strings.Builder
	if dropped := len(userTurns) - moodHistoryWindow; dropped > 0 {
		fmt.Fprintf(&b, "(%d earlier customer messages omitted)\n", dropped)
		userTurns = userTurns[dropped:]
	}
	for i, turn := range userTurns {
		fmt.Fprintf(&b, "Customer message %d: %s\n", i+1, turn)
	}
	if b.Len() == 0 {
		b.WriteString("(no customer messages yet)\n")
	}
	b.WriteString("\nCurrent mood:")
	return b.String()
}

// buildSummaryPrompt renders the full transcript plus any previous summary.
func buildSummaryPrompt(history []models.Message, previous string) string {
	var b strings.Builder
	if previous != "" {
		b.WriteString("Previous summary:\n")
		b.WriteString(previous)
		b.WriteString("\n\n")
	}
	b.WriteString("Transcript:\n")
	for _, m := range history {
		speaker := "Customer"
		if m.Role == models.RoleAssistant {
			speaker = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, m.Body)
	}
	return b.String()
}

// clampWords truncates s to at most n words, appending an ellipsis when
// content was dropped.
func clampWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + "…"
}

func joinMoods(moods []mood.Mood) string {
	parts := make([]string, len(moods))
	for i, m := range moods {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}
