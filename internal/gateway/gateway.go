// Package gateway wraps the language-model provider behind three
// operations: reply generation (with bounded product-tool calling), mood
// classification, and rolling summarization.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/frontdeskhq/frontdesk/internal/config"
	"github.com/frontdeskhq/frontdesk/internal/models"
	"github.com/frontdeskhq/frontdesk/internal/mood"
)

const (
	// maxModelSteps bounds the generate/tool-call loop per reply so a
	// misbehaving model cannot spin on tool calls. After the cap the model
	// is forced to answer without tools.
	maxModelSteps = 3

	// noProductData is returned to the model when the lookup tool fails or
	// when it requests a second lookup in the same conversation.
	noProductData = `{"success":false,"products":[]}`
)

// Gateway is the language-model capability boundary.
type Gateway struct {
	model   model.ToolCallingChatModel
	lookup  tool.InvokableTool
	timeout time.Duration
}

// Opts holds parameters for creating a Gateway.
type Opts struct {
	Model   model.ToolCallingChatModel // required
	Lookup  tool.InvokableTool         // optional; nil disables product lookup
	Timeout time.Duration              // per-call deadline; defaults to 30s
}

// New creates a Gateway around an existing chat model. Tests inject a mock
// model here.
func New(opts Opts) (*Gateway, error) {
	if opts.Model == nil {
		return nil, fmt.Errorf("gateway: model is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{model: opts.Model, lookup: opts.Lookup, timeout: timeout}, nil
}

// NewFromConfig creates a Gateway backed by an OpenAI-compatible provider.
func NewFromConfig(ctx context.Context, cfg config.LLMConfig, lookup tool.InvokableTool) (*Gateway, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: init chat model: %w", err)
	}
	return New(Opts{
		Model:   chatModel,
		Lookup:  lookup,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}

// Reply is the outcome of one reply generation.
type Reply struct {
	Text       string
	UsedLookup bool
}

// GenerateReply produces the assistant's next turn for a conversation
// history. The model may invoke the product lookup tool at most once; the
// loop is capped at maxModelSteps before a final answer is forced.
func (g *Gateway) GenerateReply(ctx context.Context, history []models.Message, summary string) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msgs := buildReplyMessages(history, summary)

	activeModel := g.model
	lookupName := ""
	if g.lookup != nil {
		info, err := g.lookup.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("gateway: lookup tool info: %w", err)
		}
		lookupName = info.Name
		activeModel, err = g.model.WithTools([]*schema.ToolInfo{info})
		if err != nil {
			return nil, fmt.Errorf("gateway: bind tools: %w", err)
		}
	}

	usedLookup := false
	for step := 0; step < maxModelSteps; step++ {
		stepModel := activeModel
		if usedLookup || step == maxModelSteps-1 {
			// Tool budget spent or last step: force a plain answer.
			stepModel = g.model
		}

		resp, err := stepModel.Generate(ctx, msgs)
		if err != nil {
			return nil, fmt.Errorf("gateway: generate reply: %w", err)
		}
		if len(resp.ToolCalls) == 0 {
			return &Reply{Text: CleanReply(resp.Content), UsedLookup: usedLookup}, nil
		}

		msgs = append(msgs, resp)
		for _, tc := range resp.ToolCalls {
			out := noProductData
			if g.lookup != nil && tc.Function.Name == lookupName && !usedLookup {
				result, err := g.lookup.InvokableRun(ctx, tc.Function.Arguments)
				if err == nil {
					out = result
				}
				usedLookup = true
			}
			msgs = append(msgs, schema.ToolMessage(out, tc.ID))
		}
	}

	// The step budget forces a toolless final call on the last iteration,
	// so reaching this point means the provider kept emitting tool calls
	// through a model that had none bound.
	return nil, fmt.Errorf("gateway: no final answer after %d steps", maxModelSteps)
}

// ClassifyMood classifies the customer's current mood from conversation
// history. The result is always a member of the mood enumeration:
// unparseable model output falls back to neutral.
func (g *Gateway) ClassifyMood(ctx context.Context, history []models.Message) (mood.Mood, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildMoodPrompt(history)
	resp, err := g.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(moodSystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return mood.Neutral, fmt.Errorf("gateway: classify mood: %w", err)
	}
	return mood.Parse(resp.Content), nil
}

// Summarize produces a rolling conversation summary of at most
// maxSummaryWords words, folding in the previous summary when present.
func (g *Gateway) Summarize(ctx context.Context, history []models.Message, previous string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildSummaryPrompt(history, previous)
	resp, err := g.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(summarySystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("gateway: summarize: %w", err)
	}
	return clampWords(CleanReply(resp.Content), maxSummaryWords), nil
}
