package gateway

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockChatModel is a scripted model.ToolCallingChatModel for tests. Queue
// responses in order; an empty queue yields a canned reply. Also used by
// orchestrator and enrichment tests.
type MockChatModel struct {
	mu     sync.Mutex
	script []mockStep
	calls  []MockCall
}

type mockStep struct {
	msg *schema.Message
	err error
}

// MockCall records one Generate invocation.
type MockCall struct {
	Input      []*schema.Message
	ToolsBound []string // tool names bound via WithTools, nil for the bare model
}

// NewMockChatModel creates an empty scripted model.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// QueueReply scripts a plain assistant reply.
func (m *MockChatModel) QueueReply(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{msg: schema.AssistantMessage(text, nil)})
}

// QueueToolCall scripts an assistant turn that requests a tool invocation.
func (m *MockChatModel) QueueToolCall(id, name, arguments string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{msg: schema.AssistantMessage("", []schema.ToolCall{{
		ID:       id,
		Function: schema.FunctionCall{Name: name, Arguments: arguments},
	}})})
}

// QueueError scripts a provider failure.
func (m *MockChatModel) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{err: err})
}

// Calls returns all recorded Generate invocations.
func (m *MockChatModel) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Generate has run.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *MockChatModel) generate(input []*schema.Message, toolsBound []string) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]*schema.Message, len(input))
	copy(snapshot, input)
	m.calls = append(m.calls, MockCall{Input: snapshot, ToolsBound: toolsBound})

	if len(m.script) == 0 {
		return schema.AssistantMessage("This is a canned support reply.", nil), nil
	}
	step := m.script[0]
	m.script = m.script[1:]
	if step.err != nil {
		return nil, step.err
	}
	return step.msg, nil
}

// Generate pops the next scripted step.
func (m *MockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return m.generate(input, nil)
}

// Stream wraps the next scripted step in a single-element stream.
func (m *MockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.generate(input, nil)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// WithTools returns a view of the mock that records which tools were bound.
func (m *MockChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return &mockBoundModel{parent: m, tools: names}, nil
}

// mockBoundModel is the tool-bound view of a MockChatModel.
type mockBoundModel struct {
	parent *MockChatModel
	tools  []string
}

func (b *mockBoundModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return b.parent.generate(input, b.tools)
}

func (b *mockBoundModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := b.parent.generate(input, b.tools)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (b *mockBoundModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return b.parent.WithTools(tools)
}
