package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/souschef-agent/internal/domain"
)

// mockStep is one scripted response (or error) of the mock client.
type mockStep struct {
	resp *domain.CompletionResponse
	err  error
}

// MockClient is a scriptable CompletionClient for local mode and tests.
// Responses are consumed in FIFO order; once the script is exhausted the
// mock echoes the last user message so local chat keeps working.
type MockClient struct {
	mu    sync.Mutex
	steps []mockStep
	calls int
	reqs  []domain.CompletionRequest
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

// Enqueue scripts a full response, for cases that mix text and tool calls.
func (m *MockClient) Enqueue(resp *domain.CompletionResponse) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{resp: resp})
	return m
}

// EnqueueText scripts a plain text response.
func (m *MockClient) EnqueueText(text string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{resp: &domain.CompletionResponse{Text: text}})
	return m
}

// EnqueueToolCalls scripts a tool-call response.
func (m *MockClient) EnqueueToolCalls(calls ...domain.ToolCall) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{resp: &domain.CompletionResponse{ToolCalls: calls}})
	return m
}

// EnqueueError scripts a failure.
func (m *MockClient) EnqueueError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{err: err})
	return m
}

func (m *MockClient) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.reqs = append(m.reqs, req)

	if len(m.steps) > 0 {
		step := m.steps[0]
		m.steps = m.steps[1:]
		if step.err != nil {
			return nil, step.err
		}
		return step.resp, nil
	}

	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == domain.RoleUser && req.Messages[i].Text != "" {
			last = req.Messages[i].Text
			break
		}
	}
	return &domain.CompletionResponse{
		Text: fmt.Sprintf("You said %q. Tell me what you'd like to cook and I'll help.", last),
	}, nil
}

// CallCount reports how many times Complete ran.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns a copy of the requests seen so far.
func (m *MockClient) Requests() []domain.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.CompletionRequest, len(m.reqs))
	copy(out, m.reqs)
	return out
}
