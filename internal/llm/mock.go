package llm

import (
	"context"
	"fmt"
	"sync"

	"swarm/internal/agent/ports"
)

// MockClient is a scripted LLM client for tests. It replays the configured
// responses in order, repeating the final one once the script is exhausted,
// and records every request it receives.
type MockClient struct {
	mu        sync.Mutex
	model     string
	responses []*ports.CompletionResponse
	err       error
	next      int

	Requests []ports.CompletionRequest
}

// NewMockClient returns a mock that replays responses in order.
func NewMockClient(model string, responses ...*ports.CompletionResponse) *MockClient {
	return &MockClient{model: model, responses: responses}
}

// NewFailingMockClient returns a mock whose Complete always fails with err.
func NewFailingMockClient(model string, err error) *MockClient {
	return &MockClient{model: model, err: err}
}

func (m *MockClient) Model() string { return m.model }

func (m *MockClient) Complete(_ context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("mock: no responses scripted")
	}
	resp := m.responses[m.next]
	if m.next < len(m.responses)-1 {
		m.next++
	}
	return resp, nil
}

// Calls returns how many completions were requested.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
