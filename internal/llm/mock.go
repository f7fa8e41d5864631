package llm

import (
	"context"
	"errors"
	"sync"
)

// MockResponse is one scripted answer. Text passes through the same
// finishing step as a vendor's output, so a request Schema is enforced.
type MockResponse struct {
	Text  string
	Usage Usage
	// Stop defaults to StopEnd.
	Stop StopReason
	Err  error
}

// Reply scripts a plain text answer.
func Reply(text string) MockResponse {
	return MockResponse{Text: text}
}

// MockProvider replays scripted answers in order and records each request.
// It backs the "mock" provider setting and the tests.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.script) == 0 {
		return nil, &ErrProviderUnavailable{Err: errors.New("mock: no scripted answer left")}
	}

	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	stop := next.Stop
	if stop == "" {
		stop = StopEnd
	}
	return finish(req, next.Text, next.Usage, "mock", stop)
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastPrompt returns the final message of the most recent request.
func (m *MockProvider) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ""
	}
	msgs := m.Calls[len(m.Calls)-1].Messages
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content
}
