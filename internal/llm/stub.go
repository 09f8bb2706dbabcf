package llm

import (
	"context"
	"sync"
)

// StubClient is a deterministic backend for tests and offline runs.
// Handler, when set, takes precedence over Responses and Response.
type StubClient struct {
	Response  string
	Responses []string // consumed in call order, then Response is used
	Err       error
	Handler   func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func NewStubClient(response string) *StubClient {
	return &StubClient{Response: response}
}

func (s *StubClient) Name() string {
	return ProviderStub
}

func (s *StubClient) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	handler := s.Handler
	var queued *string
	if handler == nil && len(s.Responses) > 0 {
		resp := s.Responses[0]
		s.Responses = s.Responses[1:]
		queued = &resp
	}
	s.mu.Unlock()

	if handler != nil {
		return handler(ctx, prompt)
	}
	if s.Err != nil {
		return "", s.Err
	}
	if queued != nil {
		return *queued, nil
	}
	return s.Response, nil
}

// Prompts returns every prompt received so far.
func (s *StubClient) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

// Calls returns the number of Generate calls.
func (s *StubClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}
