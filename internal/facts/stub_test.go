package facts

import (
	"context"
	"sync"

	"github.com/ppiankov/coasterscan/internal/llm"
)

// stubCompleter returns canned output and records requests
type stubCompleter struct {
	mu       sync.Mutex
	out      string
	err      error
	requests []llm.Request
}

func (s *stubCompleter) Name() string { return "stub" }

func (s *stubCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.out, s.err
}
