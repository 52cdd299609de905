package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/coasterscan/internal/llm"
	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/ppiankov/coasterscan/internal/sources"
)

type stubProvider[R any] struct {
	name    string
	result  *R
	mu      sync.Mutex
	queries []sources.Query
}

func (s *stubProvider[R]) Name() string { return s.name }

func (s *stubProvider[R]) Fetch(ctx context.Context, q sources.Query) *R {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return s.result
}

// scriptedCompleter answers by prompt type; an empty answer means "unavailable"
type scriptedCompleter struct {
	facts      string
	structured string
	summary    string
	summaryErr error
}

func (s *scriptedCompleter) Name() string { return "scripted" }

func (s *scriptedCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	var out string
	switch {
	case strings.HasPrefix(req.User, "Extract facts"):
		out = s.facts
	case strings.HasPrefix(req.User, "The sources below"):
		out = s.structured
	case strings.HasPrefix(req.User, "Write a short"):
		if s.summaryErr != nil {
			return "", s.summaryErr
		}
		out = s.summary
	}
	if out == "" {
		return "", llm.ErrUnavailable
	}
	return out, nil
}

type failingRecorder struct{}

func (failingRecorder) SaveSourcePage(ctx context.Context, p *model.SourcePage) error {
	return errors.New("disk full")
}

func (failingRecorder) SaveProposal(ctx context.Context, p *model.Proposal) error {
	return errors.New("disk full")
}

type countingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	degraded []string
}

func (c *countingMetrics) RunCompleted(kind model.Kind, outcome string, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, outcome)
}

func (c *countingMetrics) SourceDegraded(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.degraded = append(c.degraded, source)
}

func (c *countingMetrics) ProposalReviewed(model.ProposalStatus) {}

// memRecorder keeps everything it is asked to save
type memRecorder struct {
	mu        sync.Mutex
	pages     []*model.SourcePage
	proposals []*model.Proposal
}

func (m *memRecorder) SaveSourcePage(ctx context.Context, p *model.SourcePage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = fmt.Sprintf("page-%d", len(m.pages)+1)
	m.pages = append(m.pages, p)
	return nil
}

func (m *memRecorder) SaveProposal(ctx context.Context, p *model.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = fmt.Sprintf("proposal-%d", len(m.proposals)+1)
	m.proposals = append(m.proposals, p)
	return nil
}
