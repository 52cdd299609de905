package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ppiankov/coasterscan/internal/model"
)

// Memory is a Store backed by maps. Records are copied on the way in and out.
type Memory struct {
	mu        sync.RWMutex
	entities  map[string]*model.Entity
	pages     map[string]*model.SourcePage
	proposals map[string]*model.Proposal
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		entities:  make(map[string]*model.Entity),
		pages:     make(map[string]*model.SourcePage),
		proposals: make(map[string]*model.Proposal),
	}
}

func entityKey(kind model.Kind, id string) string {
	return string(kind) + "/" + id
}

// CreateEntity stores a new entity, assigning an id when empty
func (m *Memory) CreateEntity(ctx context.Context, e *model.Entity) error {
	if err := prepareEntity(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entityKey(e.Kind, e.ID)
	if _, ok := m.entities[key]; ok {
		return fmt.Errorf("%s %s already exists", e.Kind, e.ID)
	}
	m.entities[key] = cloneEntity(e)
	return nil
}

// GetEntity returns the entity or ErrNotFound
func (m *Memory) GetEntity(ctx context.Context, kind model.Kind, id string) (*model.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entities[entityKey(kind, id)]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return cloneEntity(e), nil
}

// ListEntities returns entities of a kind sorted by name
func (m *Memory) ListEntities(ctx context.Context, kind model.Kind) ([]*model.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Entity, 0)
	for _, e := range m.entities {
		if e.Kind == kind {
			out = append(out, cloneEntity(e))
		}
	}
	sortEntities(out)
	return out, nil
}

// UpdateEntity replaces an existing entity
func (m *Memory) UpdateEntity(ctx context.Context, e *model.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entityKey(e.Kind, e.ID)
	old, ok := m.entities[key]
	if !ok {
		return fmt.Errorf("%s %s: %w", e.Kind, e.ID, ErrNotFound)
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = now()
	m.entities[key] = cloneEntity(e)
	return nil
}

// SaveSourcePage stores a provenance record
func (m *Memory) SaveSourcePage(ctx context.Context, p *model.SourcePage) error {
	prepareSourcePage(p)
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *p
	m.pages[p.ID] = &c
	return nil
}

// GetSourcePage returns a provenance record or ErrNotFound
func (m *Memory) GetSourcePage(ctx context.Context, id string) (*model.SourcePage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pages[id]
	if !ok {
		return nil, fmt.Errorf("source page %s: %w", id, ErrNotFound)
	}
	c := *p
	return &c, nil
}

// SaveProposal stores a new proposal
func (m *Memory) SaveProposal(ctx context.Context, p *model.Proposal) error {
	prepareProposal(p)
	m.mu.Lock()
	defer m.mu.Unlock()

	m.proposals[p.ID] = cloneProposal(p)
	return nil
}

// GetProposal returns a proposal or ErrNotFound
func (m *Memory) GetProposal(ctx context.Context, id string) (*model.Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.proposals[id]
	if !ok {
		return nil, fmt.Errorf("proposal %s: %w", id, ErrNotFound)
	}
	return cloneProposal(p), nil
}

// ListProposals returns matching proposals, newest first
func (m *Memory) ListProposals(ctx context.Context, filter ProposalFilter) ([]*model.Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Proposal, 0)
	for _, p := range m.proposals {
		if filter.match(p) {
			out = append(out, cloneProposal(p))
		}
	}
	sortProposals(out)
	return out, nil
}

// UpdateProposal replaces an existing proposal
func (m *Memory) UpdateProposal(ctx context.Context, p *model.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.proposals[p.ID]; !ok {
		return fmt.Errorf("proposal %s: %w", p.ID, ErrNotFound)
	}
	m.proposals[p.ID] = cloneProposal(p)
	return nil
}

// Close is a no-op
func (m *Memory) Close() error { return nil }

func sortEntities(es []*model.Entity) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Name != es[j].Name {
			return es[i].Name < es[j].Name
		}
		return es[i].ID < es[j].ID
	})
}

func sortProposals(ps []*model.Proposal) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ID < ps[j].ID
	})
}

var _ Store = (*Memory)(nil)
