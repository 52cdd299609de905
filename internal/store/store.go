// Package store persists entities, source-page provenance and change-set
// proposals. Two implementations are provided: an in-memory store for tests
// and one-off runs, and a SQLite store that keeps JSON records in a single
// database file.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/coasterscan/internal/model"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary used by the CLI, the reconciler and the
// review workflow
type Store interface {
	CreateEntity(ctx context.Context, e *model.Entity) error
	GetEntity(ctx context.Context, kind model.Kind, id string) (*model.Entity, error)
	ListEntities(ctx context.Context, kind model.Kind) ([]*model.Entity, error)
	UpdateEntity(ctx context.Context, e *model.Entity) error

	SaveSourcePage(ctx context.Context, p *model.SourcePage) error
	GetSourcePage(ctx context.Context, id string) (*model.SourcePage, error)

	SaveProposal(ctx context.Context, p *model.Proposal) error
	GetProposal(ctx context.Context, id string) (*model.Proposal, error)
	ListProposals(ctx context.Context, filter ProposalFilter) ([]*model.Proposal, error)
	UpdateProposal(ctx context.Context, p *model.Proposal) error

	Close() error
}

// ProposalFilter narrows ListProposals. Zero values match everything.
type ProposalFilter struct {
	Status     model.ProposalStatus
	EntityKind model.Kind
	EntityID   string
}

func (f ProposalFilter) match(p *model.Proposal) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.EntityKind != "" && p.EntityKind != f.EntityKind {
		return false
	}
	if f.EntityID != "" && p.EntityID != f.EntityID {
		return false
	}
	return true
}

// Open returns the store configured by cfg
func Open(cfg model.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		return NewMemory(), nil
	case "", "sqlite":
		return NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported store driver: %q (supported: sqlite, memory)", cfg.Driver)
	}
}

var now = func() time.Time { return time.Now().UTC() }

func newID() string {
	return uuid.NewString()
}

// prepareEntity validates a new entity and fills the managed fields
func prepareEntity(e *model.Entity) error {
	if _, err := model.ParseKind(string(e.Kind)); err != nil {
		return err
	}
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("entity name is required")
	}
	if e.ID == "" {
		e.ID = newID()
	}
	ts := now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = ts
	}
	e.UpdatedAt = ts
	return nil
}

func prepareSourcePage(p *model.SourcePage) {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.FetchedAt.IsZero() {
		p.FetchedAt = now()
	}
	p.Truncate()
}

func prepareProposal(p *model.Proposal) {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = model.StatusPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
}

func copyFields(m model.FieldMap) model.FieldMap {
	if m == nil {
		return nil
	}
	out := make(model.FieldMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneEntity(e *model.Entity) *model.Entity {
	c := *e
	return &c
}

func cloneProposal(p *model.Proposal) *model.Proposal {
	c := *p
	c.Current = copyFields(p.Current)
	c.Suggested = copyFields(p.Suggested)
	if p.ReviewedAt != nil {
		t := *p.ReviewedAt
		c.ReviewedAt = &t
	}
	return &c
}
