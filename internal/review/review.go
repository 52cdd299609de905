// Package review applies or dismisses pending proposals and performs
// direct edits of stored entities.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/coasterscan/internal/diff"
	"github.com/ppiankov/coasterscan/internal/metrics"
	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/ppiankov/coasterscan/internal/store"
)

var (
	// ErrNotPending is returned when a proposal has already been reviewed
	ErrNotPending = errors.New("proposal is not pending")
	// ErrNoFields is returned by Edit when nothing was given to change
	ErrNoFields = errors.New("no fields to edit")
)

// Service reviews proposals stored in a Store
type Service struct {
	store   store.Store
	metrics metrics.Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a review service. Nil metrics and logger are no-ops.
func NewService(s store.Store, m metrics.Recorder, logger *zap.Logger) *Service {
	if m == nil {
		m = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   s,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Accept applies the proposal to its entity. With fields empty every
// suggested field is applied; otherwise only the named ones. Protected and
// unsuggested fields are ignored. The applied field names are returned.
func (s *Service) Accept(ctx context.Context, id string, fields []string, note string) ([]string, error) {
	p, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	e, err := s.store.GetEntity(ctx, p.EntityKind, p.EntityID)
	if err != nil {
		return nil, fmt.Errorf("load entity: %w", err)
	}

	selected := selectFields(p.Suggested, fields)
	applied, err := e.Apply(selected)
	if err != nil {
		return nil, fmt.Errorf("apply proposal %s: %w", id, err)
	}
	if len(applied) > 0 {
		if err := s.store.UpdateEntity(ctx, e); err != nil {
			return nil, fmt.Errorf("update entity: %w", err)
		}
	}

	if err := s.finish(ctx, p, model.StatusAccepted, note); err != nil {
		return nil, err
	}
	applied = diff.Keys(toMap(applied), model.FieldNames(e.Kind))
	s.logger.Info("proposal accepted", zap.String("proposal_id", id), zap.Strings("fields", applied))
	return applied, nil
}

// Reject marks the proposal rejected without touching the entity
func (s *Service) Reject(ctx context.Context, id, note string) error {
	p, err := s.pending(ctx, id)
	if err != nil {
		return err
	}
	if err := s.finish(ctx, p, model.StatusRejected, note); err != nil {
		return err
	}
	s.logger.Info("proposal rejected", zap.String("proposal_id", id))
	return nil
}

// Edit writes fields straight to a stored entity without a proposal.
// Unknown and system-managed fields are rejected up front. The names of the
// fields whose value changed are returned in display order.
func (s *Service) Edit(ctx context.Context, kind model.Kind, id string, fields model.FieldMap) ([]string, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	for name := range fields {
		if model.IsProtectedField(name) || !model.HasField(kind, name) {
			return nil, fmt.Errorf("cannot edit %s field %q", kind, name)
		}
	}

	e, err := s.store.GetEntity(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	before := e.Fields()
	if _, err := e.Apply(fields); err != nil {
		return nil, fmt.Errorf("edit %s %s: %w", kind, id, err)
	}

	changed := diff.Compute(before, e.Fields())
	if len(changed) == 0 {
		return nil, nil
	}
	if err := s.store.UpdateEntity(ctx, e); err != nil {
		return nil, fmt.Errorf("update entity: %w", err)
	}

	names := diff.Keys(changed, model.FieldNames(kind))
	s.logger.Info("entity edited", zap.String("kind", string(kind)), zap.String("id", id), zap.Strings("fields", names))
	return names, nil
}

func (s *Service) pending(ctx context.Context, id string) (*model.Proposal, error) {
	p, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != model.StatusPending {
		return nil, fmt.Errorf("proposal %s is %s: %w", id, p.Status, ErrNotPending)
	}
	return p, nil
}

func (s *Service) finish(ctx context.Context, p *model.Proposal, status model.ProposalStatus, note string) error {
	reviewed := s.now()
	p.Status = status
	p.ReviewNote = note
	p.ReviewedAt = &reviewed
	if err := s.store.UpdateProposal(ctx, p); err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}
	s.metrics.ProposalReviewed(status)
	return nil
}

func selectFields(suggested model.FieldMap, fields []string) model.FieldMap {
	out := make(model.FieldMap)
	if len(fields) == 0 {
		for k, v := range suggested {
			if !model.IsProtectedField(k) {
				out[k] = v
			}
		}
		return out
	}
	for _, name := range fields {
		if model.IsProtectedField(name) {
			continue
		}
		if v, ok := suggested[name]; ok {
			out[name] = v
		}
	}
	return out
}

func toMap(names []string) model.FieldMap {
	m := make(model.FieldMap, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
