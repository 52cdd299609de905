package reconcile

import (
	"context"

	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/ppiankov/coasterscan/internal/worker"
)

// EntityGetter loads stored entities
type EntityGetter interface {
	GetEntity(ctx context.Context, kind model.Kind, id string) (*model.Entity, error)
}

// StoreRunner reconciles entities by id for the batch worker pool
type StoreRunner struct {
	Reconciler *Reconciler
	Entities   EntityGetter
}

// Run loads the entity and reconciles it
func (s StoreRunner) Run(ctx context.Context, kind model.Kind, id string) (*worker.Outcome, error) {
	e, err := s.Entities.GetEntity(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	res, err := s.Reconciler.Reconcile(ctx, e)
	if err != nil {
		return nil, err
	}

	out := &worker.Outcome{Message: res.Message, Changes: len(res.Diff)}
	if res.Proposal != nil {
		out.ProposalID = res.Proposal.ID
	}
	return out, nil
}

var _ worker.Runner = StoreRunner{}
