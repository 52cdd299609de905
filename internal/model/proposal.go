package model

import "time"

// ProposalStatus is the review state of a proposal
type ProposalStatus string

const (
	StatusPending  ProposalStatus = "pending"
	StatusAccepted ProposalStatus = "accepted"
	StatusRejected ProposalStatus = "rejected"
)

// Proposal is a reviewable change-set produced by a reconciliation run
type Proposal struct {
	ID         string         `json:"id"`
	EntityKind Kind           `json:"entity_kind"`
	EntityID   string         `json:"entity_id"`
	SourceURL  string         `json:"source_url"`
	Current    FieldMap       `json:"current"`
	Suggested  FieldMap       `json:"suggested"`
	Status     ProposalStatus `json:"status"`
	ReviewNote string         `json:"review_note,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`
}
