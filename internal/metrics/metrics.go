// Package metrics counts reconciliation runs, degraded sources and reviews.
// The Prometheus recorder can be dumped to a node_exporter textfile after a
// CLI run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/coasterscan/internal/model"
)

// Run outcomes
const (
	OutcomeProposal = "proposal"
	OutcomeNoChange = "no_change"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Recorder receives pipeline events
type Recorder interface {
	RunCompleted(kind model.Kind, outcome string, elapsed time.Duration)
	SourceDegraded(source string)
	ProposalReviewed(status model.ProposalStatus)
}

// Nop discards every event
type Nop struct{}

func (Nop) RunCompleted(model.Kind, string, time.Duration) {}
func (Nop) SourceDegraded(string)                          {}
func (Nop) ProposalReviewed(model.ProposalStatus)          {}

// Prometheus records events into its own registry
type Prometheus struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	degraded *prometheus.CounterVec
	reviews  *prometheus.CounterVec
}

// NewPrometheus creates a recorder with a fresh registry
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coasterscan",
			Name:      "reconcile_runs_total",
			Help:      "Reconciliation runs by entity kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coasterscan",
			Name:      "reconcile_duration_seconds",
			Help:      "Wall time of a reconciliation run.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"kind"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coasterscan",
			Name:      "source_degraded_total",
			Help:      "Source lookups that returned nothing.",
		}, []string{"source"}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coasterscan",
			Name:      "proposals_reviewed_total",
			Help:      "Reviewed proposals by resulting status.",
		}, []string{"status"}),
	}
	p.registry.MustRegister(p.runs, p.duration, p.degraded, p.reviews)
	return p
}

// Registry exposes the underlying registry
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) RunCompleted(kind model.Kind, outcome string, elapsed time.Duration) {
	p.runs.WithLabelValues(string(kind), outcome).Inc()
	p.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (p *Prometheus) SourceDegraded(source string) {
	p.degraded.WithLabelValues(source).Inc()
}

func (p *Prometheus) ProposalReviewed(status model.ProposalStatus) {
	p.reviews.WithLabelValues(string(status)).Inc()
}

// WriteTextfile writes the current values in the text exposition format
func (p *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}
