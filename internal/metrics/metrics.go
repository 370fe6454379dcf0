// Package metrics holds the extraction counters. Each run owns a private
// registry so tests and repeated runs never collide on global state.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

const namespace = "docq"

// Failure reasons reported on UnitsFailed.
const (
	ReasonUnterminatedModule = "unterminated_module"
	ReasonUnbalancedProof    = "unbalanced_proof"
	ReasonIO                 = "io"
)

// Registry bundles the metrics of one run.
type Registry struct {
	reg *prometheus.Registry

	UnitsProcessed   *prometheus.CounterVec
	UnitsFailed      *prometheus.CounterVec
	EntriesExtracted *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	AmbiguousNames   prometheus.Gauge
	StepsResolved    prometheus.Counter
	ValidSteps       prometheus.Counter
	EligibleProofs   prometheus.Counter
}

// New creates a registry with every metric registered.
func New() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		UnitsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_processed_total",
			Help:      "Units processed successfully, by stage.",
		}, []string{"stage"}),
		UnitsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_failed_total",
			Help:      "Units rejected, by stage and reason.",
		}, []string{"stage", "reason"}),
		EntriesExtracted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_extracted_total",
			Help:      "Declarations extracted, by stage and kind.",
		}, []string{"stage", "kind"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_seconds",
			Help:      "Time spent on one unit.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		AmbiguousNames: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ambiguous_names",
			Help:      "Names excluded from the constant index because they are declared more than once.",
		}),
		StepsResolved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_resolved_total",
			Help:      "Proof steps whose premises were resolved.",
		}),
		ValidSteps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valid_steps_total",
			Help:      "Proof steps with an admissible number of premises.",
		}),
		EligibleProofs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligible_proofs_total",
			Help:      "Proofs eligible for the benchmark.",
		}),
	}
}

// Gatherer exposes the registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteFile writes every metric to path in the text exposition format.
func (r *Registry) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// FailureReason maps a unit error to its UnitsFailed label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, rocq.ErrUnterminatedModule):
		return ReasonUnterminatedModule
	case errors.Is(err, rocq.ErrUnbalancedProofBlock):
		return ReasonUnbalancedProof
	default:
		return ReasonIO
	}
}
