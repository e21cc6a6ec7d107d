// Package metrics exposes Prometheus instrumentation for matching runs.
//
// A CLI run is short-lived, so metrics are not scraped. They are either written
// to a node_exporter textfile or pushed to a Pushgateway when the run ends.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/nao1215/abnmatch/internal/model"
)

// DefaultJob is the Pushgateway job name.
const DefaultJob = "abnmatch"

// Adjudication outcomes.
const (
	AdjudicationAccepted = "accepted"
	AdjudicationDeclined = "declined"
	AdjudicationFailed   = "failed"
)

// Metrics provides observability for matching runs. All methods are safe on a
// nil receiver so callers can run without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	// Matches written per strategy
	StrategyMatches *prometheus.CounterVec

	// Scraped records evaluated per strategy
	StrategyCandidates *prometheus.CounterVec

	// Strategy pass duration
	StrategyDuration *prometheus.HistogramVec

	// Aborted strategy passes
	StrategyErrors *prometheus.CounterVec

	// Model answers by outcome
	AdjudicationOutcomes *prometheus.CounterVec

	// Match batches that could not be written
	RecorderFailures prometheus.Counter
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		StrategyMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abnmatch_strategy_matches_total",
			Help: "Match records written by strategy",
		}, []string{"strategy"}),

		StrategyCandidates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abnmatch_strategy_candidates_total",
			Help: "Scraped records evaluated by strategy",
		}, []string{"strategy"}),

		StrategyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "abnmatch_strategy_duration_seconds",
			Help:    "Duration of a strategy pass",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		}, []string{"strategy"}),

		StrategyErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abnmatch_strategy_errors_total",
			Help: "Strategy passes aborted by an error",
		}, []string{"strategy"}),

		AdjudicationOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abnmatch_adjudication_outcomes_total",
			Help: "Model adjudication results by outcome",
		}, []string{"outcome"}), // outcome: "accepted", "declined", "failed"

		RecorderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "abnmatch_recorder_failed_batches_total",
			Help: "Match batches that failed to write",
		}),
	}
}

// Registry returns the registry holding every metric.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStrategy records the outcome of one strategy pass.
func (m *Metrics) ObserveStrategy(r model.StrategyResult) {
	if m == nil {
		return
	}
	m.StrategyMatches.WithLabelValues(r.Strategy).Add(float64(r.Matched))
	m.StrategyCandidates.WithLabelValues(r.Strategy).Add(float64(r.Candidates))
	m.StrategyDuration.WithLabelValues(r.Strategy).Observe(r.Elapsed.Seconds())
	if r.Error != "" {
		m.StrategyErrors.WithLabelValues(r.Strategy).Inc()
	}
}

// IncAdjudication records one model answer.
func (m *Metrics) IncAdjudication(outcome string) {
	if m != nil {
		m.AdjudicationOutcomes.WithLabelValues(outcome).Inc()
	}
}

// IncRecorderFailure records a batch that could not be written.
func (m *Metrics) IncRecorderFailure() {
	if m != nil {
		m.RecorderFailures.Inc()
	}
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// Push sends every metric to the Pushgateway at url under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil {
		return nil
	}
	if job == "" {
		job = DefaultJob
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
