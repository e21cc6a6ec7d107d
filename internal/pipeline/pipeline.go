package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/abnmatch/internal/metrics"
	"github.com/nao1215/abnmatch/internal/model"
)

// DefaultLimits returns the per-strategy record caps used when a selection
// sets no limit. Zero means unbounded.
func DefaultLimits() map[string]int {
	return map[string]int{
		StrategyDirect: 0,
		StrategyFuzzy:  10000,
		StrategyLLM:    100,
	}
}

// Selection restricts a run.
type Selection struct {
	// Strategies names the strategies to run. Empty means all. The fixed
	// priority order applies whatever order the names are given in.
	Strategies []string

	// Limit caps the records each strategy evaluates. Zero applies the
	// per-strategy defaults.
	Limit int
}

// Pipeline orchestrates the strategies of one run.
type Pipeline struct {
	// strategies contains the registered strategies in priority order.
	strategies []Strategy

	// stats provides per-method statistics after the run.
	stats StatsReader

	// limits holds the default record cap per strategy name.
	limits map[string]int

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// metrics receives per-strategy observations.
	metrics *metrics.Metrics

	// continueOnError determines whether later strategies still run after one fails.
	continueOnError bool

	// now returns the current time.
	now func() time.Time
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithLimits overrides the default record cap of the named strategies.
func WithLimits(limits map[string]int) Option {
	return func(p *Pipeline) {
		for name, limit := range limits {
			p.limits[name] = limit
		}
	}
}

// WithContinueOnError controls whether a failed strategy stops the chain.
// The default is to continue, since each strategy only sees records that
// earlier ones left unmatched.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a Pipeline. stats may be nil, in which case summaries carry no
// per-method statistics.
func New(stats StatsReader, opts ...Option) *Pipeline {
	p := &Pipeline{
		strategies:      make([]Strategy, 0, len(model.Methods())),
		stats:           stats,
		limits:          DefaultLimits(),
		continueOnError: true,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStrategy registers a strategy. Strategies always run in priority order
// (direct, fuzzy, llm) regardless of the order they are added in.
func (p *Pipeline) AddStrategy(s Strategy) {
	p.strategies = append(p.strategies, s)
	slices.SortStableFunc(p.strategies, func(a, b Strategy) int {
		return priority(a.Method()) - priority(b.Method())
	})
}

// AddStrategies registers several strategies.
func (p *Pipeline) AddStrategies(strategies ...Strategy) {
	for _, s := range strategies {
		p.AddStrategy(s)
	}
}

// StrategyNames returns the names of the registered strategies in execution order.
func (p *Pipeline) StrategyNames() []string {
	names := make([]string, len(p.strategies))
	for i, s := range p.strategies {
		names[i] = s.Name()
	}
	return names
}

// Execute runs the selected strategies in priority order and returns the run
// summary. A strategy error is recorded in the summary and, by default, the
// chain continues. If ctx ends, the remaining strategies are skipped, the
// summary is marked cancelled and ctx.Err() is returned with it.
func (p *Pipeline) Execute(ctx context.Context, sel Selection) (*model.RunSummary, error) {
	selected, err := p.selected(sel.Strategies)
	if err != nil {
		return nil, err
	}

	summary := &model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
	}
	ctx = WithRunID(ctx, summary.RunID)

	p.logger.Info("starting run",
		"run_id", summary.RunID,
		"strategies", names(selected),
	)

	var runErr error
	for _, s := range selected {
		// Check for cancellation before starting each strategy
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run cancelled", "strategy", s.Name(), "reason", err)
			summary.Cancelled = true
			runErr = err
			break
		}

		limit := p.limitFor(s.Name(), sel.Limit)
		p.logger.Info("executing strategy", "strategy", s.Name(), "limit", limit)

		start := p.now()
		res, err := s.Run(ctx, limit)
		result := model.StrategyResult{
			Strategy:   s.Name(),
			Method:     s.Method(),
			Matched:    res.Matched,
			Candidates: res.Candidates,
			Elapsed:    p.now().Sub(start),
		}

		if err != nil {
			result.Error = err.Error()
			p.logger.Error("strategy failed",
				"strategy", s.Name(),
				"matched", res.Matched,
				"error", err,
			)
		} else {
			p.logger.Info("strategy completed",
				"strategy", s.Name(),
				"matched", res.Matched,
				"candidates", res.Candidates,
				"elapsed", result.Elapsed,
			)
		}

		summary.Add(result)
		p.metrics.ObserveStrategy(result)

		if ctxErr := ctx.Err(); ctxErr != nil {
			summary.Cancelled = true
			runErr = ctxErr
			break
		}
		if err != nil && !p.continueOnError {
			runErr = fmt.Errorf("strategy %s: %w", s.Name(), err)
			break
		}
	}

	summary.FinishedAt = p.now().UTC()

	if p.stats != nil && !summary.Cancelled {
		stats, err := p.stats.MatchStats(ctx)
		if err != nil {
			p.logger.Warn("failed to load match statistics", "error", err)
		} else {
			summary.Methods = stats
		}
	}

	p.logger.Info("run finished",
		"run_id", summary.RunID,
		"matched", summary.TotalMatched,
		"candidates", summary.TotalCandidates,
		"cancelled", summary.Cancelled,
	)

	return summary, runErr
}

// selected returns the registered strategies named in want, in priority order.
func (p *Pipeline) selected(want []string) ([]Strategy, error) {
	if len(p.strategies) == 0 {
		return nil, ErrNoStrategies
	}
	if len(want) == 0 {
		return p.strategies, nil
	}

	wanted := make(map[string]bool, len(want))
	for _, name := range want {
		name = strings.ToLower(strings.TrimSpace(name))
		if !slices.Contains(p.StrategyNames(), name) {
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownStrategy, name, strings.Join(p.StrategyNames(), ", "))
		}
		wanted[name] = true
	}

	out := make([]Strategy, 0, len(wanted))
	for _, s := range p.strategies {
		if wanted[s.Name()] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (p *Pipeline) limitFor(name string, override int) int {
	if override > 0 {
		return override
	}
	return p.limits[name]
}

func names(strategies []Strategy) []string {
	out := make([]string, len(strategies))
	for i, s := range strategies {
		out[i] = s.Name()
	}
	return out
}
