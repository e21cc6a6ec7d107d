package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/abnmatch/internal/metrics"
	"github.com/nao1215/abnmatch/internal/model"
)

// Strategy names used in selections and summaries.
const (
	StrategyDirect = "direct"
	StrategyFuzzy  = "fuzzy"
	StrategyLLM    = "llm"
)

// StrategyNames returns every strategy name in priority order.
func StrategyNames() []string {
	return []string{StrategyDirect, StrategyFuzzy, StrategyLLM}
}

// Strategy is one matching algorithm in the priority chain.
type Strategy interface {
	// Name returns the strategy name (e.g. "fuzzy").
	Name() string

	// Method returns the method label stamped on the strategy's matches.
	Method() model.Method

	// Run evaluates up to limit unmatched scraped records (zero means no limit)
	// and records the matches it accepts. A non-nil error means the pass was
	// aborted or some matches could not be written; the Result still reports
	// what was done.
	Run(ctx context.Context, limit int) (Result, error)
}

// Result counts the work of one strategy pass.
type Result struct {
	// Matched is the number of match records actually written.
	Matched int
	// Candidates is the number of scraped records evaluated.
	Candidates int
}

// priority returns the position of a method in the fixed strategy order.
func priority(m model.Method) int {
	for i, method := range model.Methods() {
		if method == m {
			return i
		}
	}
	return len(model.Methods())
}

// strategyConfig holds the settings shared by every strategy.
type strategyConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	workers int
}

// StrategyOption configures a strategy.
type StrategyOption func(*strategyConfig)

// WithStrategyLogger sets the logger used by a strategy.
func WithStrategyLogger(logger *slog.Logger) StrategyOption {
	return func(c *strategyConfig) {
		c.logger = logger
	}
}

// WithStrategyMetrics sets the metrics sink used by a strategy.
func WithStrategyMetrics(m *metrics.Metrics) StrategyOption {
	return func(c *strategyConfig) {
		c.metrics = m
	}
}

// WithWorkers sets how many records a strategy evaluates concurrently.
// Values below one are ignored.
func WithWorkers(n int) StrategyOption {
	return func(c *strategyConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

func newStrategyConfig(opts []StrategyOption) strategyConfig {
	c := strategyConfig{workers: 1}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// activeOnly drops records the store returned that are not active.
func activeOnly(records []model.RegistryRecord) []model.RegistryRecord {
	out := records[:0:0]
	for _, r := range records {
		if r.IsActive() && r.HasName() {
			out = append(out, r)
		}
	}
	return out
}

// compact drops nil results and dereferences the rest.
func compact(results []*model.MatchRecord) []model.MatchRecord {
	out := make([]model.MatchRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
