package model

import "time"

// StrategyResult is the outcome of one strategy pass.
type StrategyResult struct {
	// Strategy is the strategy name ("direct", "fuzzy", "llm").
	Strategy string `json:"strategy"`

	// Method is the match method the strategy records.
	Method Method `json:"method"`

	// Matched is the number of match records actually written.
	Matched int `json:"matched"`

	// Candidates is the number of scraped records the strategy evaluated.
	Candidates int `json:"candidates"`

	// Elapsed is the wall-clock duration of the pass.
	Elapsed time.Duration `json:"elapsed"`

	// Error describes why the pass was aborted, if it was.
	Error string `json:"error,omitempty"`
}

// MethodStats summarizes the confidence of all stored matches of one method.
type MethodStats struct {
	Method        Method  `json:"method"`
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`
}

// RunSummary aggregates the results of one orchestrator run.
type RunSummary struct {
	// RunID uniquely identifies the run; it is stamped on every match it records.
	RunID string `json:"run_id"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Strategies holds one result per executed strategy, in execution order.
	Strategies []StrategyResult `json:"strategies"`

	// TotalMatched and TotalCandidates sum the per-strategy counts.
	TotalMatched    int `json:"total_matched"`
	TotalCandidates int `json:"total_candidates"`

	// Methods holds per-method statistics over every stored match.
	Methods []MethodStats `json:"methods,omitempty"`

	// Cancelled is true if the run stopped early because its context ended.
	Cancelled bool `json:"cancelled,omitempty"`
}

// Add appends a strategy result and updates the totals.
func (s *RunSummary) Add(result StrategyResult) {
	s.Strategies = append(s.Strategies, result)
	s.TotalMatched += result.Matched
	s.TotalCandidates += result.Candidates
}

// MatchRate returns TotalMatched/TotalCandidates as a percentage.
// It returns 0 when no candidates were processed.
func (s *RunSummary) MatchRate() float64 {
	if s.TotalCandidates == 0 {
		return 0
	}
	return float64(s.TotalMatched) / float64(s.TotalCandidates) * 100
}

// Elapsed returns the run duration.
func (s *RunSummary) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// HasErrors reports whether any strategy was aborted.
func (s *RunSummary) HasErrors() bool {
	for _, r := range s.Strategies {
		if r.Error != "" {
			return true
		}
	}
	return false
}
