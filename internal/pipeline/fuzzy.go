package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/nao1215/abnmatch/internal/matching"
	"github.com/nao1215/abnmatch/internal/model"
)

const (
	// FuzzyThreshold is the minimum similarity for a fuzzy match.
	FuzzyThreshold = 0.85

	// FuzzyBaseConfidence is the confidence of a match exactly at the threshold.
	FuzzyBaseConfidence = 0.75

	// FuzzyMaxConfidence caps fuzzy confidence.
	FuzzyMaxConfidence = 0.95
)

// FuzzyConfidence maps a similarity at or above FuzzyThreshold to a match
// confidence in [0.75, 0.95], rounded to two decimals. It is non-decreasing in
// similarity.
func FuzzyConfidence(similarity float64) float64 {
	c := math.Min(FuzzyMaxConfidence, FuzzyBaseConfidence+(similarity-FuzzyThreshold)*0.5)
	return math.Round(c*100) / 100
}

// FuzzyStrategy matches website company names to active register names.
type FuzzyStrategy struct {
	scraped  ScrapedReader
	registry RegistryReader
	recorder *Recorder
	cfg      strategyConfig
}

// NewFuzzyStrategy creates a FuzzyStrategy.
func NewFuzzyStrategy(scraped ScrapedReader, registry RegistryReader, recorder *Recorder, opts ...StrategyOption) *FuzzyStrategy {
	return &FuzzyStrategy{
		scraped:  scraped,
		registry: registry,
		recorder: recorder,
		cfg:      newStrategyConfig(opts),
	}
}

// Name implements Strategy.
func (s *FuzzyStrategy) Name() string {
	return StrategyFuzzy
}

// Method implements Strategy.
func (s *FuzzyStrategy) Method() model.Method {
	return model.MethodFuzzy
}

// Run implements Strategy. The active registry is fetched once per pass and
// every named, unmatched scraped record is compared against all of it. The best
// scoring registry record is accepted when its similarity reaches
// FuzzyThreshold; on equal scores the first record in registry order wins.
func (s *FuzzyStrategy) Run(ctx context.Context, limit int) (Result, error) {
	records, err := s.scraped.UnmatchedScraped(ctx, model.ScrapedFilter{RequireName: true, Limit: limit})
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch named scraped records: %w", err)
	}
	result := Result{Candidates: len(records)}
	if len(records) == 0 {
		return result, nil
	}

	registry, err := s.registry.ActiveRegistry(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch active registry: %w", err)
	}
	pool := matching.NewPool(activeOnly(registry))
	s.cfg.logger.Debug("fuzzy pool loaded", "records", pool.Len(), "candidates", len(records))

	decided, err := forEachRecord(ctx, s.cfg.workers, records,
		func(_ context.Context, r model.ScrapedRecord) (*model.MatchRecord, error) {
			return s.evaluate(pool, r), nil
		})
	if err != nil {
		return result, err
	}

	result.Matched, err = s.recorder.Record(ctx, compact(decided))
	return result, err
}

func (s *FuzzyStrategy) evaluate(pool *matching.Pool, r model.ScrapedRecord) *model.MatchRecord {
	best, ok := pool.Best(r.CompanyName)
	if !ok || best.Similarity < FuzzyThreshold {
		return nil
	}

	m, err := model.NewMatchRecord(r.ID, best.ABN(), model.MethodFuzzy, FuzzyConfidence(best.Similarity),
		fmt.Sprintf("Fuzzy name match (similarity: %.2f) between '%s' and '%s'",
			best.Similarity, r.CompanyName, best.Record.EntityName))
	if err != nil {
		s.cfg.logger.Warn("discarding fuzzy match", "scraped_id", r.ID, "abn", best.ABN(), "error", err)
		return nil
	}
	return &m
}
