package pipeline

import (
	"context"
	"fmt"

	"github.com/nao1215/abnmatch/internal/model"
)

// DirectConfidence is the confidence of every direct identifier match.
const DirectConfidence = 0.95

// DirectStrategy matches the ABN printed on a website to the register.
type DirectStrategy struct {
	scraped  ScrapedReader
	registry RegistryReader
	recorder *Recorder
	cfg      strategyConfig
}

// NewDirectStrategy creates a DirectStrategy.
func NewDirectStrategy(scraped ScrapedReader, registry RegistryReader, recorder *Recorder, opts ...StrategyOption) *DirectStrategy {
	return &DirectStrategy{
		scraped:  scraped,
		registry: registry,
		recorder: recorder,
		cfg:      newStrategyConfig(opts),
	}
}

// Name implements Strategy.
func (s *DirectStrategy) Name() string {
	return StrategyDirect
}

// Method implements Strategy.
func (s *DirectStrategy) Method() model.Method {
	return model.MethodDirect
}

// Run implements Strategy. Candidates are unmatched scraped records with a
// non-empty ABN field. An ABN that does not normalize to 11 digits never
// matches. Valid ABNs are looked up in one batched query regardless of the
// registry record's lifecycle status.
func (s *DirectStrategy) Run(ctx context.Context, limit int) (Result, error) {
	records, err := s.scraped.UnmatchedScraped(ctx, model.ScrapedFilter{RequireABN: true, Limit: limit})
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch scraped records with an ABN: %w", err)
	}
	result := Result{Candidates: len(records)}
	if len(records) == 0 {
		return result, nil
	}

	normalized := make([]string, len(records))
	lookup := make([]string, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		abn, ok := r.NormalizedABN()
		if !ok {
			s.cfg.logger.Debug("skipping invalid ABN", "scraped_id", r.ID, "abn", r.ABN)
			continue
		}
		normalized[i] = abn
		if _, dup := seen[abn]; !dup {
			seen[abn] = struct{}{}
			lookup = append(lookup, abn)
		}
	}

	found, err := s.registry.RegistryByABN(ctx, lookup)
	if err != nil {
		return result, fmt.Errorf("failed to look up registry ABNs: %w", err)
	}

	matches := make([]model.MatchRecord, 0, len(found))
	for i, r := range records {
		reg, ok := found[normalized[i]]
		if normalized[i] == "" || !ok {
			continue
		}
		m, err := model.NewMatchRecord(r.ID, reg.ABN, model.MethodDirect, DirectConfidence,
			fmt.Sprintf("Direct ABN match: %s found on website matches ABR record %s", r.ABN, reg.ABN))
		if err != nil {
			s.cfg.logger.Warn("discarding direct match", "scraped_id", r.ID, "error", err)
			continue
		}
		matches = append(matches, m)
	}

	result.Matched, err = s.recorder.Record(ctx, matches)
	return result, err
}
