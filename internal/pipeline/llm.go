package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/abnmatch/internal/adjudicate"
	"github.com/nao1215/abnmatch/internal/matching"
	"github.com/nao1215/abnmatch/internal/metrics"
	"github.com/nao1215/abnmatch/internal/model"
)

// LLMReasoningPrefix marks matches chosen by the language model.
const LLMReasoningPrefix = "AI-determined match: "

// LLMStrategy asks a language model to choose among the closest register names.
type LLMStrategy struct {
	scraped     ScrapedReader
	registry    RegistryReader
	recorder    *Recorder
	adjudicator adjudicate.Adjudicator
	cfg         strategyConfig
}

// NewLLMStrategy creates an LLMStrategy.
func NewLLMStrategy(
	scraped ScrapedReader,
	registry RegistryReader,
	recorder *Recorder,
	adjudicator adjudicate.Adjudicator,
	opts ...StrategyOption,
) *LLMStrategy {
	return &LLMStrategy{
		scraped:     scraped,
		registry:    registry,
		recorder:    recorder,
		adjudicator: adjudicator,
		cfg:         newStrategyConfig(opts),
	}
}

// Name implements Strategy.
func (s *LLMStrategy) Name() string {
	return StrategyLLM
}

// Method implements Strategy.
func (s *LLMStrategy) Method() model.Method {
	return model.MethodLLM
}

// Run implements Strategy. For each named, unmatched scraped record the five
// most similar active registry records are offered to the adjudicator with no
// similarity floor. A record for which the model cannot be reached or answers
// badly stays unmatched. When adjudication is disabled the pass does nothing.
func (s *LLMStrategy) Run(ctx context.Context, limit int) (Result, error) {
	if s.adjudicator == nil || !s.adjudicator.Enabled() {
		s.cfg.logger.Warn("LLM adjudication is disabled; set GEMINI_API_KEY to enable it")
		return Result{}, nil
	}

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

	decided, err := forEachRecord(ctx, s.cfg.workers, records,
		func(ctx context.Context, r model.ScrapedRecord) (*model.MatchRecord, error) {
			return s.evaluate(ctx, pool, r)
		})
	if err != nil {
		return result, err
	}

	result.Matched, err = s.recorder.Record(ctx, compact(decided))
	return result, err
}

func (s *LLMStrategy) evaluate(ctx context.Context, pool *matching.Pool, r model.ScrapedRecord) (*model.MatchRecord, error) {
	candidates := pool.Rank(r.CompanyName, adjudicate.MaxCandidates)
	if len(candidates) == 0 {
		return nil, nil
	}

	decision, err := s.adjudicator.Adjudicate(ctx, r, candidates)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, adjudicate.ErrDisabled) {
			return nil, err
		}
		s.cfg.logger.Warn("adjudication failed; leaving record unmatched",
			"scraped_id", r.ID,
			"error", err,
		)
		s.cfg.metrics.IncAdjudication(metrics.AdjudicationFailed)
		return nil, nil
	}
	if decision == nil {
		s.cfg.metrics.IncAdjudication(metrics.AdjudicationDeclined)
		return nil, nil
	}

	m, err := model.NewMatchRecord(r.ID, decision.ABN, model.MethodLLM, decision.Confidence,
		LLMReasoningPrefix+decision.Reasoning)
	if err != nil {
		s.cfg.logger.Warn("discarding adjudicated match", "scraped_id", r.ID, "error", err)
		s.cfg.metrics.IncAdjudication(metrics.AdjudicationDeclined)
		return nil, nil
	}
	s.cfg.metrics.IncAdjudication(metrics.AdjudicationAccepted)
	return &m, nil
}
