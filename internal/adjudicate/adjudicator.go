package adjudicate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/abnmatch/internal/matching"
	"github.com/nao1215/abnmatch/internal/model"
)

// DefaultMaxRetries is the number of retries after the first attempt.
const DefaultMaxRetries = 2

var errMalformedResponse = errors.New("malformed model response")

// Adjudicator chooses at most one candidate for a scraped record.
type Adjudicator interface {
	// Enabled reports whether the adjudicator can reach a model.
	Enabled() bool

	// Adjudicate returns the accepted decision, or nil when the model declined,
	// answered with low confidence or named an identifier that was not offered.
	// A non-nil error means no answer could be obtained; callers treat it as
	// no match.
	Adjudicate(ctx context.Context, record model.ScrapedRecord, candidates []matching.Candidate) (*Decision, error)
}

// New returns a Live adjudicator backed by Gemini when cfg carries an API key,
// and a Disabled adjudicator otherwise.
func New(cfg Config, opts ...Option) Adjudicator {
	client, err := NewGeminiClient(cfg)
	if err != nil {
		return Disabled{}
	}

	if cfg.Generation == (GenerationConfig{}) {
		cfg.Generation = DefaultGenerationConfig()
	}
	opts = append([]Option{
		WithMaxRetries(cfg.MaxRetries),
		WithGenerationConfig(cfg.Generation),
	}, opts...)

	return NewLive(client, opts...)
}

// Disabled is the adjudicator used when no model is configured.
type Disabled struct{}

// Enabled always reports false.
func (Disabled) Enabled() bool {
	return false
}

// Adjudicate always returns ErrDisabled.
func (Disabled) Adjudicate(context.Context, model.ScrapedRecord, []matching.Candidate) (*Decision, error) {
	return nil, ErrDisabled
}

// Live asks a Generator to adjudicate and validates the answer.
type Live struct {
	generator  Generator
	generation GenerationConfig
	maxRetries int
	sleeper    func(time.Duration)
	logger     *slog.Logger
}

// Option configures a Live adjudicator.
type Option func(*Live)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Live) {
		l.logger = logger
	}
}

// WithMaxRetries sets the number of retries after the first attempt.
// Negative values are treated as zero.
func WithMaxRetries(retries int) Option {
	return func(l *Live) {
		l.maxRetries = max(retries, 0)
	}
}

// WithGenerationConfig overrides DefaultGenerationConfig.
func WithGenerationConfig(cfg GenerationConfig) Option {
	return func(l *Live) {
		l.generation = cfg
	}
}

// WithSleeper overrides how backoff delays are waited out (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(l *Live) {
		l.sleeper = sleeper
	}
}

// NewLive builds a Live adjudicator around generator.
func NewLive(generator Generator, opts ...Option) *Live {
	l := &Live{
		generator:  generator,
		generation: DefaultGenerationConfig(),
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Enabled always reports true.
func (l *Live) Enabled() bool {
	return true
}

// Adjudicate prompts the model with the record and up to MaxCandidates
// candidates. Transport failures are retried after a delay of 2s, then 3s.
// Malformed answers are retried immediately. Both consume the retry budget.
func (l *Live) Adjudicate(ctx context.Context, record model.ScrapedRecord, candidates []matching.Candidate) (*Decision, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}

	prompt := BuildPrompt(record, candidates)
	attempts := l.maxRetries + 1

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := l.generator.Generate(ctx, prompt, l.generation)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
			l.logger.Warn("adjudication request failed",
				"scraped_id", record.ID,
				"attempt", attempt+1,
				"error", err,
			)
			if attempt < attempts-1 {
				if err := l.sleep(ctx, backoffDelay(attempt)); err != nil {
					return nil, err
				}
			}
			continue
		}

		decision, outcome := Inspect(raw)
		switch outcome {
		case OutcomeAccepted:
			return l.accept(record, decision, candidates), nil
		case OutcomeNoMatch, OutcomeLowConfidence:
			l.logger.Debug("model declined candidates",
				"scraped_id", record.ID,
				"outcome", outcome.String(),
			)
			return nil, nil
		default:
			lastErr = errMalformedResponse
			l.logger.Warn("malformed model response",
				"scraped_id", record.ID,
				"attempt", attempt+1,
				"response", truncateRunes(strings.TrimSpace(raw), maxErrorBodyRunes),
			)
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr)
}

// accept keeps a decision only if it names a valid identifier that was offered.
func (l *Live) accept(record model.ScrapedRecord, d Decision, candidates []matching.Candidate) *Decision {
	abn, ok := model.NormalizeABN(d.ABN)
	if !ok {
		l.logger.Debug("model returned an invalid identifier",
			"scraped_id", record.ID,
			"abn", d.ABN,
		)
		return nil
	}

	for _, c := range candidates {
		if offered, ok := model.NormalizeABN(c.Record.ABN); ok && offered == abn {
			d.ABN = abn
			return &d
		}
	}

	l.logger.Debug("model chose an identifier that was not offered",
		"scraped_id", record.ID,
		"abn", abn,
	)
	return nil
}

// backoffDelay returns the wait before retry number attempt+1.
func backoffDelay(attempt int) time.Duration {
	return 2*time.Second + time.Duration(attempt)*time.Second
}

func (l *Live) sleep(ctx context.Context, delay time.Duration) error {
	if l.sleeper != nil {
		l.sleeper(delay)
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
