package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/abnmatch/internal/metrics"
	"github.com/nao1215/abnmatch/internal/model"
)

// DefaultBatchSize is the number of match records written per transaction.
const DefaultBatchSize = 500

// Recorder writes match records in batches. A batch that fails is logged and
// skipped; its records stay unmatched and are picked up again by a later run.
type Recorder struct {
	writer    MatchWriter
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithBatchSize sets the number of records per transaction. Values below one are ignored.
func WithBatchSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithRecorderLogger sets the logger.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithRecorderMetrics sets the metrics sink.
func WithRecorderMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// NewRecorder creates a Recorder that writes through w.
func NewRecorder(w MatchWriter, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		writer:    w,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Record writes records and returns how many were actually inserted. Records
// for scraped records that already have a match are skipped by the store.
// The run ID from ctx, if any, is stamped on every record. The returned error
// joins the failures of individual batches; batches after a failed one are
// still attempted.
func (r *Recorder) Record(ctx context.Context, records []model.MatchRecord) (int, error) {
	runID := RunIDFromContext(ctx)

	inserted := 0
	var errs []error
	for start := 0; start < len(records); start += r.batchSize {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		end := min(start+r.batchSize, len(records))
		batch := make([]model.MatchRecord, end-start)
		copy(batch, records[start:end])
		if runID != "" {
			for i := range batch {
				batch[i].RunID = runID
			}
		}

		n, err := r.writer.InsertMatches(ctx, batch)
		if err != nil {
			r.logger.Error("failed to record match batch",
				"offset", start,
				"size", len(batch),
				"error", err,
			)
			r.metrics.IncRecorderFailure()
			errs = append(errs, fmt.Errorf("batch at offset %d (%d records): %w", start, len(batch), err))
			continue
		}

		inserted += n
		if skipped := len(batch) - n; skipped > 0 {
			r.logger.Debug("skipped records that were already matched",
				"offset", start,
				"skipped", skipped,
			)
		}
	}

	return inserted, errors.Join(errs...)
}
