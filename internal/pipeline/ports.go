package pipeline

import (
	"context"

	"github.com/nao1215/abnmatch/internal/model"
)

// ScrapedReader provides the unmatched backlog.
type ScrapedReader interface {
	// UnmatchedScraped returns scraped records without a match record, in a
	// stable order.
	UnmatchedScraped(ctx context.Context, filter model.ScrapedFilter) ([]model.ScrapedRecord, error)
}

// RegistryReader provides registry records.
type RegistryReader interface {
	// ActiveRegistry returns every active record with a non-empty name.
	ActiveRegistry(ctx context.Context) ([]model.RegistryRecord, error)

	// RegistryByABN returns records for canonical ABNs in any lifecycle state.
	RegistryByABN(ctx context.Context, abns []string) (map[string]model.RegistryRecord, error)
}

// MatchWriter persists match records.
type MatchWriter interface {
	// InsertMatches appends records, skipping scraped records that already
	// have a match, and returns the number inserted.
	InsertMatches(ctx context.Context, records []model.MatchRecord) (int, error)
}

// StatsReader reports aggregate match statistics.
type StatsReader interface {
	// MatchStats returns count and confidence statistics per method.
	MatchStats(ctx context.Context) ([]model.MethodStats, error)
}

// Store is everything a full pipeline run needs.
type Store interface {
	ScrapedReader
	RegistryReader
	MatchWriter
	StatsReader
}
