package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/abnmatch/internal/model"
)

// forEachRecord applies fn to every record using up to workers goroutines and
// returns the results in record order. The first error cancels the remaining
// work and is returned with no results.
func forEachRecord[T any](
	ctx context.Context,
	workers int,
	records []model.ScrapedRecord,
	fn func(ctx context.Context, record model.ScrapedRecord) (T, error),
) ([]T, error) {
	results := make([]T, len(records))

	if workers <= 1 {
		for i, record := range records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			v, err := fn(ctx, record)
			if err != nil {
				return nil, err
			}
			results[i] = v
		}
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, record := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := fn(ctx, record)
			if err != nil {
				return err
			}
			// Each goroutine owns results[i].
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
