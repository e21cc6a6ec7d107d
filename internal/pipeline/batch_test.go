package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/nao1215/abnmatch/internal/model"
)

func numberedRecords(n int) []model.ScrapedRecord {
	out := make([]model.ScrapedRecord, n)
	for i := range out {
		out[i] = model.ScrapedRecord{ID: int64(i + 1)}
	}
	return out
}

// TestForEachRecord tests ordering, concurrency limits and error propagation.
func TestForEachRecord(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{0, 1, 4} {
		t.Run("results keep record order", func(t *testing.T) {
			t.Parallel()

			got, err := forEachRecord(context.Background(), workers, numberedRecords(50),
				func(_ context.Context, r model.ScrapedRecord) (int64, error) {
					return r.ID * 10, nil
				})
			if err != nil {
				t.Fatalf("forEachRecord() error = %v", err)
			}
			for i, v := range got {
				if v != int64(i+1)*10 {
					t.Fatalf("result[%d] = %d, want %d", i, v, (i+1)*10)
				}
			}
		})
	}

	t.Run("respects worker limit", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32
		_, err := forEachRecord(context.Background(), 3, numberedRecords(30),
			func(_ context.Context, _ model.ScrapedRecord) (struct{}, error) {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				running.Add(-1)
				return struct{}{}, nil
			})
		if err != nil {
			t.Fatal(err)
		}
		if peak.Load() > 3 {
			t.Errorf("peak concurrency = %d, want <= 3", peak.Load())
		}
	})

	t.Run("first error is returned without results", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		for _, workers := range []int{1, 4} {
			got, err := forEachRecord(context.Background(), workers, numberedRecords(10),
				func(_ context.Context, r model.ScrapedRecord) (int, error) {
					if r.ID == 5 {
						return 0, boom
					}
					return 1, nil
				})
			if !errors.Is(err, boom) {
				t.Errorf("workers=%d: error = %v, want boom", workers, err)
			}
			if got != nil {
				t.Errorf("workers=%d: results = %v, want nil", workers, got)
			}
		}
	})

	t.Run("cancelled context stops sequential work", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		_, err := forEachRecord(ctx, 1, numberedRecords(5),
			func(_ context.Context, _ model.ScrapedRecord) (int, error) {
				calls++
				return 0, nil
			})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if calls != 0 {
			t.Errorf("calls = %d, want 0", calls)
		}
	})
}
