package matching

import (
	"testing"

	"github.com/nao1215/abnmatch/internal/model"
)

func registryFixture() []model.RegistryRecord {
	return []model.RegistryRecord{
		{ABN: "11111111111", EntityName: "Blue Sky Mining Pty Ltd", Status: "Active"},
		{ABN: "22222222222", EntityName: "Acme Trading Pty Ltd", Status: "Active"},
		{ABN: "33333333333", EntityName: "Pty Ltd", Status: "Active"},
		{ABN: "44444444444", EntityName: "Acme Traders", Status: "Active"},
		{ABN: "55555555555", EntityName: "ACME TRADING LIMITED", Status: "Active"},
	}
}

// TestNewPool tests that records with empty normalized names are dropped.
func TestNewPool(t *testing.T) {
	t.Parallel()

	p := NewPool(registryFixture())
	if got := p.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}

	var nilPool *Pool
	if got := nilPool.Len(); got != 0 {
		t.Errorf("nil Len() = %d, want 0", got)
	}
}

// TestPoolBest tests best-candidate selection and first-wins tie breaking.
func TestPoolBest(t *testing.T) {
	t.Parallel()

	p := NewPool(registryFixture())

	t.Run("exact normalized match wins and ties keep pool order", func(t *testing.T) {
		t.Parallel()

		best, ok := p.Best("Acme Trading")
		if !ok {
			t.Fatal("Best() ok = false, want true")
		}
		if best.ABN() != "22222222222" {
			t.Errorf("Best().ABN() = %q, want 22222222222", best.ABN())
		}
		if best.Similarity != 1 {
			t.Errorf("Best().Similarity = %v, want 1", best.Similarity)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		t.Parallel()

		if _, ok := p.Best("Pty Ltd"); ok {
			t.Error("Best() ok = true, want false")
		}
	})

	t.Run("empty pool", func(t *testing.T) {
		t.Parallel()

		if _, ok := NewPool(nil).Best("Acme"); ok {
			t.Error("Best() ok = true, want false")
		}
	})
}

// TestPoolRank tests ordering, stability and truncation.
func TestPoolRank(t *testing.T) {
	t.Parallel()

	p := NewPool(registryFixture())

	t.Run("ordered by similarity", func(t *testing.T) {
		t.Parallel()

		got := p.Rank("Acme Trading", 0)
		if len(got) != 4 {
			t.Fatalf("Rank() returned %d candidates, want 4", len(got))
		}
		wantOrder := []string{"22222222222", "55555555555", "44444444444", "11111111111"}
		for i, want := range wantOrder {
			if got[i].ABN() != want {
				t.Errorf("Rank()[%d].ABN() = %q, want %q", i, got[i].ABN(), want)
			}
		}
		for i := 1; i < len(got); i++ {
			if got[i].Similarity > got[i-1].Similarity {
				t.Errorf("Rank() not descending at %d: %v > %v", i, got[i].Similarity, got[i-1].Similarity)
			}
		}
	})

	t.Run("truncated to topN", func(t *testing.T) {
		t.Parallel()

		got := p.Rank("Acme Trading", 2)
		if len(got) != 2 {
			t.Fatalf("Rank() returned %d candidates, want 2", len(got))
		}
	})

	t.Run("package level helper", func(t *testing.T) {
		t.Parallel()

		got := Rank("Blue Sky Mining", registryFixture(), 1)
		if len(got) != 1 || got[0].ABN() != "11111111111" {
			t.Errorf("Rank() = %+v, want Blue Sky Mining first", got)
		}
	})

	t.Run("empty query returns nil", func(t *testing.T) {
		t.Parallel()

		if got := p.Rank("", 5); got != nil {
			t.Errorf("Rank() = %+v, want nil", got)
		}
	})
}
