package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/abnmatch/internal/adjudicate"
	"github.com/nao1215/abnmatch/internal/model"
)

func active(abn, name string) model.RegistryRecord {
	return model.RegistryRecord{ABN: abn, EntityName: name, Status: "Active", EntityType: "Company", State: "NSW"}
}

// TestDirectStrategy tests identifier matching.
func TestDirectStrategy(t *testing.T) {
	t.Parallel()

	t.Run("spaced identifier matches with fixed confidence", func(t *testing.T) {
		t.Parallel()

		store := newMemStore(
			[]model.ScrapedRecord{{ABN: "12 345 678 901"}},
			[]model.RegistryRecord{active("12345678901", "ACME PTY LTD")},
		)
		s := NewDirectStrategy(store, store, testRecorder(store), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res != (Result{Matched: 1, Candidates: 1}) {
			t.Errorf("Run() = %+v", res)
		}
		m, ok := store.matchFor(1)
		if !ok {
			t.Fatal("no match recorded")
		}
		if m.Confidence != 0.95 || m.Method != model.MethodDirect || m.ABN != "12345678901" {
			t.Errorf("match = %+v", m)
		}
		if !strings.Contains(m.Reasoning, "12 345 678 901") {
			t.Errorf("Reasoning = %q, want raw identifier", m.Reasoning)
		}
	})

	t.Run("invalid and unknown identifiers never match", func(t *testing.T) {
		t.Parallel()

		store := newMemStore(
			[]model.ScrapedRecord{
				{ABN: "1234"},
				{ABN: "99999999999"},
				{CompanyName: "Acme"},
			},
			[]model.RegistryRecord{active("12345678901", "ACME PTY LTD")},
		)
		s := NewDirectStrategy(store, store, testRecorder(store), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res != (Result{Matched: 0, Candidates: 2}) {
			t.Errorf("Run() = %+v, want 0 matched of 2", res)
		}
	})

	t.Run("cancelled registry records still match", func(t *testing.T) {
		t.Parallel()

		cancelled := active("12345678901", "OLD PTY LTD")
		cancelled.Status = "Cancelled"
		store := newMemStore([]model.ScrapedRecord{{ABN: "12345678901"}}, []model.RegistryRecord{cancelled})
		s := NewDirectStrategy(store, store, testRecorder(store), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if err != nil || res.Matched != 1 {
			t.Errorf("Run() = %+v, %v; want one match", res, err)
		}
	})

	t.Run("registry failure aborts the pass", func(t *testing.T) {
		t.Parallel()

		store := newMemStore([]model.ScrapedRecord{{ABN: "12345678901"}}, nil)
		store.registryErr = errors.New("connection refused")
		s := NewDirectStrategy(store, store, testRecorder(store), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if !errors.Is(err, store.registryErr) {
			t.Errorf("Run() error = %v, want registry error", err)
		}
		if res.Candidates != 1 || res.Matched != 0 {
			t.Errorf("Run() = %+v", res)
		}
	})
}

// TestFuzzyStrategy tests threshold-gated name matching.
func TestFuzzyStrategy(t *testing.T) {
	t.Parallel()

	t.Run("suffix variants match", func(t *testing.T) {
		t.Parallel()

		store := newMemStore(
			[]model.ScrapedRecord{{CompanyName: "Acme Pty Ltd"}},
			[]model.RegistryRecord{active("12345678901", "ACME PTY LTD")},
		)
		s := NewFuzzyStrategy(store, store, testRecorder(store), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res.Matched != 1 {
			t.Fatalf("Run() matched = %d, want 1", res.Matched)
		}
		m, _ := store.matchFor(1)
		if m.ABN != "12345678901" || m.Method != model.MethodFuzzy {
			t.Errorf("match = %+v", m)
		}
		if m.Confidence < 0.75 || m.Confidence > 0.95 {
			t.Errorf("Confidence = %v, want within [0.75, 0.95]", m.Confidence)
		}
		if !strings.Contains(m.Reasoning, "similarity: 1.00") || !strings.Contains(m.Reasoning, "ACME PTY LTD") {
			t.Errorf("Reasoning = %q", m.Reasoning)
		}
	})

	t.Run("below threshold is rejected", func(t *testing.T) {
		t.Parallel()

		store := newMemStore(
			[]model.ScrapedRecord{{CompanyName: "Acme Trading"}},
			[]model.RegistryRecord{active("12345678901", "ACME TRADERS")},
		)
		s := NewFuzzyStrategy(store, store, testRecorder(store), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if err != nil || res.Matched != 0 || res.Candidates != 1 {
			t.Errorf("Run() = %+v, %v; want 0 of 1", res, err)
		}
	})

	t.Run("inactive registry records are ignored", func(t *testing.T) {
		t.Parallel()

		gone := active("12345678901", "ACME PTY LTD")
		gone.Status = "Cancelled"
		store := newMemStore([]model.ScrapedRecord{{CompanyName: "Acme"}}, []model.RegistryRecord{gone})
		s := NewFuzzyStrategy(store, store, testRecorder(store), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if err != nil || res.Matched != 0 {
			t.Errorf("Run() = %+v, %v; want no match", res, err)
		}
	})

	t.Run("ties keep the first registry record", func(t *testing.T) {
		t.Parallel()

		store := newMemStore(
			[]model.ScrapedRecord{{CompanyName: "Acme"}},
			[]model.RegistryRecord{active("11111111111", "ACME PTY LTD"), active("22222222222", "ACME LIMITED")},
		)
		s := NewFuzzyStrategy(store, store, testRecorder(store), WithStrategyLogger(discardLogger()), WithWorkers(4))

		if _, err := s.Run(context.Background(), 0); err != nil {
			t.Fatal(err)
		}
		m, _ := store.matchFor(1)
		if m.ABN != "11111111111" {
			t.Errorf("ABN = %q, want first registry record", m.ABN)
		}
	})

	t.Run("second run is idempotent", func(t *testing.T) {
		t.Parallel()

		store := newMemStore(
			[]model.ScrapedRecord{{CompanyName: "Acme Pty Ltd"}, {CompanyName: "Zeta Holdings"}},
			[]model.RegistryRecord{active("12345678901", "ACME PTY LTD")},
		)
		s := NewFuzzyStrategy(store, store, testRecorder(store), WithStrategyLogger(discardLogger()))

		first, err := s.Run(context.Background(), 0)
		if err != nil || first != (Result{Matched: 1, Candidates: 2}) {
			t.Fatalf("first Run() = %+v, %v", first, err)
		}
		second, err := s.Run(context.Background(), 0)
		if err != nil || second != (Result{Matched: 0, Candidates: 1}) {
			t.Errorf("second Run() = %+v, %v; want 0 of 1", second, err)
		}
	})

	t.Run("limit caps candidates", func(t *testing.T) {
		t.Parallel()

		store := newMemStore(
			[]model.ScrapedRecord{{CompanyName: "A"}, {CompanyName: "B"}, {CompanyName: "C"}},
			[]model.RegistryRecord{active("12345678901", "Z")},
		)
		s := NewFuzzyStrategy(store, store, testRecorder(store), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 2)
		if err != nil || res.Candidates != 2 {
			t.Errorf("Run() = %+v, %v; want 2 candidates", res, err)
		}
	})
}

// TestFuzzyConfidence tests the similarity to confidence mapping.
func TestFuzzyConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		similarity float64
		want       float64
	}{
		{similarity: 0.85, want: 0.75},
		{similarity: 0.91, want: 0.78},
		{similarity: 0.95, want: 0.80},
		{similarity: 0.99, want: 0.82},
	}
	for _, tt := range tests {
		if got := FuzzyConfidence(tt.similarity); got != tt.want {
			t.Errorf("FuzzyConfidence(%v) = %v, want %v", tt.similarity, got, tt.want)
		}
	}

	prev := 0.0
	for s := FuzzyThreshold; s <= 1.0; s += 0.001 {
		c := FuzzyConfidence(s)
		if c < prev {
			t.Fatalf("FuzzyConfidence decreased at %v: %v < %v", s, c, prev)
		}
		if c < FuzzyBaseConfidence || c > FuzzyMaxConfidence {
			t.Fatalf("FuzzyConfidence(%v) = %v out of range", s, c)
		}
		prev = c
	}
}

// stubGenerator returns the same response for every prompt.
type stubGenerator struct {
	response string
	calls    int
}

func (g *stubGenerator) Generate(context.Context, string, adjudicate.GenerationConfig) (string, error) {
	g.calls++
	return g.response, nil
}

func liveAdjudicator(gen adjudicate.Generator) *adjudicate.Live {
	return adjudicate.NewLive(gen,
		adjudicate.WithLogger(discardLogger()),
		adjudicate.WithSleeper(func(time.Duration) {}),
	)
}

// TestLLMStrategy tests adjudicated matching.
func TestLLMStrategy(t *testing.T) {
	t.Parallel()

	registry := []model.RegistryRecord{
		active("12345678901", "ACME INDUSTRIAL SUPPLIES PTY LTD"),
		active("98765432109", "ACME HOLDINGS PTY LTD"),
	}

	t.Run("disabled adjudicator does nothing", func(t *testing.T) {
		t.Parallel()

		store := newMemStore([]model.ScrapedRecord{{CompanyName: "Acme"}}, registry)
		s := NewLLMStrategy(store, store, testRecorder(store), adjudicate.Disabled{}, WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if err != nil || res != (Result{}) {
			t.Errorf("Run() = %+v, %v; want zero result", res, err)
		}
	})

	t.Run("accepted answer is recorded with prefix", func(t *testing.T) {
		t.Parallel()

		store := newMemStore([]model.ScrapedRecord{{CompanyName: "Acme Supplies"}}, registry)
		gen := &stubGenerator{response: `{"matched_abn": "12345678901", "confidence": 0.88, "reasoning": "Same trading name"}`}
		s := NewLLMStrategy(store, store, testRecorder(store), liveAdjudicator(gen), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if err != nil || res.Matched != 1 {
			t.Fatalf("Run() = %+v, %v; want one match", res, err)
		}
		m, _ := store.matchFor(1)
		if m.Method != model.MethodLLM || m.Confidence != 0.88 {
			t.Errorf("match = %+v", m)
		}
		if m.Reasoning != LLMReasoningPrefix+"Same trading name" {
			t.Errorf("Reasoning = %q", m.Reasoning)
		}
	})

	t.Run("non json answer records nothing", func(t *testing.T) {
		t.Parallel()

		store := newMemStore([]model.ScrapedRecord{{CompanyName: "Acme Supplies"}}, registry)
		gen := &stubGenerator{response: "no match found"}
		s := NewLLMStrategy(store, store, testRecorder(store), liveAdjudicator(gen), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res != (Result{Matched: 0, Candidates: 1}) {
			t.Errorf("Run() = %+v", res)
		}
		if len(store.matches) != 0 {
			t.Errorf("matches = %+v, want none", store.matches)
		}
		if gen.calls != adjudicate.DefaultMaxRetries+1 {
			t.Errorf("generator calls = %d, want %d", gen.calls, adjudicate.DefaultMaxRetries+1)
		}
	})

	t.Run("identifier outside the candidates is rejected", func(t *testing.T) {
		t.Parallel()

		store := newMemStore([]model.ScrapedRecord{{CompanyName: "Acme"}}, registry)
		gen := &stubGenerator{response: `{"matched_abn": "55555555555", "confidence": 0.99}`}
		s := NewLLMStrategy(store, store, testRecorder(store), liveAdjudicator(gen), WithStrategyLogger(discardLogger()))

		res, err := s.Run(context.Background(), 0)
		if err != nil || res.Matched != 0 {
			t.Errorf("Run() = %+v, %v; want no match", res, err)
		}
	})
}
