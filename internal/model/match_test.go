package model

import (
	"errors"
	"math"
	"testing"
)

// TestNewMatchRecord tests construction-time validation of match records.
func TestNewMatchRecord(t *testing.T) {
	t.Parallel()

	t.Run("normalizes abn and clamps confidence", func(t *testing.T) {
		t.Parallel()

		m, err := NewMatchRecord(7, "12 345 678 901", MethodLLM, 1.7, "because")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.ABN != "12345678901" {
			t.Errorf("expected normalized ABN, got %q", m.ABN)
		}
		if m.Confidence != 1 {
			t.Errorf("expected confidence clamped to 1, got %v", m.Confidence)
		}
		if m.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("rejects invalid abn", func(t *testing.T) {
		t.Parallel()

		_, err := NewMatchRecord(7, "123", MethodFuzzy, 0.8, "")
		if !errors.Is(err, ErrInvalidABN) {
			t.Errorf("expected ErrInvalidABN, got %v", err)
		}
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		t.Parallel()

		_, err := NewMatchRecord(7, "12345678901", Method("guess"), 0.8, "")
		if !errors.Is(err, ErrUnknownMethod) {
			t.Errorf("expected ErrUnknownMethod, got %v", err)
		}
	})

	t.Run("rejects missing scraped id", func(t *testing.T) {
		t.Parallel()

		_, err := NewMatchRecord(0, "12345678901", MethodDirect, 0.95, "")
		if !errors.Is(err, ErrMissingScrapedID) {
			t.Errorf("expected ErrMissingScrapedID, got %v", err)
		}
	})
}

// TestClampConfidence tests the [0,1] clamp.
func TestClampConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{3, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}

	for _, tt := range tests {
		if got := ClampConfidence(tt.in); got != tt.want {
			t.Errorf("ClampConfidence(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestParseMethod tests the method enumeration round trip from stored labels.
func TestParseMethod(t *testing.T) {
	t.Parallel()

	for _, m := range Methods() {
		got, err := ParseMethod(m.String())
		if err != nil {
			t.Fatalf("ParseMethod(%q) failed: %v", m, err)
		}
		if got != m {
			t.Errorf("ParseMethod(%q) = %q", m, got)
		}
	}

	if _, err := ParseMethod("direct_abn"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod for legacy label, got %v", err)
	}
}

// TestRunSummary tests aggregation helpers.
func TestRunSummary(t *testing.T) {
	t.Parallel()

	s := &RunSummary{}
	if s.MatchRate() != 0 {
		t.Errorf("expected zero match rate for empty summary, got %v", s.MatchRate())
	}

	s.Add(StrategyResult{Strategy: "direct", Matched: 3, Candidates: 4})
	s.Add(StrategyResult{Strategy: "fuzzy", Matched: 1, Candidates: 6, Error: "boom"})

	if s.TotalMatched != 4 || s.TotalCandidates != 10 {
		t.Errorf("unexpected totals: matched=%d candidates=%d", s.TotalMatched, s.TotalCandidates)
	}
	if s.MatchRate() != 40 {
		t.Errorf("expected match rate 40, got %v", s.MatchRate())
	}
	if !s.HasErrors() {
		t.Error("expected HasErrors to be true")
	}
}
