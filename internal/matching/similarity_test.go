package matching

import (
	"math"
	"testing"
)

// TestSimilarity tests boundary values and known ratios.
func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "Acme", b: "Acme", want: 1},
		{name: "identical after normalization", a: "Acme Pty Ltd", b: "ACME PTY. LTD.", want: 1},
		{name: "empty left", a: "", b: "Acme", want: 0},
		{name: "empty right", a: "Acme", b: "", want: 0},
		{name: "suffix only normalizes to empty", a: "Pty Ltd", b: "Acme", want: 0},
		{name: "disjoint", a: "ABC", b: "XYZ", want: 0},
		// ACME vs ACNE: A, C, E match -> 2*3/8
		{name: "one substitution", a: "Acme", b: "Acne", want: 0.75},
		// ACME TRADING vs ACME TRADERS: only "ACME TRAD" matches -> 2*9/24
		{name: "trading vs traders", a: "Acme Trading", b: "Acme Traders", want: 18.0 / 24.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestSimilarityRange tests that scores stay within [0,1] and self-similarity is 1.
func TestSimilarityRange(t *testing.T) {
	t.Parallel()

	names := []string{
		"Acme Pty Ltd", "Acme Holdings", "Blue Sky Mining", "Sky Blue Mining Co",
		"Zeta", "A", "The Trustee For The Smith Family Trust", "日本 商事",
	}
	for _, a := range names {
		if got := Similarity(a, a); got != 1 {
			t.Errorf("Similarity(%q, %q) = %v, want 1", a, a, got)
		}
		for _, b := range names {
			got := Similarity(a, b)
			if got < 0 || got > 1 {
				t.Errorf("Similarity(%q, %q) = %v, out of range", a, b, got)
			}
		}
	}
}

// TestNormalizedSimilarityRepeatedRunes tests block matching on inputs with many repeated runes.
func TestNormalizedSimilarityRepeatedRunes(t *testing.T) {
	t.Parallel()

	// AAAB vs AAB: "AAB" matches as one block -> 2*3/7
	got := NormalizedSimilarity("AAAB", "AAB")
	want := 6.0 / 7.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("NormalizedSimilarity() = %v, want %v", got, want)
	}

	// ABAB vs BABA: "ABA" (or "BAB") is the longest block -> 2*3/8
	got = NormalizedSimilarity("ABAB", "BABA")
	want = 0.75
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("NormalizedSimilarity() = %v, want %v", got, want)
	}
}
