package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Method identifies the strategy that produced a match.
type Method string

const (
	// MethodDirect is an exact identifier match between the page and the register.
	MethodDirect Method = "direct_identifier"

	// MethodFuzzy is an approximate company name match above the similarity threshold.
	MethodFuzzy Method = "fuzzy_name"

	// MethodLLM is a match adjudicated by the external inference service.
	MethodLLM Method = "llm"
)

// Methods returns all methods in strategy priority order.
func Methods() []Method {
	return []Method{MethodDirect, MethodFuzzy, MethodLLM}
}

// ParseMethod converts a stored method label into a Method.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// String returns the stored label of the method.
func (m Method) String() string {
	return string(m)
}

var (
	// ErrInvalidABN is returned when a match would reference an identifier
	// that does not normalize to 11 digits.
	ErrInvalidABN = errors.New("invalid ABN: must contain exactly 11 digits")

	// ErrUnknownMethod is returned for a method label outside the enumeration.
	ErrUnknownMethod = errors.New("unknown match method")

	// ErrMissingScrapedID is returned when a match does not reference a scraped record.
	ErrMissingScrapedID = errors.New("match must reference a scraped record")
)

// MatchRecord asserts that a scraped record corresponds to a registry entry.
// Match records are append-only: they are never updated or deleted.
type MatchRecord struct {
	// ID is the store-assigned identifier. Zero until persisted.
	ID int64 `json:"id,omitempty"`

	// ScrapedID references the matched ScrapedRecord.
	ScrapedID int64 `json:"scraped_id"`

	// ABN references the matched RegistryRecord, always in 11-digit form.
	ABN string `json:"abn"`

	// Method is the strategy that produced the match.
	Method Method `json:"method"`

	// Confidence is the match confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Reasoning is a human-readable justification for auditing.
	Reasoning string `json:"reasoning"`

	// RunID identifies the orchestrator run that created the match.
	RunID string `json:"run_id,omitempty"`

	// CreatedAt is when the match was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// NewMatchRecord builds a validated MatchRecord. The ABN is normalized and must be
// valid, the method must be known, and confidence is clamped into [0,1].
func NewMatchRecord(scrapedID int64, abn string, method Method, confidence float64, reasoning string) (MatchRecord, error) {
	if scrapedID <= 0 {
		return MatchRecord{}, ErrMissingScrapedID
	}
	normalized, ok := NormalizeABN(abn)
	if !ok {
		return MatchRecord{}, fmt.Errorf("%w: %q", ErrInvalidABN, abn)
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return MatchRecord{}, err
	}
	return MatchRecord{
		ScrapedID:  scrapedID,
		ABN:        normalized,
		Method:     method,
		Confidence: ClampConfidence(confidence),
		Reasoning:  reasoning,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ClampConfidence clamps c into [0,1]. NaN is treated as zero confidence.
func ClampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c):
		return 0
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// MatchDetail is a MatchRecord joined with the names it connects, used for
// exports and reports.
type MatchDetail struct {
	Match MatchRecord `json:"match"`
	// URL is the scraped record's source URL.
	URL string `json:"url"`
	// CompanyName is the name observed on the website.
	CompanyName string `json:"company_name"`
	// EntityName is the registry name of the matched identifier.
	EntityName string `json:"entity_name"`
	// State is the registry jurisdiction of the matched identifier.
	State string `json:"state"`
}
