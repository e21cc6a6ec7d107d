package model

import "strings"

// ScrapedRecord is a company observation extracted from a web page.
// Records are produced by the extraction tooling and are read-only here.
type ScrapedRecord struct {
	// ID is the store-assigned identifier of the record.
	ID int64 `json:"id"`

	// URL is the page the observation was taken from.
	URL string `json:"url"`

	// Domain is the canonical domain of URL (e.g. "example.com.au").
	Domain string `json:"domain"`

	// CompanyName is the company name observed on the page, if any.
	CompanyName string `json:"company_name,omitempty"`

	// Industry is the industry observed on the page, if any.
	Industry string `json:"industry,omitempty"`

	// ABN is the registry identifier found on the page, as written there.
	// It is free-form ("12 345 678 901") and may be invalid; use NormalizedABN.
	ABN string `json:"abn,omitempty"`

	// Snippet is a short excerpt of the page content (title, meta description, h1).
	Snippet string `json:"snippet,omitempty"`
}

// HasName reports whether the record carries a non-blank company name.
func (r ScrapedRecord) HasName() bool {
	return strings.TrimSpace(r.CompanyName) != ""
}

// HasABN reports whether the record carries a non-blank identifier field.
// The value is not validated; see NormalizedABN.
func (r ScrapedRecord) HasABN() bool {
	return strings.TrimSpace(r.ABN) != ""
}

// NormalizedABN returns the 11-digit form of the observed identifier.
// The second return value is false when the identifier is absent or invalid.
func (r ScrapedRecord) NormalizedABN() (string, bool) {
	return NormalizeABN(r.ABN)
}

// ScrapedFilter selects unmatched scraped records.
// Records that already have a MatchRecord are always excluded.
type ScrapedFilter struct {
	// RequireABN keeps only records with a non-blank identifier field.
	RequireABN bool

	// RequireName keeps only records with a non-blank company name.
	RequireName bool

	// Limit caps the number of returned records. Zero means no cap.
	Limit int
}
