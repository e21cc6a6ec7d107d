// Package model defines the core data structures used throughout abnmatch.
//
// This package contains the following main types:
//   - ScrapedRecord: A company observation derived from a crawled web page
//   - RegistryRecord: An authoritative Australian Business Register entry
//   - MatchRecord: An asserted correspondence between the two, with method and confidence
//   - RunSummary: The aggregated outcome of one pass over the strategy chain
//
// Models are shared by the store, the matching strategies and the report writers,
// so they live in their own package to keep those packages free of import cycles.
// All types are serializable to JSON for reports, exports and JSONL import.
package model
