// Package matching implements the name comparison primitives used by the
// resolution strategies:
//
//   - NormalizeName canonicalizes a company name (case, legal suffixes, punctuation).
//   - Similarity scores two names in [0,1] with a longest-matching-block ratio.
//   - Pool and Rank order a registry snapshot by similarity to a query name.
//
// Everything here is pure and safe for concurrent use. Thresholds are the
// caller's concern; Rank never filters.
package matching
