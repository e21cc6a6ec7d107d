// Package adjudicate asks an external language model to choose between registry
// candidates for a scraped company record, and interprets its answer.
//
// The package is split into three layers:
//
//   - BuildPrompt renders the record and its ranked candidates as a prompt.
//   - Generator sends a prompt to a model and returns free text. GeminiClient is
//     the production implementation.
//   - Parse and Inspect turn that free text into a Decision, tolerating code
//     fences, surrounding prose and loosely typed fields.
//
// Adjudicator ties the layers together. New returns a Live adjudicator when an
// API key is configured and a Disabled one otherwise, so callers never check
// for credentials themselves.
package adjudicate
