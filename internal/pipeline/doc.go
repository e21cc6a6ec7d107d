// Package pipeline runs the matching strategies over the unmatched backlog.
//
// Three strategies of increasing cost run in a fixed order:
//
//  1. DirectStrategy matches an ABN printed on the website to the register.
//  2. FuzzyStrategy matches the website's company name to active register names.
//  3. LLMStrategy asks a language model to choose among the closest names.
//
// Each strategy reads only scraped records that have no match yet and writes
// its matches through a Recorder, so a later strategy never sees a record an
// earlier one matched. Strategies are idempotent: running one twice against an
// unchanged store records nothing the second time.
//
// Pipeline orders the strategies, applies per-strategy record limits and
// aggregates a model.RunSummary. Per-record work inside a strategy can be spread
// over several goroutines with errgroup; the default is one worker.
package pipeline
