// Package main provides the entry point for the abnmatch CLI.
//
// abnmatch links business websites found in a web crawl to entries of the
// Australian Business Register. It runs three strategies in order: exact ABN
// lookup, fuzzy company name comparison and, when an API key is configured,
// adjudication of the closest names by a language model.
//
// Usage:
//
//	abnmatch import registry abr.jsonl
//	abnmatch import scraped websites.jsonl
//	abnmatch match
//	abnmatch stats
//
// See --help for all available options.
package main

// main is the entry point for abnmatch.
func main() {
	Execute()
}
