// Package sample generates synthetic registry and scraped records so the
// matching passes can be tried without the real register or a crawl.
//
// Scraped records are derived from the generated register: some print the
// entity's ABN, some only a variant of its name, and the rest describe
// businesses that are not registered at all.
package sample
