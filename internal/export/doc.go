// Package export writes recorded matches, joined with the names they
// connect, as CSV, JSON or XLSX for review outside the store.
package export
