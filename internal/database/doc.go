// Package database stores scraped records, registry records and match records.
//
// Two backends share one Store type: an embedded SQLite file (modernc.org/sqlite,
// CGO-free) for local runs and PostgreSQL (github.com/lib/pq) for shared
// deployments. Queries are written once with ? placeholders and rebound for
// PostgreSQL.
//
// match_records carries a UNIQUE constraint on scraped_id and inserts use
// ON CONFLICT DO NOTHING, so two concurrent runs cannot both claim the same
// scraped record.
package database
