package database

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DriverSQLite selects the embedded SQLite backend.
	DriverSQLite = "sqlite"
	// DriverPostgres selects the PostgreSQL backend.
	DriverPostgres = "postgres"
)

// dialect captures the differences between the two backends.
type dialect struct {
	name   string
	schema string
	// numbered is true when placeholders are $1, $2, ...
	numbered bool
}

var sqliteDialect = dialect{
	name: DriverSQLite,
	schema: `
	-- Observations scraped from websites
	CREATE TABLE IF NOT EXISTS scraped_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		domain TEXT,
		company_name TEXT,
		industry TEXT,
		abn TEXT,
		snippet TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scraped_abn ON scraped_records(abn);

	-- Authoritative register entries keyed by ABN
	CREATE TABLE IF NOT EXISTS registry_records (
		abn TEXT PRIMARY KEY,
		entity_name TEXT NOT NULL,
		entity_type TEXT,
		status TEXT,
		state TEXT,
		postcode TEXT,
		full_address TEXT,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_registry_status ON registry_records(status);

	-- At most one match per scraped record
	CREATE TABLE IF NOT EXISTS match_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scraped_id INTEGER NOT NULL UNIQUE REFERENCES scraped_records(id),
		abn TEXT NOT NULL,
		method TEXT NOT NULL,
		confidence REAL NOT NULL,
		reasoning TEXT,
		run_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_match_method ON match_records(method);
	CREATE INDEX IF NOT EXISTS idx_match_abn ON match_records(abn);
	`,
}

var postgresDialect = dialect{
	name:     DriverPostgres,
	numbered: true,
	schema: `
	CREATE TABLE IF NOT EXISTS scraped_records (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		domain TEXT,
		company_name TEXT,
		industry TEXT,
		abn TEXT,
		snippet TEXT,
		created_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_scraped_abn ON scraped_records(abn);

	CREATE TABLE IF NOT EXISTS registry_records (
		abn TEXT PRIMARY KEY,
		entity_name TEXT NOT NULL,
		entity_type TEXT,
		status TEXT,
		state TEXT,
		postcode TEXT,
		full_address TEXT,
		updated_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_registry_status ON registry_records(status);

	CREATE TABLE IF NOT EXISTS match_records (
		id BIGSERIAL PRIMARY KEY,
		scraped_id BIGINT NOT NULL UNIQUE REFERENCES scraped_records(id),
		abn TEXT NOT NULL,
		method TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		reasoning TEXT,
		run_id TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_match_method ON match_records(method);
	CREATE INDEX IF NOT EXISTS idx_match_abn ON match_records(abn);
	`,
}

// rebind rewrites ? placeholders for dialects with numbered placeholders.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// timeArg converts t to the value stored in created_at columns.
func (d dialect) timeArg(t time.Time) any {
	if d.numbered {
		return t.UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// placeholders returns "?, ?, ..." with n entries.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
