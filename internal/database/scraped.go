package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nao1215/abnmatch/internal/model"
)

// UnmatchedScraped returns scraped records that have no match record yet,
// ordered by id. The filter can require a non-empty ABN field or name.
func (s *Store) UnmatchedScraped(ctx context.Context, filter model.ScrapedFilter) ([]model.ScrapedRecord, error) {
	query := `
	SELECT s.id, s.url, COALESCE(s.domain, ''), COALESCE(s.company_name, ''),
		COALESCE(s.industry, ''), COALESCE(s.abn, ''), COALESCE(s.snippet, '')
	FROM scraped_records s
	WHERE NOT EXISTS (SELECT 1 FROM match_records m WHERE m.scraped_id = s.id)
	`
	args := make([]any, 0, 1)

	if filter.RequireABN {
		query += " AND s.abn IS NOT NULL AND TRIM(s.abn) <> ''"
	}
	if filter.RequireName {
		query += " AND s.company_name IS NOT NULL AND TRIM(s.company_name) <> ''"
	}
	query += " ORDER BY s.id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unmatched scraped records: %w", err)
	}
	defer rows.Close()

	var records []model.ScrapedRecord
	for rows.Next() {
		var r model.ScrapedRecord
		if err := rows.Scan(&r.ID, &r.URL, &r.Domain, &r.CompanyName, &r.Industry, &r.ABN, &r.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan scraped record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// UpsertScraped inserts scraped records or updates them by URL, in one
// transaction. It returns the number of records written.
func (s *Store) UpsertScraped(ctx context.Context, records []model.ScrapedRecord) (int, error) {
	query := s.dialect.rebind(`
	INSERT INTO scraped_records (url, domain, company_name, industry, abn, snippet)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (url) DO UPDATE SET
		domain = excluded.domain,
		company_name = excluded.company_name,
		industry = excluded.industry,
		abn = excluded.abn,
		snippet = excluded.snippet
	`)

	return s.inTx(ctx, "scraped records", len(records), query, func(i int) []any {
		r := records[i]
		return []any{
			strings.TrimSpace(r.URL),
			nullString(r.Domain),
			nullString(r.CompanyName),
			nullString(r.Industry),
			nullString(r.ABN),
			nullString(r.Snippet),
		}
	})
}

// inTx executes query once per argument set inside a single transaction and
// returns the total number of affected rows.
func (s *Store) inTx(ctx context.Context, what string, n int, query string, args func(i int) []any) (int, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for %s: %w", what, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert for %s: %w", what, err)
	}
	defer stmt.Close()

	written := 0
	for i := range n {
		result, err := stmt.ExecContext(ctx, args(i)...)
		if err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", what, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows for %s: %w", what, err)
		}
		written += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", what, err)
	}
	return written, nil
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
