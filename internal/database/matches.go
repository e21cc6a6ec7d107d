package database

import (
	"context"
	"fmt"

	"github.com/nao1215/abnmatch/internal/model"
)

// InsertMatches appends match records in one transaction. A record whose
// scraped_id already has a match is skipped. It returns the number of rows
// actually inserted.
func (s *Store) InsertMatches(ctx context.Context, records []model.MatchRecord) (int, error) {
	query := s.dialect.rebind(`
	INSERT INTO match_records (scraped_id, abn, method, confidence, reasoning, run_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (scraped_id) DO NOTHING
	`)

	return s.inTx(ctx, "match records", len(records), query, func(i int) []any {
		r := records[i]
		return []any{
			r.ScrapedID,
			r.ABN,
			string(r.Method),
			r.Confidence,
			r.Reasoning,
			nullString(r.RunID),
			s.dialect.timeArg(r.CreatedAt),
		}
	})
}

// MatchStats returns count and confidence statistics per method, ordered by method.
func (s *Store) MatchStats(ctx context.Context) ([]model.MethodStats, error) {
	query := `
	SELECT method, COUNT(*), AVG(confidence), MIN(confidence), MAX(confidence)
	FROM match_records
	GROUP BY method
	ORDER BY method
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query match statistics: %w", err)
	}
	defer rows.Close()

	var stats []model.MethodStats
	for rows.Next() {
		var st model.MethodStats
		var method string
		if err := rows.Scan(&method, &st.Count, &st.AvgConfidence, &st.MinConfidence, &st.MaxConfidence); err != nil {
			return nil, fmt.Errorf("failed to scan match statistics: %w", err)
		}
		st.Method = model.Method(method)
		stats = append(stats, st)
	}

	return stats, rows.Err()
}

// MatchFilter narrows ListMatches.
type MatchFilter struct {
	// Method restricts results to one method when non-empty.
	Method model.Method
	// RunID restricts results to one run when non-empty.
	RunID string
	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// ListMatches returns match records joined with the scraped and registry
// names they connect, newest first.
func (s *Store) ListMatches(ctx context.Context, filter MatchFilter) ([]model.MatchDetail, error) {
	query := `
	SELECT m.id, m.scraped_id, m.abn, m.method, m.confidence, COALESCE(m.reasoning, ''),
		COALESCE(m.run_id, ''), m.created_at,
		s.url, COALESCE(s.company_name, ''),
		COALESCE(r.entity_name, ''), COALESCE(r.state, '')
	FROM match_records m
	JOIN scraped_records s ON s.id = m.scraped_id
	LEFT JOIN registry_records r ON r.abn = m.abn
	WHERE 1=1
	`
	args := make([]any, 0, 3)

	if filter.Method != "" {
		query += " AND m.method = ?"
		args = append(args, string(filter.Method))
	}
	if filter.RunID != "" {
		query += " AND m.run_id = ?"
		args = append(args, filter.RunID)
	}
	query += " ORDER BY m.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var details []model.MatchDetail
	for rows.Next() {
		var d model.MatchDetail
		var method string
		var created timestamp
		err := rows.Scan(
			&d.Match.ID,
			&d.Match.ScrapedID,
			&d.Match.ABN,
			&method,
			&d.Match.Confidence,
			&d.Match.Reasoning,
			&d.Match.RunID,
			&created,
			&d.URL,
			&d.CompanyName,
			&d.EntityName,
			&d.State,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		d.Match.Method = model.Method(method)
		d.Match.CreatedAt = created.Time
		details = append(details, d)
	}

	return details, rows.Err()
}
