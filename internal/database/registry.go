package database

import (
	"context"
	"fmt"

	"github.com/nao1215/abnmatch/internal/model"
)

// lookupChunkSize bounds the number of parameters in one IN (...) lookup.
const lookupChunkSize = 500

const registryColumns = `abn, entity_name, COALESCE(entity_type, ''), COALESCE(status, ''),
	COALESCE(state, ''), COALESCE(postcode, ''), COALESCE(full_address, '')`

// ActiveRegistry returns every active registry record with a non-empty name,
// ordered by ABN so that pool order is stable between runs.
func (s *Store) ActiveRegistry(ctx context.Context) ([]model.RegistryRecord, error) {
	query := `
	SELECT ` + registryColumns + `
	FROM registry_records
	WHERE UPPER(TRIM(status)) = 'ACTIVE'
		AND TRIM(entity_name) <> ''
	ORDER BY abn
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active registry: %w", err)
	}
	defer rows.Close()

	var records []model.RegistryRecord
	for rows.Next() {
		r, err := scanRegistry(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// RegistryByABN returns the registry records for the given canonical ABNs,
// regardless of lifecycle status, keyed by ABN. Unknown ABNs are absent.
func (s *Store) RegistryByABN(ctx context.Context, abns []string) (map[string]model.RegistryRecord, error) {
	found := make(map[string]model.RegistryRecord, len(abns))

	for start := 0; start < len(abns); start += lookupChunkSize {
		chunk := abns[start:min(start+lookupChunkSize, len(abns))]

		query := s.dialect.rebind(`
		SELECT ` + registryColumns + `
		FROM registry_records
		WHERE abn IN (` + placeholders(len(chunk)) + `)`)

		args := make([]any, len(chunk))
		for i, abn := range chunk {
			args[i] = abn
		}

		if err := s.collectRegistry(ctx, query, args, found); err != nil {
			return nil, err
		}
	}

	return found, nil
}

func (s *Store) collectRegistry(ctx context.Context, query string, args []any, into map[string]model.RegistryRecord) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to look up registry records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanRegistry(rows)
		if err != nil {
			return err
		}
		into[r.ABN] = r
	}
	return rows.Err()
}

// UpsertRegistry inserts registry records or updates them by ABN, in one
// transaction. Records whose ABN is not 11 digits are rejected before any write.
func (s *Store) UpsertRegistry(ctx context.Context, records []model.RegistryRecord) (int, error) {
	canonical := make([]string, len(records))
	for i, r := range records {
		abn, ok := model.NormalizeABN(r.ABN)
		if !ok {
			return 0, fmt.Errorf("registry record %d: %w: %q", i, model.ErrInvalidABN, r.ABN)
		}
		canonical[i] = abn
	}

	query := s.dialect.rebind(`
	INSERT INTO registry_records (abn, entity_name, entity_type, status, state, postcode, full_address)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (abn) DO UPDATE SET
		entity_name = excluded.entity_name,
		entity_type = excluded.entity_type,
		status = excluded.status,
		state = excluded.state,
		postcode = excluded.postcode,
		full_address = excluded.full_address
	`)

	return s.inTx(ctx, "registry records", len(records), query, func(i int) []any {
		r := records[i]
		return []any{
			canonical[i],
			r.EntityName,
			nullString(r.EntityType),
			nullString(r.Status),
			nullString(r.State),
			nullString(r.Postcode),
			nullString(r.FullAddress),
		}
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistry(row rowScanner) (model.RegistryRecord, error) {
	var r model.RegistryRecord
	err := row.Scan(&r.ABN, &r.EntityName, &r.EntityType, &r.Status, &r.State, &r.Postcode, &r.FullAddress)
	if err != nil {
		return model.RegistryRecord{}, fmt.Errorf("failed to scan registry record: %w", err)
	}
	return r, nil
}
