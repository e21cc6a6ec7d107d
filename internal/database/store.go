package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"   // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/abnmatch/internal/log"
)

// FileName is the SQLite database file created inside the data directory.
const FileName = "abnmatch.db"

// Store provides access to scraped, registry and match records.
// A Store is safe for concurrent use.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dialect holds backend-specific SQL.
	dialect dialect

	// location is the SQLite file path, or the redacted DSN host for PostgreSQL.
	location string
}

// Options configures SQLite behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Target selects a backend and where to find it.
type Target struct {
	// Driver is DriverSQLite or DriverPostgres. Empty means DriverSQLite.
	Driver string
	// Dir is the SQLite data directory.
	Dir string
	// DSN is the PostgreSQL connection string.
	DSN string
}

// Connect opens the backend described by target.
func Connect(ctx context.Context, target Target, opts Options) (*Store, error) {
	switch strings.ToLower(strings.TrimSpace(target.Driver)) {
	case "", DriverSQLite:
		return Open(target.Dir, opts)
	case DriverPostgres:
		return OpenPostgres(ctx, target.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, target.Driver)
	}
}

// Open opens or creates the SQLite store inside dbDir.
// If CreateIfNotExists is false and the database doesn't exist, ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	return newStore(context.Background(), db, sqliteDialect, dbPath)
}

// OpenPostgres connects to PostgreSQL and creates the schema if needed.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrMissingDSN
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return newStore(ctx, db, postgresDialect, log.RedactDSN(dsn))
}

func newStore(ctx context.Context, db *sql.DB, d dialect, location string) (*Store, error) {
	s := &Store{db: db, dialect: d, location: location}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the backend name.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Location returns the SQLite path or the PostgreSQL DSN without its password.
func (s *Store) Location() string {
	return s.location
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.dialect.schema)
	return err
}

// Counts summarizes table sizes.
type Counts struct {
	Scraped        int `json:"scraped"`
	Registry       int `json:"registry"`
	ActiveRegistry int `json:"active_registry"`
	Matched        int `json:"matched"`
}

// Counts returns the number of rows in each table.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	query := `
	SELECT
		(SELECT COUNT(*) FROM scraped_records),
		(SELECT COUNT(*) FROM registry_records),
		(SELECT COUNT(*) FROM registry_records WHERE UPPER(TRIM(status)) = 'ACTIVE'),
		(SELECT COUNT(*) FROM match_records)
	`

	var c Counts
	err := s.db.QueryRowContext(ctx, query).Scan(&c.Scraped, &c.Registry, &c.ActiveRegistry, &c.Matched)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count records: %w", err)
	}
	return c, nil
}
