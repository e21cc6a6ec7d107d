package database

import "errors"

var (
	// ErrUnsupportedDriver is returned for a driver other than sqlite or postgres.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrDatabaseNotFound is returned when the SQLite file is missing and
	// creation was not requested.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrMissingDSN is returned when the postgres driver is selected without a DSN.
	ErrMissingDSN = errors.New("postgres dsn is required")
)
