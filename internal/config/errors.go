package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidDriver is returned when the store driver is neither sqlite nor postgres.
	ErrInvalidDriver = errors.New("invalid database driver: must be sqlite or postgres")

	// ErrMissingDBDir is returned when the sqlite driver has no directory.
	ErrMissingDBDir = errors.New("missing database directory: set --db-dir")

	// ErrMissingDSN is returned when the postgres driver has no connection string.
	ErrMissingDSN = errors.New("missing PostgreSQL DSN: set --dsn or ABNMATCH_DSN")

	// ErrInvalidTimeout is returned when the LLM request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid LLM timeout: must be positive")

	// ErrInvalidRequestsPerMinute is returned when request pacing is negative.
	ErrInvalidRequestsPerMinute = errors.New("invalid requests per minute: must be non-negative")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidLimit is returned when a record cap is negative.
	ErrInvalidLimit = errors.New("invalid limit: must be non-negative")

	// ErrUnknownStrategy is returned for a strategy name other than direct, fuzzy or llm.
	ErrUnknownStrategy = errors.New("unknown strategy: must be direct, fuzzy or llm")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidBatchSize is returned when the write batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")
)
