package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/abnmatch/internal/adjudicate"
	"github.com/nao1215/abnmatch/internal/database"
	"github.com/nao1215/abnmatch/internal/pipeline"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "abnmatch"

	// APIKeyEnv is the environment variable holding the inference API key.
	APIKeyEnv = "GEMINI_API_KEY"

	// DSNEnv is the environment variable holding a PostgreSQL DSN.
	DSNEnv = "ABNMATCH_DSN"

	// DefaultWorkers is the number of records evaluated concurrently per pass.
	// One keeps passes sequential, which is what the store and the model
	// quota are sized for.
	DefaultWorkers = 1

	// DefaultLLMTimeout bounds a single request to the inference service.
	DefaultLLMTimeout = 30 * time.Second
)

// Config holds all settings of a run. It is populated from defaults, the
// configuration file, the environment and CLI flags, and then passed down
// explicitly.
type Config struct {
	// Verbose enables debug logging. Otherwise only warnings and errors are logged.
	Verbose bool

	// LogJSON selects JSON log output.
	LogJSON bool

	// ConfigFilePath is the configuration file given with --config.
	ConfigFilePath string

	// Driver is the store backend, "sqlite" or "postgres".
	Driver string

	// DBDir is the directory of the SQLite database file.
	// Defaults to the XDG data directory (~/.local/share/abnmatch on Linux).
	DBDir string

	// DSN is the PostgreSQL connection string. Required when Driver is postgres.
	DSN string

	// APIKey enables LLM adjudication. Empty disables it.
	APIKey string

	// LLMModel is the Gemini model name.
	LLMModel string

	// LLMBaseURL is the Gemini API endpoint.
	LLMBaseURL string

	// LLMTimeout bounds a single inference request.
	LLMTimeout time.Duration

	// RequestsPerMinute paces inference requests. Zero disables pacing.
	RequestsPerMinute int

	// MaxRetries is the number of extra attempts per adjudication.
	MaxRetries int

	// Strategies restricts a run to the named strategies. Empty runs all.
	Strategies []string

	// Limit caps every strategy when positive; otherwise Limits applies.
	Limit int

	// Limits is the per-strategy default cap. Zero means unbounded.
	Limits map[string]int

	// Workers is the number of records evaluated concurrently by the
	// fuzzy and llm passes.
	Workers int

	// BatchSize is the number of matches written per transaction.
	BatchSize int

	// StopOnError stops the run after the first failed strategy.
	StopOnError bool

	// MetricsTextfile, when set, receives the run's metrics in the
	// node_exporter textfile format.
	MetricsTextfile string

	// PushgatewayURL, when set, receives the run's metrics.
	PushgatewayURL string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Driver:            database.DriverSQLite,
		DBDir:             XDGDataDir(),
		LLMModel:          adjudicate.DefaultModel,
		LLMBaseURL:        adjudicate.DefaultBaseURL,
		LLMTimeout:        DefaultLLMTimeout,
		RequestsPerMinute: adjudicate.DefaultRequestsPerMinute,
		MaxRetries:        adjudicate.DefaultMaxRetries,
		Limits:            pipeline.DefaultLimits(),
		Workers:           DefaultWorkers,
		BatchSize:         pipeline.DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for abnmatch.
// On Linux: ~/.local/share/abnmatch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for abnmatch.
// On Linux: ~/.config/abnmatch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case database.DriverSQLite:
		if strings.TrimSpace(c.DBDir) == "" {
			return ErrMissingDBDir
		}
	case database.DriverPostgres:
		if strings.TrimSpace(c.DSN) == "" {
			return ErrMissingDSN
		}
	default:
		return ErrInvalidDriver
	}

	if c.LLMTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RequestsPerMinute < 0 {
		return ErrInvalidRequestsPerMinute
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.Limit < 0 {
		return ErrInvalidLimit
	}
	for name, limit := range c.Limits {
		if !isStrategy(name) {
			return ErrUnknownStrategy
		}
		if limit < 0 {
			return ErrInvalidLimit
		}
	}
	for _, name := range c.Strategies {
		if !isStrategy(strings.ToLower(strings.TrimSpace(name))) {
			return ErrUnknownStrategy
		}
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	return nil
}

// DatabaseTarget returns where the store lives.
func (c *Config) DatabaseTarget() database.Target {
	return database.Target{
		Driver: strings.ToLower(c.Driver),
		Dir:    c.DBDir,
		DSN:    c.DSN,
	}
}

// Adjudication returns the settings of the LLM adjudicator.
func (c *Config) Adjudication() adjudicate.Config {
	return adjudicate.Config{
		APIKey:            c.APIKey,
		BaseURL:           c.LLMBaseURL,
		Model:             c.LLMModel,
		Timeout:           c.LLMTimeout,
		RequestsPerMinute: c.RequestsPerMinute,
		MaxRetries:        c.MaxRetries,
		Generation:        adjudicate.DefaultGenerationConfig(),
	}
}

// Selection returns the strategies and record cap of a run.
func (c *Config) Selection() pipeline.Selection {
	return pipeline.Selection{
		Strategies: c.Strategies,
		Limit:      c.Limit,
	}
}

// ApplyEnv fills settings from the environment. getenv is usually os.Getenv.
// Environment values never override values that are already set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.APIKey == "" {
		c.APIKey = strings.TrimSpace(getenv(APIKeyEnv))
	}
	if c.DSN == "" {
		c.DSN = strings.TrimSpace(getenv(DSNEnv))
	}
}

func isStrategy(name string) bool {
	for _, s := range pipeline.StrategyNames() {
		if s == name {
			return true
		}
	}
	return false
}
