package config

import "time"

// File is the structure of the YAML configuration file. Every field is
// optional; unset fields keep the value they already had.
type File struct {
	Database DatabaseFile `yaml:"database,omitempty"`
	LLM      LLMFile      `yaml:"llm,omitempty"`
	Matching MatchingFile `yaml:"matching,omitempty"`
	Metrics  MetricsFile  `yaml:"metrics,omitempty"`
}

// DatabaseFile selects the store.
type DatabaseFile struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver,omitempty"`
	// Dir is the SQLite data directory.
	Dir string `yaml:"dir,omitempty"`
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"dsn,omitempty"`
}

// LLMFile configures LLM adjudication.
type LLMFile struct {
	APIKey            string        `yaml:"api_key,omitempty"`
	Model             string        `yaml:"model,omitempty"`
	BaseURL           string        `yaml:"base_url,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	RequestsPerMinute *int          `yaml:"requests_per_minute,omitempty"`
	MaxRetries        *int          `yaml:"max_retries,omitempty"`
}

// MatchingFile configures the matching passes.
type MatchingFile struct {
	// Limits overrides the per-strategy record cap, keyed by strategy name.
	Limits      map[string]int `yaml:"limits,omitempty"`
	Workers     int            `yaml:"workers,omitempty"`
	BatchSize   int            `yaml:"batch_size,omitempty"`
	StopOnError bool           `yaml:"stop_on_error,omitempty"`
}

// MetricsFile configures where run metrics go.
type MetricsFile struct {
	Textfile    string `yaml:"textfile,omitempty"`
	Pushgateway string `yaml:"pushgateway,omitempty"`
}

// Apply copies every value set in f onto c.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}

	setString(&c.Driver, f.Database.Driver)
	setString(&c.DBDir, f.Database.Dir)
	setString(&c.DSN, f.Database.DSN)

	setString(&c.APIKey, f.LLM.APIKey)
	setString(&c.LLMModel, f.LLM.Model)
	setString(&c.LLMBaseURL, f.LLM.BaseURL)
	if f.LLM.Timeout != 0 {
		c.LLMTimeout = f.LLM.Timeout
	}
	if f.LLM.RequestsPerMinute != nil {
		c.RequestsPerMinute = *f.LLM.RequestsPerMinute
	}
	if f.LLM.MaxRetries != nil {
		c.MaxRetries = *f.LLM.MaxRetries
	}

	if len(f.Matching.Limits) > 0 && c.Limits == nil {
		c.Limits = make(map[string]int, len(f.Matching.Limits))
	}
	for name, limit := range f.Matching.Limits {
		c.Limits[name] = limit
	}
	if f.Matching.Workers != 0 {
		c.Workers = f.Matching.Workers
	}
	if f.Matching.BatchSize != 0 {
		c.BatchSize = f.Matching.BatchSize
	}
	if f.Matching.StopOnError {
		c.StopOnError = true
	}

	setString(&c.MetricsTextfile, f.Metrics.Textfile)
	setString(&c.PushgatewayURL, f.Metrics.Pushgateway)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
