package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/abnmatch/internal/config"
	"github.com/nao1215/abnmatch/internal/database"
	"github.com/nao1215/abnmatch/internal/log"
)

// loadConfig builds the configuration of a command: defaults, the config
// file, the environment, then every flag the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	if err := stringFlag(cmd, "driver", &cfg.Driver); err != nil {
		return nil, err
	}
	if err := stringFlag(cmd, "db-dir", &cfg.DBDir); err != nil {
		return nil, err
	}
	if err := stringFlag(cmd, "dsn", &cfg.DSN); err != nil {
		return nil, err
	}

	return cfg, nil
}

// stringFlag copies a flag into dst only if it was set on the command line.
func stringFlag(cmd *cobra.Command, name string, dst *string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// intFlag copies a flag into dst only if it was set on the command line.
func intFlag(cmd *cobra.Command, name string, dst *int) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// setupLogger creates the secure logger and installs it as the default.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := log.New(w, log.Options{Verbose: cfg.Verbose, JSON: cfg.LogJSON})
	slog.SetDefault(logger)
	return logger
}

// openStore validates cfg and connects to the configured store.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*database.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	store, err := database.Connect(ctx, cfg.DatabaseTarget(), database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "driver", store.Driver(), "location", store.Location())
	return store, nil
}

// createOutput opens path for writing, creating parent directories. The
// returned close function must be called; for an empty path it writes to
// fallback and does nothing on close.
func createOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return fallback, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
