package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/abnmatch/internal/report"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show match statistics",
		Long: `Stats shows how many websites and register entries are stored, how many
websites are matched, and the number and confidence of matches per method.

Examples:
  abnmatch stats
  abnmatch stats -f json
  abnmatch stats -f markdown -o stats.md`,
		RunE: runStatsCmd,
	}

	cmd.Flags().StringP("format", "f", report.FormatText,
		"Output format: text, json, markdown")
	cmd.Flags().StringP("output", "o", "",
		"Also write the statistics to this file")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg, cmd.ErrOrStderr())
	ctx := cmd.Context()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}()

	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	methods, err := store.MatchStats(ctx)
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	writer, closeReport, err := newReportWriter(format, cmd.OutOrStdout(), outputPath)
	if err != nil {
		return err
	}

	stats := &report.Stats{
		Scraped:        counts.Scraped,
		Registry:       counts.Registry,
		ActiveRegistry: counts.ActiveRegistry,
		Matched:        counts.Matched,
		Methods:        methods,
	}
	if _, err := writer.WriteStats(stats); err != nil {
		_ = closeReport()
		return fmt.Errorf("failed to write statistics: %w", err)
	}
	return closeReport()
}
