package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/abnmatch/internal/adjudicate"
	"github.com/nao1215/abnmatch/internal/config"
	"github.com/nao1215/abnmatch/internal/metrics"
	"github.com/nao1215/abnmatch/internal/pipeline"
	"github.com/nao1215/abnmatch/internal/report"
)

// NewMatchCmd creates the match command.
func NewMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match unmatched websites to register entries",
		Long: `Match runs the matching strategies over every website that has no match yet.

Strategies always run in the order direct, fuzzy, llm, whatever order they are
given in. Matches are written as they are found, so an interrupted run keeps
the work it finished and the next run picks up the rest.

Examples:
  # Run every strategy
  abnmatch match

  # Run only the direct and fuzzy strategies
  abnmatch match -s direct,fuzzy

  # Evaluate at most 50 websites per strategy and save a Markdown report
  abnmatch match -n 50 -f markdown -o report.md`,
		RunE: runMatchCmd,
	}

	cmd.Flags().StringSliceP("strategy", "s", nil,
		"Strategies to run: "+strings.Join(pipeline.StrategyNames(), ", ")+" (default: all)")
	cmd.Flags().IntP("limit", "n", 0,
		"Maximum websites evaluated per strategy (default: direct unlimited, fuzzy 10000, llm 100)")
	cmd.Flags().Int("workers", config.DefaultWorkers,
		"Websites evaluated concurrently by the fuzzy and llm strategies")
	cmd.Flags().Int("batch-size", pipeline.DefaultBatchSize,
		"Matches written per transaction")
	cmd.Flags().Bool("stop-on-error", false,
		"Stop after the first failed strategy")
	cmd.Flags().StringP("format", "f", report.FormatText,
		"Report format: text, json, markdown")
	cmd.Flags().StringP("output", "o", "",
		"Also write the report to this file")
	cmd.Flags().String("metrics-textfile", "",
		"Write run metrics to this file in the Prometheus text format")
	cmd.Flags().String("pushgateway", "",
		"Push run metrics to this Prometheus Pushgateway URL")

	return cmd
}

// runMatchCmd executes the match command.
func runMatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadMatchConfig(cmd)
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
	defer func() {
		if err := closeReport(); err != nil {
			logger.Warn("failed to close report file", "error", err)
		}
	}()

	m := metrics.New()
	p := newPipeline(cfg, store, m, logger)

	summary, runErr := p.Execute(ctx, cfg.Selection())
	if summary == nil {
		return runErr
	}

	if _, err := writer.WriteSummary(summary); err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to write report: %w", err))
	}

	// Metrics are exported even for a cancelled run, on a fresh context.
	if err := exportMetrics(context.WithoutCancel(ctx), cfg, m, logger); err != nil {
		return errors.Join(runErr, err)
	}

	return runErr
}

// loadMatchConfig loads the configuration and applies the match flags.
func loadMatchConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if cfg.Strategies, err = flags.GetStringSlice("strategy"); err != nil {
		return nil, err
	}
	for i, name := range cfg.Strategies {
		cfg.Strategies[i] = strings.ToLower(strings.TrimSpace(name))
	}
	if cfg.Limit, err = flags.GetInt("limit"); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "workers", &cfg.Workers); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "batch-size", &cfg.BatchSize); err != nil {
		return nil, err
	}
	if flags.Changed("stop-on-error") {
		if cfg.StopOnError, err = flags.GetBool("stop-on-error"); err != nil {
			return nil, err
		}
	}
	if err := stringFlag(cmd, "metrics-textfile", &cfg.MetricsTextfile); err != nil {
		return nil, err
	}
	if err := stringFlag(cmd, "pushgateway", &cfg.PushgatewayURL); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newPipeline wires the three strategies to store.
func newPipeline(cfg *config.Config, store pipeline.Store, m *metrics.Metrics, logger *slog.Logger) *pipeline.Pipeline {
	recorder := pipeline.NewRecorder(store,
		pipeline.WithBatchSize(cfg.BatchSize),
		pipeline.WithRecorderLogger(logger),
		pipeline.WithRecorderMetrics(m),
	)
	adjudicator := adjudicate.New(cfg.Adjudication(), adjudicate.WithLogger(logger))

	strategyOpts := []pipeline.StrategyOption{
		pipeline.WithStrategyLogger(logger),
		pipeline.WithStrategyMetrics(m),
		pipeline.WithWorkers(cfg.Workers),
	}

	p := pipeline.New(store,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(m),
		pipeline.WithLimits(cfg.Limits),
		pipeline.WithContinueOnError(!cfg.StopOnError),
	)
	p.AddStrategies(
		pipeline.NewDirectStrategy(store, store, recorder, strategyOpts...),
		pipeline.NewFuzzyStrategy(store, store, recorder, strategyOpts...),
		pipeline.NewLLMStrategy(store, store, recorder, adjudicator, strategyOpts...),
	)
	return p
}

// newReportWriter returns a writer for format on out. When path is set the
// report is also written to that file; the returned close function closes it.
func newReportWriter(format string, out io.Writer, path string) (report.Writer, func() error, error) {
	w, err := report.NewWriter(format, out)
	if err != nil {
		return nil, nil, err
	}
	if path == "" || path == "-" {
		return w, func() error { return nil }, nil
	}

	f, closeFn, err := createOutput(path, out)
	if err != nil {
		return nil, nil, err
	}
	fw, err := report.NewWriter(format, f)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return report.NewMultiWriter(w, fw), closeFn, nil
}

// exportMetrics writes the run metrics where cfg asks for them.
func exportMetrics(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) error {
	if cfg.MetricsTextfile != "" {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return err
		}
		logger.Debug("metrics written", "path", cfg.MetricsTextfile)
	}
	if cfg.PushgatewayURL != "" {
		if err := m.Push(ctx, cfg.PushgatewayURL, metrics.DefaultJob); err != nil {
			return err
		}
		logger.Debug("metrics pushed", "url", cfg.PushgatewayURL)
	}
	return nil
}
