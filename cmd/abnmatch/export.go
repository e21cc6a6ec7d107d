package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/abnmatch/internal/database"
	"github.com/nao1215/abnmatch/internal/export"
	"github.com/nao1215/abnmatch/internal/model"
	"github.com/nao1215/abnmatch/internal/pipeline"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matches as CSV, JSON or XLSX",
		Long: `Export writes stored matches together with the website URL, the company
name seen on the website and the register name of the matched ABN.

The format is taken from --format, or else from the extension of --output.
Without --output the export is written to standard output.

Examples:
  abnmatch export -o matches.xlsx
  abnmatch export --method fuzzy -f csv > fuzzy.csv
  abnmatch export --run-id 0b7c... -o run.json`,
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default: standard output)")
	cmd.Flags().StringP("format", "f", "", "Export format: csv, json, xlsx (default: from --output, else csv)")
	cmd.Flags().String("method", "", "Only export matches of this strategy: direct, fuzzy, llm")
	cmd.Flags().String("run-id", "", "Only export matches recorded by this run")
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of matches, newest first (default: all)")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	outputPath, err := flags.GetString("output")
	if err != nil {
		return err
	}
	formatName, err := flags.GetString("format")
	if err != nil {
		return err
	}
	format, err := exportFormat(formatName, outputPath)
	if err != nil {
		return err
	}

	var filter database.MatchFilter
	methodName, err := flags.GetString("method")
	if err != nil {
		return err
	}
	if filter.Method, err = parseMethod(methodName); err != nil {
		return err
	}
	if filter.RunID, err = flags.GetString("run-id"); err != nil {
		return err
	}
	if filter.Limit, err = flags.GetInt("limit"); err != nil {
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

	rows, err := store.ListMatches(ctx, filter)
	if err != nil {
		return err
	}

	out, closeOut, err := createOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := export.Write(out, format, rows); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to export matches: %w", err)
	}
	if err := closeOut(); err != nil {
		return err
	}

	logger.Info("matches exported", "count", len(rows), "format", format, "output", outputPath)
	if outputPath != "" && outputPath != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d matches to %s\n", len(rows), outputPath)
	}
	return nil
}

// exportFormat picks the format from the flag, then the output extension,
// then falls back to CSV.
func exportFormat(name, outputPath string) (export.Format, error) {
	if name != "" {
		return export.ParseFormat(name)
	}
	if outputPath != "" && outputPath != "-" {
		if f, err := export.FormatFromPath(outputPath); err == nil {
			return f, nil
		}
	}
	return export.FormatCSV, nil
}

// parseMethod accepts a strategy name or a stored method label.
func parseMethod(s string) (model.Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return "", nil
	case pipeline.StrategyDirect:
		return model.MethodDirect, nil
	case pipeline.StrategyFuzzy:
		return model.MethodFuzzy, nil
	case pipeline.StrategyLLM:
		return model.MethodLLM, nil
	}
	return model.ParseMethod(s)
}
