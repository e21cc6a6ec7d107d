package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/abnmatch/internal/sample"
)

// NewSeedCmd creates the seed command.
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with generated sample data",
		Long: `Seed generates fictional register entries and websites derived from them,
and stores both. About a third of the websites print the ABN of an entry, a
further share shows only a variant of its name, and the rest have no
register entry at all. Some register entries are cancelled.

Use it to try out matching without real data.

Examples:
  abnmatch seed
  abnmatch seed --registry 5000 --scraped 2000 --seed 42`,
		RunE: runSeedCmd,
	}

	cmd.Flags().Int("registry", 1000, "Number of register entries")
	cmd.Flags().Int("scraped", 500, "Number of websites")
	cmd.Flags().Int64("seed", 0, "Random seed for reproducible data (default: random)")
	cmd.Flags().Float64("cancelled-ratio", sample.DefaultCancelledRatio,
		"Share of register entries that are not active")

	return cmd
}

// runSeedCmd executes the seed command.
func runSeedCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var opts sample.Options
	flags := cmd.Flags()
	if opts.Registry, err = flags.GetInt("registry"); err != nil {
		return err
	}
	if opts.Scraped, err = flags.GetInt("scraped"); err != nil {
		return err
	}
	if opts.Seed, err = flags.GetInt64("seed"); err != nil {
		return err
	}
	if opts.CancelledRatio, err = flags.GetFloat64("cancelled-ratio"); err != nil {
		return err
	}
	if opts.Registry < 0 || opts.Scraped < 0 {
		return errors.New("record counts must not be negative")
	}
	if opts.CancelledRatio < 0 || opts.CancelledRatio > 1 {
		return fmt.Errorf("cancelled ratio must be between 0 and 1: %g", opts.CancelledRatio)
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

	data := sample.Generate(opts)

	registry, err := store.UpsertRegistry(ctx, data.Registry)
	if err != nil {
		return err
	}
	scraped, err := store.UpsertScraped(ctx, data.Scraped)
	if err != nil {
		return err
	}

	logger.Info("sample data stored", "registry", registry, "scraped", scraped, "location", store.Location())
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d register entries and %d websites in %s\n",
		registry, scraped, store.Location())
	return nil
}
