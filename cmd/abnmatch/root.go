package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for abnmatch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abnmatch",
		Short: "Match business websites to Australian Business Register entries",
		Long: `abnmatch links company websites to entries of the Australian Business Register.

Matching runs three strategies in a fixed order. Each one only sees the
websites the earlier ones left unmatched:
  1. direct  an ABN printed on the website is looked up in the register
  2. fuzzy   the company name is compared with every active register name
  3. llm     a language model picks among the five closest register names
             (requires GEMINI_API_KEY)`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .abnmatch in current or home directory)")
	cmd.PersistentFlags().String("driver", "", "Database driver: sqlite or postgres")
	cmd.PersistentFlags().String("db-dir", "", "SQLite database directory (default: XDG data directory)")
	cmd.PersistentFlags().String("dsn", "", "PostgreSQL connection string (or ABNMATCH_DSN)")

	cmd.AddCommand(NewMatchCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context so a running match stops between batches.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
