package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/abnmatch/internal/database"
	"github.com/nao1215/abnmatch/internal/model"
)

const (
	// defaultImportBatch is the number of records upserted per transaction.
	defaultImportBatch = 1000

	// maxLineSize bounds a single JSONL line. Snippets can be long.
	maxLineSize = 4 * 1024 * 1024
)

// errMissingURL is returned for a scraped record without a URL.
var errMissingURL = errors.New("scraped record has no url")

// NewImportCmd creates the import command and its subcommands.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import websites or register entries from JSON Lines",
		Long: `Import loads records from a JSON Lines file, one object per line.
Use "-" to read from standard input.

Websites are updated by URL and register entries by ABN, so importing the
same file twice is harmless.

Examples:
  abnmatch import registry abr.jsonl
  abnmatch import scraped websites.jsonl
  zcat websites.jsonl.gz | abnmatch import scraped -`,
	}

	cmd.PersistentFlags().Int("batch-size", defaultImportBatch,
		"Records written per transaction")

	cmd.AddCommand(newImportScrapedCmd())
	cmd.AddCommand(newImportRegistryCmd())

	return cmd
}

func newImportScrapedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scraped <file.jsonl|->",
		Short: "Import scraped websites",
		Long: `Import scraped websites. Each line is an object with the keys
url, domain, company_name, industry, abn and snippet. Only url is required;
domain defaults to the host of url. The ABN is stored as written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], "scraped", func(ctx context.Context, store *database.Store, r io.Reader, batch int) (importResult, error) {
				return importJSONL(ctx, r, batch, prepareScraped, store.UpsertScraped)
			})
		},
	}
}

func newImportRegistryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registry <file.jsonl|->",
		Short: "Import Australian Business Register entries",
		Long: `Import register entries. Each line is an object with the keys
abn, entity_name, entity_type, status, state, postcode and full_address.
The ABN must have 11 digits; spaces are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], "registry", func(ctx context.Context, store *database.Store, r io.Reader, batch int) (importResult, error) {
				return importJSONL(ctx, r, batch, prepareRegistry, store.UpsertRegistry)
			})
		},
	}
}

// importResult counts the lines read and the rows written by an import.
type importResult struct {
	Read    int
	Written int
}

type importFunc func(ctx context.Context, store *database.Store, r io.Reader, batch int) (importResult, error)

// runImport opens the store and the input and runs fn.
func runImport(cmd *cobra.Command, path, what string, fn importFunc) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	batch, err := cmd.Flags().GetInt("batch-size")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg, cmd.ErrOrStderr())
	ctx := cmd.Context()

	in, closeIn, err := openInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeIn()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}()

	res, err := fn(ctx, store, in, batch)
	logger.Info("import finished", "kind", what, "read", res.Read, "written", res.Written)
	if err != nil {
		return fmt.Errorf("import %s: %w", what, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s records (%d lines read)\n", res.Written, what, res.Read)
	return nil
}

// openInput opens path, or returns stdin for "-".
func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// importJSONL decodes one T per non-blank line of r, prepares it, and hands
// the records to upsert in batches of size batch.
func importJSONL[T any](
	ctx context.Context,
	r io.Reader,
	batch int,
	prepare func(*T) error,
	upsert func(context.Context, []T) (int, error),
) (importResult, error) {
	if batch <= 0 {
		batch = defaultImportBatch
	}

	var res importResult
	pending := make([]T, 0, batch)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		n, err := upsert(ctx, pending)
		if err != nil {
			return err
		}
		res.Written += n
		pending = pending[:0]
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var record T
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		if err := prepare(&record); err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		res.Read++

		pending = append(pending, record)
		if len(pending) >= batch {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("line %d: %w", line+1, err)
	}
	return res, flush()
}

// prepareScraped checks a scraped record and fills its domain from the URL.
func prepareScraped(r *model.ScrapedRecord) error {
	r.ID = 0
	r.URL = strings.TrimSpace(r.URL)
	if r.URL == "" {
		return errMissingURL
	}
	if strings.TrimSpace(r.Domain) == "" {
		r.Domain = domainOf(r.URL)
	}
	return nil
}

// prepareRegistry checks that a registry record carries a valid ABN.
func prepareRegistry(r *model.RegistryRecord) error {
	abn, ok := model.NormalizeABN(r.ABN)
	if !ok {
		return fmt.Errorf("%w: %q", model.ErrInvalidABN, r.ABN)
	}
	r.ABN = abn
	return nil
}

// domainOf returns the host of rawURL without a leading "www.".
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
