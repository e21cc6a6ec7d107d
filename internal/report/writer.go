package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/abnmatch/internal/model"
)

// Output formats accepted by NewWriter.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format: must be text, json or markdown")

// Writer defines the interface for report output.
type Writer interface {
	// WriteSummary outputs the summary of one matching run.
	// Returns the number of bytes written and any error encountered.
	WriteSummary(summary *model.RunSummary) (int, error)

	// WriteStats outputs store-wide statistics.
	WriteStats(stats *Stats) (int, error)
}

// Stats describes the contents of the store.
type Stats struct {
	Scraped        int                 `json:"scraped"`
	Registry       int                 `json:"registry"`
	ActiveRegistry int                 `json:"active_registry"`
	Matched        int                 `json:"matched"`
	Methods        []model.MethodStats `json:"methods"`
}

// MatchRate returns the share of scraped records that are matched, as a percentage.
func (s *Stats) MatchRate() float64 {
	if s.Scraped == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Scraped) * 100
}

// NewWriter returns the writer for format. An empty format selects text.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return NewTextWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers, for example the terminal and a file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteSummary writes to every Writer and stops on the first error.
func (m *MultiWriter) WriteSummary(summary *model.RunSummary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteSummary(summary) })
}

// WriteStats writes to every Writer and stops on the first error.
func (m *MultiWriter) WriteStats(stats *Stats) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteStats(stats) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

func formatConfidence(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func rate(matched, candidates int) float64 {
	if candidates == 0 {
		return 0
	}
	return float64(matched) / float64(candidates) * 100
}
