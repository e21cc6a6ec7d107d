package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/nao1215/abnmatch/internal/model"
)

// TextWriter outputs tables for terminal display. Headings are colored only
// when the output is a terminal.
type TextWriter struct {
	baseWriter

	// colorize enables ANSI colors.
	colorize bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithColor forces colors on or off.
func WithColor(colorize bool) TextWriterOption {
	return func(w *TextWriter) {
		w.colorize = colorize
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		colorize:   isTerminal(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func isTerminal(output io.Writer) bool {
	f, ok := output.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// WriteSummary implements Writer.
func (w *TextWriter) WriteSummary(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	sb.WriteString(w.heading("ABN MATCH RUN"))
	fmt.Fprintf(&sb, "Run ID:   %s\n", summary.RunID)
	fmt.Fprintf(&sb, "Started:  %s\n", summary.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Duration: %s\n\n", summary.Elapsed().Round(time.Millisecond))

	rows := make([][]string, 0, len(summary.Strategies))
	for _, r := range summary.Strategies {
		status := "ok"
		if r.Error != "" {
			status = w.color(text.FgRed, "failed: "+r.Error)
		}
		rows = append(rows, []string{
			r.Strategy,
			string(r.Method),
			strconv.Itoa(r.Matched),
			strconv.Itoa(r.Candidates),
			formatPercent(rate(r.Matched, r.Candidates)),
			r.Elapsed.Round(time.Millisecond).String(),
			status,
		})
	}
	sb.WriteString(renderTable(
		[]string{"Strategy", "Method", "Matched", "Candidates", "Rate", "Elapsed", "Status"},
		rows,
		[]string{"Total", "", strconv.Itoa(summary.TotalMatched), strconv.Itoa(summary.TotalCandidates), formatPercent(summary.MatchRate()), "", ""},
		2, 3, 4,
	))
	sb.WriteString("\n")

	if len(summary.Methods) > 0 {
		sb.WriteString("\n")
		sb.WriteString(w.heading("CONFIDENCE BY METHOD"))
		sb.WriteString(methodTable(summary.Methods))
		sb.WriteString("\n")
	}

	if summary.Cancelled {
		sb.WriteString("\n")
		sb.WriteString(w.color(text.FgYellow, "Run cancelled; remaining strategies were skipped."))
		sb.WriteString("\n")
	}

	return io.WriteString(w.output, sb.String())
}

// WriteStats implements Writer.
func (w *TextWriter) WriteStats(stats *Stats) (int, error) {
	var sb strings.Builder

	sb.WriteString(w.heading("STORE"))
	sb.WriteString(renderTable(
		[]string{"Records", "Count"},
		[][]string{
			{"Scraped", strconv.Itoa(stats.Scraped)},
			{"Registry", strconv.Itoa(stats.Registry)},
			{"Registry (active)", strconv.Itoa(stats.ActiveRegistry)},
			{"Matched", strconv.Itoa(stats.Matched)},
			{"Match rate", formatPercent(stats.MatchRate())},
		},
		nil,
		1,
	))
	sb.WriteString("\n")

	sb.WriteString("\n")
	sb.WriteString(w.heading("CONFIDENCE BY METHOD"))
	if len(stats.Methods) == 0 {
		sb.WriteString("No matches recorded.\n")
	} else {
		sb.WriteString(methodTable(stats.Methods))
		sb.WriteString("\n")
	}

	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) heading(title string) string {
	return w.color(text.Bold, title) + "\n"
}

func (w *TextWriter) color(c text.Color, s string) string {
	if !w.colorize {
		return s
	}
	return text.Colors{c}.Sprint(s)
}

func methodTable(methods []model.MethodStats) string {
	rows := make([][]string, len(methods))
	for i, m := range methods {
		rows[i] = []string{
			string(m.Method),
			strconv.Itoa(m.Count),
			formatConfidence(m.AvgConfidence),
			formatConfidence(m.MinConfidence),
			formatConfidence(m.MaxConfidence),
		}
	}
	return renderTable([]string{"Method", "Count", "Avg", "Min", "Max"}, rows, nil, 1, 2, 3, 4)
}

// renderTable renders a rounded table. Columns listed in rightAligned
// (zero-based) are right aligned; a nil footer is omitted.
func renderTable(headers []string, rows [][]string, footer []string, rightAligned ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers))
	for _, r := range rows {
		tw.AppendRow(toRow(r))
	}
	if footer != nil {
		tw.AppendFooter(toRow(footer))
	}

	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, col := range rightAligned {
		configs = append(configs, table.ColumnConfig{
			Number:      col + 1,
			Align:       text.AlignRight,
			AlignFooter: text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
