package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/abnmatch/internal/model"
)

// MarkdownWriter outputs GitHub Flavored Markdown, suitable for attaching a
// run summary to an issue or a CI job page.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteSummary implements Writer.
func (w *MarkdownWriter) WriteSummary(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("ABN Match Run")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + summary.RunID + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Elapsed().Round(time.Millisecond).String()},
			{"Status", runStatus(summary)},
		},
	})
	md.PlainText("")

	md.H2("Strategies")
	md.PlainText("")
	rows := make([][]string, 0, len(summary.Strategies)+1)
	for _, r := range summary.Strategies {
		errText := "-"
		if r.Error != "" {
			errText = r.Error
		}
		rows = append(rows, []string{
			r.Strategy,
			"`" + string(r.Method) + "`",
			strconv.Itoa(r.Matched),
			strconv.Itoa(r.Candidates),
			formatPercent(rate(r.Matched, r.Candidates)),
			r.Elapsed.Round(time.Millisecond).String(),
			errText,
		})
	}
	rows = append(rows, []string{
		"**Total**", "",
		"**" + strconv.Itoa(summary.TotalMatched) + "**",
		"**" + strconv.Itoa(summary.TotalCandidates) + "**",
		"**" + formatPercent(summary.MatchRate()) + "**",
		"", "",
	})
	md.Table(markdown.TableSet{
		Header: []string{"Strategy", "Method", "Matched", "Candidates", "Rate", "Elapsed", "Error"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.TotalMatched > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Matches by Strategy"),
			piechart.WithShowData(true),
		)
		for _, r := range summary.Strategies {
			if r.Matched > 0 {
				chart.LabelAndIntValue(r.Strategy, uint64(r.Matched))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case summary.Cancelled:
		md.Warningf("Run cancelled after %d strategies; remaining strategies were skipped.", len(summary.Strategies))
	case summary.HasErrors():
		md.Cautionf("At least one strategy failed. %d match(es) were still recorded.", summary.TotalMatched)
	case summary.TotalMatched == 0:
		md.Note("No new matches were recorded.")
	default:
		md.Tip("All strategies completed.")
	}
	md.PlainText("")

	if len(summary.Methods) > 0 {
		md.H2("Confidence by Method")
		md.PlainText("")
		md.Table(methodTableSet(summary.Methods))
		md.PlainText("")
	}

	writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteStats implements Writer.
func (w *MarkdownWriter) WriteStats(stats *Stats) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("ABN Match Store")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Records", "Count"},
		Rows: [][]string{
			{"Scraped", strconv.Itoa(stats.Scraped)},
			{"Registry", strconv.Itoa(stats.Registry)},
			{"Registry (active)", strconv.Itoa(stats.ActiveRegistry)},
			{"Matched", strconv.Itoa(stats.Matched)},
			{"Match rate", formatPercent(stats.MatchRate())},
		},
	})
	md.PlainText("")

	md.H2("Confidence by Method")
	md.PlainText("")
	if len(stats.Methods) == 0 {
		md.PlainText("No matches recorded.")
	} else {
		md.Table(methodTableSet(stats.Methods))
	}
	md.PlainText("")

	writeFooter(md)
	return len(md.String()), md.Build()
}

func runStatus(summary *model.RunSummary) string {
	switch {
	case summary.Cancelled:
		return "⚠️ Cancelled"
	case summary.HasErrors():
		return "❌ Completed with errors"
	default:
		return "✅ Complete"
	}
}

func methodTableSet(methods []model.MethodStats) markdown.TableSet {
	rows := make([][]string, len(methods))
	for i, m := range methods {
		rows[i] = []string{
			"`" + string(m.Method) + "`",
			strconv.Itoa(m.Count),
			formatConfidence(m.AvgConfidence),
			formatConfidence(m.MinConfidence),
			formatConfidence(m.MaxConfidence),
		}
	}
	return markdown.TableSet{
		Header: []string{"Method", "Count", "Avg", "Min", "Max"},
		Rows:   rows,
	}
}

func writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [abnmatch](https://github.com/nao1215/abnmatch)*")
}
