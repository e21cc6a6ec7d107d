package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/abnmatch/internal/model"
)

// JSONWriter outputs summaries and statistics as JSON.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// summaryJSON adds derived values to a RunSummary.
type summaryJSON struct {
	*model.RunSummary
	MatchRate      float64 `json:"match_rate"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// statsJSON adds derived values to Stats.
type statsJSON struct {
	*Stats
	MatchRate float64 `json:"match_rate"`
}

// WriteSummary implements Writer.
func (w *JSONWriter) WriteSummary(summary *model.RunSummary) (int, error) {
	return w.writeJSON(summaryJSON{
		RunSummary:     summary,
		MatchRate:      summary.MatchRate(),
		ElapsedSeconds: summary.Elapsed().Seconds(),
	})
}

// WriteStats implements Writer.
func (w *JSONWriter) WriteStats(stats *Stats) (int, error) {
	return w.writeJSON(statsJSON{Stats: stats, MatchRate: stats.MatchRate()})
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
