package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/abnmatch/internal/model"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet holding the matches in XLSX exports.
const SheetName = "Matches"

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format: must be csv, json or xlsx")

var headers = []string{
	"Scraped ID", "URL", "Company Name", "ABN", "Entity Name", "State",
	"Method", "Confidence", "Reasoning", "Run ID", "Created At",
}

// ParseFormat parses a format name. "excel" is accepted for xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Write writes rows to w in the given format.
func Write(w io.Writer, format Format, rows []model.MatchDetail) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteCSV writes a header line followed by one line per match.
func WriteCSV(w io.Writer, rows []model.MatchDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("failed to write match %d: %w", r.Match.ScrapedID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// document is the JSON export envelope.
type document struct {
	ExportedAt string              `json:"exported_at"`
	Total      int                 `json:"total"`
	Matches    []model.MatchDetail `json:"matches"`
}

// WriteJSON writes an indented document holding every match.
func WriteJSON(w io.Writer, rows []model.MatchDetail) error {
	if rows == nil {
		rows = []model.MatchDetail{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Total:      len(rows),
		Matches:    rows,
	}); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a single styled worksheet.
func WriteXLSX(w io.Writer, rows []model.MatchDetail) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			r.Match.ScrapedID,
			r.URL,
			r.CompanyName,
			r.Match.ABN,
			r.EntityName,
			r.State,
			string(r.Match.Method),
			r.Match.Confidence,
			r.Match.Reasoning,
			r.Match.RunID,
			formatTime(r.Match.CreatedAt),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write match %d: %w", r.Match.ScrapedID, err)
		}
	}

	widths := []float64{11, 40, 30, 14, 36, 7, 18, 11, 60, 38, 22}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func record(r model.MatchDetail) []string {
	return []string{
		strconv.FormatInt(r.Match.ScrapedID, 10),
		r.URL,
		r.CompanyName,
		r.Match.ABN,
		r.EntityName,
		r.State,
		string(r.Match.Method),
		strconv.FormatFloat(r.Match.Confidence, 'f', 2, 64),
		r.Match.Reasoning,
		r.Match.RunID,
		formatTime(r.Match.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
