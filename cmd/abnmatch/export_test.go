package main

import (
	"testing"

	"github.com/nao1215/abnmatch/internal/export"
	"github.com/nao1215/abnmatch/internal/model"
)

func TestExportFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		output  string
		want    export.Format
		wantErr bool
	}{
		{name: "flag wins", format: "json", output: "out.xlsx", want: export.FormatJSON},
		{name: "from extension", output: "dir/out.xlsx", want: export.FormatXLSX},
		{name: "unknown extension falls back to csv", output: "out.txt", want: export.FormatCSV},
		{name: "standard output defaults to csv", output: "", want: export.FormatCSV},
		{name: "unknown flag", format: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := exportFormat(tt.format, tt.output)
			if (err != nil) != tt.wantErr {
				t.Fatalf("exportFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("exportFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	tests := map[string]model.Method{
		"":                  "",
		"direct":            model.MethodDirect,
		" Fuzzy ":           model.MethodFuzzy,
		"llm":               model.MethodLLM,
		"direct_identifier": model.MethodDirect,
		"fuzzy_name":        model.MethodFuzzy,
	}
	for in, want := range tests {
		got, err := parseMethod(in)
		if err != nil {
			t.Errorf("parseMethod(%q) error = %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseMethod(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := parseMethod("guess"); err == nil {
		t.Error("expected error for unknown method")
	}
}
