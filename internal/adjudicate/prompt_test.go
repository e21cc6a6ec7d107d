package adjudicate

import (
	"strings"
	"testing"

	"github.com/nao1215/abnmatch/internal/matching"
	"github.com/nao1215/abnmatch/internal/model"
)

func candidatesFixture(n int) []matching.Candidate {
	out := make([]matching.Candidate, 0, n)
	for i := range n {
		abn := strings.Repeat(string(rune('1'+i%9)), 11)
		out = append(out, matching.Candidate{
			Record: model.RegistryRecord{
				ABN:         abn,
				EntityName:  "CANDIDATE " + abn,
				EntityType:  "Company",
				State:       "NSW",
				FullAddress: "1 Main St, Sydney NSW 2000",
			},
			Similarity: 0.9 - float64(i)*0.1,
		})
	}
	return out
}

// TestBuildPrompt tests that the prompt carries the record, candidates and answer format.
func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	record := model.ScrapedRecord{
		ID:          7,
		URL:         "https://acme.example.com.au",
		CompanyName: "Acme Pty Ltd",
		Snippet:     "<p>Welcome to <b>Acme</b></p>",
	}
	prompt := BuildPrompt(record, candidatesFixture(7))

	wantContains := []string{
		"WEBSITE INFORMATION:",
		"- URL: https://acme.example.com.au",
		"- Company Name (from website): Acme Pty Ltd",
		"- Industry: N/A",
		"- Context: Welcome to Acme",
		"CANDIDATES FROM AUSTRALIAN BUSINESS REGISTER:",
		"1. ABN: 11111111111",
		"Similarity Score: 0.90",
		"5. ABN: 55555555555",
		`"matched_abn"`,
		`"no_match"`,
		"JSON Response:",
	}
	for _, want := range wantContains {
		if !strings.Contains(prompt, want) {
			t.Errorf("BuildPrompt() missing %q", want)
		}
	}
	if strings.Contains(prompt, "6. ABN:") {
		t.Error("BuildPrompt() offered more than five candidates")
	}
}

// TestBuildPromptTruncatesAddress tests the address length bound.
func TestBuildPromptTruncatesAddress(t *testing.T) {
	t.Parallel()

	c := candidatesFixture(1)
	c[0].Record.FullAddress = strings.Repeat("a", 150)

	prompt := BuildPrompt(model.ScrapedRecord{CompanyName: "Acme"}, c)
	if !strings.Contains(prompt, "Address: "+strings.Repeat("a", 100)+"\n") {
		t.Error("BuildPrompt() did not truncate the address to 100 characters")
	}
}

// TestPlainText tests HTML text extraction.
func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain text", input: "  Title:  Acme \n Description: tools ", want: "Title: Acme Description: tools"},
		{name: "entities in plain text", input: "Smith &amp; Co", want: "Smith & Co"},
		{name: "markup", input: "<div><h1>Acme</h1><p>Quality &amp; service</p></div>", want: "Acme Quality & service"},
		{name: "script dropped", input: "<p>Hello</p><script>var x = 1;</script><style>p{}</style><p>World</p>", want: "Hello World"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
