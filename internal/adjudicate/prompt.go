package adjudicate

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/abnmatch/internal/matching"
	"github.com/nao1215/abnmatch/internal/model"
)

const (
	// MaxCandidates is the number of ranked candidates offered to the model.
	MaxCandidates = 5

	maxAddressRunes = 100
	maxSnippetRunes = 1000
	notAvailable    = "N/A"
)

// BuildPrompt renders the record and up to MaxCandidates candidates as a
// prompt that asks for a JSON-only answer.
func BuildPrompt(record model.ScrapedRecord, candidates []matching.Candidate) string {
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}

	var b strings.Builder
	b.WriteString("You are an expert at matching company records from websites to official business register entries.\n\n")

	b.WriteString("WEBSITE INFORMATION:\n")
	fmt.Fprintf(&b, "- URL: %s\n", orNA(record.URL))
	fmt.Fprintf(&b, "- Company Name (from website): %s\n", orNA(record.CompanyName))
	fmt.Fprintf(&b, "- Industry: %s\n", orNA(record.Industry))
	fmt.Fprintf(&b, "- Context: %s\n", orNA(truncateRunes(PlainText(record.Snippet), maxSnippetRunes)))

	b.WriteString("\nCANDIDATES FROM AUSTRALIAN BUSINESS REGISTER:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. ABN: %s\n", i+1, c.Record.ABN)
		fmt.Fprintf(&b, "   Entity Name: %s\n", orNA(c.Record.EntityName))
		fmt.Fprintf(&b, "   Type: %s\n", orNA(c.Record.EntityType))
		fmt.Fprintf(&b, "   State: %s\n", orNA(c.Record.State))
		fmt.Fprintf(&b, "   Address: %s\n", orNA(truncateRunes(c.Record.FullAddress, maxAddressRunes)))
		fmt.Fprintf(&b, "   Similarity Score: %.2f\n", c.Similarity)
	}

	b.WriteString(`
TASK:
Determine which candidate (if any) is the best match for the website company. Consider:
1. Company name similarity (accounting for variations like "Pty Ltd", "Limited", etc.)
2. Industry/business type alignment
3. Location/state consistency if available
4. Overall context from the website

If NONE of the candidates are a good match, output "no_match".

OUTPUT FORMAT (JSON only):
{
  "matched_abn": "12345678901",
  "confidence": 0.85,
  "reasoning": "Strong name match with location confirmation"
}

OR if no match:
{
  "matched_abn": null,
  "confidence": 0.0,
  "reasoning": "No candidates match the website company"
}

JSON Response:`)

	return b.String()
}

// PlainText extracts the visible text of an HTML fragment with whitespace
// collapsed. Script and style contents are dropped. Input without markup is
// returned with whitespace collapsed.
func PlainText(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return strings.Join(strings.Fields(html.UnescapeString(fragment)), " ")
	}

	var parts []string
	skip := 0
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		case html.StartTagToken:
			if isHiddenElement(z) {
				skip++
			}
		case html.EndTagToken:
			if isHiddenElement(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				parts = append(parts, z.Token().Data)
			}
		}
	}
}

func isHiddenElement(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style", "noscript":
		return true
	default:
		return false
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
