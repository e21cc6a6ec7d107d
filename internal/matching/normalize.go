package matching

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// legalSuffixes are stripped from the end of a name, in this order, each at most once.
// Longer variants that share a tail with an earlier entry (for example
// "PROPRIETARY LIMITED" after "LIMITED") only apply when the earlier entry did not.
var legalSuffixes = []string{
	"PTY LTD", "PTY. LTD.", "PTY LIMITED",
	"LIMITED", "LTD", "LTD.",
	"INCORPORATED", "INC", "INC.",
	"PROPRIETARY", "PROPRIETARY LIMITED",
	"CORPORATION", "CORP", "CORP.",
	"COMPANY", "CO", "CO.",
	"& CO", "&CO",
}

// NormalizeName canonicalizes a company name for comparison.
//
// The name is upper-cased, trailing legal-entity suffixes are removed, every rune
// that is neither alphanumeric nor whitespace becomes a space, and whitespace is
// collapsed. NormalizeName("Acme Pty. Ltd.") returns "ACME".
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}

	// cases.Caser is stateful, so a fresh one is used per call.
	s := strings.TrimSpace(cases.Upper(language.Und).String(name))

	for _, suffix := range legalSuffixes {
		if hasTrailingToken(s, suffix) {
			s = strings.TrimSpace(s[:len(s)-len(suffix)])
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isAlnum(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// hasTrailingToken reports whether s ends with suffix as a whole token, so that
// "CO" is stripped from "ACME CO" but not from "TACO".
func hasTrailingToken(s, suffix string) bool {
	if !strings.HasSuffix(s, suffix) {
		return false
	}
	rest := s[:len(s)-len(suffix)]
	if rest == "" {
		return true
	}
	first, _ := utf8.DecodeRuneInString(suffix)
	if !isAlnum(first) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(rest)
	return !isAlnum(last)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
