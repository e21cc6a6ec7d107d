package adjudicate

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/abnmatch/internal/model"
)

// MinConfidence is the lowest model confidence that is treated as an answer.
const MinConfidence = 0.5

// DefaultReasoning is used when the model omits its reasoning.
const DefaultReasoning = "LLM determined match"

// Decision is a validated model answer naming one registry identifier.
type Decision struct {
	// ABN is the identifier chosen by the model, trimmed but not yet validated.
	ABN string `json:"matched_abn"`
	// Confidence is the model's confidence clamped into [0,1].
	Confidence float64 `json:"confidence"`
	// Reasoning is the model's explanation.
	Reasoning string `json:"reasoning"`
}

// Outcome classifies a raw model response.
type Outcome int

const (
	// OutcomeMalformed means no usable JSON object was found.
	OutcomeMalformed Outcome = iota
	// OutcomeNoMatch means the model explicitly declined every candidate.
	OutcomeNoMatch
	// OutcomeLowConfidence means the model answered below MinConfidence.
	OutcomeLowConfidence
	// OutcomeAccepted means the response carries a usable Decision.
	OutcomeAccepted
)

// String returns a short label for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeLowConfidence:
		return "low_confidence"
	case OutcomeAccepted:
		return "accepted"
	default:
		return "malformed"
	}
}

// Parse returns the Decision carried by raw, or nil when the response is
// malformed, declines every candidate or is not confident enough.
func Parse(raw string) *Decision {
	d, outcome := Inspect(raw)
	if outcome != OutcomeAccepted {
		return nil
	}
	return &d
}

// Inspect classifies raw and returns the Decision when the outcome is
// OutcomeAccepted. It never panics and never returns an error.
//
// The text is trimmed and stripped of a surrounding Markdown code fence. If the
// remainder is not a JSON object on its own, the first balanced {...} inside
// it is used. The object must contain both "matched_abn" and "confidence".
// A null, empty, "null" or "no_match" identifier means no match. Confidence may
// be a number or a numeric string.
func Inspect(raw string) (d Decision, outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d, outcome = Decision{}, OutcomeMalformed
		}
	}()

	fields, ok := decodeObject(trimCodeFence(strings.TrimSpace(raw)))
	if !ok {
		return Decision{}, OutcomeMalformed
	}

	rawABN, hasABN := fields["matched_abn"]
	rawConfidence, hasConfidence := fields["confidence"]
	if !hasABN || !hasConfidence {
		return Decision{}, OutcomeMalformed
	}

	abn, present, ok := identifierField(rawABN)
	if !ok {
		return Decision{}, OutcomeMalformed
	}
	if !present {
		return Decision{}, OutcomeNoMatch
	}

	confidence, ok := numberField(rawConfidence)
	if !ok {
		return Decision{}, OutcomeMalformed
	}
	if confidence < MinConfidence {
		return Decision{}, OutcomeLowConfidence
	}

	reasoning := DefaultReasoning
	if s, ok := fields["reasoning"].(string); ok && strings.TrimSpace(s) != "" {
		reasoning = strings.TrimSpace(s)
	}

	return Decision{
		ABN:        abn,
		Confidence: model.ClampConfidence(confidence),
		Reasoning:  reasoning,
	}, OutcomeAccepted
}

// trimCodeFence removes a leading ```json or ``` and a trailing ```.
func trimCodeFence(text string) string {
	switch {
	case strings.HasPrefix(text, "```json"):
		text = text[len("```json"):]
	case strings.HasPrefix(text, "```"):
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// decodeObject parses text as a JSON object, falling back to the first
// balanced object embedded in it.
func decodeObject(text string) (map[string]any, bool) {
	if text == "" {
		return nil, false
	}
	if fields, ok := unmarshalObject(text); ok {
		return fields, true
	}
	embedded, ok := firstBalancedObject(text)
	if !ok {
		return nil, false
	}
	return unmarshalObject(embedded)
}

func unmarshalObject(text string) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return fields, true
}

// firstBalancedObject returns the first {...} span whose braces balance,
// ignoring braces that appear inside JSON strings.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// identifierField interprets the matched_abn value. present is false for the
// explicit no-match spellings; ok is false for values of an unusable type.
func identifierField(v any) (abn string, present, ok bool) {
	switch val := v.(type) {
	case nil:
		return "", false, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "no_match") {
			return "", false, true
		}
		return s, true, true
	case json.Number:
		return val.String(), true, true
	default:
		return "", false, false
	}
}

// numberField coerces a confidence value from a JSON number or numeric string.
func numberField(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
