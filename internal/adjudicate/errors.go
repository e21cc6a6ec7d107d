package adjudicate

import "errors"

var (
	// ErrDisabled is returned by a Disabled adjudicator.
	ErrDisabled = errors.New("adjudication is disabled: no API key configured")

	// ErrMissingAPIKey indicates a GeminiClient was built without credentials.
	ErrMissingAPIKey = errors.New("gemini api key is required")

	// ErrEmptyPrompt indicates an empty prompt was passed to a Generator.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrEmptyResponse indicates the model returned no text.
	ErrEmptyResponse = errors.New("model returned no text")

	// ErrRetriesExhausted indicates every attempt failed.
	ErrRetriesExhausted = errors.New("adjudication retries exhausted")
)
