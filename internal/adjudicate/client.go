package adjudicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-1.5-flash"
	// DefaultTemperature keeps answers close to deterministic.
	DefaultTemperature = 0.1
	// DefaultMaxOutputTokens bounds the answer length.
	DefaultMaxOutputTokens = 500
	// DefaultRequestsPerMinute paces requests to the model.
	DefaultRequestsPerMinute = 300

	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 1 << 20
	maxErrorBodyRunes  = 200
)

// GenerationConfig controls how the model samples its answer.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig returns the low-randomness, short-answer configuration.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// Config holds the settings for the Gemini client and the Live adjudicator.
type Config struct {
	// APIKey enables adjudication. An empty key selects the Disabled adjudicator.
	APIKey string
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
	// Model overrides DefaultModel.
	Model string
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// RequestsPerMinute paces requests. Zero or less disables pacing.
	RequestsPerMinute int
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// Generation is sent with every request.
	Generation GenerationConfig
}

// GeminiClient calls the Gemini generateContent REST endpoint. It makes a
// single attempt per call; retries belong to the caller.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption customizes a GeminiClient.
type ClientOption func(*GeminiClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *GeminiClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter overrides the request pacing limiter.
func WithLimiter(limiter *rate.Limiter) ClientOption {
	return func(c *GeminiClient) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// NewGeminiClient builds a client from cfg. It fails when no API key is set.
func NewGeminiClient(cfg Config, opts ...ClientOption) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	c := &GeminiClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(firstNonEmpty(cfg.BaseURL, DefaultBaseURL), "/"),
		model:      firstNonEmpty(cfg.Model, DefaultModel),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// StatusError reports a non-2xx response from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini request: http %d: %s", e.StatusCode, e.Body)
}

// Generate sends prompt to the model and returns the concatenated text of the
// first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gemini request: wait for rate limiter: %w", err)
	}

	encoded, err := json.Marshal(generateContentRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", fmt.Errorf("gemini request: encode body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("gemini request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("gemini request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncateRunes(strings.TrimSpace(string(body)), maxErrorBodyRunes),
		}
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("gemini request: decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("gemini request: api error %s: %s", decoded.Error.Status, decoded.Error.Message)
	}
	if len(decoded.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w (finish_reason=%q)", ErrEmptyResponse, decoded.Candidates[0].FinishReason)
	}
	return text.String(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
