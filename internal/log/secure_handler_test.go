package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestSecureHandler_SanitizesSensitiveKeys tests that sensitive keys are masked.
func TestSecureHandler_SanitizesSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "api_key is masked", key: "api_key", value: "not-a-real-key-123", wantMask: true},
		{name: "goog header is masked", key: "x-goog-api-key", value: "not-a-real-key-123", wantMask: true},
		{name: "uppercase key is masked", key: "GEMINI_API_KEY", value: "not-a-real-key-123", wantMask: true},
		{name: "authorization is masked", key: "authorization", value: "token123", wantMask: true},
		{name: "password is masked", key: "password", value: "hunter2", wantMask: true},
		{name: "key containing token is masked", key: "session_token", value: "abcdef", wantMask: true},
		{name: "abn is kept", key: "abn", value: "12345678901", wantMask: false},
		{name: "url is kept", key: "url", value: "https://acme.example.com.au", wantMask: false},
		{name: "primary_key is kept", key: "primary_key", value: "scraped_id", wantMask: false},
		{name: "run id is kept", key: "run_id", value: "5f0c6e64-3c54-4f7e-9c55-1f3c0b2f4c1e", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			NewSecureLogger(&buf, true).Info("test message", tt.key, tt.value)

			output := buf.String()
			if tt.wantMask {
				if strings.Contains(output, tt.value) {
					t.Errorf("expected %q to be masked: %s", tt.value, output)
				}
				if !strings.Contains(output, MaskValue) {
					t.Errorf("expected mask in output: %s", output)
				}
			} else if !strings.Contains(output, tt.value) {
				t.Errorf("expected %q in output: %s", tt.value, output)
			}
		})
	}
}

// TestSecureHandler_SanitizesSensitivePatterns tests value based masking.
func TestSecureHandler_SanitizesSensitivePatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		wantMask bool
	}{
		{name: "bearer token", value: "Bearer abc.def.ghi", wantMask: true},
		{name: "basic auth", value: "Basic dXNlcm5hbWU6cGFzc3dvcmQ=", wantMask: true},
		{name: "google api key", value: "AIza" + strings.Repeat("x", 35), wantMask: true},
		{name: "company name", value: "ACME INDUSTRIAL SUPPLIES", wantMask: false},
		{name: "short status", value: "ok", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			NewSecureLogger(&buf, true).Info("test message", "data", tt.value)

			got := strings.Contains(buf.String(), MaskValue)
			if got != tt.wantMask {
				t.Errorf("masked = %v, want %v: %s", got, tt.wantMask, buf.String())
			}
		})
	}
}

// TestRedactDSN tests that only the password of a connection string is hidden.
func TestRedactDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{
			in:   "postgres://app:s3cret@db:5432/abr?sslmode=disable",
			want: "postgres://app:" + MaskValue + "@db:5432/abr?sslmode=disable",
		},
		{in: "postgres://app@db/abr", want: "postgres://app@db/abr"},
		{in: "host=db user=app password=s3cret dbname=abr", want: "host=db user=app password=" + MaskValue + " dbname=abr"},
		{in: "host=db password='a b' dbname=abr", want: "host=db password=" + MaskValue + " dbname=abr"},
		{in: "/var/lib/abnmatch/abnmatch.db", want: "/var/lib/abnmatch/abnmatch.db"},
	}
	for _, tt := range tests {
		if got := RedactDSN(tt.in); got != tt.want {
			t.Errorf("RedactDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestSecureHandler_DSNAttribute tests DSN masking through a logger.
func TestSecureHandler_DSNAttribute(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewSecureLogger(&buf, false).Warn("connecting", "dsn", "postgres://app:s3cret@db/abr")

	output := buf.String()
	if strings.Contains(output, "s3cret") {
		t.Errorf("password leaked: %s", output)
	}
	if !strings.Contains(output, "app:") || !strings.Contains(output, "@db/abr") {
		t.Errorf("DSN not readable: %s", output)
	}
}

// TestSecureHandler_LogLevels tests the verbose switch.
func TestSecureHandler_LogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
		wantWarn  bool
	}{
		{name: "verbose logs debug", verbose: true, wantDebug: true, wantWarn: true},
		{name: "quiet hides debug", verbose: false, wantDebug: false, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, Options{Verbose: tt.verbose})
			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")

			output := buf.String()
			if got := strings.Contains(output, "debug message"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(output, "info message"); got != tt.verbose {
				t.Errorf("info logged = %v, want %v", got, tt.verbose)
			}
			if got := strings.Contains(output, "warn message"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

// TestSecureHandler_WithAttrs tests that pre-bound attributes are masked.
func TestSecureHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true).With("api_key", "not-a-real-key-123", "model", "gemini-1.5-flash")
	logger.Info("request")

	output := buf.String()
	if strings.Contains(output, "not-a-real-key-123") {
		t.Errorf("api key leaked: %s", output)
	}
	if !strings.Contains(output, "gemini-1.5-flash") {
		t.Errorf("model missing: %s", output)
	}
}

// TestSecureHandler_WithGroup tests masking inside groups.
func TestSecureHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true)
	logger.Info("request", slog.Group("headers", slog.String("x-goog-api-key", "not-a-real-key-123")))
	logger.WithGroup("llm").Info("request", "password", "hunter2")

	output := buf.String()
	if strings.Contains(output, "not-a-real-key-123") || strings.Contains(output, "hunter2") {
		t.Errorf("secret leaked: %s", output)
	}
}

// TestNew_JSON tests the JSON handler option.
func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, Options{JSON: true}).Warn("strategy failed", "strategy", "fuzzy", "api_key", "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	if entry["strategy"] != "fuzzy" {
		t.Errorf("strategy = %v", entry["strategy"])
	}
	if entry["api_key"] != MaskValue {
		t.Errorf("api_key = %v, want mask", entry["api_key"])
	}
}

// TestNewSecureHandler_NilHandler tests the nil fallback.
func TestNewSecureHandler_NilHandler(t *testing.T) {
	t.Parallel()

	if h := NewSecureHandler(nil); h.handler == nil {
		t.Error("expected default handler")
	}
}
