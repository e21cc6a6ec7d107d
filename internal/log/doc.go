// Package log builds the slog loggers used by abnmatch.
//
// Every logger returned by this package wraps its output handler in a
// SecureHandler, which masks credentials before they are written:
//   - the inference API key (api_key, x-goog-api-key and similar keys)
//   - passwords embedded in database DSNs, which keep their user and host
//   - bearer and basic authorization values and Gemini style keys found in any value
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Info("connecting", "dsn", "postgres://app:s3cret@db/abn")
//	// dsn=postgres://app:***REDACTED***@db/abn
package log
