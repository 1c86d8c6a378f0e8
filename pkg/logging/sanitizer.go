// Package logging provides sanitizers that keep credentials out of logs and
// error responses.
package logging

import (
	"regexp"
)

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// API keys passed as query parameters (the YouTube Data API takes the key
	// this way, so transport errors carry it inside the request URL).
	apiKeyParamPattern = regexp.MustCompile(`(?i)(key|api[_-]?key|apikey)=[^&\s"]+`)

	// Bearer tokens in error text echoed from upstream services.
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9._-]+`)

	// password=xxx style credentials in connection strings.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@host credentials in URL-style connection strings.
	credentialsPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@`)
)

// SanitizeURL redacts API-key query parameters from a URL before logging.
func SanitizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	return apiKeyParamPattern.ReplaceAllString(raw, "${1}="+RedactedText)
}

// SanitizeError returns an error's message with API keys, tokens, and
// connection credentials redacted. Use it whenever an error from an outbound
// call might echo the request URL.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := apiKeyParamPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	sanitized = passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = credentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
	return sanitized
}

// SanitizeConnectionString removes credentials from a database connection
// string before logging.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = credentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
	return sanitized
}
