// Package redact provides utilities for scrubbing sensitive information
// from strings before they are logged or returned in error responses:
// database connection strings, credentials and signed tokens.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedTokenPlaceholder      = "[REDACTED_JWT]"
)

// Precompiled patterns for material that must never reach a log line.
var (
	// Database connection strings with embedded credentials.
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database)://[^@\s]+@`)

	// Passwords in key=value or key: value form.
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`)

	// API keys, secrets and bearer material.
	apiKeyRegex = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)

	// Standard three-part base64url-encoded JWT tokens.
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
)

// String redacts sensitive fragments from s.
func String(s string) string {
	s = dbConnRegex.ReplaceAllString(s, RedactedCredentialPlaceholder+"@")
	s = passwordRegex.ReplaceAllString(s, "$1$2"+RedactedCredentialPlaceholder)
	s = apiKeyRegex.ReplaceAllString(s, "$1$2"+RedactedKeyPlaceholder)
	s = jwtTokenRegex.ReplaceAllString(s, RedactedTokenPlaceholder)
	return s
}

// Error redacts an error's message for safe logging. Returns the empty
// string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
