// Package logging provides logging utilities including sensitive data
// filtering. App Service application settings routinely carry secrets
// (connection strings, API keys), so anything derived from a slot's
// settings is filtered before it reaches a log file.
package logging

import (
	"io"
	"regexp"
	"strings"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns contains compiled regular expressions for detecting
// sensitive values in free-form text. These match the credential formats
// most commonly found in App Service settings.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// Azure storage account keys inside connection strings
	regexp.MustCompile(`(?i)accountkey=[a-zA-Z0-9+/=]{20,}`),

	// Shared access signatures (query string or bare)
	regexp.MustCompile(`(?i)(sharedaccesssignature|sig)=[a-zA-Z0-9%+/=]{20,}`),

	// SQL/AMQP connection string passwords
	regexp.MustCompile(`(?i)(password|pwd)\s*=\s*[^;\s"']{6,}`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),

	// Generic API keys and secrets with key=value or key: value shapes
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|secret|credential|token)\s*[:=]\s*["']?[a-zA-Z0-9+/._-]{16,}["']?`),

	// Private key blocks
	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),
}

// sensitiveNameFragments are substrings of setting names whose values are
// always masked, regardless of what the value looks like.
// Case-insensitive matching is performed.
var sensitiveNameFragments = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"password",
	"passwd",
	"secret",
	"credential",
	"connectionstring",
	"connection_string",
	"apikey",
	"api_key",
	"api-key",
	"token",
	"sas",
	"privatekey",
	"private_key",
	"cert",
}

// IsSensitiveName reports whether a setting name looks like it holds a
// secret.
func IsSensitiveName(name string) bool {
	lower := strings.ToLower(name)
	for _, fragment := range sensitiveNameFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// MaskValue returns value, or RedactedValue when the setting name
// indicates a secret or the value itself matches a credential pattern.
// Use this whenever a setting value is placed in a log field.
func MaskValue(name, value string) string {
	if value == "" {
		return value
	}
	if IsSensitiveName(name) || ContainsSensitiveData(value) {
		return RedactedValue
	}
	return value
}

// ContainsSensitiveData reports whether s matches any known credential
// pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// Redact replaces every credential-pattern match in s with RedactedValue.
func Redact(s string) string {
	for _, pattern := range sensitivePatterns {
		s = pattern.ReplaceAllString(s, RedactedValue)
	}
	return s
}

// FilteringWriter wraps an io.Writer and redacts sensitive data from
// every write. It is used in front of the rotating log file so secrets
// never reach disk even if a call site forgets to mask a field.
type FilteringWriter struct {
	target io.Writer
}

// NewFilteringWriter creates a FilteringWriter over target.
func NewFilteringWriter(target io.Writer) *FilteringWriter {
	return &FilteringWriter{target: target}
}

// Write implements io.Writer. The reported length is the length of the
// input, not the redacted output, so wrapped writers never observe a
// short-write from redaction.
func (w *FilteringWriter) Write(p []byte) (int, error) {
	redacted := Redact(string(p))
	if _, err := w.target.Write([]byte(redacted)); err != nil {
		return 0, err
	}
	return len(p), nil
}
