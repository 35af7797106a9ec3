// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. This package helps prevent
// the accidental leakage of credentials, connection strings, API keys, file paths,
// and SQL that might be included in error messages.
package redact

import (
	"log/slog"
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	StackTracePlaceholder         = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order. Earlier rules consume text later rules would
// otherwise partially match, e.g. credentials inside connection strings.
var rules = []rule{
	// Stack traces swallow the remainder of the message.
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*`), StackTracePlaceholder},

	// Database connection strings, user info only.
	{regexp.MustCompile(`(?i)\b(?:postgres(?:ql)?|mysql|mongodb)://[^@\s]+@`), RedactedCredentialPlaceholder},

	// Google API keys as issued for Gemini.
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`), RedactedKeyPlaceholder},

	// Keys passed as query parameters.
	{regexp.MustCompile(`(?i)([?&](?:key|api_key|token)=)[^&\s]+`), "${1}" + RedactedKeyPlaceholder},

	// Key or secret assignments.
	{
		regexp.MustCompile(`(?i)\b(?:api[_-]?key|token|secret)\s*[:=]\s*['"]?[A-Za-z0-9_\-.~+/]{8,}['"]?`),
		RedactedKeyPlaceholder,
	},

	// Password assignments.
	{regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\s*[:=]\s*['"]?[^'"&\s]+['"]?`), RedactedCredentialPlaceholder},

	// SQL statements, only when shaped like a statement.
	{
		regexp.MustCompile(`(?i)\b(?:SELECT\b[^;\n]*\bFROM|INSERT\s+INTO\b[^;\n]*\bVALUES|UPDATE\b[^;\n]*\bSET|DELETE\s+FROM)\b[^;\n]*`),
		RedactedSQLPlaceholder,
	},

	// File paths.
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), RedactedPathPlaceholder},

	// Email addresses.
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

// ErrorAttr returns the redacted error as an "error" log attribute.
func ErrorAttr(err error) slog.Attr {
	return slog.String("error", Error(err))
}
