package logging

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Patterns for secrets that must never reach the log stream. The client
// forwards auth headers and the occasional pasted credential shows up in
// message bodies.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9]{20,})`),
	regexp.MustCompile(`(?i)bearer\s+([a-zA-Z0-9._-]{20,})`),
	regexp.MustCompile(`(?i)(key|token|secret|password|auth)[=:]["']?([a-zA-Z0-9+/=_-]{32,})["']?`),
}

// RedactedValue is the replacement for sensitive values.
const RedactedValue = "[REDACTED]"

// Redact replaces sensitive information in a string.
func Redact(s string) string {
	result := s
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// Preview produces a log-safe, redacted preview of a message body,
// truncated to at most n runes.
func Preview(text string, n int) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	cleaned = Redact(cleaned)
	if n <= 0 || utf8.RuneCountInString(cleaned) <= n {
		return cleaned
	}
	runes := []rune(cleaned)
	return string(runes[:n]) + "..."
}
