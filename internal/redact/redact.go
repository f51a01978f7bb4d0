// Package redact scrubs sensitive material from strings before they reach
// logs. Error values in this codebase can carry connection strings, tokens
// or addresses from lower layers; redact them once, centrally, instead of
// trusting every call site.
package redact

import "regexp"

const (
	credentialPlaceholder = "[REDACTED_CREDENTIAL]"
	tokenPlaceholder      = "[REDACTED_TOKEN]"
	emailPlaceholder      = "[REDACTED_EMAIL]"
	hostPlaceholder       = "[REDACTED_HOST]"
)

var replacements = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	// Connection strings with inline credentials (postgres://user:pw@host)
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`), credentialPlaceholder + "@"},

	// password=..., secret=..., token=... style key/value fragments
	{regexp.MustCompile(`(?i)(password|passwd|secret|token|key)\s*[=:]\s*\S+`), credentialPlaceholder},

	// JWTs: three dot-separated base64url segments starting with eyJ
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), tokenPlaceholder},

	// Email addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), emailPlaceholder},

	// host:port endpoints
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}:\d{1,5}\b`), hostPlaceholder},
}

// String returns input with sensitive fragments replaced by placeholders.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts an error's message. A nil error yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
