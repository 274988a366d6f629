// Package redact removes credentials from strings before they are logged.
//
// Upstream clients (news, media search, generative models) embed API keys in
// request URLs and headers, and net/http echoes the full URL in its errors.
// Every error from those clients passes through Error before it reaches a log
// line.
package redact

import (
	"regexp"
)

// Placeholders substituted for redacted values.
const (
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules run in order; earlier rules consume text later ones would match
// more loosely.
var rules = []rule{
	// Database connection strings: keep scheme, drop userinfo.
	{
		regexp.MustCompile(`(?i)\b(postgres(?:ql)?|pgx|mysql|mongodb(?:\+srv)?)://[^@\s/]+@`),
		"$1://" + RedactedCredentialPlaceholder + "@",
	},
	// key=value DSN passwords.
	{
		regexp.MustCompile(`(?i)\b(password|passwd|pwd)=('[^']*'|[^\s&'"]+)`),
		"$1=" + RedactedCredentialPlaceholder,
	},
	// Query-string API keys (newsapi apiKey, Google key, generic token).
	{
		regexp.MustCompile(`(?i)([?&](?:api[_-]?key|key|token|access_token)=)[^&\s"']+`),
		"${1}" + RedactedKeyPlaceholder,
	},
	// Authorization headers.
	{
		regexp.MustCompile(`(?i)\b(authorization:?\s*|bearer\s+)[A-Za-z0-9_\-.~+/=]{8,}`),
		"${1}" + RedactedKeyPlaceholder,
	},
	// OpenAI secret keys.
	{
		regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{16,}`),
		RedactedKeyPlaceholder,
	},
	// Google API keys.
	{
		regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{30,}`),
		RedactedKeyPlaceholder,
	},
	// Free-form "api_key: xyz" style assignments.
	{
		regexp.MustCompile(`(?i)\b(api[_-]?key|secret|x-api-key)(['"]?\s*[:=]\s*['"]?)[A-Za-z0-9_\-.~+/]{8,}`),
		"${1}${2}" + RedactedKeyPlaceholder,
	},
	// Absolute file paths (image output directories, schema files).
	{
		regexp.MustCompile(`(^|\s)/(?:[\w.-]+/)+[\w.-]+`),
		"${1}" + RedactedPathPlaceholder,
	},
}

// String redacts credentials from input.
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

// Error redacts credentials from err's message. A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
