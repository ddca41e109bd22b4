// Package logging keeps secrets out of prmptr's log output. Chain input
// files and substituted prompts can carry whatever the user pasted into
// them, API keys included, so text headed for the log file passes through
// the redaction layer here first.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue replaces any detected secret.
const RedactedValue = "[REDACTED]"

// secretPatterns match credential shapes that can show up inside prompt
// text or configuration values.
var secretPatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // compiled once, read-only
	// OpenAI project keys (sk-proj-...)
	regexp.MustCompile(`sk-proj-[a-zA-Z0-9_-]+`),

	// Anthropic keys (sk-ant-api...); command providers often wrap a CLI
	// that authenticates with one
	regexp.MustCompile(`sk-ant-api[a-zA-Z0-9_-]+`),

	// Classic OpenAI keys (sk- followed by a long token)
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),

	// api_key / apikey / api-key assignments
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["']?([a-zA-Z0-9_-]{16,})["']?`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_-]{20,}`),

	// Authorization headers
	regexp.MustCompile(`(?i)authorization\s*[:=]\s*["']?[a-zA-Z0-9_-]{20,}["']?`),

	// secret / password / credential assignments
	regexp.MustCompile(`(?i)(secret|password|credential|passwd|pwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	// token / auth assignments with base64-looking values
	regexp.MustCompile(`(?i)(token|auth)\s*[:=]\s*["']?[a-zA-Z0-9+/=]{32,}["']?`),
}

// secretFieldNames lists log field names whose values are redacted
// outright, without looking at the value. Matching is case-insensitive.
var secretFieldNames = []string{ //nolint:gochecknoglobals // read-only list
	"api_key",
	"apikey",
	"api-key",
	"auth_token",
	"authtoken",
	"auth-token",
	"password",
	"passwd",
	"secret",
	"credential",
	"credentials",
	"access_token",
	"accesstoken",
	"access-token",
	"bearer",
	"authorization",
	"openai_api_key",
	"anthropic_api_key",
}

// secretFieldNameSet holds secretFieldNames for exact lookups.
//
//nolint:gochecknoglobals // built once from secretFieldNames
var secretFieldNameSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(secretFieldNames))
	for _, name := range secretFieldNames {
		s[name] = struct{}{}
	}
	return s
}()

// nameSeparators are the word boundaries recognized inside field names.
var nameSeparators = []string{"_", "-"} //nolint:gochecknoglobals // read-only list

// ContainsSensitiveData reports whether s matches any secret pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range secretPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every secret pattern match in value with
// RedactedValue. Use it on free text that may embed key material, such as
// a prompt preview built from chain input.
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName reports whether a log field name denotes a secret.
// Exact entries match directly; longer names match when they contain a
// secret word on a separator boundary (user_api_key, db-password). A bare
// substring without a boundary does not count, so "secretariat" and
// "passwords" pass through.
func IsSensitiveFieldName(fieldName string) bool {
	name := strings.ToLower(fieldName)
	if _, ok := secretFieldNameSet[name]; ok {
		return true
	}
	for _, word := range secretFieldNames {
		if hasBoundedWord(name, word) {
			return true
		}
	}
	return false
}

// hasBoundedWord reports whether word occurs in name on a separator
// boundary: leading (word_rest), trailing (rest_word), or interior
// (rest_word_rest). Equality alone is not a boundary hit.
func hasBoundedWord(name, word string) bool {
	if name == "" || word == "" {
		return false
	}
	for _, sep := range nameSeparators {
		if strings.HasPrefix(name, word+sep) || strings.HasSuffix(name, sep+word) {
			return true
		}
		for _, sep2 := range nameSeparators {
			if strings.Contains(name, sep+word+sep2) {
				return true
			}
		}
	}
	return false
}

// RedactIfSensitive redacts the whole value when the field name denotes a
// secret, and otherwise pattern-filters the value.
func RedactIfSensitive(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// SafeValue is the call-site helper for logging string fields that might
// hold secrets:
//
//	logger.Debug().Str("prompt_preview", logging.SafeValue("prompt_preview", preview))
func SafeValue(fieldName, value string) string {
	return RedactIfSensitive(fieldName, value)
}

// SensitiveDataHook flags log events whose message matches a secret
// pattern. Zerolog hooks cannot rewrite the message itself, so the hook
// only marks the event; the FilteringWriter wrapping the log file does
// the actual redaction before anything reaches disk.
type SensitiveDataHook struct{}

// NewSensitiveDataHook returns a hook for zerolog.Logger.Hook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// FilteringWriter redacts secret patterns from everything written through
// it. The log file writer is wrapped in one so key material never reaches
// disk even when a message or field slipped past the call sites.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w with pattern redaction.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports the original length on success
// so callers never see a short write from redaction shrinking the text.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	if _, err = fw.w.Write([]byte(FilterSensitiveValue(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
