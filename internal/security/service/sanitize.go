package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup and dangerous content from untrusted input.
// The strict policy removes every HTML element and attribute, leaving only
// text content.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a strict no-markup sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// SanitizeString strips all markup from the input and trims whitespace.
func (s *Sanitizer) SanitizeString(input string) string {
	return strings.TrimSpace(s.policy.Sanitize(input))
}

// SanitizeDocument walks a decoded JSON document (maps, slices, scalars) and
// sanitizes every string value in place of the original. Keys are sanitized
// too, so hostile markup cannot hide in field names.
func (s *Sanitizer) SanitizeDocument(doc any) any {
	switch v := doc.(type) {
	case string:
		return s.SanitizeString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, nested := range v {
			out[s.SanitizeString(key)] = s.SanitizeDocument(nested)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = s.SanitizeDocument(nested)
		}
		return out
	default:
		return v
	}
}
