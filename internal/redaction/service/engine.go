package service

import (
	"regexp"
	"strings"

	redactionDomain "github.com/allisson/trustguard/internal/redaction/domain"
)

// Engine detects and reversibly redacts PII in free text and documents.
type Engine interface {
	// Redact replaces every detected PII span with a fresh token. A nil config
	// means the default all-categories-on configuration.
	Redact(text string, cfg *redactionDomain.Config) redactionDomain.RedactionResult

	// Restore replaces every token occurrence with its mapped original value.
	Restore(redactedText string, redactionMap map[string]string) string

	// ContainsPII reports whether any pattern matches the text.
	ContainsPII(text string) bool

	// Analyze summarizes PII exposure without returning the detected values.
	Analyze(text string) redactionDomain.Analysis

	// RedactDocument recursively redacts every string value in a document
	// (maps, slices, scalars), merging all redactions into one combined map.
	// Tokens stay unique across fields through a single shared counter.
	RedactDocument(doc any, cfg *redactionDomain.Config) (any, map[string]string)
}

// patternEngine implements Engine over an ordered pattern table.
type patternEngine struct {
	patterns []Pattern
}

// NewEngine creates a redaction engine. With no patterns given it uses the
// default regional table.
func NewEngine(patterns ...Pattern) Engine {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &patternEngine{patterns: patterns}
}

// redactionState carries the shared counter and accumulators through one
// redaction call, including every field of a document walk.
type redactionState struct {
	counter int
	mapping map[string]string
	seen    map[redactionDomain.TokenType]bool
	types   []redactionDomain.TokenType
}

func newRedactionState() *redactionState {
	return &redactionState{
		mapping: make(map[string]string),
		seen:    make(map[redactionDomain.TokenType]bool),
	}
}

// mint creates the next token, records the mapping, and tracks detected types.
func (s *redactionState) mint(t redactionDomain.TokenType, original string) string {
	s.counter++
	token := t.Token(s.counter)
	s.mapping[token] = original
	if !s.seen[t] {
		s.seen[t] = true
		s.types = append(s.types, t)
	}
	return token
}

// Redact runs the ordered pattern table against the text. Spans replaced by
// an earlier pattern cannot be re-matched by a later one, which both prevents
// double redaction and makes the table order an intentional category priority.
func (e *patternEngine) Redact(text string, cfg *redactionDomain.Config) redactionDomain.RedactionResult {
	config := resolveConfig(cfg)
	state := newRedactionState()
	redacted := e.redactText(text, config, state)

	return redactionDomain.RedactionResult{
		RedactedText:  redacted,
		RedactedCount: state.counter,
		RedactionMap:  state.mapping,
		DetectedTypes: state.types,
	}
}

// redactText applies the enabled patterns in table order, then custom patterns.
func (e *patternEngine) redactText(text string, cfg redactionDomain.Config, state *redactionState) string {
	for _, p := range e.patterns {
		if !p.Enabled(cfg) {
			continue
		}
		text = p.Regexp.ReplaceAllStringFunc(text, func(match string) string {
			return state.mint(p.Type, match)
		})
	}

	for _, custom := range cfg.CustomPatterns {
		re, err := regexp.Compile(custom.Pattern)
		if err != nil {
			// Invalid custom patterns are skipped, never abort the redaction
			continue
		}
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			return state.mint(redactionDomain.TokenTypeCustom, match)
		})
	}

	return text
}

// Restore replaces every token with its original value. For any text whose
// substrings do not themselves look like tokens, Restore(Redact(t)) == t.
func (e *patternEngine) Restore(redactedText string, redactionMap map[string]string) string {
	restored := redactedText
	for token, original := range redactionMap {
		restored = strings.ReplaceAll(restored, token, original)
	}
	return restored
}

// ContainsPII reports whether redaction would change the text.
func (e *patternEngine) ContainsPII(text string) bool {
	return e.Redact(text, nil).RedactedCount > 0
}

// Analyze wraps Redact and derives the risk level, discarding the values.
func (e *patternEngine) Analyze(text string) redactionDomain.Analysis {
	result := e.Redact(text, nil)
	return redactionDomain.Analysis{
		HasPII:    result.RedactedCount > 0,
		Types:     result.DetectedTypes,
		Count:     result.RedactedCount,
		RiskLevel: redactionDomain.RiskFromRedactions(result.RedactedCount, result.DetectedTypes),
	}
}

// RedactDocument walks the document tree (maps, slices, scalars) and redacts
// every string independently. One shared counter keeps tokens globally unique
// across fields, so the combined map can restore any of them.
func (e *patternEngine) RedactDocument(doc any, cfg *redactionDomain.Config) (any, map[string]string) {
	config := resolveConfig(cfg)
	state := newRedactionState()
	redacted := e.redactValue(doc, config, state)
	return redacted, state.mapping
}

// redactValue is the recursive visitor over the typed document tree.
func (e *patternEngine) redactValue(value any, cfg redactionDomain.Config, state *redactionState) any {
	switch v := value.(type) {
	case string:
		return e.redactText(v, cfg, state)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, nested := range v {
			out[key] = e.redactValue(nested, cfg, state)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = e.redactValue(nested, cfg, state)
		}
		return out
	default:
		// Non-string scalars carry no redactable text
		return v
	}
}

// resolveConfig applies the default configuration when none is given.
func resolveConfig(cfg *redactionDomain.Config) redactionDomain.Config {
	if cfg == nil {
		return redactionDomain.DefaultConfig()
	}
	return *cfg
}
