// Package domain defines PII redaction domain models: token types, redaction
// results, risk levels, and the per-call configuration toggles.
package domain

import "fmt"

// TokenType classifies a detected PII span. The set is fixed: downstream
// consumers (audit details, restore maps) depend on these exact values.
type TokenType string

const (
	TokenTypeID          TokenType = "ID"
	TokenTypeSSN         TokenType = "SSN"
	TokenTypePassport    TokenType = "PASSPORT"
	TokenTypePhone       TokenType = "PHONE"
	TokenTypeEmail       TokenType = "EMAIL"
	TokenTypeCreditCard  TokenType = "CREDIT_CARD"
	TokenTypeBankAccount TokenType = "BANK_ACCOUNT"
	TokenTypeIBAN        TokenType = "IBAN"
	TokenTypeName        TokenType = "NAME"
	TokenTypeCustom      TokenType = "CUSTOM"
)

// Token renders the placeholder string for the n-th redaction of this type's
// call, e.g. "[PHONE_3]". Tokens are unique within a single RedactionResult;
// the redaction map is the only way back to the original value.
func (t TokenType) Token(n int) string {
	return fmt.Sprintf("[%s_%d]", t, n)
}

// financialTypes escalate the computed risk level by one step when present.
var financialTypes = map[TokenType]bool{
	TokenTypeCreditCard:  true,
	TokenTypeBankAccount: true,
	TokenTypeIBAN:        true,
}

// IsFinancial reports whether this token type carries financial exposure.
func (t TokenType) IsFinancial() bool {
	return financialTypes[t]
}

// RedactionResult is the outcome of one redaction call.
//
// The redaction map (token -> original substring) is produced fresh per call
// and must not be persisted unless restoration is explicitly required:
// discarding it makes the redaction irreversible by design.
type RedactionResult struct {
	RedactedText  string
	RedactedCount int
	RedactionMap  map[string]string
	DetectedTypes []TokenType
}

// Config toggles the pattern categories applied during redaction.
// The zero value disables everything; use DefaultConfig for the usual all-on set.
type Config struct {
	Names     bool
	Phones    bool
	Emails    bool
	Financial bool
	IDs       bool
	Addresses bool

	// CustomPatterns are applied last, after every built-in category.
	CustomPatterns []CustomPattern
}

// CustomPattern is a caller-supplied regular expression redacted as CUSTOM.
type CustomPattern struct {
	Name    string
	Pattern string
}

// DefaultConfig returns a Config with every category enabled.
func DefaultConfig() Config {
	return Config{
		Names:     true,
		Phones:    true,
		Emails:    true,
		Financial: true,
		IDs:       true,
		Addresses: true,
	}
}

// Analysis summarizes the PII exposure of a text without exposing the values.
type Analysis struct {
	HasPII    bool
	Types     []TokenType
	Count     int
	RiskLevel RiskLevel
}
