// Package service implements the pattern-based PII redaction engine.
// Detection runs a fixed, ordered pattern table against the text; the table
// is data, not logic, so deploying to a different locale means swapping the
// table without touching the engine.
package service

import (
	"regexp"

	redactionDomain "github.com/allisson/trustguard/internal/redaction/domain"
)

// Category groups patterns under the config toggles.
type Category string

const (
	CategoryIDs       Category = "ids"
	CategoryPhones    Category = "phones"
	CategoryEmails    Category = "emails"
	CategoryFinancial Category = "financial"
	CategoryNames     Category = "names"
	CategoryAddresses Category = "addresses"
)

// Pattern is one entry of the detection table: a compiled expression, the
// token type its matches redact to, and the config category that gates it.
type Pattern struct {
	Name     string
	Category Category
	Type     redactionDomain.TokenType
	Regexp   *regexp.Regexp
}

// Enabled reports whether this pattern's category is switched on.
func (p Pattern) Enabled(cfg redactionDomain.Config) bool {
	switch p.Category {
	case CategoryIDs:
		return cfg.IDs
	case CategoryPhones:
		return cfg.Phones
	case CategoryEmails:
		return cfg.Emails
	case CategoryFinancial:
		return cfg.Financial
	case CategoryNames:
		return cfg.Names
	case CategoryAddresses:
		return cfg.Addresses
	default:
		return false
	}
}

// DefaultPatterns returns the regional pattern table: Israeli identifiers,
// phone and bank-account formats, plus generic international patterns.
//
// Order matters and is part of the contract. Categories may overlap (a bare
// 9-digit sequence is both an ID candidate and part of a phone number), so
// detection order is the tie-break: IDs before phones before emails before
// financial before names. Once a span is replaced with a token it cannot be
// re-matched by a later pattern.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// Identity documents
		{
			Name:     "israeli_id",
			Category: CategoryIDs,
			Type:     redactionDomain.TokenTypeID,
			Regexp:   regexp.MustCompile(`\b\d{9}\b`),
		},
		{
			Name:     "ssn",
			Category: CategoryIDs,
			Type:     redactionDomain.TokenTypeSSN,
			Regexp:   regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		},
		{
			Name:     "passport",
			Category: CategoryIDs,
			Type:     redactionDomain.TokenTypePassport,
			Regexp:   regexp.MustCompile(`\b[A-Z]{1,2}\d{7,8}\b`),
		},
		{
			Name:     "date_of_birth",
			Category: CategoryIDs,
			Type:     redactionDomain.TokenTypeCustom,
			Regexp:   regexp.MustCompile(`\b\d{1,2}[./-]\d{1,2}[./-](?:19|20)\d{2}\b`),
		},

		// Phone numbers (Israeli mobile, international prefix, landline)
		{
			Name:     "israeli_mobile",
			Category: CategoryPhones,
			Type:     redactionDomain.TokenTypePhone,
			Regexp:   regexp.MustCompile(`\b05\d[-\s]?\d{3}[-\s]?\d{4}\b`),
		},
		{
			Name:     "israeli_international",
			Category: CategoryPhones,
			Type:     redactionDomain.TokenTypePhone,
			Regexp:   regexp.MustCompile(`\+972[-\s]?\d{1,2}[-\s]?\d{3}[-\s]?\d{4}\b`),
		},
		{
			Name:     "israeli_landline",
			Category: CategoryPhones,
			Type:     redactionDomain.TokenTypePhone,
			Regexp:   regexp.MustCompile(`\b0[23489][-\s]?\d{3}[-\s]?\d{4}\b`),
		},

		// Email addresses
		{
			Name:     "email",
			Category: CategoryEmails,
			Type:     redactionDomain.TokenTypeEmail,
			Regexp:   regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`),
		},

		// Financial identifiers
		{
			Name:     "credit_card",
			Category: CategoryFinancial,
			Type:     redactionDomain.TokenTypeCreditCard,
			Regexp:   regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
		},
		{
			Name:     "iban",
			Category: CategoryFinancial,
			Type:     redactionDomain.TokenTypeIBAN,
			Regexp:   regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Za-z0-9]{11,30}\b`),
		},
		{
			Name:     "israeli_bank_account",
			Category: CategoryFinancial,
			Type:     redactionDomain.TokenTypeBankAccount,
			Regexp:   regexp.MustCompile(`\b\d{2}-\d{3}-\d{5,9}\b`),
		},

		// Generic Latin name-pair heuristic
		{
			Name:     "name_pair",
			Category: CategoryNames,
			Type:     redactionDomain.TokenTypeName,
			Regexp:   regexp.MustCompile(`\b[A-Z][a-z]+\s[A-Z][a-z]+\b`),
		},

		// Network addresses
		{
			Name:     "ipv4",
			Category: CategoryAddresses,
			Type:     redactionDomain.TokenTypeCustom,
			Regexp:   regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		},
	}
}
