// Package domain defines field-level encryption domain models.
// Covers cipher algorithm selection, key material rules, and the
// sensitive-field set used to decide which named values get encrypted.
package domain

import "strings"

// Algorithm represents the AEAD algorithm used for field encryption.
//
// Both supported algorithms use a 256-bit key, a 12-byte nonce, and a
// 16-byte authentication tag. Prefer AESGCM on CPUs with AES-NI; ChaCha20
// performs better on hardware without AES acceleration.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// MinKeyLength is the minimum length in characters of the configured
// encryption key material. Shorter keys fail at first use with a
// configuration error, never silently degrade.
const MinKeyLength = 32

// DefaultSensitiveFields lists field-name substrings whose string values must
// be encrypted before persistence. Matching is case-insensitive substring
// containment, not exact equality: flagging too many fields is tolerated,
// missing one is the risk to minimize.
var DefaultSensitiveFields = []string{
	"idnumber",
	"id_number",
	"nationalid",
	"bankaccount",
	"bank_account",
	"creditcard",
	"credit_card",
	"salary",
	"commission",
	"password",
	"secret",
	"token",
	"apikey",
	"api_key",
	"ssn",
}

// IsSensitiveField reports whether a field name matches the sensitive set
// (base set plus any extra names).
func IsSensitiveField(name string, extra ...string) bool {
	lowered := strings.ToLower(name)
	for _, substr := range DefaultSensitiveFields {
		if strings.Contains(lowered, substr) {
			return true
		}
	}
	for _, substr := range extra {
		if substr != "" && strings.Contains(lowered, strings.ToLower(substr)) {
			return true
		}
	}
	return false
}
