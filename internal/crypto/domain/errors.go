package domain

import (
	"github.com/allisson/trustguard/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// so handlers can map them to HTTP status codes without inspecting strings.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrConfiguration, "unsupported algorithm")

	// ErrKeyMaterialMissing indicates the encryption key is not configured.
	ErrKeyMaterialMissing = errors.Wrap(errors.ErrConfiguration, "encryption key not configured")

	// ErrKeyMaterialTooShort indicates the configured key is shorter than MinKeyLength.
	ErrKeyMaterialTooShort = errors.Wrap(errors.ErrConfiguration, "encryption key too short")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// Wrong key, tampered ciphertext, or corrupted data all surface as this
	// one error; the specific cause is not disclosed to avoid aiding attackers.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
