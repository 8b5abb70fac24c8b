// Package service provides the field-level encryption service.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305) over individual
// string values, lazy key sourcing from the environment or a KMS, hashing,
// token generation, and display masking.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/trustguard/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// KeySource supplies the process-wide field encryption key.
//
// Implementations resolve key material lazily: the first call validates and
// caches the key, and a missing or too-short key surfaces as a configuration
// error on that call rather than at process start.
type KeySource interface {
	// Key returns the 32-byte derived encryption key.
	Key(ctx context.Context) ([]byte, error)
}

// FieldCipher encrypts and decrypts individual string values for persistence.
type FieldCipher interface {
	// Encrypt encrypts a plaintext string. Empty input returns empty output.
	Encrypt(ctx context.Context, plaintext string) (string, error)

	// Decrypt is the inverse of Encrypt. Empty input returns empty output.
	Decrypt(ctx context.Context, ciphertext string) (string, error)

	// Hash returns a one-way hex digest for equality comparison.
	Hash(value string) string

	// GenerateToken returns a cryptographically random hex string of the given byte length.
	GenerateToken(length int) (string, error)
}

// NewCipher creates an AEAD cipher instance for the specified algorithm.
// Returns an error if the key is not 32 bytes or the algorithm is unknown.
func NewCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != 32 {
		return nil, cryptoDomain.ErrKeyMaterialTooShort
	}

	switch alg {
	case cryptoDomain.AESGCM:
		return NewAESGCM(key)
	case cryptoDomain.ChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
