package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"sync"

	cryptoDomain "github.com/allisson/trustguard/internal/crypto/domain"
	apperrors "github.com/allisson/trustguard/internal/errors"
)

// nonceSize is the AEAD nonce length for both supported algorithms.
const nonceSize = 12

// AEADFieldCipher implements FieldCipher using an AEAD cipher over individual
// string values. Ciphertext is encoded as base64(nonce || ciphertext || tag)
// so a single opaque string can be stored in any text column.
//
// The cipher is built lazily from the KeySource on first use, matching the
// lazy-initialization contract: a misconfigured key fails the first encrypt
// or decrypt call, not process start.
type AEADFieldCipher struct {
	keySource KeySource
	algorithm cryptoDomain.Algorithm

	once sync.Once
	aead AEAD
	err  error
}

// NewAEADFieldCipher creates a FieldCipher using the given key source and algorithm.
func NewAEADFieldCipher(keySource KeySource, algorithm cryptoDomain.Algorithm) *AEADFieldCipher {
	return &AEADFieldCipher{
		keySource: keySource,
		algorithm: algorithm,
	}
}

// cipher initializes the AEAD on first use and caches it for the process lifetime.
func (f *AEADFieldCipher) cipher(ctx context.Context) (AEAD, error) {
	f.once.Do(func() {
		key, err := f.keySource.Key(ctx)
		if err != nil {
			f.err = err
			return
		}
		f.aead, f.err = NewCipher(key, f.algorithm)
	})
	return f.aead, f.err
}

// Encrypt encrypts a plaintext string. Empty input returns empty output so
// callers can pass optional fields through without special-casing.
func (f *AEADFieldCipher) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	aead, err := f.cipher(ctx)
	if err != nil {
		return "", err
	}

	ciphertext, nonce, err := aead.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encrypt field")
	}

	// Store nonce and ciphertext as one opaque value
	combined := make([]byte, 0, len(nonce)+len(ciphertext))
	combined = append(combined, nonce...)
	combined = append(combined, ciphertext...)

	return base64.StdEncoding.EncodeToString(combined), nil
}

// Decrypt is the inverse of Encrypt. Tampered or malformed ciphertext fails
// with ErrDecryptionFailed: the AEAD tag check rejects corrupted data instead
// of yielding garbage plaintext.
func (f *AEADFieldCipher) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	aead, err := f.cipher(ctx)
	if err != nil {
		return "", err
	}

	combined, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}
	if len(combined) <= nonceSize {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := aead.Decrypt(combined[nonceSize:], combined[:nonceSize], nil)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// Hash returns the SHA-256 hex digest of a value. One-way, used only for
// equality comparison, never to recover the input.
func (f *AEADFieldCipher) Hash(value string) string {
	digest := sha256.Sum256([]byte(value))
	return hex.EncodeToString(digest[:])
}

// GenerateToken returns a cryptographically random hex string of 2*length
// characters (length random bytes).
func (f *AEADFieldCipher) GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "token length must be positive")
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.Wrap(err, "failed to generate token")
	}

	return hex.EncodeToString(buf), nil
}

// MaskValue masks a value for display, keeping only the last visibleChars
// characters. Values no longer than visibleChars are fully masked, padded to
// the original length. Masking is single-pass only: masking an already-masked
// value masks the asterisks further.
func MaskValue(value string, visibleChars int) string {
	if visibleChars < 0 {
		visibleChars = 0
	}
	if len(value) <= visibleChars {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-visibleChars) + value[len(value)-visibleChars:]
}
