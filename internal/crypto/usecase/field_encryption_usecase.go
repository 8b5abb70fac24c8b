// Package usecase implements business logic orchestration for field-level encryption.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/trustguard/internal/crypto/domain"
	"github.com/allisson/trustguard/internal/crypto/service"
	apperrors "github.com/allisson/trustguard/internal/errors"
)

// FieldEncryptionUseCase encrypts and decrypts sensitive fields in records
// before persistence and after retrieval.
type FieldEncryptionUseCase interface {
	// EncryptSensitiveFields returns a copy of record with every string value
	// whose key matches the sensitive set (base set plus extraFields) replaced
	// by its ciphertext. Non-string and non-matching values pass through.
	EncryptSensitiveFields(ctx context.Context, record map[string]any, extraFields ...string) (map[string]any, error)

	// DecryptSensitiveFields is the inverse walk. Values that fail to decrypt
	// (e.g., persisted before encryption was enabled) are kept unchanged.
	DecryptSensitiveFields(ctx context.Context, record map[string]any, extraFields ...string) (map[string]any, error)
}

// fieldEncryptionUseCase implements FieldEncryptionUseCase.
type fieldEncryptionUseCase struct {
	cipher service.FieldCipher
}

// EncryptSensitiveFields shallow-walks the record keys and encrypts matching
// string values. The input record is never mutated; a fresh copy is returned.
// Fails on the first encryption error (missing or invalid key) since partial
// encryption of a record must never be persisted.
func (f *fieldEncryptionUseCase) EncryptSensitiveFields(
	ctx context.Context,
	record map[string]any,
	extraFields ...string,
) (map[string]any, error) {
	if record == nil {
		return nil, nil
	}

	out := make(map[string]any, len(record))
	for key, value := range record {
		str, ok := value.(string)
		if !ok || !cryptoDomain.IsSensitiveField(key, extraFields...) {
			out[key] = value
			continue
		}

		encrypted, err := f.cipher.Encrypt(ctx, str)
		if err != nil {
			return nil, apperrors.Wrapf(err, "failed to encrypt field %q", key)
		}
		out[key] = encrypted
	}

	return out, nil
}

// DecryptSensitiveFields shallow-walks the record keys and decrypts matching
// string values. Decryption failures keep the original value: some persisted
// values predate encryption being enabled, so best-effort is the contract
// here. Key configuration errors still abort, since nothing can be decrypted
// without a key.
func (f *fieldEncryptionUseCase) DecryptSensitiveFields(
	ctx context.Context,
	record map[string]any,
	extraFields ...string,
) (map[string]any, error) {
	if record == nil {
		return nil, nil
	}

	out := make(map[string]any, len(record))
	for key, value := range record {
		str, ok := value.(string)
		if !ok || !cryptoDomain.IsSensitiveField(key, extraFields...) {
			out[key] = value
			continue
		}

		decrypted, err := f.cipher.Decrypt(ctx, str)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrConfiguration) {
				return nil, apperrors.Wrapf(err, "failed to decrypt field %q", key)
			}
			// Value was never encrypted, keep it as is
			out[key] = str
			continue
		}
		out[key] = decrypted
	}

	return out, nil
}

// NewFieldEncryptionUseCase creates a new FieldEncryptionUseCase with the provided cipher.
func NewFieldEncryptionUseCase(cipher service.FieldCipher) FieldEncryptionUseCase {
	return &fieldEncryptionUseCase{cipher: cipher}
}
