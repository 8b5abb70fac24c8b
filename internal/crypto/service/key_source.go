package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"os"
	"strings"
	"sync"

	"gocloud.dev/secrets"
	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/trustguard/internal/crypto/domain"
	apperrors "github.com/allisson/trustguard/internal/errors"
	customValidation "github.com/allisson/trustguard/internal/validation"

	// Register KMS provider drivers for KMS-wrapped keys
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

const (
	// EncryptionKeyEnv holds the raw key material (minimum 32 characters).
	EncryptionKeyEnv = "ENCRYPTION_KEY"

	// EncryptionKeyKMSURIEnv optionally names a KMS keeper URI. When set,
	// EncryptionKeyCiphertextEnv must hold the base64 KMS-wrapped key material.
	EncryptionKeyKMSURIEnv = "ENCRYPTION_KEY_KMS_URI"

	// EncryptionKeyCiphertextEnv holds base64 KMS-wrapped key material.
	EncryptionKeyCiphertextEnv = "ENCRYPTION_KEY_CIPHERTEXT"
)

// keyDerivationInfo versions the HKDF derivation so the algorithm can change
// without reusing derived keys.
var keyDerivationInfo = []byte("field-encryption-v1")

// EnvKeySource resolves the field encryption key lazily from the environment,
// optionally unwrapping it through a gocloud.dev KMS keeper.
//
// Resolution happens exactly once on the first Key call: the key material is
// read, validated (minimum length), stretched to a 32-byte AES/ChaCha key via
// HKDF-SHA256, and cached for the process lifetime. A missing or short key
// fails that first call with a configuration error; the service never
// silently degrades to weaker key material.
type EnvKeySource struct {
	once sync.Once
	key  []byte
	err  error
}

// NewEnvKeySource creates a new environment-backed key source.
func NewEnvKeySource() *EnvKeySource {
	return &EnvKeySource{}
}

// Key returns the derived 32-byte encryption key, loading it on first use.
func (s *EnvKeySource) Key(ctx context.Context) ([]byte, error) {
	s.once.Do(func() {
		s.key, s.err = s.load(ctx)
	})
	return s.key, s.err
}

// load reads, validates, and derives the key material.
func (s *EnvKeySource) load(ctx context.Context) ([]byte, error) {
	material, err := s.keyMaterial(ctx)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(material)

	if len(material) < cryptoDomain.MinKeyLength {
		return nil, cryptoDomain.ErrKeyMaterialTooShort
	}

	// Stretch the configured material to exactly 32 bytes
	reader := hkdf.New(sha256.New, material, nil, keyDerivationInfo)
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive encryption key")
	}

	return key, nil
}

// keyMaterial returns the raw configured key bytes, unwrapping via KMS when configured.
func (s *EnvKeySource) keyMaterial(ctx context.Context) ([]byte, error) {
	if kmsURI := os.Getenv(EncryptionKeyKMSURIEnv); kmsURI != "" {
		return s.kmsKeyMaterial(ctx, kmsURI)
	}

	raw := strings.TrimSpace(os.Getenv(EncryptionKeyEnv))
	if raw == "" {
		return nil, cryptoDomain.ErrKeyMaterialMissing
	}
	return []byte(raw), nil
}

// kmsKeyMaterial decrypts KMS-wrapped key material using a gocloud.dev keeper.
func (s *EnvKeySource) kmsKeyMaterial(ctx context.Context, kmsURI string) ([]byte, error) {
	wrapped := os.Getenv(EncryptionKeyCiphertextEnv)
	if wrapped == "" {
		return nil, cryptoDomain.ErrKeyMaterialMissing
	}

	if err := customValidation.Base64.Validate(wrapped); err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrKeyMaterialMissing, "invalid base64 key ciphertext")
	}

	ciphertext, _ := base64.StdEncoding.DecodeString(wrapped)

	keeper, err := secrets.OpenKeeper(ctx, kmsURI)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "failed to open KMS keeper: "+err.Error())
	}
	defer func() {
		_ = keeper.Close()
	}()

	material, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "failed to unwrap encryption key: "+err.Error())
	}

	return material, nil
}

// StaticKeySource returns a KeySource backed by fixed key material.
// Used by tests and CLI commands that already hold the key.
func StaticKeySource(material []byte) KeySource {
	return staticKeySource(material)
}

type staticKeySource []byte

func (s staticKeySource) Key(ctx context.Context) ([]byte, error) {
	if len(s) < cryptoDomain.MinKeyLength {
		return nil, cryptoDomain.ErrKeyMaterialTooShort
	}

	reader := hkdf.New(sha256.New, s, nil, keyDerivationInfo)
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive encryption key")
	}
	return key, nil
}
