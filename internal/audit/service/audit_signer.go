package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	cryptoDomain "github.com/allisson/trustguard/internal/crypto/domain"
	cryptoService "github.com/allisson/trustguard/internal/crypto/service"
)

type auditSigner struct {
	keySource cryptoService.KeySource
}

// NewAuditSigner creates an HMAC-based audit log signer. The signing key is
// derived from the key source material with HKDF-SHA256, so the audit signing
// key usage never overlaps with the field encryption key usage.
func NewAuditSigner(keySource cryptoService.KeySource) Signer {
	return &auditSigner{keySource: keySource}
}

// deriveSigningKey derives a 32-byte signing key from the source key material.
// Info parameter: "audit-log-signing-v1" (versioned for future algorithm changes).
func (a *auditSigner) deriveSigningKey(ctx context.Context) ([]byte, error) {
	sourceKey, err := a.keySource.Key(ctx)
	if err != nil {
		return nil, err
	}

	info := []byte("audit-log-signing-v1")
	reader := hkdf.New(sha256.New, sourceKey, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalize converts the entry to a canonical byte representation.
// Format: id || action || user_id || resource || resource_id || details ||
// ip_address || user_agent || severity || created_at.
// Uses length-prefixed encoding for variable-length fields to prevent ambiguity.
func (a *auditSigner) canonicalize(log *auditDomain.AuditLog) ([]byte, error) {
	buf := make([]byte, 0, 1024)

	buf = append(buf, log.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(string(log.Action)))
	buf = appendLengthPrefixed(buf, []byte(log.UserID))
	buf = appendLengthPrefixed(buf, []byte(log.Resource))
	buf = appendLengthPrefixed(buf, []byte(log.ResourceID))

	if log.Details != nil {
		detailsBytes, err := json.Marshal(log.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal audit log details: %w", err)
		}
		buf = appendLengthPrefixed(buf, detailsBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = appendLengthPrefixed(buf, []byte(log.IPAddress))
	buf = appendLengthPrefixed(buf, []byte(log.UserAgent))
	buf = appendLengthPrefixed(buf, []byte(string(log.Severity)))

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(log.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates the HMAC-SHA256 signature for the audit log entry.
func (a *auditSigner) Sign(ctx context.Context, log *auditDomain.AuditLog) ([]byte, error) {
	signingKey, err := a.deriveSigningKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer cryptoDomain.Zero(signingKey)

	canonical, err := a.canonicalize(log)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize audit log: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify recomputes the signature and compares it against the stored one.
func (a *auditSigner) Verify(ctx context.Context, log *auditDomain.AuditLog) error {
	expected, err := a.Sign(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(log.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}

	return nil
}
