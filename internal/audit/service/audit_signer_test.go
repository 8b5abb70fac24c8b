package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	cryptoDomain "github.com/allisson/trustguard/internal/crypto/domain"
	cryptoService "github.com/allisson/trustguard/internal/crypto/service"
)

var testSigningKeyMaterial = []byte("test-signing-key-material-at-least-32-bytes")

func testAuditLog() *auditDomain.AuditLog {
	return &auditDomain.AuditLog{
		ID:         uuid.Must(uuid.NewV7()),
		Action:     auditDomain.ActionSensitiveView,
		UserID:     "user-1",
		Resource:   "employees",
		ResourceID: "42",
		Details:    map[string]any{"fields": []string{"salary"}},
		IPAddress:  "10.0.0.1",
		UserAgent:  "test-agent",
		Severity:   auditDomain.SeverityMedium,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestAuditSigner_SignAndVerify(t *testing.T) {
	ctx := context.Background()
	signer := NewAuditSigner(cryptoService.StaticKeySource(testSigningKeyMaterial))

	t.Run("round trip", func(t *testing.T) {
		auditLog := testAuditLog()

		signature, err := signer.Sign(ctx, auditLog)
		require.NoError(t, err)
		assert.Len(t, signature, 32)

		auditLog.Signature = signature
		assert.NoError(t, signer.Verify(ctx, auditLog))
	})

	t.Run("signing is deterministic for the same entry", func(t *testing.T) {
		auditLog := testAuditLog()

		sig1, err := signer.Sign(ctx, auditLog)
		require.NoError(t, err)
		sig2, err := signer.Sign(ctx, auditLog)
		require.NoError(t, err)

		assert.Equal(t, sig1, sig2)
	})

	t.Run("nil details sign cleanly", func(t *testing.T) {
		auditLog := testAuditLog()
		auditLog.Details = nil

		signature, err := signer.Sign(ctx, auditLog)
		require.NoError(t, err)

		auditLog.Signature = signature
		assert.NoError(t, signer.Verify(ctx, auditLog))
	})

	t.Run("tampered field fails verification", func(t *testing.T) {
		auditLog := testAuditLog()

		signature, err := signer.Sign(ctx, auditLog)
		require.NoError(t, err)
		auditLog.Signature = signature

		auditLog.UserID = "someone-else"
		assert.ErrorIs(t, signer.Verify(ctx, auditLog), auditDomain.ErrSignatureInvalid)
	})

	t.Run("tampered signature fails verification", func(t *testing.T) {
		auditLog := testAuditLog()

		signature, err := signer.Sign(ctx, auditLog)
		require.NoError(t, err)
		signature[0] ^= 0xff
		auditLog.Signature = signature

		assert.ErrorIs(t, signer.Verify(ctx, auditLog), auditDomain.ErrSignatureInvalid)
	})

	t.Run("missing signature fails verification", func(t *testing.T) {
		auditLog := testAuditLog()
		assert.ErrorIs(t, signer.Verify(ctx, auditLog), auditDomain.ErrSignatureInvalid)
	})

	t.Run("different keys produce different signatures", func(t *testing.T) {
		otherSigner := NewAuditSigner(
			cryptoService.StaticKeySource([]byte("another-signing-key-material-32-bytes-min")),
		)
		auditLog := testAuditLog()

		sig1, err := signer.Sign(ctx, auditLog)
		require.NoError(t, err)
		sig2, err := otherSigner.Sign(ctx, auditLog)
		require.NoError(t, err)

		assert.NotEqual(t, sig1, sig2)
	})
}

func TestAuditSigner_KeySourceFailure(t *testing.T) {
	ctx := context.Background()
	signer := NewAuditSigner(cryptoService.StaticKeySource([]byte("short")))

	_, err := signer.Sign(ctx, testAuditLog())
	assert.ErrorIs(t, err, cryptoDomain.ErrKeyMaterialTooShort)
}
