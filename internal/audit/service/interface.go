// Package service provides audit trail infrastructure: the HMAC entry signer
// and the local structured file sink.
package service

import (
	"context"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
)

// Signer produces and verifies tamper-evident signatures over audit entries.
type Signer interface {
	// Sign computes the HMAC-SHA256 signature for the entry.
	Sign(ctx context.Context, log *auditDomain.AuditLog) ([]byte, error)

	// Verify checks the entry's stored signature. Returns nil when valid and
	// ErrSignatureInvalid when the entry was tampered with.
	Verify(ctx context.Context, log *auditDomain.AuditLog) error
}

// Sink writes audit entries to a local durable destination.
type Sink interface {
	// Write records the entry at the level implied by its severity.
	Write(log *auditDomain.AuditLog)

	// WriteFailure records a local note that an entry could not be persisted
	// to the backing store.
	WriteFailure(log *auditDomain.AuditLog, err error)
}
