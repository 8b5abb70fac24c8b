// Package usecase implements the audit trail business logic: dual-write
// logging to a local file and the backing store, querying, aggregation,
// retention cleanup, and signature verification.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
)

// AuditLogRepository defines the interface for audit log persistence operations.
type AuditLogRepository interface {
	Create(ctx context.Context, auditLog *auditDomain.AuditLog) error
	List(ctx context.Context, filter auditDomain.QueryFilter, offset, limit int) ([]*auditDomain.AuditLog, error)
	SecuritySummary(ctx context.Context, since time.Time) (*auditDomain.SecuritySummary, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Entry carries the caller-supplied fields of one audit event.
type Entry struct {
	Action     auditDomain.Action
	UserID     string
	Resource   string
	ResourceID string
	Details    map[string]any
	IPAddress  string
	UserAgent  string
	// Severity overrides the action's default severity when set.
	Severity auditDomain.Severity
}

// AuditLogUseCase defines the interface for the audit trail business logic.
type AuditLogUseCase interface {
	// Log records an audit event. It never returns an error: the local file
	// write happens first, and a backing store failure is noted locally and
	// swallowed so that audited operations are never broken by audit storage.
	Log(ctx context.Context, entry Entry)

	// LogAuth records an authentication event.
	LogAuth(ctx context.Context, action auditDomain.Action, userID, ipAddress, userAgent string, details map[string]any)

	// LogDataAccess records a data access event against a resource.
	LogDataAccess(ctx context.Context, action auditDomain.Action, userID, resource, resourceID string, details map[string]any)

	// LogSensitiveAccess records access to sensitive (encrypted) data.
	LogSensitiveAccess(ctx context.Context, userID, resource, resourceID string, fields []string)

	// LogSecurityEvent records a security event with an explicit severity.
	LogSecurityEvent(ctx context.Context, action auditDomain.Action, severity auditDomain.Severity, ipAddress string, details map[string]any)

	// Query retrieves audit entries matching the filter, newest first.
	// Unlike Log, read failures propagate to the caller.
	Query(ctx context.Context, filter auditDomain.QueryFilter, offset, limit int) ([]*auditDomain.AuditLog, error)

	// SecuritySummary aggregates activity over the trailing number of days.
	SecuritySummary(ctx context.Context, days int) (*auditDomain.SecuritySummary, error)

	// DeleteOlderThan removes entries older than the retention cutoff and
	// returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// CountOlderThan reports how many entries DeleteOlderThan would remove.
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Verify re-checks signatures for a page of stored entries and returns
	// the entries that fail verification.
	Verify(ctx context.Context, filter auditDomain.QueryFilter, offset, limit int) ([]*auditDomain.AuditLog, error)
}
