// Package domain defines the audit trail domain models: the fixed action
// taxonomy, severities, queryable entries, filters, and rollups.
package domain

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Severity classifies how security-relevant an audit event is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// LogLevel maps a severity to the local sink log level:
// critical/high log as error, medium as warn, everything else as info.
func (s Severity) LogLevel() slog.Level {
	switch s {
	case SeverityCritical, SeverityHigh:
		return slog.LevelError
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Action identifies a security-relevant event. The vocabulary is fixed and
// centrally defined; downstream consumers depend on these exact values.
type Action string

const (
	// Authentication
	ActionLogin          Action = "login"
	ActionLogout         Action = "logout"
	ActionLoginFailed    Action = "login_failed"
	ActionPasswordChange Action = "password_change"
	ActionPasswordReset  Action = "password_reset"
	ActionLockout        Action = "lockout"

	// Data access
	ActionCreate Action = "create"
	ActionView   Action = "view"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
	ActionImport Action = "import"

	// Sensitive data
	ActionSensitiveView   Action = "sensitive_view"
	ActionSensitiveExport Action = "sensitive_export"
	ActionDecryptAccess   Action = "decrypt_access"

	// AI operations
	ActionAIQuery       Action = "ai_query"
	ActionAIPIIDetected Action = "ai_pii_detected"
	ActionAIError       Action = "ai_error"

	// Security events
	ActionRateLimitExceeded Action = "rate_limit_exceeded"
	ActionIPBlacklisted     Action = "ip_blacklisted"
	ActionSuspicious        Action = "suspicious_activity"
	ActionCSRFViolation     Action = "csrf_violation"
	ActionValidationFailed  Action = "validation_failed"
	ActionAccessDenied      Action = "access_denied"

	// Admin actions
	ActionUserCreate       Action = "user_create"
	ActionUserUpdate       Action = "user_update"
	ActionUserDelete       Action = "user_delete"
	ActionPermissionChange Action = "permission_change"
	ActionSettingsChange   Action = "settings_change"

	// System events
	ActionSystemStart  Action = "system_start"
	ActionSystemStop   Action = "system_stop"
	ActionConfigChange Action = "config_change"
	ActionMigration    Action = "migration"
)

// defaultSeverities assigns each action its canonical severity. Call sites
// may override contextually (e.g., an import is medium while a view is low).
var defaultSeverities = map[Action]Severity{
	ActionLogin:          SeverityLow,
	ActionLogout:         SeverityLow,
	ActionLoginFailed:    SeverityMedium,
	ActionPasswordChange: SeverityMedium,
	ActionPasswordReset:  SeverityMedium,
	ActionLockout:        SeverityHigh,

	ActionCreate: SeverityLow,
	ActionView:   SeverityLow,
	ActionUpdate: SeverityLow,
	ActionDelete: SeverityMedium,
	ActionExport: SeverityMedium,
	ActionImport: SeverityMedium,

	ActionSensitiveView:   SeverityMedium,
	ActionSensitiveExport: SeverityHigh,
	ActionDecryptAccess:   SeverityMedium,

	ActionAIQuery:       SeverityLow,
	ActionAIPIIDetected: SeverityMedium,
	ActionAIError:       SeverityHigh,

	ActionRateLimitExceeded: SeverityMedium,
	ActionIPBlacklisted:     SeverityCritical,
	ActionSuspicious:        SeverityHigh,
	ActionCSRFViolation:     SeverityHigh,
	ActionValidationFailed:  SeverityLow,
	ActionAccessDenied:      SeverityMedium,

	ActionUserCreate:       SeverityMedium,
	ActionUserUpdate:       SeverityMedium,
	ActionUserDelete:       SeverityHigh,
	ActionPermissionChange: SeverityHigh,
	ActionSettingsChange:   SeverityMedium,

	ActionSystemStart:  SeverityLow,
	ActionSystemStop:   SeverityLow,
	ActionConfigChange: SeverityMedium,
	ActionMigration:    SeverityMedium,
}

// DefaultSeverity returns the canonical severity for an action,
// defaulting to low for unknown actions.
func (a Action) DefaultSeverity() Severity {
	if severity, ok := defaultSeverities[a]; ok {
		return severity
	}
	return SeverityLow
}

// AuditLog records one security-relevant event. Entries are immutable once
// written; the signature makes post-write tampering detectable.
type AuditLog struct {
	ID         uuid.UUID
	Action     Action
	UserID     string
	Resource   string
	ResourceID string
	Details    map[string]any
	IPAddress  string
	UserAgent  string
	Severity   Severity
	Signature  []byte
	CreatedAt  time.Time
}

// QueryFilter narrows an audit log query. Zero values mean no filter;
// both time boundaries are inclusive.
type QueryFilter struct {
	UserID   string
	Action   Action
	Resource string
	Severity Severity
	From     *time.Time
	To       *time.Time
}

// SecuritySummary aggregates audit activity over a trailing window.
// Read-only rollup for dashboards, never used for access-control decisions.
type SecuritySummary struct {
	Days               int
	TotalEvents        int64
	BySeverity         map[Severity]int64
	FailedLogins       int64
	SuspiciousActivity int64
}
