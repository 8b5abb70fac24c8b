package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	"github.com/allisson/trustguard/internal/metrics"
)

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Log records metrics for audit writes. Log never fails, so status is always success.
func (a *auditLogUseCaseWithMetrics) Log(ctx context.Context, entry Entry) {
	start := time.Now()
	a.next.Log(ctx, entry)

	a.metrics.RecordOperation(ctx, "audit", "audit_log", "success")
	a.metrics.RecordDuration(ctx, "audit", "audit_log", time.Since(start), "success")
}

func (a *auditLogUseCaseWithMetrics) LogAuth(
	ctx context.Context,
	action auditDomain.Action,
	userID, ipAddress, userAgent string,
	details map[string]any,
) {
	a.next.LogAuth(ctx, action, userID, ipAddress, userAgent, details)
	a.metrics.RecordOperation(ctx, "audit", "audit_log_auth", "success")
}

func (a *auditLogUseCaseWithMetrics) LogDataAccess(
	ctx context.Context,
	action auditDomain.Action,
	userID, resource, resourceID string,
	details map[string]any,
) {
	a.next.LogDataAccess(ctx, action, userID, resource, resourceID, details)
	a.metrics.RecordOperation(ctx, "audit", "audit_log_data_access", "success")
}

func (a *auditLogUseCaseWithMetrics) LogSensitiveAccess(
	ctx context.Context,
	userID, resource, resourceID string,
	fields []string,
) {
	a.next.LogSensitiveAccess(ctx, userID, resource, resourceID, fields)
	a.metrics.RecordOperation(ctx, "audit", "audit_log_sensitive_access", "success")
}

func (a *auditLogUseCaseWithMetrics) LogSecurityEvent(
	ctx context.Context,
	action auditDomain.Action,
	severity auditDomain.Severity,
	ipAddress string,
	details map[string]any,
) {
	a.next.LogSecurityEvent(ctx, action, severity, ipAddress, details)
	a.metrics.RecordOperation(ctx, "audit", "audit_log_security_event", "success")
}

// Query records metrics for audit queries.
func (a *auditLogUseCaseWithMetrics) Query(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	start := time.Now()
	auditLogs, err := a.next.Query(ctx, filter, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "audit_query", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_query", time.Since(start), status)

	return auditLogs, err
}

// SecuritySummary records metrics for summary aggregation.
func (a *auditLogUseCaseWithMetrics) SecuritySummary(
	ctx context.Context,
	days int,
) (*auditDomain.SecuritySummary, error) {
	start := time.Now()
	summary, err := a.next.SecuritySummary(ctx, days)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "audit_summary", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_summary", time.Since(start), status)

	return summary, err
}

// DeleteOlderThan records metrics for retention cleanup.
func (a *auditLogUseCaseWithMetrics) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	deleted, err := a.next.DeleteOlderThan(ctx, cutoff)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "audit_cleanup", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_cleanup", time.Since(start), status)

	return deleted, err
}

// CountOlderThan passes through without metrics: it is a read-only preview.
func (a *auditLogUseCaseWithMetrics) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return a.next.CountOlderThan(ctx, cutoff)
}

// Verify records metrics for signature verification sweeps.
func (a *auditLogUseCaseWithMetrics) Verify(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	start := time.Now()
	tampered, err := a.next.Verify(ctx, filter, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "audit_verify", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_verify", time.Since(start), status)

	return tampered, err
}
