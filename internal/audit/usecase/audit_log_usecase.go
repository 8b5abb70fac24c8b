package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	auditService "github.com/allisson/trustguard/internal/audit/service"
)

type auditLogUseCase struct {
	repo   AuditLogRepository
	sink   auditService.Sink
	signer auditService.Signer
	logger *slog.Logger
}

// NewAuditLogUseCase creates the audit trail use case. Every entry is signed,
// written to the local file sink, then persisted to the repository.
func NewAuditLogUseCase(
	repo AuditLogRepository,
	sink auditService.Sink,
	signer auditService.Signer,
	logger *slog.Logger,
) AuditLogUseCase {
	return &auditLogUseCase{repo: repo, sink: sink, signer: signer, logger: logger}
}

// Log records an audit event. The local file write happens first and always.
// A signing or store failure is noted locally and swallowed: the audited
// operation must never fail because the audit trail does.
func (a *auditLogUseCase) Log(ctx context.Context, entry Entry) {
	severity := entry.Severity
	if severity == "" {
		severity = entry.Action.DefaultSeverity()
	}

	auditLog := &auditDomain.AuditLog{
		ID:         uuid.Must(uuid.NewV7()),
		Action:     entry.Action,
		UserID:     entry.UserID,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Details:    entry.Details,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		Severity:   severity,
		CreatedAt:  time.Now().UTC(),
	}

	signature, err := a.signer.Sign(ctx, auditLog)
	if err != nil {
		// Unsigned entries are still recorded, verification will flag them
		a.logger.Error("failed to sign audit log", "action", string(entry.Action), "error", err)
	} else {
		auditLog.Signature = signature
	}

	a.sink.Write(auditLog)

	if err := a.repo.Create(ctx, auditLog); err != nil {
		a.sink.WriteFailure(auditLog, err)
		a.logger.Error(
			"failed to persist audit log",
			"action", string(entry.Action),
			"audit_id", auditLog.ID.String(),
			"error", err,
		)
	}
}

// LogAuth records an authentication event under the auth resource.
func (a *auditLogUseCase) LogAuth(
	ctx context.Context,
	action auditDomain.Action,
	userID, ipAddress, userAgent string,
	details map[string]any,
) {
	a.Log(ctx, Entry{
		Action:    action,
		UserID:    userID,
		Resource:  "auth",
		Details:   details,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
}

// LogDataAccess records a data access event against a resource.
func (a *auditLogUseCase) LogDataAccess(
	ctx context.Context,
	action auditDomain.Action,
	userID, resource, resourceID string,
	details map[string]any,
) {
	a.Log(ctx, Entry{
		Action:     action,
		UserID:     userID,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
	})
}

// LogSensitiveAccess records access to sensitive data, noting which fields
// were exposed but never their values.
func (a *auditLogUseCase) LogSensitiveAccess(
	ctx context.Context,
	userID, resource, resourceID string,
	fields []string,
) {
	a.Log(ctx, Entry{
		Action:     auditDomain.ActionSensitiveView,
		UserID:     userID,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    map[string]any{"fields": fields},
	})
}

// LogSecurityEvent records a security event with an explicit severity.
func (a *auditLogUseCase) LogSecurityEvent(
	ctx context.Context,
	action auditDomain.Action,
	severity auditDomain.Severity,
	ipAddress string,
	details map[string]any,
) {
	a.Log(ctx, Entry{
		Action:    action,
		Severity:  severity,
		Resource:  "security",
		IPAddress: ipAddress,
		Details:   details,
	})
}

// Query retrieves audit entries matching the filter, newest first.
func (a *auditLogUseCase) Query(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	return a.repo.List(ctx, filter, offset, limit)
}

// SecuritySummary aggregates activity over the trailing number of days.
func (a *auditLogUseCase) SecuritySummary(ctx context.Context, days int) (*auditDomain.SecuritySummary, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	summary, err := a.repo.SecuritySummary(ctx, since)
	if err != nil {
		return nil, err
	}
	summary.Days = days
	return summary, nil
}

// DeleteOlderThan removes entries older than the retention cutoff.
func (a *auditLogUseCase) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return a.repo.DeleteOlderThan(ctx, cutoff)
}

// CountOlderThan reports how many entries DeleteOlderThan would remove.
func (a *auditLogUseCase) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return a.repo.CountOlderThan(ctx, cutoff)
}

// Verify re-checks signatures for a page of stored entries and returns the
// tampered ones. Entries stored without a signature also fail verification.
func (a *auditLogUseCase) Verify(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	auditLogs, err := a.repo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	var tampered []*auditDomain.AuditLog
	for _, auditLog := range auditLogs {
		if err := a.signer.Verify(ctx, auditLog); err != nil {
			tampered = append(tampered, auditLog)
		}
	}

	return tampered, nil
}
