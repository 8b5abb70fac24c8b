package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	"github.com/allisson/trustguard/internal/database"
	apperrors "github.com/allisson/trustguard/internal/errors"
)

// MySQLAuditLogRepository implements audit log persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// NewMySQLAuditLogRepository creates a new MySQL audit log repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}

// Create inserts a new audit log entry using BINARY(16) for the UUID.
// Handles nil details as database NULL.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, m.db)

	detailsJSON, err := marshalDetails(auditLog.Details)
	if err != nil {
		return err
	}

	id, err := auditLog.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}

	query := `INSERT INTO audit_logs (id, action, user_id, resource, resource_id, details, ip_address, user_agent, severity, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		string(auditLog.Action),
		auditLog.UserID,
		auditLog.Resource,
		auditLog.ResourceID,
		detailsJSON,
		auditLog.IPAddress,
		auditLog.UserAgent,
		string(auditLog.Severity),
		auditLog.Signature,
		auditLog.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}

	return nil
}

// List retrieves audit log entries matching the filter ordered by created_at
// descending (newest first) with pagination. Both time boundaries are
// inclusive. Returns an empty slice when nothing matches.
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	conditions, args := buildMySQLFilter(filter)

	query := `SELECT id, action, user_id, resource, resource_id, details, ip_address, user_agent, severity, signature, created_at
			  FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	auditLogs := make([]*auditDomain.AuditLog, 0)
	for rows.Next() {
		var auditLog auditDomain.AuditLog
		var idBinary, detailsJSON []byte
		var action, severity string

		err := rows.Scan(
			&idBinary,
			&action,
			&auditLog.UserID,
			&auditLog.Resource,
			&auditLog.ResourceID,
			&detailsJSON,
			&auditLog.IPAddress,
			&auditLog.UserAgent,
			&severity,
			&auditLog.Signature,
			&auditLog.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log")
		}

		if err := auditLog.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log id")
		}

		auditLog.Action = auditDomain.Action(action)
		auditLog.Severity = auditDomain.Severity(severity)

		if detailsJSON != nil {
			if err := json.Unmarshal(detailsJSON, &auditLog.Details); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit log details")
			}
		}

		auditLogs = append(auditLogs, &auditLog)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	return auditLogs, nil
}

// SecuritySummary aggregates event counts since the given time: totals by
// severity plus failed login and suspicious activity counts.
func (m *MySQLAuditLogRepository) SecuritySummary(
	ctx context.Context,
	since time.Time,
) (*auditDomain.SecuritySummary, error) {
	querier := database.GetTx(ctx, m.db)

	summary := &auditDomain.SecuritySummary{
		BySeverity: make(map[auditDomain.Severity]int64),
	}

	query := `SELECT severity, COUNT(*) FROM audit_logs WHERE created_at >= ? GROUP BY severity`
	rows, err := querier.QueryContext(ctx, query, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to aggregate audit logs by severity")
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var severity string
		var count int64
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan severity count")
		}
		summary.BySeverity[auditDomain.Severity(severity)] = count
		summary.TotalEvents += count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate severity counts")
	}

	actionQuery := `SELECT COUNT(*) FROM audit_logs WHERE created_at >= ? AND action = ?`
	if err := querier.QueryRowContext(ctx, actionQuery, since, string(auditDomain.ActionLoginFailed)).
		Scan(&summary.FailedLogins); err != nil {
		return nil, apperrors.Wrap(err, "failed to count failed logins")
	}
	if err := querier.QueryRowContext(ctx, actionQuery, since, string(auditDomain.ActionSuspicious)).
		Scan(&summary.SuspiciousActivity); err != nil {
		return nil, apperrors.Wrap(err, "failed to count suspicious activity")
	}

	return summary, nil
}

// DeleteOlderThan removes entries created before the cutoff and returns the
// number of rows removed.
func (m *MySQLAuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read deleted audit log count")
	}

	return deleted, nil
}

// CountOlderThan counts entries created before the cutoff without removing them.
func (m *MySQLAuditLogRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < ?`, cutoff).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit logs")
	}

	return count, nil
}

// buildMySQLFilter renders the filter as WHERE conditions with ? placeholders.
func buildMySQLFilter(filter auditDomain.QueryFilter) ([]string, []any) {
	var conditions []string
	var args []any

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Resource != "" {
		conditions = append(conditions, "resource = ?")
		args = append(args, filter.Resource)
	}
	if filter.Severity != "" {
		conditions = append(conditions, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.From != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *filter.To)
	}

	return conditions, args
}
