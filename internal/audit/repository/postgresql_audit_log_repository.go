// Package repository implements audit log persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	"github.com/allisson/trustguard/internal/database"
	apperrors "github.com/allisson/trustguard/internal/errors"
)

// PostgreSQLAuditLogRepository implements audit log persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit log repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

// Create inserts a new audit log entry. Handles nil details as database NULL.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	detailsJSON, err := marshalDetails(auditLog.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (id, action, user_id, resource, resource_id, details, ip_address, user_agent, severity, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = querier.ExecContext(
		ctx,
		query,
		auditLog.ID,
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

// List retrieves audit log entries matching the filter, newest first, with
// offset and limit pagination. Returns an empty slice when nothing matches.
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	where, args := buildPostgresFilter(filter)
	query := fmt.Sprintf(
		`SELECT id, action, user_id, resource, resource_id, details, ip_address, user_agent, severity, signature, created_at
		 FROM audit_logs%s
		 ORDER BY created_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
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
		auditLog, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		auditLogs = append(auditLogs, auditLog)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	return auditLogs, nil
}

// SecuritySummary aggregates event counts since the given time: totals by
// severity plus failed login and suspicious activity counts.
func (p *PostgreSQLAuditLogRepository) SecuritySummary(
	ctx context.Context,
	since time.Time,
) (*auditDomain.SecuritySummary, error) {
	querier := database.GetTx(ctx, p.db)

	summary := &auditDomain.SecuritySummary{
		BySeverity: make(map[auditDomain.Severity]int64),
	}

	query := `SELECT severity, COUNT(*) FROM audit_logs WHERE created_at >= $1 GROUP BY severity`
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

	actionQuery := `SELECT COUNT(*) FROM audit_logs WHERE created_at >= $1 AND action = $2`
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
func (p *PostgreSQLAuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
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
func (p *PostgreSQLAuditLogRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < $1`, cutoff).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit logs")
	}

	return count, nil
}

// buildPostgresFilter renders the filter as a WHERE clause with positional
// placeholders, returning the clause (with leading space) and its arguments.
func buildPostgresFilter(filter auditDomain.QueryFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.Action != "" {
		add("action = $%d", string(filter.Action))
	}
	if filter.Resource != "" {
		add("resource = $%d", filter.Resource)
	}
	if filter.Severity != "" {
		add("severity = $%d", string(filter.Severity))
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// scanAuditLog scans one row into a domain entry, handling NULL details.
func scanAuditLog(rows *sql.Rows) (*auditDomain.AuditLog, error) {
	var auditLog auditDomain.AuditLog
	var action, severity string
	var detailsJSON []byte

	err := rows.Scan(
		&auditLog.ID,
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

	auditLog.Action = auditDomain.Action(action)
	auditLog.Severity = auditDomain.Severity(severity)

	if detailsJSON != nil {
		if err := json.Unmarshal(detailsJSON, &auditLog.Details); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log details")
		}
	}

	return &auditLog, nil
}

// marshalDetails serializes the details map, mapping nil to database NULL.
func marshalDetails(details map[string]any) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit log details")
	}
	return detailsJSON, nil
}
