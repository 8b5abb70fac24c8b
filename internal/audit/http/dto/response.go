// Package dto provides request and response mapping for the audit log API.
package dto

import (
	"encoding/base64"
	"time"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
)

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	UserID     string         `json:"user_id,omitempty"`
	Resource   string         `json:"resource,omitempty"`
	ResourceID string         `json:"resource_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	Severity   string         `json:"severity"`
	Signature  string         `json:"signature,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// MapAuditLogToResponse converts a domain audit log to an API response.
func MapAuditLogToResponse(auditLog *auditDomain.AuditLog) AuditLogResponse {
	var signature string
	if len(auditLog.Signature) > 0 {
		signature = base64.StdEncoding.EncodeToString(auditLog.Signature)
	}

	return AuditLogResponse{
		ID:         auditLog.ID.String(),
		Action:     string(auditLog.Action),
		UserID:     auditLog.UserID,
		Resource:   auditLog.Resource,
		ResourceID: auditLog.ResourceID,
		Details:    auditLog.Details,
		IPAddress:  auditLog.IPAddress,
		UserAgent:  auditLog.UserAgent,
		Severity:   string(auditLog.Severity),
		Signature:  signature,
		CreatedAt:  auditLog.CreatedAt,
	}
}

// ListAuditLogsResponse represents a paginated list of audit logs in API responses.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogsToListResponse converts a slice of domain audit logs to a list API response.
func MapAuditLogsToListResponse(auditLogs []*auditDomain.AuditLog) ListAuditLogsResponse {
	auditLogResponses := make([]AuditLogResponse, 0, len(auditLogs))
	for _, auditLog := range auditLogs {
		auditLogResponses = append(auditLogResponses, MapAuditLogToResponse(auditLog))
	}
	return ListAuditLogsResponse{Data: auditLogResponses}
}

// SecuritySummaryResponse represents the trailing-window security summary.
type SecuritySummaryResponse struct {
	Days               int              `json:"days"`
	TotalEvents        int64            `json:"total_events"`
	BySeverity         map[string]int64 `json:"by_severity"`
	FailedLogins       int64            `json:"failed_logins"`
	SuspiciousActivity int64            `json:"suspicious_activity"`
}

// MapSecuritySummaryToResponse converts a domain security summary to an API response.
func MapSecuritySummaryToResponse(summary *auditDomain.SecuritySummary) SecuritySummaryResponse {
	bySeverity := make(map[string]int64, len(summary.BySeverity))
	for severity, count := range summary.BySeverity {
		bySeverity[string(severity)] = count
	}

	return SecuritySummaryResponse{
		Days:               summary.Days,
		TotalEvents:        summary.TotalEvents,
		BySeverity:         bySeverity,
		FailedLogins:       summary.FailedLogins,
		SuspiciousActivity: summary.SuspiciousActivity,
	}
}
