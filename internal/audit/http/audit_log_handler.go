// Package http provides HTTP handlers for the audit trail API.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	"github.com/allisson/trustguard/internal/audit/http/dto"
	auditUsecase "github.com/allisson/trustguard/internal/audit/usecase"
	"github.com/allisson/trustguard/internal/httputil"
)

// AuditLogHandler handles HTTP requests for audit log operations.
type AuditLogHandler struct {
	auditLogUseCase auditUsecase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(auditLogUseCase auditUsecase.AuditLogUseCase, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// ListHandler retrieves audit logs with pagination and optional filtering.
// GET /v1/audit-logs?offset=0&limit=50&user_id=&action=&resource=&severity=&created_at_from=&created_at_to=
// Returns 200 OK with the audit log list ordered newest first. The time
// boundaries accept RFC3339, are converted to UTC, and are inclusive.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := auditDomain.QueryFilter{
		UserID:   c.Query("user_id"),
		Action:   auditDomain.Action(c.Query("action")),
		Resource: c.Query("resource"),
		Severity: auditDomain.Severity(c.Query("severity")),
	}

	if fromStr := c.Query("created_at_from"); fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid created_at_from format: must be RFC3339 (e.g., 2026-02-01T00:00:00Z)"),
				h.logger)
			return
		}
		utcTime := parsed.UTC()
		filter.From = &utcTime
	}

	if toStr := c.Query("created_at_to"); toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid created_at_to format: must be RFC3339 (e.g., 2026-02-14T23:59:59Z)"),
				h.logger)
			return
		}
		utcTime := parsed.UTC()
		filter.To = &utcTime
	}

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("created_at_from must be before or equal to created_at_to"),
			h.logger)
		return
	}

	auditLogs, err := h.auditLogUseCase.Query(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditLogsToListResponse(auditLogs))
}

// SummaryHandler aggregates security activity over a trailing window.
// GET /v1/audit-logs/summary?days=7
// Returns 200 OK with event totals broken down by severity.
func (h *AuditLogHandler) SummaryHandler(c *gin.Context) {
	days := 7
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid days: must be a positive integer"),
				h.logger)
			return
		}
		days = parsed
	}

	summary, err := h.auditLogUseCase.SecuritySummary(c.Request.Context(), days)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecuritySummaryToResponse(summary))
}
