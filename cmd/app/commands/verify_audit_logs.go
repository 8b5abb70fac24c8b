package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	auditUsecase "github.com/allisson/trustguard/internal/audit/usecase"
)

// verifyPageSize is the number of audit logs re-checked per database round trip.
const verifyPageSize = 500

// verificationReport summarizes one integrity sweep over a time range.
type verificationReport struct {
	TotalChecked int64
	InvalidCount int64
	InvalidLogs  []uuid.UUID
}

// RunVerifyAuditLogs verifies cryptographic integrity of audit logs within a time range.
// Validates HMAC-SHA256 signatures against the derived signing key for tamper detection.
// Entries without a signature are reported as invalid.
//
// Requirements: Database must be migrated and the encryption key configured.
func RunVerifyAuditLogs(
	ctx context.Context,
	auditLogUseCase auditUsecase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	startDate, endDate string,
	format string,
) error {
	// Parse date strings to time.Time
	start, err := parseDate(startDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	end, err := parseDate(endDate)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	// Validate time range
	if !end.After(start) {
		return fmt.Errorf("end date must be after start date")
	}

	logger.Info("verifying audit logs",
		slog.Time("start_date", start),
		slog.Time("end_date", end),
	)

	filter := auditDomain.QueryFilter{From: &start, To: &end}
	report := &verificationReport{}

	for offset := 0; ; offset += verifyPageSize {
		page, err := auditLogUseCase.Query(ctx, filter, offset, verifyPageSize)
		if err != nil {
			return fmt.Errorf("failed to query audit logs: %w", err)
		}
		if len(page) == 0 {
			break
		}
		report.TotalChecked += int64(len(page))

		tampered, err := auditLogUseCase.Verify(ctx, filter, offset, verifyPageSize)
		if err != nil {
			return fmt.Errorf("failed to verify audit logs: %w", err)
		}
		report.InvalidCount += int64(len(tampered))
		for _, log := range tampered {
			report.InvalidLogs = append(report.InvalidLogs, log.ID)
		}

		if len(page) < verifyPageSize {
			break
		}
	}

	// Output result based on format
	if format == "json" {
		if err := outputVerifyJSON(writer, report); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyText(writer, report, start, end)
	}

	// Log summary
	logger.Info("verification completed",
		slog.Int64("total_checked", report.TotalChecked),
		slog.Int64("invalid", report.InvalidCount),
	)

	// Exit with error code if integrity check failed
	if report.InvalidCount > 0 {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", report.InvalidCount)
	}

	return nil
}

// parseDate parses a date string in format "YYYY-MM-DD" or "YYYY-MM-DD HH:MM:SS" to time.Time.
func parseDate(dateStr string) (time.Time, error) {
	// Try full datetime format first
	t, err := time.Parse("2006-01-02 15:04:05", dateStr)
	if err == nil {
		return t, nil
	}

	// Try date-only format (defaults to start of day)
	t, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf(
			"invalid date format (expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS): %s",
			dateStr,
		)
	}

	return t, nil
}

// outputVerifyText outputs the verification result in human-readable text format.
func outputVerifyText(writer io.Writer, report *verificationReport, start, end time.Time) {
	_, _ = fmt.Fprintf(writer, "Audit Log Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "=================================\n\n")
	_, _ = fmt.Fprintf(writer,
		"Time Range: %s to %s\n\n",
		start.Format("2006-01-02 15:04:05"),
		end.Format("2006-01-02 15:04:05"),
	)

	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", report.TotalChecked)
	_, _ = fmt.Fprintf(writer, "Valid:          %d\n", report.TotalChecked-report.InvalidCount)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n\n", report.InvalidCount)

	switch {
	case report.InvalidCount > 0:
		_, _ = fmt.Fprintf(writer, "WARNING: %d log(s) failed integrity check!\n\n", report.InvalidCount)
		_, _ = fmt.Fprintf(writer, "Invalid Log IDs:\n")
		for _, id := range report.InvalidLogs {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
		_, _ = fmt.Fprintf(writer, "\nStatus: FAILED\n")
	case report.TotalChecked == 0:
		_, _ = fmt.Fprintf(writer, "Status: No logs found in specified time range\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}

// outputVerifyJSON outputs the verification result in JSON format for machine consumption.
func outputVerifyJSON(writer io.Writer, report *verificationReport) error {
	invalidLogs := make([]string, 0, len(report.InvalidLogs))
	for _, id := range report.InvalidLogs {
		invalidLogs = append(invalidLogs, id.String())
	}

	result := map[string]interface{}{
		"total_checked": report.TotalChecked,
		"valid_count":   report.TotalChecked - report.InvalidCount,
		"invalid_count": report.InvalidCount,
		"invalid_logs":  invalidLogs,
		"passed":        report.InvalidCount == 0,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
