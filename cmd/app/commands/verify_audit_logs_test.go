package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
)

func TestRunVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()
	startDate := "2026-01-01"
	endDate := "2026-01-02"

	makeLogs := func(n int) []*auditDomain.AuditLog {
		logs := make([]*auditDomain.AuditLog, n)
		for i := range logs {
			logs[i] = &auditDomain.AuditLog{ID: uuid.Must(uuid.NewV7())}
		}
		return logs
	}

	t.Run("success-text", func(t *testing.T) {
		useCase := &fakeAuditLogUseCase{queryPages: [][]*auditDomain.AuditLog{makeLogs(10)}}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, startDate, endDate, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Audit Log Integrity Verification")
		require.Contains(t, out.String(), "Total Checked:  10")
		require.Contains(t, out.String(), "Status: PASSED")
	})

	t.Run("success-json", func(t *testing.T) {
		useCase := &fakeAuditLogUseCase{queryPages: [][]*auditDomain.AuditLog{makeLogs(10)}}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, startDate, endDate, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(out.Bytes(), &result)
		require.NoError(t, err)
		require.Equal(t, float64(10), result["total_checked"])
		require.Equal(t, true, result["passed"])
	})

	t.Run("invalid-dates", func(t *testing.T) {
		err := RunVerifyAuditLogs(ctx, nil, logger, nil, "invalid", endDate, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid start date")
	})

	t.Run("inverted-range", func(t *testing.T) {
		err := RunVerifyAuditLogs(ctx, nil, logger, nil, endDate, startDate, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "end date must be after start date")
	})

	t.Run("integrity-failure", func(t *testing.T) {
		useCase := &fakeAuditLogUseCase{
			queryPages: [][]*auditDomain.AuditLog{makeLogs(10)},
			tampered:   makeLogs(2),
		}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, startDate, endDate, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "integrity check failed")
		require.Contains(t, out.String(), "WARNING: 2 log(s) failed integrity check!")
		require.Contains(t, out.String(), useCase.tampered[0].ID.String())
	})

	t.Run("empty-range", func(t *testing.T) {
		useCase := &fakeAuditLogUseCase{}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, startDate, endDate, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "No logs found in specified time range")
	})
}
