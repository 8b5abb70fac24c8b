package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	"github.com/allisson/trustguard/internal/testutil"
)

func newPostgresAuditLog(action auditDomain.Action, userID string, createdAt time.Time) *auditDomain.AuditLog {
	return &auditDomain.AuditLog{
		ID:         uuid.Must(uuid.NewV7()),
		Action:     action,
		UserID:     userID,
		Resource:   "employees",
		ResourceID: "42",
		Details:    map[string]any{"method": "GET"},
		IPAddress:  "10.0.0.1",
		UserAgent:  "test-agent",
		Severity:   action.DefaultSeverity(),
		Signature:  []byte{0x01, 0x02, 0x03},
		CreatedAt:  createdAt,
	}
}

func TestNewPostgreSQLAuditLogRepository(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLAuditLogRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLAuditLogRepository{}, repo)
}

func TestPostgreSQLAuditLogRepository_Create(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAuditLogRepository(db)
	ctx := context.Background()

	auditLog := newPostgresAuditLog(auditDomain.ActionSensitiveView, "user-1", time.Now().UTC())

	err := repo.Create(ctx, auditLog)
	require.NoError(t, err)

	var count int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE id = $1`, auditLog.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPostgreSQLAuditLogRepository_Create_WithNilDetails(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAuditLogRepository(db)
	ctx := context.Background()

	auditLog := newPostgresAuditLog(auditDomain.ActionLogin, "user-1", time.Now().UTC())
	auditLog.Details = nil // Nil details should be stored as NULL

	err := repo.Create(ctx, auditLog)
	require.NoError(t, err)

	var detailsNull bool
	err = db.QueryRowContext(
		ctx,
		`SELECT details IS NULL FROM audit_logs WHERE id = $1`,
		auditLog.ID,
	).Scan(&detailsNull)
	require.NoError(t, err)
	assert.True(t, detailsNull)
}

func TestPostgreSQLAuditLogRepository_List(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAuditLogRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	first := newPostgresAuditLog(auditDomain.ActionLogin, "user-1", now.Add(-2*time.Hour))
	second := newPostgresAuditLog(auditDomain.ActionLoginFailed, "user-2", now.Add(-1*time.Hour))
	third := newPostgresAuditLog(auditDomain.ActionSensitiveView, "user-1", now)

	for _, auditLog := range []*auditDomain.AuditLog{first, second, third} {
		require.NoError(t, repo.Create(ctx, auditLog))
	}

	t.Run("newest first", func(t *testing.T) {
		auditLogs, err := repo.List(ctx, auditDomain.QueryFilter{}, 0, 10)
		require.NoError(t, err)
		require.Len(t, auditLogs, 3)
		assert.Equal(t, third.ID, auditLogs[0].ID)
		assert.Equal(t, first.ID, auditLogs[2].ID)
	})

	t.Run("filter by user", func(t *testing.T) {
		auditLogs, err := repo.List(ctx, auditDomain.QueryFilter{UserID: "user-1"}, 0, 10)
		require.NoError(t, err)
		assert.Len(t, auditLogs, 2)
	})

	t.Run("filter by action", func(t *testing.T) {
		auditLogs, err := repo.List(ctx, auditDomain.QueryFilter{Action: auditDomain.ActionLoginFailed}, 0, 10)
		require.NoError(t, err)
		require.Len(t, auditLogs, 1)
		assert.Equal(t, second.ID, auditLogs[0].ID)
	})

	t.Run("filter by severity", func(t *testing.T) {
		auditLogs, err := repo.List(ctx, auditDomain.QueryFilter{Severity: auditDomain.SeverityMedium}, 0, 10)
		require.NoError(t, err)
		// login_failed and sensitive_view both default to medium
		assert.Len(t, auditLogs, 2)
	})

	t.Run("time range is inclusive", func(t *testing.T) {
		from := now.Add(-1 * time.Hour)
		auditLogs, err := repo.List(ctx, auditDomain.QueryFilter{From: &from}, 0, 10)
		require.NoError(t, err)
		assert.Len(t, auditLogs, 2)
	})

	t.Run("pagination", func(t *testing.T) {
		auditLogs, err := repo.List(ctx, auditDomain.QueryFilter{}, 1, 1)
		require.NoError(t, err)
		require.Len(t, auditLogs, 1)
		assert.Equal(t, second.ID, auditLogs[0].ID)
	})

	t.Run("scanned entry round trips", func(t *testing.T) {
		auditLogs, err := repo.List(ctx, auditDomain.QueryFilter{Action: auditDomain.ActionSensitiveView}, 0, 10)
		require.NoError(t, err)
		require.Len(t, auditLogs, 1)

		got := auditLogs[0]
		assert.Equal(t, third.Action, got.Action)
		assert.Equal(t, third.UserID, got.UserID)
		assert.Equal(t, third.Resource, got.Resource)
		assert.Equal(t, map[string]any{"method": "GET"}, got.Details)
		assert.Equal(t, third.Signature, got.Signature)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		auditLogs, err := repo.List(ctx, auditDomain.QueryFilter{UserID: "nobody"}, 0, 10)
		require.NoError(t, err)
		assert.NotNil(t, auditLogs)
		assert.Empty(t, auditLogs)
	})

	t.Run("ordering follows created_at, not insertion order", func(t *testing.T) {
		// Insert the newer entry first so its UUIDv7 ID sorts before the
		// older entry's; newest-first must still hold.
		newer := newPostgresAuditLog(auditDomain.ActionView, "user-3", now.Add(2*time.Hour))
		older := newPostgresAuditLog(auditDomain.ActionView, "user-3", now.Add(1*time.Hour))
		require.NoError(t, repo.Create(ctx, newer))
		require.NoError(t, repo.Create(ctx, older))

		auditLogs, err := repo.List(ctx, auditDomain.QueryFilter{UserID: "user-3"}, 0, 10)
		require.NoError(t, err)
		require.Len(t, auditLogs, 2)
		assert.Equal(t, newer.ID, auditLogs[0].ID)
		assert.Equal(t, older.ID, auditLogs[1].ID)
	})
}

func TestPostgreSQLAuditLogRepository_SecuritySummary(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAuditLogRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	entries := []*auditDomain.AuditLog{
		newPostgresAuditLog(auditDomain.ActionLogin, "user-1", now),
		newPostgresAuditLog(auditDomain.ActionLoginFailed, "user-2", now),
		newPostgresAuditLog(auditDomain.ActionLoginFailed, "user-2", now),
		newPostgresAuditLog(auditDomain.ActionSuspicious, "user-3", now),
		// Outside the window, must not be counted
		newPostgresAuditLog(auditDomain.ActionLogin, "user-1", now.AddDate(0, 0, -30)),
	}
	for _, auditLog := range entries {
		require.NoError(t, repo.Create(ctx, auditLog))
	}

	summary, err := repo.SecuritySummary(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.TotalEvents)
	assert.Equal(t, int64(2), summary.FailedLogins)
	assert.Equal(t, int64(1), summary.SuspiciousActivity)
	assert.Equal(t, int64(1), summary.BySeverity[auditDomain.SeverityLow])
	assert.Equal(t, int64(2), summary.BySeverity[auditDomain.SeverityMedium])
	assert.Equal(t, int64(1), summary.BySeverity[auditDomain.SeverityHigh])
}

func TestPostgreSQLAuditLogRepository_DeleteOlderThan(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAuditLogRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	old := newPostgresAuditLog(auditDomain.ActionLogin, "user-1", now.AddDate(0, 0, -100))
	recent := newPostgresAuditLog(auditDomain.ActionLogin, "user-1", now)
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, recent))

	deleted, err := repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := repo.List(ctx, auditDomain.QueryFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.ID, remaining[0].ID)
}
