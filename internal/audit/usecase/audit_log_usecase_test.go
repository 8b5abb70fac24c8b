package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	auditService "github.com/allisson/trustguard/internal/audit/service"
	cryptoService "github.com/allisson/trustguard/internal/crypto/service"
)

// fakeAuditLogRepository is an in-memory repository for use case tests.
type fakeAuditLogRepository struct {
	created   []*auditDomain.AuditLog
	createErr error
	listErr   error
	deleted   int64
	summary   *auditDomain.SecuritySummary
}

func (f *fakeAuditLogRepository) Create(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, auditLog)
	return nil
}

func (f *fakeAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.created, nil
}

func (f *fakeAuditLogRepository) SecuritySummary(
	ctx context.Context,
	since time.Time,
) (*auditDomain.SecuritySummary, error) {
	return f.summary, nil
}

func (f *fakeAuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.deleted, nil
}

func (f *fakeAuditLogRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.deleted, nil
}

// fakeSink records sink calls without touching the filesystem.
type fakeSink struct {
	written  []*auditDomain.AuditLog
	failures []*auditDomain.AuditLog
}

func (f *fakeSink) Write(log *auditDomain.AuditLog) {
	f.written = append(f.written, log)
}

func (f *fakeSink) WriteFailure(log *auditDomain.AuditLog, err error) {
	f.failures = append(f.failures, log)
}

func buildUseCase(repo *fakeAuditLogRepository, sink *fakeSink) AuditLogUseCase {
	signer := auditService.NewAuditSigner(
		cryptoService.StaticKeySource([]byte("test-signing-key-material-at-least-32-bytes")),
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuditLogUseCase(repo, sink, signer, logger)
}

func TestAuditLogUseCase_Log(t *testing.T) {
	ctx := context.Background()

	t.Run("writes to sink and store with defaults filled in", func(t *testing.T) {
		repo := &fakeAuditLogRepository{}
		sink := &fakeSink{}
		useCase := buildUseCase(repo, sink)

		useCase.Log(ctx, Entry{
			Action:    auditDomain.ActionLogin,
			UserID:    "user-1",
			IPAddress: "10.0.0.1",
		})

		require.Len(t, sink.written, 1)
		require.Len(t, repo.created, 1)

		entry := repo.created[0]
		assert.NotEqual(t, uuid.Nil, entry.ID)
		assert.Equal(t, auditDomain.ActionLogin, entry.Action)
		assert.Equal(t, auditDomain.SeverityLow, entry.Severity, "default severity comes from the action")
		assert.False(t, entry.CreatedAt.IsZero())
		assert.NotEmpty(t, entry.Signature)
		assert.Same(t, sink.written[0], entry, "sink and store receive the same signed entry")
	})

	t.Run("explicit severity overrides the default", func(t *testing.T) {
		repo := &fakeAuditLogRepository{}
		sink := &fakeSink{}
		useCase := buildUseCase(repo, sink)

		useCase.Log(ctx, Entry{
			Action:   auditDomain.ActionView,
			Severity: auditDomain.SeverityHigh,
		})

		require.Len(t, repo.created, 1)
		assert.Equal(t, auditDomain.SeverityHigh, repo.created[0].Severity)
	})

	t.Run("store failure is swallowed and noted locally", func(t *testing.T) {
		repo := &fakeAuditLogRepository{createErr: errors.New("connection refused")}
		sink := &fakeSink{}
		useCase := buildUseCase(repo, sink)

		// Must not panic or surface the error
		useCase.Log(ctx, Entry{Action: auditDomain.ActionLogin})

		assert.Len(t, sink.written, 1, "file write happens before the store attempt")
		assert.Len(t, sink.failures, 1, "store failure is recorded locally")
		assert.Empty(t, repo.created)
	})
}

func TestAuditLogUseCase_Wrappers(t *testing.T) {
	ctx := context.Background()

	t.Run("LogAuth", func(t *testing.T) {
		repo := &fakeAuditLogRepository{}
		useCase := buildUseCase(repo, &fakeSink{})

		useCase.LogAuth(ctx, auditDomain.ActionLoginFailed, "user-1", "10.0.0.1", "agent", nil)

		require.Len(t, repo.created, 1)
		entry := repo.created[0]
		assert.Equal(t, "auth", entry.Resource)
		assert.Equal(t, "10.0.0.1", entry.IPAddress)
		assert.Equal(t, auditDomain.SeverityMedium, entry.Severity)
	})

	t.Run("LogDataAccess", func(t *testing.T) {
		repo := &fakeAuditLogRepository{}
		useCase := buildUseCase(repo, &fakeSink{})

		useCase.LogDataAccess(ctx, auditDomain.ActionUpdate, "user-1", "employees", "42", nil)

		require.Len(t, repo.created, 1)
		assert.Equal(t, "employees", repo.created[0].Resource)
		assert.Equal(t, "42", repo.created[0].ResourceID)
	})

	t.Run("LogSensitiveAccess records field names only", func(t *testing.T) {
		repo := &fakeAuditLogRepository{}
		useCase := buildUseCase(repo, &fakeSink{})

		useCase.LogSensitiveAccess(ctx, "user-1", "employees", "42", []string{"salary", "idnumber"})

		require.Len(t, repo.created, 1)
		entry := repo.created[0]
		assert.Equal(t, auditDomain.ActionSensitiveView, entry.Action)
		assert.Equal(t, []string{"salary", "idnumber"}, entry.Details["fields"])
	})

	t.Run("LogSecurityEvent", func(t *testing.T) {
		repo := &fakeAuditLogRepository{}
		useCase := buildUseCase(repo, &fakeSink{})

		useCase.LogSecurityEvent(
			ctx,
			auditDomain.ActionRateLimitExceeded,
			auditDomain.SeverityMedium,
			"10.0.0.1",
			map[string]any{"class": "api"},
		)

		require.Len(t, repo.created, 1)
		entry := repo.created[0]
		assert.Equal(t, "security", entry.Resource)
		assert.Equal(t, auditDomain.SeverityMedium, entry.Severity)
	})
}

func TestAuditLogUseCase_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("propagates read errors", func(t *testing.T) {
		repo := &fakeAuditLogRepository{listErr: errors.New("db down")}
		useCase := buildUseCase(repo, &fakeSink{})

		_, err := useCase.Query(ctx, auditDomain.QueryFilter{}, 0, 50)
		assert.Error(t, err, "queries must fail loudly, unlike Log")
	})
}

func TestAuditLogUseCase_SecuritySummary(t *testing.T) {
	ctx := context.Background()
	repo := &fakeAuditLogRepository{
		summary: &auditDomain.SecuritySummary{TotalEvents: 10},
	}
	useCase := buildUseCase(repo, &fakeSink{})

	t.Run("sets the window on the result", func(t *testing.T) {
		summary, err := useCase.SecuritySummary(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, 30, summary.Days)
		assert.Equal(t, int64(10), summary.TotalEvents)
	})

	t.Run("non-positive window defaults to seven days", func(t *testing.T) {
		summary, err := useCase.SecuritySummary(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 7, summary.Days)
	})
}

func TestAuditLogUseCase_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("flags tampered and unsigned entries", func(t *testing.T) {
		repo := &fakeAuditLogRepository{}
		sink := &fakeSink{}
		useCase := buildUseCase(repo, sink)

		useCase.Log(ctx, Entry{Action: auditDomain.ActionLogin, UserID: "user-1"})
		useCase.Log(ctx, Entry{Action: auditDomain.ActionLogin, UserID: "user-2"})
		require.Len(t, repo.created, 2)

		// Tamper with the second stored entry
		repo.created[1].UserID = "attacker"

		tampered, err := useCase.Verify(ctx, auditDomain.QueryFilter{}, 0, 50)
		require.NoError(t, err)
		require.Len(t, tampered, 1)
		assert.Equal(t, "attacker", tampered[0].UserID)
	})

	t.Run("clean entries pass", func(t *testing.T) {
		repo := &fakeAuditLogRepository{}
		useCase := buildUseCase(repo, &fakeSink{})

		useCase.Log(ctx, Entry{Action: auditDomain.ActionLogin})

		tampered, err := useCase.Verify(ctx, auditDomain.QueryFilter{}, 0, 50)
		require.NoError(t, err)
		assert.Empty(t, tampered)
	})
}
