package integration

import (
	"context"
	"crypto/rand"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	auditRepository "github.com/allisson/trustguard/internal/audit/repository"
	auditService "github.com/allisson/trustguard/internal/audit/service"
	auditUsecase "github.com/allisson/trustguard/internal/audit/usecase"
	cryptoService "github.com/allisson/trustguard/internal/crypto/service"
	"github.com/allisson/trustguard/internal/testutil"
)

// signatureTestContext wires the audit trail stack against a real database
// with a static signing key.
type signatureTestContext struct {
	db       *sql.DB
	useCase  auditUsecase.AuditLogUseCase
	dbDriver string
}

func setupSignatureTest(t *testing.T, dbDriver string) *signatureTestContext {
	t.Helper()

	var db *sql.DB
	var repo auditUsecase.AuditLogRepository
	if dbDriver == "postgres" {
		testutil.SkipIfNoPostgres(t)
		db = testutil.SetupPostgresDB(t)
		repo = auditRepository.NewPostgreSQLAuditLogRepository(db)
	} else {
		testutil.SkipIfNoMySQL(t)
		db = testutil.SetupMySQLDB(t)
		repo = auditRepository.NewMySQLAuditLogRepository(db)
	}

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err, "failed to generate signing key")

	logsDir := t.TempDir()
	sink := auditService.NewFileSink(auditService.FileSinkConfig{
		Path:       filepath.Join(logsDir, "audit.log"),
		ErrorPath:  filepath.Join(logsDir, "audit-error.log"),
		MaxSizeMB:  10,
		MaxBackups: 1,
	})

	signer := auditService.NewAuditSigner(cryptoService.StaticKeySource(key))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &signatureTestContext{
		db:       db,
		useCase:  auditUsecase.NewAuditLogUseCase(repo, sink, signer, logger),
		dbDriver: dbDriver,
	}
}

func (ctx *signatureTestContext) cleanup(t *testing.T) {
	t.Helper()
	if ctx.dbDriver == "postgres" {
		testutil.CleanupPostgresDB(t, ctx.db)
	} else {
		testutil.CleanupMySQLDB(t, ctx.db)
	}
}

// tamperUserID rewrites a stored entry behind the use case's back.
func (ctx *signatureTestContext) tamperUserID(t *testing.T, id uuid.UUID, newUserID string) {
	t.Helper()

	var err error
	if ctx.dbDriver == "postgres" {
		_, err = ctx.db.Exec("UPDATE audit_logs SET user_id = $1 WHERE id = $2", newUserID, id)
	} else {
		var binaryID []byte
		binaryID, err = id.MarshalBinary()
		require.NoError(t, err)
		_, err = ctx.db.Exec("UPDATE audit_logs SET user_id = ? WHERE id = ?", newUserID, binaryID)
	}
	require.NoError(t, err, "failed to tamper with audit log")
}

func (ctx *signatureTestContext) verifyAll(t *testing.T) []*auditDomain.AuditLog {
	t.Helper()
	tampered, err := ctx.useCase.Verify(context.Background(), auditDomain.QueryFilter{}, 0, 100)
	require.NoError(t, err)
	return tampered
}

// TestIntegration_AuditLogSignatures verifies that every stored audit entry
// carries a valid signature and that verification flags modified or unsigned
// rows.
func TestIntegration_AuditLogSignatures(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range integrationDrivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupSignatureTest(t, tc.dbDriver)
			defer testutil.TeardownDB(t, ctx.db)

			t.Run("signed entry passes verification", func(t *testing.T) {
				defer ctx.cleanup(t)

				ctx.useCase.Log(context.Background(), auditUsecase.Entry{
					Action:   auditDomain.ActionSensitiveView,
					UserID:   "admin-1",
					Resource: "customer",
					Details:  map[string]any{"fields": []string{"phone"}},
				})

				logs, err := ctx.useCase.Query(context.Background(), auditDomain.QueryFilter{}, 0, 10)
				require.NoError(t, err)
				require.Len(t, logs, 1)
				assert.NotEmpty(t, logs[0].Signature, "stored entry must be signed")

				assert.Empty(t, ctx.verifyAll(t))
			})

			t.Run("tampered entry fails verification", func(t *testing.T) {
				defer ctx.cleanup(t)

				ctx.useCase.Log(context.Background(), auditUsecase.Entry{
					Action: auditDomain.ActionDelete,
					UserID: "admin-1",
				})

				logs, err := ctx.useCase.Query(context.Background(), auditDomain.QueryFilter{}, 0, 10)
				require.NoError(t, err)
				require.Len(t, logs, 1)

				ctx.tamperUserID(t, logs[0].ID, "someone-else")

				tampered := ctx.verifyAll(t)
				require.Len(t, tampered, 1)
				assert.Equal(t, logs[0].ID, tampered[0].ID)
			})

			t.Run("unsigned legacy entry fails verification", func(t *testing.T) {
				defer ctx.cleanup(t)

				legacyID := testutil.CreateTestAuditLog(t, ctx.db, tc.dbDriver, "legacy-user", time.Now().UTC())

				tampered := ctx.verifyAll(t)
				require.Len(t, tampered, 1)
				assert.Equal(t, legacyID, tampered[0].ID)
			})

			t.Run("verification isolates the modified entry", func(t *testing.T) {
				defer ctx.cleanup(t)

				for i := 0; i < 5; i++ {
					ctx.useCase.Log(context.Background(), auditUsecase.Entry{
						Action: auditDomain.ActionView,
						UserID: "admin-1",
					})
				}

				logs, err := ctx.useCase.Query(context.Background(), auditDomain.QueryFilter{}, 0, 10)
				require.NoError(t, err)
				require.Len(t, logs, 5)

				ctx.tamperUserID(t, logs[2].ID, "intruder")

				tampered := ctx.verifyAll(t)
				require.Len(t, tampered, 1)
				assert.Equal(t, logs[2].ID, tampered[0].ID)
			})
		})
	}
}
