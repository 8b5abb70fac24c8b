// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	aiqueryHTTP "github.com/allisson/trustguard/internal/aiquery/http"
	aiqueryService "github.com/allisson/trustguard/internal/aiquery/service"
	aiqueryUsecase "github.com/allisson/trustguard/internal/aiquery/usecase"
	auditHTTP "github.com/allisson/trustguard/internal/audit/http"
	auditRepository "github.com/allisson/trustguard/internal/audit/repository"
	auditService "github.com/allisson/trustguard/internal/audit/service"
	auditUsecase "github.com/allisson/trustguard/internal/audit/usecase"
	"github.com/allisson/trustguard/internal/config"
	cryptoDomain "github.com/allisson/trustguard/internal/crypto/domain"
	cryptoService "github.com/allisson/trustguard/internal/crypto/service"
	cryptoUsecase "github.com/allisson/trustguard/internal/crypto/usecase"
	"github.com/allisson/trustguard/internal/database"
	"github.com/allisson/trustguard/internal/http"
	"github.com/allisson/trustguard/internal/metrics"
	redactionService "github.com/allisson/trustguard/internal/redaction/service"
	securityDomain "github.com/allisson/trustguard/internal/security/domain"
	securityService "github.com/allisson/trustguard/internal/security/service"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Crypto
	keySource         cryptoService.KeySource
	fieldCipher       cryptoService.FieldCipher
	fieldEncryptionUC cryptoUsecase.FieldEncryptionUseCase

	// Redaction
	redactionEngine redactionService.Engine

	// Audit
	auditLogRepo    auditUsecase.AuditLogRepository
	auditSink       auditService.Sink
	auditSigner     auditService.Signer
	auditLogUseCase auditUsecase.AuditLogUseCase

	// Security
	securityState *securityService.SecurityState
	sanitizer     *securityService.Sanitizer

	// AI query
	aiProvider         aiqueryService.Provider
	secureQueryUseCase aiqueryUsecase.SecureQueryUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	keySourceInit          sync.Once
	fieldCipherInit        sync.Once
	fieldEncryptionUCInit  sync.Once
	redactionEngineInit    sync.Once
	auditLogRepoInit       sync.Once
	auditSinkInit          sync.Once
	auditSignerInit        sync.Once
	auditLogUseCaseInit    sync.Once
	securityStateInit      sync.Once
	sanitizerInit          sync.Once
	aiProviderInit         sync.Once
	secureQueryUseCaseInit sync.Once
	httpServerInit         sync.Once
	metricsServerInit      sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the audit store database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if err, exists := c.initErrors["db"]; exists {
		return nil, err
	}
	return c.db, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if err, exists := c.initErrors["metricsProvider"]; exists {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder is
// returned when metrics are disabled, so callers never need a nil check.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if err, exists := c.initErrors["businessMetrics"]; exists {
		return nil, err
	}
	return c.businessMetrics, nil
}

// KeySource returns the process-wide encryption key source.
func (c *Container) KeySource() cryptoService.KeySource {
	c.keySourceInit.Do(func() {
		c.keySource = cryptoService.NewEnvKeySource()
	})
	return c.keySource
}

// FieldCipher returns the field-level encryption cipher.
func (c *Container) FieldCipher() cryptoService.FieldCipher {
	c.fieldCipherInit.Do(func() {
		c.fieldCipher = cryptoService.NewAEADFieldCipher(c.KeySource(), cryptoDomain.AESGCM)
	})
	return c.fieldCipher
}

// FieldEncryptionUseCase returns the sensitive-field encryption use case.
func (c *Container) FieldEncryptionUseCase() cryptoUsecase.FieldEncryptionUseCase {
	c.fieldEncryptionUCInit.Do(func() {
		c.fieldEncryptionUC = cryptoUsecase.NewFieldEncryptionUseCase(c.FieldCipher())
	})
	return c.fieldEncryptionUC
}

// RedactionEngine returns the PII redaction engine with the built-in pattern table.
func (c *Container) RedactionEngine() redactionService.Engine {
	c.redactionEngineInit.Do(func() {
		c.redactionEngine = redactionService.NewEngine()
	})
	return c.redactionEngine
}

// Sanitizer returns the input sanitizer.
func (c *Container) Sanitizer() *securityService.Sanitizer {
	c.sanitizerInit.Do(func() {
		c.sanitizer = securityService.NewSanitizer()
	})
	return c.sanitizer
}

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (auditUsecase.AuditLogRepository, error) {
	c.auditLogRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["auditLogRepo"] = fmt.Errorf("failed to get database for audit log repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.auditLogRepo = auditRepository.NewMySQLAuditLogRepository(db)
		case "postgres":
			c.auditLogRepo = auditRepository.NewPostgreSQLAuditLogRepository(db)
		default:
			c.initErrors["auditLogRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["auditLogRepo"]; exists {
		return nil, err
	}
	return c.auditLogRepo, nil
}

// AuditSink returns the rotating file sink for local audit writes.
func (c *Container) AuditSink() auditService.Sink {
	c.auditSinkInit.Do(func() {
		c.auditSink = auditService.NewFileSink(auditService.FileSinkConfig{
			Path:       c.config.AuditFilePath,
			ErrorPath:  c.config.AuditErrorFilePath,
			MaxSizeMB:  c.config.AuditFileMaxSizeMB,
			MaxBackups: c.config.AuditFileMaxBackups,
		})
	})
	return c.auditSink
}

// AuditSigner returns the HMAC audit entry signer.
func (c *Container) AuditSigner() auditService.Signer {
	c.auditSignerInit.Do(func() {
		c.auditSigner = auditService.NewAuditSigner(c.KeySource())
	})
	return c.auditSigner
}

// AuditLogUseCase returns the audit trail use case wrapped with metrics.
func (c *Container) AuditLogUseCase() (auditUsecase.AuditLogUseCase, error) {
	c.auditLogUseCaseInit.Do(func() {
		repo, err := c.AuditLogRepository()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
			return
		}

		useCase := auditUsecase.NewAuditLogUseCase(repo, c.AuditSink(), c.AuditSigner(), c.Logger())
		c.auditLogUseCase = auditUsecase.NewAuditLogUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, err
	}
	return c.auditLogUseCase, nil
}

// SecurityState returns the shared security state holding the IP blacklist,
// per-class rate limiters, failed-login tracking and CSRF tokens.
func (c *Container) SecurityState() (*securityService.SecurityState, error) {
	c.securityStateInit.Do(func() {
		auditLog, err := c.AuditLogUseCase()
		if err != nil {
			c.initErrors["securityState"] = err
			return
		}

		c.securityState = securityService.NewSecurityState(securityService.Config{
			Limits: map[securityDomain.RateLimitClass]securityDomain.ClassLimits{
				securityDomain.ClassAPI: {
					Points: c.config.RateLimitAPIPoints,
					Window: c.config.RateLimitAPIWindow,
				},
				securityDomain.ClassAuth: {
					Points: c.config.RateLimitAuthPoints,
					Window: c.config.RateLimitAuthWindow,
				},
				securityDomain.ClassAI: {
					Points: c.config.RateLimitAIPoints,
					Window: c.config.RateLimitAIWindow,
				},
				securityDomain.ClassSensitive: {
					Points: c.config.RateLimitSensitivePoints,
					Window: c.config.RateLimitSensitiveWindow,
				},
			},
			LockoutMaxAttempts: c.config.LockoutMaxAttempts,
			LockoutWindow:      c.config.LockoutWindow,
			CSRFTokenTTL:       c.config.CSRFTokenTTL,
		}, auditLog, c.Logger())
	})
	if err, exists := c.initErrors["securityState"]; exists {
		return nil, err
	}
	return c.securityState, nil
}

// AIProvider returns the inference provider client.
func (c *Container) AIProvider() aiqueryService.Provider {
	c.aiProviderInit.Do(func() {
		c.aiProvider = aiqueryService.NewOpenAIProvider(aiqueryService.ProviderConfig{
			BaseURL:     c.config.AIProviderBaseURL,
			APIKey:      c.config.AIProviderAPIKey,
			Model:       c.config.AIModel,
			MaxTokens:   c.config.AIMaxTokens,
			Temperature: c.config.AITemperature,
			Timeout:     c.config.AITimeout,
		})
	})
	return c.aiProvider
}

// SecureQueryUseCase returns the secure query orchestrator wrapped with metrics.
func (c *Container) SecureQueryUseCase() (aiqueryUsecase.SecureQueryUseCase, error) {
	c.secureQueryUseCaseInit.Do(func() {
		auditLog, err := c.AuditLogUseCase()
		if err != nil {
			c.initErrors["secureQueryUseCase"] = err
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["secureQueryUseCase"] = err
			return
		}

		useCase := aiqueryUsecase.NewSecureQueryUseCase(
			c.RedactionEngine(),
			c.AIProvider(),
			auditLog,
			c.Logger(),
		)
		c.secureQueryUseCase = aiqueryUsecase.NewSecureQueryUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err, exists := c.initErrors["secureQueryUseCase"]; exists {
		return nil, err
	}
	return c.secureQueryUseCase, nil
}

// HTTPServer returns the API server with the router fully assembled.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}

		securityState, err := c.SecurityState()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}

		auditLog, err := c.AuditLogUseCase()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}

		secureQuery, err := c.SecureQueryUseCase()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}

		metricsProvider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}

		logger := c.Logger()
		server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)

		routerConfig := http.RouterConfig{
			SecurityState:    securityState,
			AuditLogHandler:  auditHTTP.NewAuditLogHandler(auditLog, logger),
			QueryHandler:     aiqueryHTTP.NewQueryHandler(secureQuery, logger),
			MetricsNamespace: c.config.MetricsNamespace,
			CORSEnabled:      c.config.CORSEnabled,
			CORSAllowOrigins: c.config.CORSAllowOrigins,
		}
		if metricsProvider != nil {
			routerConfig.MeterProvider = metricsProvider.MeterProvider()
		}
		server.SetupRouter(routerConfig)

		c.httpServer = server
	})
	if err, exists := c.initErrors["httpServer"]; exists {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
	})
	if err, exists := c.initErrors["metricsServer"]; exists {
		return nil, err
	}
	return c.metricsServer, nil
}

// StartSecurityCleanup launches the background sweep of expired security state.
func (c *Container) StartSecurityCleanup(ctx context.Context) error {
	state, err := c.SecurityState()
	if err != nil {
		return err
	}
	state.StartCleanup(ctx, time.Minute)
	return nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
