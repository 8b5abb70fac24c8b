package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	aiqueryHTTP "github.com/allisson/trustguard/internal/aiquery/http"
	auditHTTP "github.com/allisson/trustguard/internal/audit/http"
	"github.com/allisson/trustguard/internal/metrics"
	securityDomain "github.com/allisson/trustguard/internal/security/domain"
	securityHTTP "github.com/allisson/trustguard/internal/security/http"
	securityService "github.com/allisson/trustguard/internal/security/service"
)

// Server is the API HTTP server. The database handle is only used by the
// readiness probe; request handling goes through the assembled gin router.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates the API server. Call SetupRouter before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig carries the handlers and middleware dependencies for router assembly.
type RouterConfig struct {
	SecurityState    *securityService.SecurityState
	AuditLogHandler  *auditHTTP.AuditLogHandler
	QueryHandler     *aiqueryHTTP.QueryHandler
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
	CORSEnabled      bool
	CORSAllowOrigins string
}

// SetupRouter assembles the gin router: recovery, request IDs, logging,
// optional metrics and CORS, health probes, and the versioned API groups.
// Each API group mounts the security gate with its own rate limit class.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	if cfg.AuditLogHandler != nil {
		auditGroup := v1.Group("/audit-logs")
		auditGroup.Use(securityHTTP.ValidateRequest(cfg.SecurityState, securityDomain.ClassSensitive, s.logger))
		auditGroup.GET("", cfg.AuditLogHandler.ListHandler)
		auditGroup.GET("/summary", cfg.AuditLogHandler.SummaryHandler)
	}

	if cfg.QueryHandler != nil {
		aiGroup := v1.Group("/ai")
		aiGroup.Use(securityHTTP.ValidateRequest(cfg.SecurityState, securityDomain.ClassAI, s.logger))
		aiGroup.POST("/query", cfg.QueryHandler.QueryHandler)
	}

	s.router = router
}

// GetHandler returns the assembled router for testing purposes.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. The audit
// store is the only hard dependency, so readiness is a database ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}

// Start starts the HTTP server with the assembled router.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured, call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
