package service

import (
	"context"
	"encoding/base64"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
)

// FileSinkConfig configures the rotating local audit files.
type FileSinkConfig struct {
	Path       string
	ErrorPath  string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// fileSink writes every audit entry as a JSON line to a size-rotated file,
// and duplicates high-severity entries plus persistence failures into a
// separate error file for fast triage.
type fileSink struct {
	logger      *slog.Logger
	errorLogger *slog.Logger
}

// NewFileSink creates the local audit sink. The primary file receives every
// entry; the error file receives only error-level records.
func NewFileSink(cfg FileSinkConfig) Sink {
	primary := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	errors := &lumberjack.Logger{
		Filename:   cfg.ErrorPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	return &fileSink{
		logger: slog.New(slog.NewJSONHandler(primary, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})),
		errorLogger: slog.New(slog.NewJSONHandler(errors, &slog.HandlerOptions{
			Level: slog.LevelError,
		})),
	}
}

// Write records the entry at the level implied by its severity. Critical and
// high entries also land in the error file.
func (s *fileSink) Write(log *auditDomain.AuditLog) {
	level := log.Severity.LogLevel()
	attrs := entryAttrs(log)

	s.logger.LogAttrs(context.Background(), level, string(log.Action), attrs...)
	if level >= slog.LevelError {
		s.errorLogger.LogAttrs(context.Background(), level, string(log.Action), attrs...)
	}
}

// WriteFailure records a persistence failure in the error file so the entry
// survives locally even when the backing store is down.
func (s *fileSink) WriteFailure(log *auditDomain.AuditLog, err error) {
	attrs := entryAttrs(log)
	attrs = append(attrs, slog.String("store_error", err.Error()))
	s.errorLogger.LogAttrs(context.Background(), slog.LevelError, "audit store write failed", attrs...)
}

func entryAttrs(log *auditDomain.AuditLog) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("audit_id", log.ID.String()),
		slog.String("action", string(log.Action)),
		slog.String("severity", string(log.Severity)),
		slog.Time("created_at", log.CreatedAt),
	}
	if log.UserID != "" {
		attrs = append(attrs, slog.String("user_id", log.UserID))
	}
	if log.Resource != "" {
		attrs = append(attrs, slog.String("resource", log.Resource))
	}
	if log.ResourceID != "" {
		attrs = append(attrs, slog.String("resource_id", log.ResourceID))
	}
	if log.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", log.IPAddress))
	}
	if log.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", log.UserAgent))
	}
	if len(log.Details) > 0 {
		attrs = append(attrs, slog.Any("details", log.Details))
	}
	if len(log.Signature) > 0 {
		attrs = append(attrs, slog.String("signature", base64.StdEncoding.EncodeToString(log.Signature)))
	}
	return attrs
}
