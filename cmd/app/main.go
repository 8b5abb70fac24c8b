// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/trustguard/cmd/app/commands"
	"github.com/allisson/trustguard/internal/app"
	auditUsecase "github.com/allisson/trustguard/internal/audit/usecase"
	"github.com/allisson/trustguard/internal/config"
)

const version = "1.0.0"

// withAuditLogUseCase loads configuration, builds the DI container and hands the
// audit log use case to fn, shutting the container down afterwards.
func withAuditLogUseCase(
	fn func(auditLogUseCase auditUsecase.AuditLogUseCase, logger *slog.Logger) error,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	auditLogUseCase, err := container.AuditLogUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit log use case: %w", err)
	}

	defer func() {
		if err := container.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	return fn(auditLogUseCase, logger)
}

func main() {
	cmd := &cli.Command{
		Name:    "trustguard",
		Usage:   "Security and trust pipeline for admin applications",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				},
			},
			{
				Name:  "generate-key",
				Usage: "Generate a new encryption key for field encryption and audit signing",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunGenerateKey(os.Stdout)
				},
			},
			{
				Name:  "clean-audit-logs",
				Usage: "Delete audit logs older than specified days",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "days",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "Delete audit logs older than this many days",
					},
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Value:   false,
						Usage:   "Show how many logs would be deleted without deleting",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAuditLogUseCase(func(useCase auditUsecase.AuditLogUseCase, logger *slog.Logger) error {
						return commands.RunCleanAuditLogs(
							ctx,
							useCase,
							logger,
							os.Stdout,
							cmd.Int("days"),
							cmd.Bool("dry-run"),
							cmd.String("format"),
						)
					})
				},
			},
			{
				Name:  "verify-audit-logs",
				Usage: "Verify cryptographic integrity of stored audit logs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "start-date",
						Aliases:  []string{"s"},
						Required: true,
						Usage:    "Start of the time range (YYYY-MM-DD or YYYY-MM-DD HH:MM:SS)",
					},
					&cli.StringFlag{
						Name:     "end-date",
						Aliases:  []string{"e"},
						Required: true,
						Usage:    "End of the time range (YYYY-MM-DD or YYYY-MM-DD HH:MM:SS)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAuditLogUseCase(func(useCase auditUsecase.AuditLogUseCase, logger *slog.Logger) error {
						return commands.RunVerifyAuditLogs(
							ctx,
							useCase,
							logger,
							os.Stdout,
							cmd.String("start-date"),
							cmd.String("end-date"),
							cmd.String("format"),
						)
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
