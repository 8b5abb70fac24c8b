package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	aiqueryDomain "github.com/allisson/trustguard/internal/aiquery/domain"
	aiqueryService "github.com/allisson/trustguard/internal/aiquery/service"
	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	auditUsecase "github.com/allisson/trustguard/internal/audit/usecase"
	redactionDomain "github.com/allisson/trustguard/internal/redaction/domain"
	redactionService "github.com/allisson/trustguard/internal/redaction/service"
)

// securityGuidelines is appended to every system prompt. The model must treat
// redaction tokens as opaque: any attempt to reconstruct the original values
// would defeat the redaction that happened before the call.
const securityGuidelines = `Security guidelines:
- The user content may contain placeholder tokens like [PHONE_1] or [EMAIL_2] in place of personal data.
- Treat these tokens as opaque identifiers. Never guess, reconstruct, or ask for the values behind them.
- Repeat tokens verbatim when referring to the data they replace.`

type secureQueryUseCase struct {
	engine   redactionService.Engine
	provider aiqueryService.Provider
	auditLog auditUsecase.AuditLogUseCase
	logger   *slog.Logger
}

// NewSecureQueryUseCase creates the secure query orchestrator.
func NewSecureQueryUseCase(
	engine redactionService.Engine,
	provider aiqueryService.Provider,
	auditLog auditUsecase.AuditLogUseCase,
	logger *slog.Logger,
) SecureQueryUseCase {
	return &secureQueryUseCase{
		engine:   engine,
		provider: provider,
		auditLog: auditLog,
		logger:   logger,
	}
}

// SecureQuery runs the redact, call, audit pipeline for one outbound query.
func (s *secureQueryUseCase) SecureQuery(
	ctx context.Context,
	req aiqueryDomain.QueryRequest,
) (*aiqueryDomain.QueryResponse, error) {
	requestID := uuid.Must(uuid.NewV7())
	start := time.Now()

	prompt := req.Prompt
	var redaction redactionDomain.RedactionResult
	risk := redactionDomain.RiskNone

	if !req.SkipRedaction {
		redaction = s.engine.Redact(req.Prompt, req.RedactionConfig)
		prompt = redaction.RedactedText

		if redaction.RedactedCount > 0 {
			risk = redactionDomain.RiskFromRedactions(redaction.RedactedCount, redaction.DetectedTypes)
			severity := auditDomain.SeverityMedium
			if risk == redactionDomain.RiskCritical {
				severity = auditDomain.SeverityHigh
			}
			s.auditLog.Log(ctx, auditUsecase.Entry{
				Action:     auditDomain.ActionAIPIIDetected,
				UserID:     req.UserID,
				Resource:   "ai",
				ResourceID: requestID.String(),
				IPAddress:  req.IPAddress,
				Severity:   severity,
				Details: map[string]any{
					"redacted_count": redaction.RedactedCount,
					"types":          redaction.DetectedTypes,
					"risk_level":     risk,
				},
			})
		}
	}

	systemPrompt := securityGuidelines
	if req.SystemPrompt != "" {
		systemPrompt = req.SystemPrompt + "\n\n" + securityGuidelines
	}

	result, err := s.provider.Complete(ctx, aiqueryService.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		s.auditLog.Log(ctx, auditUsecase.Entry{
			Action:     auditDomain.ActionAIError,
			UserID:     req.UserID,
			Resource:   "ai",
			ResourceID: requestID.String(),
			IPAddress:  req.IPAddress,
			Severity:   auditDomain.SeverityHigh,
			Details:    map[string]any{"error": err.Error()},
		})
		s.logger.Error("inference provider call failed",
			slog.String("request_id", requestID.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	latency := time.Since(start)
	s.auditLog.Log(ctx, auditUsecase.Entry{
		Action:     auditDomain.ActionAIQuery,
		UserID:     req.UserID,
		Resource:   "ai",
		ResourceID: requestID.String(),
		IPAddress:  req.IPAddress,
		Details: map[string]any{
			"model":         result.Model,
			"input_tokens":  result.InputTokens,
			"output_tokens": result.OutputTokens,
			"pii_detected":  redaction.RedactedCount > 0,
			"latency_ms":    latency.Milliseconds(),
		},
	})

	return &aiqueryDomain.QueryResponse{
		RequestID:     requestID,
		Text:          result.Text,
		Model:         result.Model,
		InputTokens:   result.InputTokens,
		OutputTokens:  result.OutputTokens,
		PIIDetected:   redaction.RedactedCount > 0,
		PIITypes:      redaction.DetectedTypes,
		RedactedCount: redaction.RedactedCount,
		RiskLevel:     risk,
		Latency:       latency,
	}, nil
}
