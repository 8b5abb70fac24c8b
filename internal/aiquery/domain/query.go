// Package domain defines the secure AI query models: the inbound request,
// the enriched response, and the redaction metadata carried between them.
package domain

import (
	"time"

	"github.com/google/uuid"

	redactionDomain "github.com/allisson/trustguard/internal/redaction/domain"
)

// QueryRequest carries one outbound AI query plus the caller identity used
// for the audit trail.
type QueryRequest struct {
	// Prompt is the user content forwarded to the inference provider.
	Prompt string
	// SystemPrompt is prepended to the fixed security guidelines. Optional.
	SystemPrompt string
	// UserID identifies the caller in the audit trail.
	UserID string
	// IPAddress is the caller's client IP for the audit trail.
	IPAddress string
	// SkipRedaction forwards the prompt verbatim. Callers opting out take
	// responsibility for the content they send.
	SkipRedaction bool
	// RedactionConfig overrides the default all-categories-on redaction.
	RedactionConfig *redactionDomain.Config
}

// QueryResponse is the provider answer enriched with redaction metadata and
// the request ID correlating it with the audit trail.
type QueryResponse struct {
	RequestID     uuid.UUID                   `json:"request_id"`
	Text          string                      `json:"text"`
	Model         string                      `json:"model"`
	InputTokens   int                         `json:"input_tokens"`
	OutputTokens  int                         `json:"output_tokens"`
	PIIDetected   bool                        `json:"pii_detected"`
	PIITypes      []redactionDomain.TokenType `json:"pii_types,omitempty"`
	RedactedCount int                         `json:"redacted_count"`
	RiskLevel     redactionDomain.RiskLevel   `json:"risk_level"`
	Latency       time.Duration               `json:"latency"`
}
