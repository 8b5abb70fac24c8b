// Package usecase implements the secure AI query orchestration: redact the
// prompt, call the inference provider, and audit every step.
package usecase

import (
	"context"

	aiqueryDomain "github.com/allisson/trustguard/internal/aiquery/domain"
)

// SecureQueryUseCase defines the interface for outbound AI queries.
type SecureQueryUseCase interface {
	// SecureQuery redacts the prompt (unless the caller opts out), forwards it
	// to the inference provider with anti-unredaction guidelines, and audits
	// the outcome. Provider and redaction failures propagate to the caller:
	// this is the one path where the caller must know the call did not complete.
	SecureQuery(ctx context.Context, req aiqueryDomain.QueryRequest) (*aiqueryDomain.QueryResponse, error)
}
