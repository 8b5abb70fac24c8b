package usecase

import (
	"context"
	"time"

	aiqueryDomain "github.com/allisson/trustguard/internal/aiquery/domain"
	"github.com/allisson/trustguard/internal/metrics"
)

// secureQueryUseCaseWithMetrics decorates SecureQueryUseCase with metrics instrumentation.
type secureQueryUseCaseWithMetrics struct {
	next    SecureQueryUseCase
	metrics metrics.BusinessMetrics
}

// NewSecureQueryUseCaseWithMetrics wraps a SecureQueryUseCase with metrics recording.
func NewSecureQueryUseCaseWithMetrics(useCase SecureQueryUseCase, m metrics.BusinessMetrics) SecureQueryUseCase {
	return &secureQueryUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// SecureQuery records metrics for outbound AI queries.
func (s *secureQueryUseCaseWithMetrics) SecureQuery(
	ctx context.Context,
	req aiqueryDomain.QueryRequest,
) (*aiqueryDomain.QueryResponse, error) {
	start := time.Now()
	response, err := s.next.SecureQuery(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "aiquery", "secure_query", status)
	s.metrics.RecordDuration(ctx, "aiquery", "secure_query", time.Since(start), status)

	return response, err
}
