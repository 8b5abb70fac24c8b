// Package http provides the HTTP handler for the AI query API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	aiqueryDomain "github.com/allisson/trustguard/internal/aiquery/domain"
	"github.com/allisson/trustguard/internal/aiquery/http/dto"
	aiqueryUsecase "github.com/allisson/trustguard/internal/aiquery/usecase"
	"github.com/allisson/trustguard/internal/httputil"
	securityHTTP "github.com/allisson/trustguard/internal/security/http"
)

// QueryHandler handles HTTP requests for outbound AI queries.
type QueryHandler struct {
	secureQueryUseCase aiqueryUsecase.SecureQueryUseCase
	logger             *slog.Logger
}

// NewQueryHandler creates a new AI query handler with required dependencies.
func NewQueryHandler(secureQueryUseCase aiqueryUsecase.SecureQueryUseCase, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{
		secureQueryUseCase: secureQueryUseCase,
		logger:             logger,
	}
}

// QueryHandler forwards a prompt through the secure query pipeline.
// POST /v1/ai/query
// The prompt is redacted before leaving the process unless skip_redaction is
// set. Returns 200 OK with the generated text and redaction metadata, 502 on
// inference provider failure.
func (h *QueryHandler) QueryHandler(c *gin.Context) {
	var request dto.QueryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := request.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	response, err := h.secureQueryUseCase.SecureQuery(c.Request.Context(), aiqueryDomain.QueryRequest{
		Prompt:        request.Prompt,
		SystemPrompt:  request.SystemPrompt,
		SkipRedaction: request.SkipRedaction,
		UserID:        c.GetHeader("X-User-Id"),
		IPAddress:     securityHTTP.ClientIP(c),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapQueryToResponse(response))
}
