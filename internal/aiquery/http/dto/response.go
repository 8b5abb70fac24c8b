package dto

import (
	aiqueryDomain "github.com/allisson/trustguard/internal/aiquery/domain"
)

// QueryResponse represents the AI query result in API responses.
type QueryResponse struct {
	RequestID     string   `json:"request_id"`
	Text          string   `json:"text"`
	Model         string   `json:"model"`
	InputTokens   int      `json:"input_tokens"`
	OutputTokens  int      `json:"output_tokens"`
	PIIDetected   bool     `json:"pii_detected"`
	PIITypes      []string `json:"pii_types,omitempty"`
	RedactedCount int      `json:"redacted_count"`
	RiskLevel     string   `json:"risk_level"`
	LatencyMs     int64    `json:"latency_ms"`
}

// MapQueryToResponse converts a domain query response to an API response.
func MapQueryToResponse(response *aiqueryDomain.QueryResponse) QueryResponse {
	piiTypes := make([]string, 0, len(response.PIITypes))
	for _, piiType := range response.PIITypes {
		piiTypes = append(piiTypes, string(piiType))
	}
	if len(piiTypes) == 0 {
		piiTypes = nil
	}

	return QueryResponse{
		RequestID:     response.RequestID.String(),
		Text:          response.Text,
		Model:         response.Model,
		InputTokens:   response.InputTokens,
		OutputTokens:  response.OutputTokens,
		PIIDetected:   response.PIIDetected,
		PIITypes:      piiTypes,
		RedactedCount: response.RedactedCount,
		RiskLevel:     string(response.RiskLevel),
		LatencyMs:     response.Latency.Milliseconds(),
	}
}
