// Package dto provides data transfer objects for the AI query API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/trustguard/internal/validation"
)

// QueryRequest contains the parameters for one outbound AI query.
type QueryRequest struct {
	Prompt        string `json:"prompt"`
	SystemPrompt  string `json:"system_prompt"`
	SkipRedaction bool   `json:"skip_redaction"`
}

// Validate checks if the query request is valid.
func (r *QueryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Prompt,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 32768),
		),
		validation.Field(&r.SystemPrompt,
			validation.Length(0, 8192),
		),
	)
}
