// Package service implements the outbound inference provider client.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/allisson/trustguard/internal/errors"
)

// CompletionRequest is one text-completion call to the inference provider.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// CompletionResult carries the generated text and the provider's token accounting.
type CompletionResult struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Provider defines the interface to a text-completion inference provider.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// ProviderConfig configures the OpenAI-compatible provider client.
type ProviderConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// openAIProvider calls any OpenAI-compatible chat completions endpoint.
type openAIProvider struct {
	cfg    ProviderConfig
	client *http.Client
}

// NewOpenAIProvider creates a Provider against an OpenAI-compatible API.
func NewOpenAIProvider(cfg ProviderConfig) Provider {
	return &openAIProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete posts a chat completion and maps failures to ErrProvider.
func (p *openAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	payload := chatCompletionRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}
	if req.SystemPrompt != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: req.UserPrompt})

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProvider, err.Error())
	}

	url := strings.TrimSuffix(p.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProvider, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProvider, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProvider, err.Error())
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrProvider, "unexpected response (status %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("status %d", resp.StatusCode)
		if completion.Error != nil && completion.Error.Message != "" {
			message = completion.Error.Message
		}
		return nil, apperrors.Wrap(apperrors.ErrProvider, message)
	}

	if len(completion.Choices) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrProvider, "response contains no choices")
	}

	model := completion.Model
	if model == "" {
		model = p.cfg.Model
	}

	return &CompletionResult{
		Text:         completion.Choices[0].Message.Content,
		Model:        model,
		InputTokens:  completion.Usage.PromptTokens,
		OutputTokens: completion.Usage.CompletionTokens,
	}, nil
}
