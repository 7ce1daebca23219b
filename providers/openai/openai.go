// Package openai provides a bioquery Provider for OpenAI-compatible chat
// completion endpoints (OpenAI, LM Studio, llama.cpp server, vLLM and
// similar local gateways).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zoobzio/bioquery"
	"github.com/zoobzio/capitan"
)

// Provider implements bioquery.Provider over /chat/completions.
type Provider struct {
	apiKey     string
	model      string
	baseURL    string
	jsonMode   bool
	httpClient *http.Client
	name       string
}

// Config holds configuration for the provider.
type Config struct {
	APIKey   string        // Optional for local gateways
	Model    string        // e.g. "gpt-4o-mini", "phi-3-mini-4k-instruct"
	BaseURL  string        // Optional, defaults to "https://api.openai.com/v1"
	Timeout  time.Duration // Optional, defaults to 30s
	JSONMode *bool         // Request response_format json_object; defaults to true
}

// New creates a new provider.
func New(config Config) *Provider {
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	jsonMode := true
	if config.JSONMode != nil {
		jsonMode = *config.JSONMode
	}

	return &Provider{
		apiKey:   config.APIKey,
		model:    config.Model,
		baseURL:  config.BaseURL,
		jsonMode: jsonMode,
		name:     "openai",
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Call sends the messages and returns the first choice.
func (p *Provider) Call(ctx context.Context, messages []bioquery.Message, temperature float32) (*bioquery.ProviderResponse, error) {
	startTime := time.Now()

	capitan.Emit(ctx, bioquery.ProviderCallStarted,
		bioquery.ProviderKey.Field(p.name),
		bioquery.ModelKey.Field(p.model),
	)

	requestBody := chatCompletionRequest{
		Model:       p.model,
		Messages:    make([]message, len(messages)),
		Temperature: temperature,
	}
	for i, m := range messages {
		requestBody.Messages[i] = message{Role: m.Role, Content: m.Content}
	}
	if p.jsonMode {
		requestBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		capitan.Emit(ctx, bioquery.ProviderCallFailed,
			bioquery.ProviderKey.Field(p.name),
			bioquery.ModelKey.Field(p.model),
			bioquery.ErrorKey.Field(err.Error()),
			bioquery.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
		)
		return nil, fmt.Errorf("%w: request failed: %w", bioquery.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		duration := time.Since(startTime)
		var errorResp errorResponse

		fields := []capitan.Field{
			bioquery.ProviderKey.Field(p.name),
			bioquery.ModelKey.Field(p.model),
			bioquery.HTTPStatusCodeKey.Field(resp.StatusCode),
			bioquery.DurationMsKey.Field(int(duration.Milliseconds())),
		}

		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			fields = append(fields,
				bioquery.ErrorKey.Field(errorResp.Error.Message),
				bioquery.APIErrorTypeKey.Field(errorResp.Error.Type),
			)
			if errorResp.Error.Code != "" {
				fields = append(fields, bioquery.APIErrorCodeKey.Field(errorResp.Error.Code))
			}

			capitan.Emit(ctx, bioquery.ProviderCallFailed, fields...)

			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, fmt.Errorf("rate limit exceeded: %s", errorResp.Error.Message)
			}
			return nil, fmt.Errorf("openai error (%d): %s", resp.StatusCode, errorResp.Error.Message)
		}

		fields = append(fields, bioquery.ErrorKey.Field(fmt.Sprintf("status %d", resp.StatusCode)))
		capitan.Emit(ctx, bioquery.ProviderCallFailed, fields...)
		return nil, fmt.Errorf("openai error: status %d", resp.StatusCode)
	}

	var completionResp chatCompletionResponse
	if err := json.Unmarshal(body, &completionResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(completionResp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	duration := time.Since(startTime)

	fields := []capitan.Field{
		bioquery.ProviderKey.Field(p.name),
		bioquery.ModelKey.Field(completionResp.Model),
		bioquery.PromptTokensKey.Field(completionResp.Usage.PromptTokens),
		bioquery.CompletionTokensKey.Field(completionResp.Usage.CompletionTokens),
		bioquery.TotalTokensKey.Field(completionResp.Usage.TotalTokens),
		bioquery.DurationMsKey.Field(int(duration.Milliseconds())),
		bioquery.HTTPStatusCodeKey.Field(resp.StatusCode),
		bioquery.ResponseIDKey.Field(completionResp.ID),
		bioquery.ResponseCreatedKey.Field(int(completionResp.Created)),
	}
	if completionResp.Choices[0].FinishReason != "" {
		fields = append(fields, bioquery.ResponseFinishReasonKey.Field(completionResp.Choices[0].FinishReason))
	}
	capitan.Emit(ctx, bioquery.ProviderCallCompleted, fields...)

	return &bioquery.ProviderResponse{
		Content: completionResp.Choices[0].Message.Content,
		Usage: bioquery.TokenUsage{
			Prompt:     completionResp.Usage.PromptTokens,
			Completion: completionResp.Usage.CompletionTokens,
			Total:      completionResp.Usage.TotalTokens,
		},
	}, nil
}

// Request/Response types for the chat completions API

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Index        int     `json:"index"`
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
