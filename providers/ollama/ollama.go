// Package ollama provides a bioquery Provider backed by a local Ollama
// server through langchaingo.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/zoobzio/bioquery"
	"github.com/zoobzio/capitan"
)

// Defaults match a stock local install.
const (
	DefaultServerURL = "http://localhost:11434"
	DefaultModel     = "phi3:mini"
)

// Config holds configuration for the Ollama provider.
type Config struct {
	ServerURL string // Optional, defaults to DefaultServerURL
	Model     string // Optional, defaults to DefaultModel
	JSON      bool   // Ask the server to constrain output to JSON
}

// Provider implements bioquery.Provider for Ollama.
type Provider struct {
	llm   llms.Model
	model string
	name  string
}

// New creates a provider. The server is not contacted until the first call.
func New(config Config) (*Provider, error) {
	if config.ServerURL == "" {
		config.ServerURL = DefaultServerURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	opts := []ollama.Option{
		ollama.WithServerURL(config.ServerURL),
		ollama.WithModel(config.Model),
	}
	if config.JSON {
		opts = append(opts, ollama.WithFormat("json"))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	return NewWithModel(client, config.Model), nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(llm llms.Model, model string) *Provider {
	return &Provider{llm: llm, model: model, name: "ollama"}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Call sends the conversation to the model.
func (p *Provider) Call(ctx context.Context, messages []bioquery.Message, temperature float32) (*bioquery.ProviderResponse, error) {
	startTime := time.Now()

	capitan.Emit(ctx, bioquery.ProviderCallStarted,
		bioquery.ProviderKey.Field(p.name),
		bioquery.ModelKey.Field(p.model),
	)

	content := make([]llms.MessageContent, len(messages))
	for i, m := range messages {
		content[i] = llms.TextParts(chatRole(m.Role), m.Content)
	}

	resp, err := p.llm.GenerateContent(ctx, content, llms.WithTemperature(float64(temperature)))
	if err == nil && (resp == nil || len(resp.Choices) == 0) {
		err = errors.New("no response choices returned")
	}
	if err != nil {
		capitan.Emit(ctx, bioquery.ProviderCallFailed,
			bioquery.ProviderKey.Field(p.name),
			bioquery.ModelKey.Field(p.model),
			bioquery.ErrorKey.Field(err.Error()),
			bioquery.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
		)
		return nil, fmt.Errorf("%w: ollama: %w", bioquery.ErrProviderUnavailable, err)
	}

	choice := resp.Choices[0]
	usage := bioquery.TokenUsage{
		Prompt:     intInfo(choice.GenerationInfo, "PromptTokens"),
		Completion: intInfo(choice.GenerationInfo, "CompletionTokens"),
		Total:      intInfo(choice.GenerationInfo, "TotalTokens"),
	}

	fields := []capitan.Field{
		bioquery.ProviderKey.Field(p.name),
		bioquery.ModelKey.Field(p.model),
		bioquery.PromptTokensKey.Field(usage.Prompt),
		bioquery.CompletionTokensKey.Field(usage.Completion),
		bioquery.TotalTokensKey.Field(usage.Total),
		bioquery.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
	}
	if choice.StopReason != "" {
		fields = append(fields, bioquery.ResponseFinishReasonKey.Field(choice.StopReason))
	}
	capitan.Emit(ctx, bioquery.ProviderCallCompleted, fields...)

	return &bioquery.ProviderResponse{Content: choice.Content, Usage: usage}, nil
}

func chatRole(role string) llms.ChatMessageType {
	switch role {
	case bioquery.RoleSystem:
		return llms.ChatMessageTypeSystem
	case bioquery.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

func intInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
