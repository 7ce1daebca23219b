package bioquery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Service provides typed model interactions for a response type T.
// It wraps a pipz pipeline and handles JSON extraction and validation.
type Service[T Validator] struct {
	pipeline           pipz.Chainable[*ParseRequest]
	task               string
	providerName       string
	defaultTemperature float32
}

// NewService creates a new Service with the given pipeline, task label,
// provider and default temperature.
func NewService[T Validator](pipeline pipz.Chainable[*ParseRequest], task string, provider Provider, defaultTemperature float32) *Service[T] {
	return &Service[T]{
		pipeline:           pipeline,
		task:               task,
		providerName:       provider.Name(),
		defaultTemperature: defaultTemperature,
	}
}

// NewTerminal creates the terminal processor that calls the provider with
// the rendered prompt.
func NewTerminal(provider Provider) pipz.Chainable[*ParseRequest] {
	return pipz.Apply("llm-call", func(ctx context.Context, req *ParseRequest) (*ParseRequest, error) {
		messages := []Message{{
			Role:    RoleUser,
			Content: req.Prompt.Render(),
		}}

		resp, err := provider.Call(ctx, messages, req.Temperature)
		if err != nil {
			return req, err
		}
		if resp == nil {
			return req, ErrEmptyResponse
		}

		out := req.clone()
		out.Response = resp.Content
		usage := resp.Usage
		out.Usage = &usage
		return out, nil
	})
}

// GetPipeline returns the internal pipeline for composition.
func (s *Service[T]) GetPipeline() pipz.Chainable[*ParseRequest] {
	return s.pipeline
}

// Execute processes a prompt through the pipeline and returns a typed response.
//
// Temperature resolution: if the provided temperature is 0 or TemperatureUnset,
// the service's default temperature is used instead.
func (s *Service[T]) Execute(ctx context.Context, prompt *Prompt, temperature float32) (T, error) {
	var result T

	if temperature == TemperatureUnset || temperature == 0 {
		temperature = s.defaultTemperature
	}

	if err := prompt.Validate(); err != nil {
		return result, fmt.Errorf("invalid prompt: %w", err)
	}

	requestID := uuid.New().String()

	request := &ParseRequest{
		Prompt:       prompt,
		Temperature:  temperature,
		RequestID:    requestID,
		ProviderName: s.providerName,
	}

	capitan.Info(ctx, RequestStarted,
		RequestIDKey.Field(requestID),
		ProviderKey.Field(s.providerName),
		PromptTaskKey.Field(s.task),
		InputKey.Field(prompt.Input),
		TemperatureKey.Field(float64(temperature)),
	)

	processed, err := s.pipeline.Process(ctx, request)
	if err != nil {
		capitan.Error(ctx, RequestFailed,
			RequestIDKey.Field(requestID),
			ProviderKey.Field(s.providerName),
			PromptTaskKey.Field(s.task),
			ErrorKey.Field(err.Error()),
		)
		return result, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	if processed == nil || processed.Response == "" {
		return result, ErrEmptyResponse
	}

	raw, extractErr := extractJSONObject(processed.Response)
	if extractErr == nil {
		extractErr = json.Unmarshal([]byte(raw), &result)
	}
	if extractErr != nil {
		capitan.Error(ctx, ResponseParseFailed,
			RequestIDKey.Field(requestID),
			ProviderKey.Field(s.providerName),
			PromptTaskKey.Field(s.task),
			ResponseKey.Field(processed.Response),
			ErrorKey.Field(extractErr.Error()),
			ErrorTypeKey.Field("parse_error"),
		)
		return result, fmt.Errorf("%w: failed to parse response: %w", ErrInvalidResponse, extractErr)
	}

	if validationErr := result.Validate(); validationErr != nil {
		capitan.Error(ctx, ResponseParseFailed,
			RequestIDKey.Field(requestID),
			ProviderKey.Field(s.providerName),
			PromptTaskKey.Field(s.task),
			ResponseKey.Field(processed.Response),
			ErrorKey.Field(validationErr.Error()),
			ErrorTypeKey.Field("validation_error"),
		)
		return result, fmt.Errorf("%w: %w", ErrInvalidResponse, validationErr)
	}

	fields := []capitan.Field{
		RequestIDKey.Field(requestID),
		ProviderKey.Field(s.providerName),
		PromptTaskKey.Field(s.task),
		InputKey.Field(prompt.Input),
		OutputKey.Field(raw),
		ResponseKey.Field(processed.Response),
	}
	if processed.Usage != nil {
		fields = append(fields,
			PromptTokensKey.Field(processed.Usage.Prompt),
			CompletionTokensKey.Field(processed.Usage.Completion),
			TotalTokensKey.Field(processed.Usage.Total),
		)
	}
	capitan.Info(ctx, RequestCompleted, fields...)

	return result, nil
}
