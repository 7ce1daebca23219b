package bioquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MockProvider simulates a reasoning service for testing.
// It answers intent prompts deterministically by applying the keyword rules
// to the prompt input.
type MockProvider struct {
	mu        sync.Mutex
	name      string
	available bool
	calls     int
}

// NewMockProvider creates a new mock provider for testing.
func NewMockProvider() *MockProvider {
	return NewMockProviderWithName("mock")
}

// NewMockProviderWithName creates a new mock provider with a specific name.
func NewMockProviderWithName(name string) *MockProvider {
	return &MockProvider{
		name:      name,
		available: true,
	}
}

// Call simulates a model call with deterministic responses.
func (m *MockProvider) Call(_ context.Context, messages []Message, _ float32) (*ProviderResponse, error) {
	m.mu.Lock()
	m.calls++
	available := m.available
	m.mu.Unlock()

	if !available {
		return nil, fmt.Errorf("provider %s: %w", m.name, ErrProviderUnavailable)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("provider %s: no messages", m.name)
	}
	content := m.generateResponse(messages[len(messages)-1].Content)
	return &ProviderResponse{
		Content: content,
		Usage:   TokenUsage{Prompt: 10, Completion: 20, Total: 30},
	}, nil
}

// Name returns the provider identifier.
func (m *MockProvider) Name() string {
	return m.name
}

// SetAvailable sets the availability status (for testing failures).
func (m *MockProvider) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}

// Calls returns how many times Call was invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (*MockProvider) generateResponse(prompt string) string {
	intent := NewFallbackParser().Intent(extractInput(prompt))
	response := IntentResponse{
		Operation:  string(intent.Operation),
		Parameters: map[string]any(intent.Parameters),
		Reference:  intent.Reference,
		Reasoning:  "Mock response generated",
	}
	jsonBytes, err := json.Marshal(response)
	if err != nil {
		return "Mock response"
	}
	return string(jsonBytes)
}

// extractInput returns the "Input: " line of a rendered prompt.
func extractInput(prompt string) string {
	if idx := strings.Index(prompt, "Input: "); idx != -1 {
		start := idx + 7
		end := strings.Index(prompt[start:], "\n")
		if end == -1 {
			return strings.TrimSpace(prompt[start:])
		}
		return strings.TrimSpace(prompt[start : start+end])
	}
	return ""
}

// NewMockProviderWithResponse creates a mock that always returns a specific response.
func NewMockProviderWithResponse(response string) Provider {
	return &mockProviderFixed{response: response}
}

// NewMockProviderWithCallback creates a mock that calls a function to generate responses.
func NewMockProviderWithCallback(callback func(ctx context.Context, prompt string, temperature float32) (string, error)) Provider {
	return &mockProviderCallback{callback: callback}
}

// mockProviderFixed always returns a fixed response.
type mockProviderFixed struct {
	response string
}

func (m *mockProviderFixed) Call(_ context.Context, _ []Message, _ float32) (*ProviderResponse, error) {
	return &ProviderResponse{Content: m.response}, nil
}

func (*mockProviderFixed) Name() string {
	return "mock-fixed"
}

// mockProviderCallback uses a callback to generate responses.
type mockProviderCallback struct {
	callback func(context.Context, string, float32) (string, error)
}

func (m *mockProviderCallback) Call(ctx context.Context, messages []Message, temperature float32) (*ProviderResponse, error) {
	prompt := ""
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	content, err := m.callback(ctx, prompt, temperature)
	if err != nil {
		return nil, err
	}
	return &ProviderResponse{Content: content}, nil
}

func (*mockProviderCallback) Name() string {
	return "mock-callback"
}

// NewMockProviderWithError creates a mock that always fails with message.
func NewMockProviderWithError(message string) Provider {
	return NewMockProviderWithCallback(func(context.Context, string, float32) (string, error) {
		return "", fmt.Errorf("%s: %w", message, ErrProviderUnavailable)
	})
}
