// Package bioquery turns free-form bioinformatics questions into sequence
// analysis results.
//
// A query is a single string mixing an instruction with raw DNA or FASTA
// records. Processing runs in three stages:
//
//   - Extraction: sequences (FASTA records or bare nucleotide runs) are lifted
//     out of the text, leaving residual instruction text with placeholders.
//   - Parsing: a Router asks the model-backed PrimaryParser for a
//     CanonicalIntent and silently falls back to the deterministic
//     FallbackParser on any failure.
//   - Dispatch: the Dispatcher validates parameters for the chosen operation
//     and invokes a Toolkit capability, packaging the result.
//
// All stages emit capitan hooks for observability.
//
// Basic usage:
//
//	provider := ollama.New(ollama.Config{Model: "phi3:mini"})
//	engine := bioquery.NewEngine(native.New(),
//	    bioquery.WithPrimary(bioquery.NewPrimaryParser(provider, bioquery.WithTimeout(10*time.Second))),
//	)
//	result := engine.Process(ctx, "Translate ATGGCGAATTACGTAGCT")
//	fmt.Println(result.Status, result.Payload)
package bioquery

import "context"

// Provider defines the interface for reasoning services backing the PrimaryParser.
// Providers accept conversation messages and return the raw model response.
type Provider interface {
	// Call sends messages to the model and returns the response with usage stats.
	// Messages should be in chronological order (oldest first).
	Call(ctx context.Context, messages []Message, temperature float32) (*ProviderResponse, error)

	// Name returns the provider identifier (e.g., "ollama", "openai")
	Name() string
}

// Validator defines the interface for response validation.
// Structured model responses must implement this before they are accepted.
type Validator interface {
	Validate() error
}

// TokenUsage contains token counts from a provider response.
type TokenUsage struct {
	Prompt     int // Tokens used by the prompt/messages
	Completion int // Tokens used by the completion/response
	Total      int // Total tokens used
}

// ProviderResponse contains the response from a reasoning provider.
type ProviderResponse struct {
	Content string     // The text response content
	Usage   TokenUsage // Token usage statistics
}

// Message represents a single message sent to a provider.
type Message struct {
	Role    string // RoleUser, RoleAssistant, or RoleSystem
	Content string // The message content
}

// Role constants for message types.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Temperature constants for parser calls.
const (
	// TemperatureUnset indicates that no temperature has been explicitly set.
	// A zero-value float32 (0.0) is also treated as unset.
	TemperatureUnset float32 = -1

	// TemperatureZero provides an explicitly near-zero temperature for maximum determinism.
	// Use this instead of 0.0 since zero is treated as "unset".
	TemperatureZero float32 = 0.0001

	// DefaultTemperatureDeterministic is used for intent parsing, where the
	// same instruction should always produce the same structured answer.
	DefaultTemperatureDeterministic float32 = 0.1
)

// ParseRequest flows through the primary parser's pipz pipeline.
// Stages never write through the incoming pointer; each returns a copy so a
// timed-out stage cannot race with the caller.
type ParseRequest struct {
	// Input fields
	Prompt      *Prompt // The structured prompt to send to the model
	Temperature float32 // Temperature parameter for response generation

	// Metadata fields
	RequestID    string // Unique identifier for this request
	ProviderName string // Name of the provider being used

	// Output fields (populated by pipeline)
	Response string      // Raw text response from provider
	Usage    *TokenUsage // Token usage from provider response
}

func (r *ParseRequest) clone() *ParseRequest {
	out := *r
	return &out
}
