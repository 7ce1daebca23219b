// Package testing provides provider doubles and fixtures for testing bioquery
// parsers and engines.
package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/bioquery"
)

// Provider name constants for test helpers.
const (
	SequencedProviderName = "sequenced-mock"
	FailingProviderName   = "failing-mock"
)

// ResponseBuilder provides a fluent interface for constructing model
// intent responses.
type ResponseBuilder struct {
	data   map[string]any
	params map[string]any
}

// NewResponseBuilder creates a new ResponseBuilder.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{
		data:   make(map[string]any),
		params: make(map[string]any),
	}
}

// WithOperation sets the operation tag.
func (b *ResponseBuilder) WithOperation(op bioquery.Operation) *ResponseBuilder {
	b.data["operation"] = string(op)
	return b
}

// WithParameter sets one entry of the parameters object.
func (b *ResponseBuilder) WithParameter(name string, value any) *ResponseBuilder {
	b.params[name] = value
	return b
}

// WithReference sets the named reference sequence.
func (b *ResponseBuilder) WithReference(name string) *ResponseBuilder {
	b.data["reference"] = name
	return b
}

// WithReasoning sets the reasoning field.
func (b *ResponseBuilder) WithReasoning(reason string) *ResponseBuilder {
	b.data["reasoning"] = reason
	return b
}

// WithField sets an arbitrary top-level field.
func (b *ResponseBuilder) WithField(key string, value any) *ResponseBuilder {
	b.data[key] = value
	return b
}

// Build returns the JSON string representation of the response.
func (b *ResponseBuilder) Build() string {
	return string(b.BuildBytes())
}

// BuildBytes returns the JSON bytes of the response.
func (b *ResponseBuilder) BuildBytes() []byte {
	out := make(map[string]any, len(b.data)+1)
	for k, v := range b.data {
		out[k] = v
	}
	if len(b.params) > 0 {
		out["parameters"] = b.params
	}
	jsonBytes, err := json.Marshal(out)
	if err != nil {
		return []byte("{}")
	}
	return jsonBytes
}

// SequencedProvider returns responses in sequence.
// After all responses are exhausted, it returns the last response repeatedly.
type SequencedProvider struct {
	responses []string
	index     atomic.Int64
	mu        sync.Mutex
}

// NewSequencedProvider creates a provider that returns responses in order.
func NewSequencedProvider(responses ...string) *SequencedProvider {
	if len(responses) == 0 {
		responses = []string{`{"error": "no responses configured"}`}
	}
	return &SequencedProvider{
		responses: responses,
	}
}

// Call returns the next response in sequence.
func (p *SequencedProvider) Call(_ context.Context, _ []bioquery.Message, _ float32) (*bioquery.ProviderResponse, error) {
	idx := p.index.Add(1) - 1
	p.mu.Lock()
	defer p.mu.Unlock()

	if int(idx) >= len(p.responses) {
		idx = int64(len(p.responses) - 1)
	}

	return &bioquery.ProviderResponse{
		Content: p.responses[idx],
		Usage: bioquery.TokenUsage{
			Prompt:     100,
			Completion: 50,
			Total:      150,
		},
	}, nil
}

// Name returns the provider identifier.
func (*SequencedProvider) Name() string {
	return SequencedProviderName
}

// CallCount returns the number of calls made.
func (p *SequencedProvider) CallCount() int {
	return int(p.index.Load())
}

// Reset resets the call counter.
func (p *SequencedProvider) Reset() {
	p.index.Store(0)
}

// FailingProvider fails a specified number of times before succeeding.
// Failures wrap bioquery.ErrProviderUnavailable.
type FailingProvider struct {
	failCount    int
	currentCount atomic.Int64
	successResp  string
	failError    string
}

// NewFailingProvider creates a provider that fails failCount times then succeeds.
func NewFailingProvider(failCount int) *FailingProvider {
	return &FailingProvider{
		failCount:   failCount,
		successResp: NewResponseBuilder().WithOperation(bioquery.OpGCContent).WithReasoning("recovered").Build(),
		failError:   "simulated provider failure",
	}
}

// WithSuccessResponse sets the response returned after failures are exhausted.
func (p *FailingProvider) WithSuccessResponse(response string) *FailingProvider {
	p.successResp = response
	return p
}

// WithFailError sets the error message for failures.
func (p *FailingProvider) WithFailError(errMsg string) *FailingProvider {
	p.failError = errMsg
	return p
}

// Call fails until failCount is reached, then succeeds.
func (p *FailingProvider) Call(_ context.Context, _ []bioquery.Message, _ float32) (*bioquery.ProviderResponse, error) {
	count := p.currentCount.Add(1)
	if int(count) <= p.failCount {
		return nil, fmt.Errorf("%w: %s (attempt %d/%d)", bioquery.ErrProviderUnavailable, p.failError, count, p.failCount)
	}

	return &bioquery.ProviderResponse{
		Content: p.successResp,
		Usage: bioquery.TokenUsage{
			Prompt:     100,
			Completion: 50,
			Total:      150,
		},
	}, nil
}

// Name returns the provider identifier.
func (*FailingProvider) Name() string {
	return FailingProviderName
}

// CallCount returns the number of calls made.
func (p *FailingProvider) CallCount() int {
	return int(p.currentCount.Load())
}

// Reset resets the call counter.
func (p *FailingProvider) Reset() {
	p.currentCount.Store(0)
}

// RecordedCall represents a single call to a provider.
type RecordedCall struct {
	Messages    []bioquery.Message
	Temperature float32
}

// Prompt returns the content of the last message of the call.
func (c RecordedCall) Prompt() string {
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[len(c.Messages)-1].Content
}

// CallRecorder wraps a provider and records all calls made to it.
type CallRecorder struct {
	provider bioquery.Provider
	calls    []RecordedCall
	mu       sync.Mutex
}

// NewCallRecorder wraps a provider with call recording.
func NewCallRecorder(provider bioquery.Provider) *CallRecorder {
	return &CallRecorder{
		provider: provider,
		calls:    make([]RecordedCall, 0),
	}
}

// Call delegates to the wrapped provider and records the call.
func (r *CallRecorder) Call(ctx context.Context, messages []bioquery.Message, temperature float32) (*bioquery.ProviderResponse, error) {
	msgCopy := make([]bioquery.Message, len(messages))
	copy(msgCopy, messages)

	r.mu.Lock()
	r.calls = append(r.calls, RecordedCall{
		Messages:    msgCopy,
		Temperature: temperature,
	})
	r.mu.Unlock()

	return r.provider.Call(ctx, messages, temperature)
}

// Name returns the wrapped provider's name.
func (r *CallRecorder) Name() string {
	return r.provider.Name()
}

// Calls returns a copy of all recorded calls.
func (r *CallRecorder) Calls() []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := make([]RecordedCall, len(r.calls))
	copy(calls, r.calls)
	return calls
}

// CallCount returns the number of calls recorded.
func (r *CallRecorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// LastCall returns the most recent call, or nil if no calls made.
func (r *CallRecorder) LastCall() *RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.calls) == 0 {
		return nil
	}
	call := r.calls[len(r.calls)-1]
	return &call
}

// Reset clears all recorded calls.
func (r *CallRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = make([]RecordedCall, 0)
}

// LatencyProvider wraps a provider and adds artificial latency.
type LatencyProvider struct {
	provider bioquery.Provider
	delay    time.Duration
}

// NewLatencyProvider wraps a provider with artificial delay.
// The delay is applied before each provider call and respects context cancellation.
func NewLatencyProvider(provider bioquery.Provider, delay time.Duration) *LatencyProvider {
	return &LatencyProvider{
		provider: provider,
		delay:    delay,
	}
}

// Call adds latency then delegates to the wrapped provider.
func (p *LatencyProvider) Call(ctx context.Context, messages []bioquery.Message, temperature float32) (*bioquery.ProviderResponse, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.provider.Call(ctx, messages, temperature)
}

// Name returns the wrapped provider's name.
func (p *LatencyProvider) Name() string {
	return p.provider.Name()
}

// UsageAccumulator tracks total token usage across multiple calls.
type UsageAccumulator struct {
	promptTokens     atomic.Int64
	completionTokens atomic.Int64
	totalTokens      atomic.Int64
	callCount        atomic.Int64
}

// NewUsageAccumulator creates a new usage accumulator.
func NewUsageAccumulator() *UsageAccumulator {
	return &UsageAccumulator{}
}

// AddUsage accumulates usage directly.
func (a *UsageAccumulator) AddUsage(usage *bioquery.TokenUsage) {
	if usage != nil {
		a.promptTokens.Add(int64(usage.Prompt))
		a.completionTokens.Add(int64(usage.Completion))
		a.totalTokens.Add(int64(usage.Total))
		a.callCount.Add(1)
	}
}

// Provider wraps p so every successful call is accumulated.
func (a *UsageAccumulator) Provider(p bioquery.Provider) bioquery.Provider {
	return &accumulatingProvider{Provider: p, acc: a}
}

type accumulatingProvider struct {
	bioquery.Provider
	acc *UsageAccumulator
}

func (p *accumulatingProvider) Call(ctx context.Context, messages []bioquery.Message, temperature float32) (*bioquery.ProviderResponse, error) {
	resp, err := p.Provider.Call(ctx, messages, temperature)
	if err == nil {
		p.acc.AddUsage(&resp.Usage)
	}
	return resp, err
}

// PromptTokens returns total prompt tokens.
func (a *UsageAccumulator) PromptTokens() int {
	return int(a.promptTokens.Load())
}

// CompletionTokens returns total completion tokens.
func (a *UsageAccumulator) CompletionTokens() int {
	return int(a.completionTokens.Load())
}

// TotalTokens returns total tokens.
func (a *UsageAccumulator) TotalTokens() int {
	return int(a.totalTokens.Load())
}

// CallCount returns number of calls accumulated.
func (a *UsageAccumulator) CallCount() int {
	return int(a.callCount.Load())
}

// Reset clears all accumulated values.
func (a *UsageAccumulator) Reset() {
	a.promptTokens.Store(0)
	a.completionTokens.Store(0)
	a.totalTokens.Store(0)
	a.callCount.Store(0)
}

// Sequences are fixture DNA fragments with known analysis results.
var Sequences = struct {
	Short    string // translates to MANYVA in frame +1
	EcoRI    string // one GAATTC site
	TwentyNT string // 20 bases, 11 windows at the default window size
}{
	Short:    "ATGGCGAATTACGTAGCT",
	EcoRI:    "ATGGAATTCGCGTTAGAATTGCAT",
	TwentyNT: "ATGCGCGCATATATGCGCAT",
}
