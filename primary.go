package bioquery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zoobzio/pipz"
)

// DefaultParseTimeout bounds a primary parse when no options are given.
const DefaultParseTimeout = 10 * time.Second

// IntentResponse is the structured answer expected from the reasoning service.
type IntentResponse struct {
	Operation  string         `json:"operation" desc:"One of the listed operation tags, or unknown"`
	Parameters map[string]any `json:"parameters,omitempty" desc:"Parameter values keyed by parameter name"`
	Reference  string         `json:"reference,omitempty" desc:"Named reference sequence or gene mentioned instead of pasted residues"`
	Reasoning  string         `json:"reasoning,omitempty" desc:"One sentence explaining the choice"`
}

// Validate checks the response against the operation table. An unsupported
// tag or a parameter that does not coerce to its declared kind is a
// malformed response, not an unknown operation.
func (r IntentResponse) Validate() error {
	tag := strings.TrimSpace(r.Operation)
	if tag == "" {
		return errors.New("operation is required")
	}
	op, ok := LookupOperation(tag)
	if !ok {
		return fmt.Errorf("operation %q is not a supported tag", tag)
	}
	if _, err := NormalizeParameters(op, r.Parameters); err != nil {
		return err
	}
	return nil
}

// Intent converts a validated response into a CanonicalIntent.
func (r IntentResponse) Intent() (CanonicalIntent, error) {
	if err := r.Validate(); err != nil {
		return CanonicalIntent{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	op, _ := LookupOperation(r.Operation)
	params, _ := NormalizeParameters(op, r.Parameters)
	if pattern, ok := params.String(ParamPattern); ok {
		if _, isPlaceholder := PlaceholderIndex(pattern); isPlaceholder {
			params[ParamPattern] = strings.ToLower(pattern)
		}
	}
	intent := CanonicalIntent{
		Operation:  op,
		Parameters: params,
		Source:     SourcePrimary,
	}
	if ref := strings.TrimSpace(r.Reference); ref != "" {
		if canonical, ok := MatchReference(ref); ok {
			ref = canonical
		}
		intent.Reference = ref
	}
	return intent, nil
}

// PrimaryParser asks a reasoning provider for the intent.
type PrimaryParser struct {
	service  *Service[IntentResponse]
	provider Provider
	schema   string
}

// NewPrimaryParser creates a model-backed parser. Options wrap the provider
// call in the order given; with no options the call is bounded by
// DefaultParseTimeout.
func NewPrimaryParser(provider Provider, opts ...Option) *PrimaryParser {
	if len(opts) == 0 {
		opts = []Option{WithTimeout(DefaultParseTimeout)}
	}

	var pipeline pipz.Chainable[*ParseRequest] = NewTerminal(provider)
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}

	tags := make([]string, 0, len(operationSpecs)+1)
	for _, spec := range operationSpecs {
		tags = append(tags, string(spec.Operation))
	}
	tags = append(tags, string(OpUnknown))

	return &PrimaryParser{
		service:  NewService[IntentResponse](pipeline, "intent", provider, DefaultTemperatureDeterministic),
		provider: provider,
		schema:   generateJSONSchema[IntentResponse](map[string][]string{"operation": tags}),
	}
}

// Name implements Parser.
func (p *PrimaryParser) Name() string {
	return "primary:" + p.provider.Name()
}

// GetPipeline returns the internal pipeline for composition.
func (p *PrimaryParser) GetPipeline() pipz.Chainable[*ParseRequest] {
	return p.service.GetPipeline()
}

// Parse implements Parser. Any failure is returned as an error; the parser never
// guesses.
func (p *PrimaryParser) Parse(ctx context.Context, text string, seqs []ExtractedSequence) (CanonicalIntent, error) {
	if strings.TrimSpace(text) == "" {
		return CanonicalIntent{}, fmt.Errorf("%w: empty instruction", ErrInvalidResponse)
	}
	resp, err := p.service.Execute(ctx, p.buildPrompt(text, seqs), TemperatureUnset)
	if err != nil {
		return CanonicalIntent{}, err
	}
	return resp.Intent()
}

func (p *PrimaryParser) buildPrompt(text string, seqs []ExtractedSequence) *Prompt {
	return &Prompt{
		Task:       "Identify the sequence analysis operation the user is asking for and its parameters",
		Input:      text,
		Context:    describeSequences(seqs),
		Operations: describeOperations(),
		Examples: []string{
			`"Translate [seq1]" -> {"operation": "translate", "parameters": {"frame": 1}}`,
			`"Find pattern GAATTC with 1 mismatch in [seq1]" -> {"operation": "pattern-search", "parameters": {"pattern": "GAATTC", "mismatch_count": 1}}`,
			`"GC content of [seq1], window 20" -> {"operation": "gc-content", "parameters": {"window_size": 20}}`,
			`"Translate the BRCA1 fragment" -> {"operation": "translate", "reference": "brca1_fragment"}`,
			`"What is the weather" -> {"operation": "unknown"}`,
		},
		Schema: p.schema,
		Constraints: []string{
			"Use only the operation tags listed above",
			`Use "unknown" when no listed operation applies`,
			"Sequences are shown as placeholders like [seq1]; never invent residues",
			"A pattern is a nucleotide string (IUPAC codes allowed) or a placeholder",
			"Integer parameters must be JSON numbers",
			"Respond with a single JSON object and nothing else",
		},
	}
}
