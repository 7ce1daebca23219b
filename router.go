package bioquery

import (
	"context"

	"github.com/zoobzio/capitan"
)

// Parser produces a CanonicalIntent from residual instruction text.
// seqs describes what the extractor found; parsers must not depend on the
// residues themselves.
type Parser interface {
	Parse(ctx context.Context, text string, seqs []ExtractedSequence) (CanonicalIntent, error)
	Name() string
}

// Router tries the primary parser and falls back to the deterministic one on
// any failure.
type Router struct {
	primary  Parser
	fallback *FallbackParser
}

// NewRouter creates a Router. A nil primary routes every query to the
// fallback parser.
func NewRouter(primary Parser) *Router {
	return &Router{
		primary:  primary,
		fallback: NewFallbackParser(),
	}
}

// Route returns exactly one intent for text. It never fails: primary errors,
// timeouts and malformed responses all yield the fallback result.
func (r *Router) Route(ctx context.Context, text string, seqs []ExtractedSequence) CanonicalIntent {
	if r.primary == nil {
		return r.fallback.Intent(text)
	}

	intent, err := r.primary.Parse(ctx, text, seqs)
	if err == nil {
		intent.Source = SourcePrimary
		if intent.Parameters == nil {
			intent.Parameters = Parameters{}
		}
		capitan.Info(ctx, PrimarySucceeded,
			ParserKey.Field(r.primary.Name()),
			OperationKey.Field(string(intent.Operation)),
		)
		return intent
	}

	// The primary context may already be done; the fallback needs none.
	capitan.Emit(context.WithoutCancel(ctx), ParserFallback,
		ParserKey.Field(r.primary.Name()),
		ErrorKey.Field(err.Error()),
		ErrorKindKey.Field(string(kindOf(err))),
	)
	return r.fallback.Intent(text)
}

// Parse implements Parser. The error is always nil.
func (r *Router) Parse(ctx context.Context, text string, seqs []ExtractedSequence) (CanonicalIntent, error) {
	return r.Route(ctx, text, seqs), nil
}

// Name implements Parser.
func (r *Router) Name() string {
	if r.primary == nil {
		return "router(" + r.fallback.Name() + ")"
	}
	return "router(" + r.primary.Name() + "," + r.fallback.Name() + ")"
}
