package bioquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zoobzio/bioquery"

// Outcome is the full trace of one processed query.
type Outcome struct {
	QueryID    string          `json:"query_id"`
	Extraction Extraction      `json:"extraction"`
	Intent     CanonicalIntent `json:"intent"`
	Result     OperationResult `json:"result"`
}

// Engine wires extraction, parsing and dispatch into one pipeline. It holds
// no per-request state and is safe for concurrent use.
type Engine struct {
	extractor  Extractor
	primary    Parser
	router     *Router
	dispatcher *Dispatcher
	resolvers  []Resolver
	tracer     trace.Tracer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPrimary sets the model-backed parser tried before the fallback.
func WithPrimary(p Parser) EngineOption {
	return func(e *Engine) {
		e.primary = p
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) EngineOption {
	return func(e *Engine) {
		e.tracer = tp.Tracer(instrumentationName)
	}
}

// WithResolver adds a reference resolver, tried before the built-in catalog
// in the order added.
func WithResolver(r Resolver) EngineOption {
	return func(e *Engine) {
		e.resolvers = append(e.resolvers, r)
	}
}

// WithMinRunLength sets the shortest bare run the extractor accepts.
func WithMinRunLength(n int) EngineOption {
	return func(e *Engine) {
		e.extractor.MinRunLength = n
	}
}

// NewEngine creates an Engine over toolkit. Without WithPrimary every query
// is parsed by the fallback parser.
func NewEngine(toolkit Toolkit, opts ...EngineOption) *Engine {
	e := &Engine{
		dispatcher: NewDispatcher(toolkit),
		tracer:     otel.GetTracerProvider().Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolvers = append(e.resolvers, Catalog{})
	e.router = NewRouter(e.primary)
	return e
}

// Process runs raw through the pipeline and returns its single result.
func (e *Engine) Process(ctx context.Context, raw string) OperationResult {
	return e.Run(ctx, raw).Result
}

// Run runs raw through the pipeline and returns every intermediate value.
func (e *Engine) Run(ctx context.Context, raw string) Outcome {
	start := time.Now()
	out := Outcome{QueryID: uuid.New().String()}

	ctx, span := e.tracer.Start(ctx, "bioquery.query", trace.WithAttributes(
		attribute.String("bioquery.query.id", out.QueryID),
	))
	defer span.End()

	capitan.Info(ctx, QueryStarted,
		QueryIDKey.Field(out.QueryID),
		QueryKey.Field(raw),
	)

	out.Extraction = e.extract(ctx, raw)
	out.Intent = e.parse(ctx, out.Extraction)

	intent, seqs, resolveErr := e.resolve(ctx, out.Intent, out.Extraction)
	out.Result = e.dispatch(ctx, intent, seqs)
	if out.Result.Kind == KindNoOperand && resolveErr != nil {
		out.Result.Message = fmt.Sprintf("%s (%v)", out.Result.Message, resolveErr)
	}

	span.SetAttributes(
		attribute.String("bioquery.operation", string(out.Result.Operation)),
		attribute.String("bioquery.status", string(out.Result.Status)),
	)
	if !out.Result.OK() {
		span.SetStatus(codes.Error, out.Result.Message)
	}

	capitan.Info(ctx, QueryCompleted,
		QueryIDKey.Field(out.QueryID),
		OperationKey.Field(string(out.Result.Operation)),
		StatusKey.Field(string(out.Result.Status)),
		SourceKey.Field(string(out.Intent.Source)),
		DurationKey.Field(int(time.Since(start).Milliseconds())),
	)
	return out
}

func (e *Engine) extract(ctx context.Context, raw string) Extraction {
	_, span := e.tracer.Start(ctx, "bioquery.extract")
	defer span.End()

	ext := e.extractor.Extract(raw)
	span.SetAttributes(
		attribute.Int("bioquery.sequences", len(ext.Sequences)),
		attribute.Bool("bioquery.degenerate", ext.Degenerate()),
	)
	capitan.Info(ctx, ExtractCompleted,
		SequenceCountKey.Field(len(ext.Sequences)),
		ResidualKey.Field(ext.Residual),
	)
	return ext
}

func (e *Engine) parse(ctx context.Context, ext Extraction) CanonicalIntent {
	ctx, span := e.tracer.Start(ctx, "bioquery.parse")
	defer span.End()

	intent := e.router.Route(ctx, ext.Residual, ext.Sequences)
	span.SetAttributes(
		attribute.String("bioquery.operation", string(intent.Operation)),
		attribute.String("bioquery.source", string(intent.Source)),
	)
	return intent
}

// resolve substitutes placeholder patterns and named references. It returns
// the intent and operand list the dispatcher should see.
func (e *Engine) resolve(ctx context.Context, intent CanonicalIntent, ext Extraction) (CanonicalIntent, []ExtractedSequence, error) {
	seqs := ext.Sequences
	intent.Parameters = intent.Parameters.Clone()

	if pattern, ok := intent.Parameters.String(ParamPattern); ok {
		if idx, isPlaceholder := PlaceholderIndex(pattern); isPlaceholder && idx < len(seqs) {
			intent.Parameters[ParamPattern] = seqs[idx].Residues
			rest := make([]ExtractedSequence, 0, len(seqs)-1)
			rest = append(rest, seqs[:idx]...)
			seqs = append(rest, seqs[idx+1:]...)
		}
	}

	if len(seqs) > 0 || !intent.Operation.Known() {
		return intent, seqs, nil
	}

	ref := intent.Reference
	if ref == "" {
		ref, _ = MatchReference(ext.Residual)
	}
	if ref == "" {
		return intent, seqs, nil
	}

	ctx, span := e.tracer.Start(ctx, "bioquery.resolve", trace.WithAttributes(
		attribute.String("bioquery.reference", ref),
	))
	defer span.End()

	var errs []error
	for _, r := range e.resolvers {
		seq, err := r.Resolve(ctx, ref)
		if err == nil {
			intent.Reference = ref
			return intent, []ExtractedSequence{seq}, nil
		}
		errs = append(errs, err)
	}
	err := fmt.Errorf("reference %q could not be resolved: %w", ref, errors.Join(errs...))
	span.RecordError(err)
	return intent, seqs, err
}

func (e *Engine) dispatch(ctx context.Context, intent CanonicalIntent, seqs []ExtractedSequence) OperationResult {
	ctx, span := e.tracer.Start(ctx, "bioquery.dispatch", trace.WithAttributes(
		attribute.String("bioquery.operation", string(intent.Operation)),
	))
	defer span.End()

	result := e.dispatcher.Dispatch(ctx, intent, seqs)
	if !result.OK() {
		span.SetStatus(codes.Error, result.Message)
		span.SetAttributes(attribute.String("bioquery.error.kind", string(result.Kind)))
	}
	return result
}
