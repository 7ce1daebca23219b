package integration

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/bioquery"
	bqt "github.com/zoobzio/bioquery/testing"
	"github.com/zoobzio/bioquery/toolkit/native"
)

const gcQuery = "what is going on in ATGCGCGCATATATGCGCAT"

func gcResponse() string {
	return bqt.NewResponseBuilder().
		WithOperation(bioquery.OpGCContent).
		WithParameter("window_size", 5).
		WithReasoning("asked about composition").
		Build()
}

func newEngine(provider bioquery.Provider, opts ...bioquery.Option) *bioquery.Engine {
	return bioquery.NewEngine(native.New(),
		bioquery.WithPrimary(bioquery.NewPrimaryParser(provider, opts...)),
	)
}

func TestPipeline_RetrySuccess(t *testing.T) {
	// Fails twice, then succeeds on third attempt
	provider := bqt.NewFailingProvider(2).WithSuccessResponse(gcResponse())
	engine := newEngine(provider, bioquery.WithRetry(3))

	out := engine.Run(context.Background(), gcQuery)

	if out.Intent.Source != bioquery.SourcePrimary {
		t.Fatalf("expected primary source after retries, got %s", out.Intent.Source)
	}
	if out.Result.Operation != bioquery.OpGCContent || !out.Result.OK() {
		t.Fatalf("expected successful gc-content, got %+v", out.Result)
	}
	profile := out.Result.Payload.(bioquery.GCProfile)
	if profile.Window != 5 || len(profile.Windows) != 16 {
		t.Errorf("expected 16 windows of 5, got %d of %d", len(profile.Windows), profile.Window)
	}
	if provider.CallCount() != 3 {
		t.Errorf("expected 3 calls (2 failures + 1 success), got %d", provider.CallCount())
	}
}

func TestPipeline_RetryExhausted(t *testing.T) {
	// Fails 5 times, but we only retry 3 times
	provider := bqt.NewFailingProvider(5)
	engine := newEngine(provider, bioquery.WithRetry(3))

	out := engine.Run(context.Background(), "gc content of ATGCGCGCATATATGCGCAT")

	if out.Intent.Source != bioquery.SourceFallback {
		t.Errorf("expected fallback source, got %s", out.Intent.Source)
	}
	if out.Result.Operation != bioquery.OpGCContent || !out.Result.OK() {
		t.Errorf("expected fallback gc-content, got %+v", out.Result)
	}
	if provider.CallCount() != 3 {
		t.Errorf("expected 3 calls (all failures), got %d", provider.CallCount())
	}
}

func TestPipeline_Timeout(t *testing.T) {
	slow := bqt.NewLatencyProvider(bqt.NewSequencedProvider(gcResponse()), 500*time.Millisecond)
	engine := newEngine(slow, bioquery.WithTimeout(50*time.Millisecond))

	start := time.Now()
	out := engine.Run(context.Background(), "translate ATGGCGAATTACGTAGCT")
	elapsed := time.Since(start)

	if elapsed > 400*time.Millisecond {
		t.Errorf("expected the timeout to cut the parse short, took %v", elapsed)
	}
	if out.Intent.Source != bioquery.SourceFallback {
		t.Errorf("expected fallback after timeout, got %s", out.Intent.Source)
	}
	if !out.Result.OK() || out.Result.Payload.(bioquery.Translation).Protein != "MANYVA" {
		t.Errorf("expected MANYVA from the fallback route, got %+v", out.Result)
	}
}

func TestPipeline_TimeoutSuccess(t *testing.T) {
	fast := bqt.NewLatencyProvider(bqt.NewSequencedProvider(gcResponse()), 10*time.Millisecond)
	engine := newEngine(fast, bioquery.WithTimeout(time.Second))

	out := engine.Run(context.Background(), gcQuery)
	if out.Intent.Source != bioquery.SourcePrimary {
		t.Errorf("expected primary source, got %s", out.Intent.Source)
	}
}

func TestPipeline_ModelFallback(t *testing.T) {
	// A second model-backed parser takes over before the keyword rules do.
	primary := bqt.NewFailingProvider(100)
	backup := bioquery.NewPrimaryParser(bqt.NewSequencedProvider(gcResponse()))

	engine := newEngine(primary, bioquery.WithFallback(backup))
	out := engine.Run(context.Background(), gcQuery)

	if out.Intent.Source != bioquery.SourcePrimary {
		t.Errorf("expected the backup model to answer, got %s", out.Intent.Source)
	}
	if out.Result.Operation != bioquery.OpGCContent {
		t.Errorf("expected gc-content, got %s", out.Result.Operation)
	}
}

func TestPipeline_BackoffTiming(t *testing.T) {
	provider := bqt.NewFailingProvider(2).WithSuccessResponse(gcResponse())
	parser := bioquery.NewPrimaryParser(provider, bioquery.WithBackoff(3, 50*time.Millisecond))

	start := time.Now()
	_, err := parser.Parse(context.Background(), "what is in [seq1]", nil)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("expected success after backoff, got error: %v", err)
	}
	// 50ms + 100ms between attempts, with tolerance
	if elapsed < 120*time.Millisecond {
		t.Errorf("expected backoff delays, but elapsed only %v", elapsed)
	}
}

func TestPipeline_CombinedOptions(t *testing.T) {
	recorder := bqt.NewCallRecorder(bqt.NewFailingProvider(1).WithSuccessResponse(gcResponse()))
	parser := bioquery.NewPrimaryParser(recorder,
		bioquery.WithRetry(3),
		bioquery.WithTimeout(5*time.Second),
	)

	intent, err := parser.Parse(context.Background(), "what is in [seq1]", nil)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if intent.Operation != bioquery.OpGCContent {
		t.Errorf("expected gc-content, got %s", intent.Operation)
	}
	if recorder.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", recorder.CallCount())
	}
	if temp := recorder.LastCall().Temperature; temp != bioquery.DefaultTemperatureDeterministic {
		t.Errorf("expected deterministic temperature, got %v", temp)
	}
}

func TestPipeline_ContextCancellation(t *testing.T) {
	blocking := bioquery.NewMockProviderWithCallback(func(ctx context.Context, _ string, _ float32) (string, error) {
		select {
		case <-time.After(2 * time.Second):
			return gcResponse(), nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	router := bioquery.NewRouter(bioquery.NewPrimaryParser(blocking))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	intent := router.Route(ctx, "reverse complement of [seq1]", nil)
	if time.Since(start) > time.Second {
		t.Errorf("expected cancellation to end the parse early")
	}
	if intent.Source != bioquery.SourceFallback || intent.Operation != bioquery.OpReverseComplement {
		t.Errorf("expected fallback reverse-complement, got %+v", intent)
	}
}

func TestPipeline_ForcedFailureMatchesFallback(t *testing.T) {
	queries := []string{
		"translate ATGGCGAATTACGTAGCT in frame 2",
		"find GAATTC with 1 mismatch in ATGGAATTCGCGTTAGAATTGCAT",
		"show all six frames of ATGGCGAATTACGTAGCTAGCTAG",
		"gc content of the p53 fragment",
		"hello there",
	}
	broken := newEngine(bioquery.NewMockProviderWithResponse("not json at all"))
	plain := bioquery.NewEngine(native.New())

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			got := broken.Run(context.Background(), q)
			want := plain.Run(context.Background(), q)

			if got.Intent.Source != bioquery.SourceFallback {
				t.Errorf("expected fallback source, got %s", got.Intent.Source)
			}
			if fmt.Sprintf("%+v", got.Result) != fmt.Sprintf("%+v", want.Result) {
				t.Errorf("expected identical results\n got: %+v\nwant: %+v", got.Result, want.Result)
			}
		})
	}
}

func TestPipeline_CircuitBreakerTrips(t *testing.T) {
	var calls atomic.Int32
	provider := bioquery.NewMockProviderWithCallback(func(_ context.Context, _ string, _ float32) (string, error) {
		calls.Add(1)
		return "", errors.New("always fails")
	})
	parser := bioquery.NewPrimaryParser(provider, bioquery.WithCircuitBreaker(3, time.Hour))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := parser.Parse(ctx, "gc of [seq1]", nil); err == nil {
			t.Errorf("call %d: expected error", i+1)
		}
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 provider calls before circuit opens, got %d", calls.Load())
	}

	before := calls.Load()
	for i := 0; i < 5; i++ {
		_, err := parser.Parse(ctx, "gc of [seq1]", nil)
		if !errors.Is(err, bioquery.ErrProviderUnavailable) {
			t.Errorf("expected ErrProviderUnavailable with open circuit, got %v", err)
		}
	}
	if calls.Load() != before {
		t.Errorf("expected no provider calls while circuit open, got %d additional calls", calls.Load()-before)
	}
}

func TestPipeline_CircuitBreakerRecovery(t *testing.T) {
	var calls atomic.Int32
	var succeed atomic.Bool
	provider := bioquery.NewMockProviderWithCallback(func(_ context.Context, _ string, _ float32) (string, error) {
		calls.Add(1)
		if succeed.Load() {
			return gcResponse(), nil
		}
		return "", errors.New("failing")
	})
	parser := bioquery.NewPrimaryParser(provider, bioquery.WithCircuitBreaker(2, 50*time.Millisecond))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = parser.Parse(ctx, "gc of [seq1]", nil)
	}
	initial := calls.Load()

	time.Sleep(100 * time.Millisecond)
	succeed.Store(true)

	intent, err := parser.Parse(ctx, "gc of [seq1]", nil)
	if err != nil {
		t.Fatalf("expected success after recovery: %v", err)
	}
	if intent.Operation != bioquery.OpGCContent {
		t.Errorf("expected gc-content, got %s", intent.Operation)
	}
	if calls.Load() <= initial {
		t.Error("expected provider to be called after recovery period")
	}
}

func TestPipeline_RateLimit(t *testing.T) {
	provider := bqt.NewSequencedProvider(gcResponse())
	parser := bioquery.NewPrimaryParser(provider,
		bioquery.WithRateLimit(100, 5),
		bioquery.WithTimeout(time.Second),
	)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := parser.Parse(ctx, "gc of [seq1]", nil); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}
	if provider.CallCount() != 3 {
		t.Errorf("expected 3 calls within the burst, got %d", provider.CallCount())
	}
}
