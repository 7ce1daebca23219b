package bioquery

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zoobzio/pipz"
)

// Option modifies the primary parser pipeline for reliability features.
type Option func(pipz.Chainable[*ParseRequest]) pipz.Chainable[*ParseRequest]

// WithRetry adds retry logic to the pipeline.
// Failed requests are retried up to maxAttempts times.
func WithRetry(maxAttempts int) Option {
	return func(pipeline pipz.Chainable[*ParseRequest]) pipz.Chainable[*ParseRequest] {
		return pipz.NewRetry("retry", pipeline, maxAttempts)
	}
}

// WithBackoff adds retry logic with exponential backoff to the pipeline.
// The delay starts at baseDelay and doubles after each failure.
func WithBackoff(maxAttempts int, baseDelay time.Duration) Option {
	return func(pipeline pipz.Chainable[*ParseRequest]) pipz.Chainable[*ParseRequest] {
		return pipz.NewBackoff("backoff", pipeline, maxAttempts, baseDelay)
	}
}

// WithTimeout bounds the whole parse. Operations exceeding this duration are
// canceled and reported as failures.
func WithTimeout(duration time.Duration) Option {
	return func(pipeline pipz.Chainable[*ParseRequest]) pipz.Chainable[*ParseRequest] {
		return pipz.NewTimeout("timeout", pipeline, duration)
	}
}

// WithCircuitBreaker adds circuit breaker protection to the pipeline.
// After 'failures' consecutive failures, the circuit opens for 'recovery' duration.
func WithCircuitBreaker(failures int, recovery time.Duration) Option {
	return func(pipeline pipz.Chainable[*ParseRequest]) pipz.Chainable[*ParseRequest] {
		return pipz.NewCircuitBreaker("circuit-breaker", pipeline, failures, recovery)
	}
}

// WithRateLimit adds rate limiting to the pipeline.
// rps = requests per second, burst = burst capacity.
func WithRateLimit(rps float64, burst int) Option {
	return func(pipeline pipz.Chainable[*ParseRequest]) pipz.Chainable[*ParseRequest] {
		rateLimiter := pipz.NewRateLimiter[*ParseRequest]("rate-limit", rps, burst)
		return pipz.NewSequence("rate-limited", rateLimiter, pipeline)
	}
}

// WithErrorHandler adds error handling to the pipeline.
// The handler sees every failure before it is returned.
func WithErrorHandler(handler pipz.Chainable[*pipz.Error[*ParseRequest]]) Option {
	return func(pipeline pipz.Chainable[*ParseRequest]) pipz.Chainable[*ParseRequest] {
		return pipz.NewHandle("error-handler", pipeline, handler)
	}
}

// ServiceProvider is implemented by types that can provide a pipeline for composition.
type ServiceProvider interface {
	GetPipeline() pipz.Chainable[*ParseRequest]
}

// WithFallback tries another model-backed parser when this one fails.
// The deterministic fallback is applied by the Router regardless.
func WithFallback(fallback ServiceProvider) Option {
	return func(pipeline pipz.Chainable[*ParseRequest]) pipz.Chainable[*ParseRequest] {
		return pipz.NewFallback("with-fallback", pipeline, fallback.GetPipeline())
	}
}

// WithDebug prints the prompt and raw response to stderr.
func WithDebug() Option {
	return WithDebugWriter(os.Stderr)
}

// WithDebugWriter prints the prompt and raw response to w.
func WithDebugWriter(w io.Writer) Option {
	return func(pipeline pipz.Chainable[*ParseRequest]) pipz.Chainable[*ParseRequest] {
		return pipz.Apply("debug", func(ctx context.Context, req *ParseRequest) (*ParseRequest, error) {
			fmt.Fprintln(w, "\n=== DEBUG: Prompt ===")
			fmt.Fprintln(w, req.Prompt.Render())
			fmt.Fprintln(w, "=====================")

			processed, err := pipeline.Process(ctx, req)
			if err != nil {
				fmt.Fprintf(w, "\n=== DEBUG: Error ===\n%v\n==================\n\n", err)
				return processed, err
			}

			fmt.Fprintln(w, "\n=== DEBUG: Raw Response ===")
			fmt.Fprintln(w, processed.Response)
			fmt.Fprintln(w, "===========================")

			return processed, nil
		})
	}
}
