package bioquery

import (
	"context"
	"errors"
	"testing"

	"github.com/zoobzio/pipz"
)

func respond(response string) pipz.Chainable[*ParseRequest] {
	return pipz.Apply("respond", func(_ context.Context, req *ParseRequest) (*ParseRequest, error) {
		out := req.clone()
		out.Response = response
		return out, nil
	})
}

func testPrompt() *Prompt {
	return &Prompt{Task: "test", Input: "translate [seq1]", Schema: "{}"}
}

func TestService_GetPipeline(t *testing.T) {
	counter := 0
	pipeline := pipz.Apply("test", func(_ context.Context, req *ParseRequest) (*ParseRequest, error) {
		counter++
		return req, nil
	})
	service := NewService[IntentResponse](pipeline, "intent", NewMockProvider(), DefaultTemperatureDeterministic)

	if _, err := service.GetPipeline().Process(context.Background(), &ParseRequest{}); err != nil {
		t.Errorf("Retrieved pipeline failed: %v", err)
	}
	if counter != 1 {
		t.Error("Pipeline should have been called")
	}
}

func TestService_Execute(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		service := NewService[IntentResponse](respond(`{"operation": "translate", "parameters": {"frame": 2}}`),
			"intent", NewMockProvider(), DefaultTemperatureDeterministic)

		response, err := service.Execute(context.Background(), testPrompt(), 0.5)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if response.Operation != "translate" {
			t.Errorf("Expected operation translate, got %s", response.Operation)
		}
		if response.Parameters["frame"] != float64(2) {
			t.Errorf("Expected frame 2, got %v", response.Parameters["frame"])
		}
	})

	t.Run("reliability", func(t *testing.T) {
		attempts := 0
		pipeline := pipz.Apply("test", func(_ context.Context, req *ParseRequest) (*ParseRequest, error) {
			attempts++
			return req, errors.New("temporary failure")
		})
		service := NewService[IntentResponse](pipeline, "intent", NewMockProvider(), DefaultTemperatureDeterministic)

		_, err := service.Execute(context.Background(), testPrompt(), 0.5)
		if !errors.Is(err, ErrProviderUnavailable) {
			t.Errorf("Expected ErrProviderUnavailable, got %v", err)
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})

	t.Run("chaining", func(t *testing.T) {
		var seen string
		modify := pipz.Apply("modify", func(_ context.Context, req *ParseRequest) (*ParseRequest, error) {
			out := req.clone()
			out.Prompt = &Prompt{Task: "modified task", Input: req.Prompt.Input, Schema: req.Prompt.Schema}
			return out, nil
		})
		execute := pipz.Apply("execute", func(_ context.Context, req *ParseRequest) (*ParseRequest, error) {
			seen = req.Prompt.Task
			out := req.clone()
			out.Response = `{"operation": "six-frame"}`
			return out, nil
		})
		service := NewService[IntentResponse](pipz.NewSequence("combined", modify, execute),
			"intent", NewMockProvider(), DefaultTemperatureDeterministic)

		response, err := service.Execute(context.Background(), testPrompt(), 0.5)
		if err != nil {
			t.Fatalf("Execute with chained pipeline failed: %v", err)
		}
		if seen != "modified task" {
			t.Errorf("Expected later stage to see modified task, got %q", seen)
		}
		if response.Operation != "six-frame" {
			t.Errorf("Expected six-frame, got %s", response.Operation)
		}
	})

	t.Run("default_temperature", func(t *testing.T) {
		var got float32
		pipeline := pipz.Apply("capture", func(_ context.Context, req *ParseRequest) (*ParseRequest, error) {
			got = req.Temperature
			out := req.clone()
			out.Response = `{"operation": "unknown"}`
			return out, nil
		})
		service := NewService[IntentResponse](pipeline, "intent", NewMockProvider(), 0.2)

		for _, temp := range []float32{0, TemperatureUnset} {
			if _, err := service.Execute(context.Background(), testPrompt(), temp); err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if got != 0.2 {
				t.Errorf("Expected default temperature 0.2 for %v, got %v", temp, got)
			}
		}
		if _, err := service.Execute(context.Background(), testPrompt(), TemperatureZero); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if got != TemperatureZero {
			t.Errorf("Expected explicit TemperatureZero, got %v", got)
		}
	})

	t.Run("invalid_prompt", func(t *testing.T) {
		service := NewService[IntentResponse](respond(`{"operation": "unknown"}`), "intent", NewMockProvider(), DefaultTemperatureDeterministic)
		if _, err := service.Execute(context.Background(), &Prompt{Task: "t"}, 0.5); err == nil {
			t.Error("Expected error for prompt without input")
		}
	})

	t.Run("empty_response", func(t *testing.T) {
		service := NewService[IntentResponse](respond(""), "intent", NewMockProvider(), DefaultTemperatureDeterministic)
		_, err := service.Execute(context.Background(), testPrompt(), 0.5)
		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("Expected ErrEmptyResponse, got %v", err)
		}
	})

	t.Run("unparsable_response", func(t *testing.T) {
		service := NewService[IntentResponse](respond("I think you want a translation"), "intent", NewMockProvider(), DefaultTemperatureDeterministic)
		_, err := service.Execute(context.Background(), testPrompt(), 0.5)
		if !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("Expected ErrInvalidResponse, got %v", err)
		}
	})

	t.Run("validation_failure", func(t *testing.T) {
		service := NewService[IntentResponse](respond(`{"operation": "blast"}`), "intent", NewMockProvider(), DefaultTemperatureDeterministic)
		_, err := service.Execute(context.Background(), testPrompt(), 0.5)
		if !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("Expected ErrInvalidResponse, got %v", err)
		}
	})

	t.Run("fenced_response", func(t *testing.T) {
		service := NewService[IntentResponse](respond("Here:\n```json\n{\"operation\": \"gc-content\"}\n```"),
			"intent", NewMockProvider(), DefaultTemperatureDeterministic)
		response, err := service.Execute(context.Background(), testPrompt(), 0.5)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if response.Operation != "gc-content" {
			t.Errorf("Expected gc-content, got %s", response.Operation)
		}
	})
}

func TestNewTerminal(t *testing.T) {
	t.Run("renders_prompt", func(t *testing.T) {
		var prompt string
		var temperature float32
		provider := NewMockProviderWithCallback(func(_ context.Context, p string, temp float32) (string, error) {
			prompt, temperature = p, temp
			return "ok", nil
		})

		req := &ParseRequest{Prompt: testPrompt(), Temperature: 0.3}
		out, err := NewTerminal(provider).Process(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prompt != testPrompt().Render() {
			t.Errorf("expected rendered prompt, got %q", prompt)
		}
		if temperature != 0.3 {
			t.Errorf("expected temperature 0.3, got %v", temperature)
		}
		if out.Response != "ok" || out.Usage == nil {
			t.Errorf("expected response and usage, got %+v", out)
		}
		if req.Response != "" {
			t.Error("terminal should not write through the incoming request")
		}
	})

	t.Run("nil_response", func(t *testing.T) {
		_, err := NewTerminal(nilProvider{}).Process(context.Background(), &ParseRequest{Prompt: testPrompt()})
		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("expected ErrEmptyResponse, got %v", err)
		}
	})
}

type nilProvider struct{}

func (nilProvider) Call(context.Context, []Message, float32) (*ProviderResponse, error) {
	return nil, nil
}

func (nilProvider) Name() string { return "nil" }
