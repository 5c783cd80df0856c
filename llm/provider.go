// Package llm exposes the single inference capability the extraction core
// consumes, plus OpenAI-compatible adapters for the providers callers are
// likely to point it at. The core never pattern-matches on provider kind;
// it only ever calls Capability.Infer.
package llm

import (
	"context"
	"fmt"
)

// Result is one candidate answer for a single prompt.
type Result struct {
	Text  string   `json:"text"`
	Score *float64 `json:"score,omitempty"`
}

// Output is everything a provider returned for one prompt.
type Output struct {
	Results []Result `json:"results"`
}

// InferParams controls a single inference call.
type InferParams struct {
	Temperature float64
	MaxTokens   int
	// Format, when "json_object", asks providers that support it to
	// constrain output to valid JSON. Empty means no constraint.
	Format string
}

// InferResult pairs one prompt's Output with its own error, so a failure on
// one prompt in a batch never aborts the others.
type InferResult struct {
	Output Output
	Err    error
}

// Capability is the interface the core consumes. Concrete provider types
// (OpenAI, Ollama, a bespoke internal endpoint, ...) are all variants
// behind this interface.
type Capability interface {
	// Name identifies the provider for logging and diagnostics.
	Name() string
	// SupportedFormats lists the InferParams.Format values this provider
	// honors (e.g. "json_object"). Unsupported formats are ignored, not
	// rejected.
	SupportedFormats() []string
	// Infer returns one InferResult per prompt, in order. A request-level
	// failure is captured in that prompt's InferResult.Err; only an error
	// in the returned error value aborts the whole batch (e.g. context
	// cancellation).
	Infer(ctx context.Context, prompts []string, params InferParams) ([]InferResult, error)
}

// Config configures an LLM capability.
type Config struct {
	Provider string `json:"provider" yaml:"provider"` // openai, ollama, lmstudio, openrouter, groq, xai, gemini, custom
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// NewCapability builds a Capability from configuration.
func NewCapability(cfg Config) (Capability, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg), nil
	case "lmstudio":
		return NewLMStudio(cfg), nil
	case "openrouter":
		return NewOpenRouter(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	case "groq":
		return NewGroq(cfg), nil
	case "xai":
		return NewXAI(cfg), nil
	case "gemini":
		return NewGemini(cfg), nil
	case "custom":
		return NewCustom(cfg), nil
	case "":
		return nil, fmt.Errorf("llm capability: provider not specified")
	default:
		return nil, fmt.Errorf("llm capability: unknown provider %q", cfg.Provider)
	}
}
