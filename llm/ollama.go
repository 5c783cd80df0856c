package llm

import "context"

// ollamaCapability implements Capability for Ollama via its
// OpenAI-compatible chat-completions endpoint.
type ollamaCapability struct {
	base openAICompatClient
}

// NewOllama creates a capability for Ollama.
func NewOllama(cfg Config) Capability {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	return &ollamaCapability{base: newOpenAICompatClient("ollama", cfg)}
}

func (p *ollamaCapability) Name() string               { return p.base.name }
func (p *ollamaCapability) SupportedFormats() []string { return []string{"json_object"} }

func (p *ollamaCapability) Infer(ctx context.Context, prompts []string, params InferParams) ([]InferResult, error) {
	return p.base.infer(ctx, prompts, params)
}
