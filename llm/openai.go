package llm

import "context"

// openAICapability implements Capability for the OpenAI API, using the
// standard chat-completions endpoint.
//
// Supported chat models:
//
//	gpt-4o, gpt-4o-mini, gpt-4.1, o3-mini, ...
//
// API key: set via Config.APIKey; no environment variable is read here.
type openAICapability struct {
	base openAICompatClient
}

// NewOpenAI creates a capability for OpenAI.
func NewOpenAI(cfg Config) Capability {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &openAICapability{base: newOpenAICompatClient("openai", cfg)}
}

func (p *openAICapability) Name() string               { return p.base.name }
func (p *openAICapability) SupportedFormats() []string { return []string{"json_object"} }

func (p *openAICapability) Infer(ctx context.Context, prompts []string, params InferParams) ([]InferResult, error) {
	return p.base.infer(ctx, prompts, params)
}
