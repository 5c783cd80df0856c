package llm

import "context"

// openRouterCapability implements Capability for OpenRouter, which fronts
// many third-party models behind an OpenAI-compatible API.
type openRouterCapability struct {
	base openAICompatClient
}

// NewOpenRouter creates a capability for OpenRouter.
func NewOpenRouter(cfg Config) Capability {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api"
	}
	return &openRouterCapability{base: newOpenAICompatClient("openrouter", cfg)}
}

func (p *openRouterCapability) Name() string               { return p.base.name }
func (p *openRouterCapability) SupportedFormats() []string { return []string{"json_object"} }

func (p *openRouterCapability) Infer(ctx context.Context, prompts []string, params InferParams) ([]InferResult, error) {
	return p.base.infer(ctx, prompts, params)
}
