package llm

import "context"

// xaiCapability implements Capability for xAI (Grok), which uses the
// OpenAI-compatible API format.
type xaiCapability struct {
	base openAICompatClient
}

// NewXAI creates a capability for xAI.
func NewXAI(cfg Config) Capability {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.x.ai"
	}
	return &xaiCapability{base: newOpenAICompatClient("xai", cfg)}
}

func (p *xaiCapability) Name() string               { return p.base.name }
func (p *xaiCapability) SupportedFormats() []string { return []string{"json_object"} }

func (p *xaiCapability) Infer(ctx context.Context, prompts []string, params InferParams) ([]InferResult, error) {
	return p.base.infer(ctx, prompts, params)
}
