package llm

import "context"

// lmStudioCapability implements Capability for LM Studio's
// OpenAI-compatible local server.
type lmStudioCapability struct {
	base openAICompatClient
}

// NewLMStudio creates a capability for LM Studio.
func NewLMStudio(cfg Config) Capability {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:1234"
	}
	return &lmStudioCapability{base: newOpenAICompatClient("lmstudio", cfg)}
}

func (p *lmStudioCapability) Name() string               { return p.base.name }
func (p *lmStudioCapability) SupportedFormats() []string { return []string{"json_object"} }

func (p *lmStudioCapability) Infer(ctx context.Context, prompts []string, params InferParams) ([]InferResult, error) {
	return p.base.infer(ctx, prompts, params)
}
