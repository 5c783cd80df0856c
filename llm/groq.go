package llm

import "context"

// groqCapability implements Capability for Groq's inference API. Groq uses
// the OpenAI-compatible API format and provides fast inference for
// open-source models (Llama, Mixtral, Gemma, etc.).
//
// API key: set via Config.APIKey; no environment variable is read here.
type groqCapability struct {
	base openAICompatClient
}

// NewGroq creates a capability for Groq.
func NewGroq(cfg Config) Capability {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	return &groqCapability{base: newOpenAICompatClient("groq", cfg)}
}

func (p *groqCapability) Name() string               { return p.base.name }
func (p *groqCapability) SupportedFormats() []string { return []string{"json_object"} }

func (p *groqCapability) Infer(ctx context.Context, prompts []string, params InferParams) ([]InferResult, error) {
	return p.base.infer(ctx, prompts, params)
}
