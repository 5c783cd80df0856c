package llm

import "context"

// geminiCapability implements Capability for Google's Gemini API via its
// OpenAI-compatible endpoint, which uses a different path prefix than
// standard OpenAI providers (no /v1).
//
// Supported chat models:
//
//	gemini-2.5-flash       — fast, cost-effective
//	gemini-2.5-pro         — highest capability
//
// API key: set via Config.APIKey; no environment variable is read here.
type geminiCapability struct {
	base openAICompatClient
}

// NewGemini creates a capability for Google Gemini.
func NewGemini(cfg Config) Capability {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	return &geminiCapability{base: newOpenAICompatClientPrefix("gemini", cfg, "")}
}

func (p *geminiCapability) Name() string               { return p.base.name }
func (p *geminiCapability) SupportedFormats() []string { return []string{"json_object"} }

func (p *geminiCapability) Infer(ctx context.Context, prompts []string, params InferParams) ([]InferResult, error) {
	return p.base.infer(ctx, prompts, params)
}
