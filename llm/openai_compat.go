package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// openAICompatClient is the shared base for all OpenAI-compatible
// providers. It knows how to turn one prompt into one chat-completion
// request and how to retry a failed HTTP call; it has no notion of
// extraction classes or chunks.
type openAICompatClient struct {
	name       string
	cfg        Config
	client     *http.Client
	pathPrefix string // API path prefix, defaults to "/v1"
}

func newOpenAICompatClient(name string, cfg Config) openAICompatClient {
	return newOpenAICompatClientPrefix(name, cfg, "/v1")
}

func newOpenAICompatClientPrefix(name string, cfg Config, prefix string) openAICompatClient {
	// Timeout for individual HTTP requests. Kept generous for local
	// providers (Ollama, LM Studio) which may load models on first
	// request, but reasonable enough to avoid multi-minute hangs on a
	// stalled connection.
	timeout := 120 * time.Second
	return openAICompatClient{
		name:       name,
		cfg:        cfg,
		pathPrefix: prefix,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewCustom creates a generic OpenAI-compatible capability for a
// caller-supplied base URL that doesn't match a named provider.
func NewCustom(cfg Config) Capability {
	return &openAICompatCapability{base: newOpenAICompatClient("custom", cfg)}
}

type openAICompatCapability struct {
	base openAICompatClient
}

func (p *openAICompatCapability) Name() string                 { return p.base.name }
func (p *openAICompatCapability) SupportedFormats() []string   { return []string{"json_object"} }
func (p *openAICompatCapability) Infer(ctx context.Context, prompts []string, params InferParams) ([]InferResult, error) {
	return p.base.infer(ctx, prompts, params)
}

// --- shared implementation ---

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       json.RawMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Model string `json:"model"`
}

type promptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// infer issues one chat-completion request per prompt, sequentially, and
// captures a per-prompt failure without aborting the remaining prompts.
// Bounding concurrency across a batch is the annotator's job, not the
// provider's: this keeps the capability a thin, stateless transport.
func (c *openAICompatClient) infer(ctx context.Context, prompts []string, params InferParams) ([]InferResult, error) {
	out := make([]InferResult, len(prompts))
	for i, prompt := range prompts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := c.chatOnce(ctx, prompt, params)
		if err != nil {
			out[i] = InferResult{Err: err}
			continue
		}
		out[i] = InferResult{Output: Output{Results: []Result{{Text: text}}}}
	}
	return out, nil
}

func (c *openAICompatClient) chatOnce(ctx context.Context, prompt string, params InferParams) (string, error) {
	msgs, err := json.Marshal([]promptMessage{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}

	body := chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    msgs,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}
	if params.Format == "json_object" {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	respBody, err := c.doPost(ctx, c.pathPrefix+"/chat/completions", body)
	if err != nil {
		return "", err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

const (
	maxRetries        = 6
	baseRetryDelay    = 2 * time.Second
	minRateLimitDelay = 5 * time.Second // minimum delay for 429 errors
)

// retryableStatusCode returns true for HTTP status codes that warrant a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

func (c *openAICompatClient) doPost(ctx context.Context, path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := c.cfg.BaseURL + path

	var lastErr error
	rateLimited := false
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 && !rateLimited {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1)) // 2s, 4s, 8s, ...
			slog.Warn("llm: retrying request",
				"provider", c.name,
				"url", url,
				"attempt", attempt,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		rateLimited = false

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}

		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			// Retry on network/timeout errors, not context cancellation.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request to %s failed: %w", url, err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response body: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return respBody, nil
		}

		lastErr = fmt.Errorf("llm API error %d: %s", resp.StatusCode, string(respBody))

		if !retryableStatusCode(resp.StatusCode) {
			return nil, lastErr
		}

		// Handle 429 rate limiting with longer delays.
		if resp.StatusCode == http.StatusTooManyRequests {
			rateLimitDelay := minRateLimitDelay * time.Duration(1<<attempt) // 5s, 10s, 20s, 40s...
			// Respect Retry-After header if provided.
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
					headerDelay := time.Duration(seconds) * time.Second
					if headerDelay > rateLimitDelay {
						rateLimitDelay = headerDelay
					}
				}
			}
			slog.Warn("llm: rate limited, waiting before retry",
				"provider", c.name,
				"url", url,
				"attempt", attempt+1,
				"delay", rateLimitDelay,
			)
			select {
			case <-time.After(rateLimitDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			rateLimited = true
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
