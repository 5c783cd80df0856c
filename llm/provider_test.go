package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapability(t *testing.T) {
	tests := []struct {
		provider string
		wantType string
	}{
		{"ollama", "*llm.ollamaCapability"},
		{"lmstudio", "*llm.lmStudioCapability"},
		{"openrouter", "*llm.openRouterCapability"},
		{"xai", "*llm.xaiCapability"},
		{"custom", "*llm.openAICompatCapability"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := Config{Provider: tt.provider, Model: "test-model"}
			p, err := NewCapability(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, fmt.Sprintf("%T", p))
		})
	}
}

func TestNewCapabilityUnknown(t *testing.T) {
	_, err := NewCapability(Config{Provider: "doesnotexist", Model: "test-model"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewCapabilityEmpty(t *testing.T) {
	_, err := NewCapability(Config{Provider: "", Model: "test-model"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider not specified")
}

// TestDefaultBaseURLs verifies that when BaseURL is empty in the config,
// each provider constructor sets the correct default.
func TestDefaultBaseURLs(t *testing.T) {
	tests := []struct {
		provider string
		wantURL  string
	}{
		{"ollama", "http://localhost:11434"},
		{"lmstudio", "http://localhost:1234"},
		{"openrouter", "https://openrouter.ai/api"},
		{"xai", "https://api.x.ai"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewCapability(Config{Provider: tt.provider, Model: "test-model"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, baseURLOf(t, p))
		})
	}
}

// TestCustomCapabilityNoDefaultURL confirms the custom capability does not
// override an empty BaseURL with a default.
func TestCustomCapabilityNoDefaultURL(t *testing.T) {
	p, err := NewCapability(Config{Provider: "custom", Model: "test-model"})
	require.NoError(t, err)
	assert.Empty(t, baseURLOf(t, p))
}

// TestExplicitBaseURLPreserved verifies that a user-supplied BaseURL is not
// overwritten by the default.
func TestExplicitBaseURLPreserved(t *testing.T) {
	customURL := "http://my-server:9999"
	for _, provider := range []string{"ollama", "lmstudio", "openrouter", "xai", "custom"} {
		t.Run(provider, func(t *testing.T) {
			p, err := NewCapability(Config{Provider: provider, Model: "test-model", BaseURL: customURL})
			require.NoError(t, err)
			assert.Equal(t, customURL, baseURLOf(t, p))
		})
	}
}

func TestCapabilityImplementsInterface(t *testing.T) {
	for _, name := range []string{"ollama", "lmstudio", "openrouter", "xai", "custom"} {
		t.Run(name, func(t *testing.T) {
			p, err := NewCapability(Config{Provider: name, Model: "m"})
			require.NoError(t, err)
			var _ Capability = p
			assert.NotEmpty(t, p.Name())
			assert.NotEmpty(t, p.SupportedFormats())
		})
	}
}

// baseURLOf reaches into the concrete capability's embedded
// openAICompatClient via reflection, the way the teacher's own
// provider_test.go inspects unexported config fields.
func baseURLOf(t *testing.T, p Capability) string {
	t.Helper()
	v := reflect.ValueOf(p).Elem()
	base := v.FieldByName("base")
	require.True(t, base.IsValid(), "capability has no embedded base client")
	return base.FieldByName("cfg").FieldByName("BaseURL").String()
}

func TestInferReturnsOneResultPerPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := chatCompletionResponse{Model: req.Model}
		resp.Choices = []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}{{FinishReason: "stop"}}
		resp.Choices[0].Message.Content = `{"extractions":[]}`
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	cap := NewCustom(Config{Provider: "custom", Model: "test-model", BaseURL: server.URL})
	results, err := cap.Infer(context.Background(), []string{"prompt one", "prompt two", "prompt three"}, InferParams{Temperature: 0})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err)
		require.Len(t, r.Output.Results, 1)
		assert.Equal(t, `{"extractions":[]}`, r.Output.Results[0].Text)
	}
}

func TestInferIsolatesPerPromptFailure(t *testing.T) {
	var call int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		if call == 2 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad request"}`))
			return
		}
		resp := chatCompletionResponse{}
		resp.Choices = []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}{{FinishReason: "stop"}}
		resp.Choices[0].Message.Content = "ok"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	cap := NewCustom(Config{Provider: "custom", Model: "m", BaseURL: server.URL})
	results, err := cap.Infer(context.Background(), []string{"a", "b", "c"}, InferParams{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}
