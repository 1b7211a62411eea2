package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedCallerProviderRouting(t *testing.T) {
	ctx := context.Background()
	u := NewUnifiedCaller(UnifiedConfig{OpenAIKey: "sk-test"})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := u.Call(ctx, "cohere", "m", "hi", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown LLM provider: cohere")
	})

	t.Run("unconfigured provider", func(t *testing.T) {
		_, err := u.Call(ctx, "anthropic", "m", "hi", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LLM provider not configured: anthropic")
	})

	assert.True(t, u.HasOpenAI())
	assert.False(t, u.HasAnthropic())
	assert.False(t, u.HasOllama())
}

func TestOpenAIClientComplete(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "pong"}, "finish_reason": "stop"},
			},
			"usage": map[string]any{"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5},
		})
	}))
	defer ts.Close()

	c := NewOpenAIClientWithConfig(ClientConfig{APIKey: "sk-test", BaseURL: ts.URL})
	resp, err := c.Complete(context.Background(), "gpt-4", "ping")
	require.NoError(t, err)

	assert.Equal(t, "pong", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "gpt-4", gotBody["model"])
}

func TestOpenAIClientCompleteAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewOpenAIClientWithConfig(ClientConfig{BaseURL: ts.URL})
	_, err := c.Complete(context.Background(), "gpt-4", "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestOpenAIClientEmbedBatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float64{1, 2}},
				{"embedding": []float64{3, 4}},
			},
			"usage": map[string]any{"total_tokens": 10},
		})
	}))
	defer ts.Close()

	c := NewOpenAIClientWithConfig(ClientConfig{BaseURL: ts.URL})
	out, err := c.EmbedBatch(context.Background(), "text-embedding-3-small", []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []float64{1, 2}, out[0].Embedding)
	assert.Equal(t, 5, out[0].TokenCount)
}

func TestAnthropicClientComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "Hello"},
				{"type": "tool_use", "text": "ignored"},
				{"type": "text", "text": ", world"},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 4, "output_tokens": 6},
		})
	}))
	defer ts.Close()

	c := NewAnthropicClientWithConfig(ClientConfig{APIKey: "sk-ant", BaseURL: ts.URL})
	resp, err := c.Complete(context.Background(), "claude-sonnet-4-5-20250929", "hi")
	require.NoError(t, err)

	assert.Equal(t, "Hello, world", resp.Content)
	assert.Equal(t, "end_turn", resp.FinishReason)
	assert.Equal(t, 10, resp.Usage.TotalTokens)
}

func TestUnifiedCallerOllamaRoute(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "local reply"}},
			},
		})
	}))
	defer ts.Close()

	u := NewUnifiedCaller(UnifiedConfig{OllamaURL: ts.URL})
	got, err := u.Call(context.Background(), "ollama", "llama3.2", "hi", "actor-1")
	require.NoError(t, err)
	assert.Equal(t, "local reply", got)
}

func TestDiscoverOllamaModels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "llama3.2:latest"},
			},
		})
	}))
	defer ts.Close()

	models, err := DiscoverOllamaModels(ts.URL + "/v1")
	require.NoError(t, err)
	require.Len(t, models, 1)

	assert.Equal(t, "ollama-llama3-2-latest", models[0].ID)
	assert.Equal(t, "Llama3.2 (Ollama)", models[0].Name)
	assert.Equal(t, "llama3.2:latest", models[0].Model)
	require.NotNil(t, models[0].APIBase)
	assert.Equal(t, ts.URL+"/v1", *models[0].APIBase)
}
