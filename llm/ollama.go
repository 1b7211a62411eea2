package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DiscoveredModel is a locally served model reported by an Ollama
// instance, normalized for the server's model catalog. APIBase points
// at the instance's OpenAI-compatible endpoint.
type DiscoveredModel struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Model   string  `json:"model"`
	APIBase *string `json:"api_base,omitempty"`
}

// DiscoverOllamaModels lists the models an Ollama instance serves and
// normalizes them into catalog entries. The host may carry an
// OpenAI-compat /v1 suffix; discovery always talks to the native
// /api/tags endpoint.
func DiscoverOllamaModels(host string) ([]DiscoveredModel, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	base := ollamaBase(host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama discovery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to parse ollama response: %w", err)
	}

	apiBase := base + "/v1"
	models := make([]DiscoveredModel, 0, len(tags.Models))
	for _, m := range tags.Models {
		models = append(models, DiscoveredModel{
			ID:      "ollama-" + modelSlug(m.Name),
			Name:    ollamaDisplayName(m.Name),
			Model:   m.Name,
			APIBase: &apiBase,
		})
	}
	return models, nil
}

// ollamaBase normalizes a configured Ollama URL to the native API
// root, dropping a trailing slash and an OpenAI-compat /v1 suffix.
func ollamaBase(host string) string {
	return strings.TrimSuffix(strings.TrimSuffix(host, "/"), "/v1")
}

var modelSlugRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// modelSlug turns a tag like "llama3.2:latest" into the catalog id
// fragment "llama3-2-latest".
func modelSlug(name string) string {
	return strings.ToLower(modelSlugRe.ReplaceAllString(name, "-"))
}

// ollamaDisplayName renders "llama3.2:latest" as "Llama3.2 (Ollama)".
func ollamaDisplayName(name string) string {
	base, _, _ := strings.Cut(name, ":")
	if base != "" {
		base = strings.ToUpper(base[:1]) + base[1:]
	}
	return base + " (Ollama)"
}

// OllamaEmbedClient embeds through Ollama's native /api/embed
// endpoint. It backs the lore vector index when no hosted embedding
// provider is configured.
type OllamaEmbedClient struct {
	baseURL string
	client  *http.Client
}

func NewOllamaEmbedClient(baseURL string) *OllamaEmbedClient {
	return &OllamaEmbedClient{
		baseURL: ollamaBase(baseURL),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *OllamaEmbedClient) Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error) {
	results, err := c.EmbedBatch(ctx, model, []string{input})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return &results[0], nil
}

// EmbedBatch embeds each input with its own request; the endpoint has
// no batch form. Token counts stay zero because Ollama reports no
// usage.
func (c *OllamaEmbedClient) EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error) {
	results := make([]EmbeddingResponse, 0, len(inputs))
	for _, input := range inputs {
		embedding, err := c.embedOne(ctx, model, input)
		if err != nil {
			return nil, err
		}
		results = append(results, EmbeddingResponse{Embedding: embedding})
	}
	return results, nil
}

func (c *OllamaEmbedClient) embedOne(ctx context.Context, model, input string) ([]float64, error) {
	body, err := json.Marshal(map[string]any{"model": model, "input": input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings in response")
	}
	return result.Embeddings[0], nil
}
