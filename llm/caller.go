// Package llm implements the engine's LLM capability: a provider-keyed
// caller that routes circuit prompts to OpenAI, Anthropic, or a local
// Ollama instance, plus embedding clients for the lore index.
package llm

import (
	"context"
	"fmt"
	"log"
)

// Caller is the capability the llm_connector node delegates to. The
// actorRef is an opaque caller-supplied id (e.g. a character id) passed
// through for attribution; failures surface as node errors caught by
// the engine's per-node boundary.
type Caller interface {
	Call(ctx context.Context, provider, model, prompt, actorRef string) (string, error)
}

// EmbeddingClient generates embeddings, used by the lore vector index.
type EmbeddingClient interface {
	Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error)
	EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error)
}

// UnifiedCaller routes by the provider named in the node config. Only
// configured providers get a client; calls to the rest fail cleanly.
type UnifiedCaller struct {
	openai      *OpenAIClient
	anthropic   *AnthropicClient
	ollama      *OpenAIClient
	ollamaEmbed *OllamaEmbedClient
}

type UnifiedConfig struct {
	OpenAIKey    string
	AnthropicKey string
	OllamaURL    string
}

func NewUnifiedCaller(cfg UnifiedConfig) *UnifiedCaller {
	u := &UnifiedCaller{}

	if cfg.OpenAIKey != "" {
		u.openai = NewOpenAIClient(cfg.OpenAIKey)
	}

	if cfg.AnthropicKey != "" {
		u.anthropic = NewAnthropicClient(cfg.AnthropicKey)
	}

	if cfg.OllamaURL != "" {
		u.ollama = NewOpenAIClientWithConfig(ClientConfig{
			BaseURL: cfg.OllamaURL,
		})
		u.ollamaEmbed = NewOllamaEmbedClient(cfg.OllamaURL)
	}

	return u
}

func (u *UnifiedCaller) Call(ctx context.Context, provider, model, prompt, actorRef string) (string, error) {
	client, err := u.resolveClient(provider)
	if err != nil {
		return "", err
	}

	if actorRef != "" {
		log.Printf("[llm] call provider=%s model=%s actor=%s", provider, model, actorRef)
	} else {
		log.Printf("[llm] call provider=%s model=%s", provider, model)
	}

	resp, err := client.Complete(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

type completer interface {
	Complete(ctx context.Context, model, prompt string) (*Response, error)
}

func (u *UnifiedCaller) resolveClient(provider string) (completer, error) {
	var client completer
	switch provider {
	case "openai":
		if u.openai != nil {
			client = u.openai
		}
	case "anthropic":
		if u.anthropic != nil {
			client = u.anthropic
		}
	case "ollama":
		if u.ollama != nil {
			client = u.ollama
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}

	if client == nil {
		return nil, fmt.Errorf("LLM provider not configured: %s", provider)
	}
	return client, nil
}

// Embed generates an embedding, preferring OpenAI when configured and
// falling back to Ollama's native embedding API.
func (u *UnifiedCaller) Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error) {
	client := u.resolveEmbeddingClient()
	if client == nil {
		return nil, fmt.Errorf("no embedding client available")
	}
	return client.Embed(ctx, model, input)
}

// EmbedBatch generates embeddings for multiple inputs.
func (u *UnifiedCaller) EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error) {
	client := u.resolveEmbeddingClient()
	if client == nil {
		return nil, fmt.Errorf("no embedding client available")
	}
	return client.EmbedBatch(ctx, model, inputs)
}

func (u *UnifiedCaller) resolveEmbeddingClient() EmbeddingClient {
	if u.openai != nil {
		return u.openai
	}
	if u.ollamaEmbed != nil {
		return u.ollamaEmbed
	}
	return nil
}

func (u *UnifiedCaller) HasOpenAI() bool    { return u.openai != nil }
func (u *UnifiedCaller) HasAnthropic() bool { return u.anthropic != nil }
func (u *UnifiedCaller) HasOllama() bool    { return u.ollama != nil }

// HasEmbeddings reports whether a configured provider can embed.
func (u *UnifiedCaller) HasEmbeddings() bool { return u.resolveEmbeddingClient() != nil }

var _ Caller = (*UnifiedCaller)(nil)
var _ EmbeddingClient = (*UnifiedCaller)(nil)
