package llm

// Response is a completed LLM generation.
type Response struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// EmbeddingResponse represents a single embedding result.
type EmbeddingResponse struct {
	Embedding  []float64 `json:"embedding"`
	TokenCount int       `json:"token_count"`
}

// ClientConfig tunes a provider client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout int
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{Timeout: 60}
}
