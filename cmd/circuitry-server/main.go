package main

import (
	"log"
	"net/http"
	"os"

	"github.com/hubenschmidt/go-circuitry"
)

func main() {
	caller := circuitry.NewUnifiedCaller(circuitry.UnifiedConfig{
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		OllamaURL:    getEnvOr("OLLAMA_URL", "http://localhost:11434/v1"),
	})

	cfg := circuitry.ServerConfig{
		Caller:      caller,
		OllamaURL:   getEnvOr("OLLAMA_URL", "http://localhost:11434"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),
	}
	if caller.HasEmbeddings() {
		cfg.Embedder = caller
		cfg.EmbedModel = os.Getenv("EMBED_MODEL")
	}

	srv, err := circuitry.NewServer(cfg)
	if err != nil {
		log.Fatalf("start server: %v", err)
	}
	defer srv.Close()

	addr := getEnvOr("ADDR", ":8000")
	log.Printf("Starting circuitry server on http://localhost%s", addr)
	log.Fatal(http.ListenAndServe(addr, srv.Handler()))
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
