package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/hubenschmidt/go-circuitry/circuits"
	"github.com/hubenschmidt/go-circuitry/engine"
	"github.com/hubenschmidt/go-circuitry/llm"
	"github.com/hubenschmidt/go-circuitry/lore"
	"github.com/hubenschmidt/go-circuitry/monitor"
	"github.com/hubenschmidt/go-circuitry/server/store"
)

// Config configures a new Server instance.
type Config struct {
	Caller      llm.Caller
	Models      []ModelInfo
	Templates   []Template
	OllamaURL   string // Optional: URL for Ollama model discovery
	DatabaseDSN string // Optional: database connection string (postgres:// or sqlite path)

	// Lore configuration
	Lore lore.Query // Optional: inject a custom lore source

	// Embedder switches lore recall to a semantic vector index when no
	// explicit Lore source is injected: pgvector on a postgres DSN, an
	// in-memory store otherwise.
	Embedder       llm.EmbeddingClient
	EmbedModel     string // Optional: embedding model for the semantic index
	EmbedDimension int    // Optional: pgvector column width, defaults to 1536

	// Handlers overrides or extends the engine's node handler registry.
	Handlers map[string]engine.Handler
}

// Server is an HTTP server for the circuitry execution engine.
type Server struct {
	engine    *engine.Engine
	collector *monitor.InMemoryCollector
	models    []ModelInfo
	templates []Template
	circuits  store.CircuitStore
	runs      store.RunStore
	loreBook  lore.Query
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	models := cfg.Models
	if len(models) == 0 {
		models = defaultModels()
	}

	// Discover Ollama models if URL provided
	if cfg.OllamaURL != "" {
		ollamaModels, err := llm.DiscoverOllamaModels(cfg.OllamaURL)
		if err != nil {
			log.Printf("[ollama] Discovery failed (is Ollama running?): %v", err)
		} else {
			log.Printf("[ollama] Found %d local models", len(ollamaModels))
			for _, m := range ollamaModels {
				log.Printf("[ollama]   - %s (%s)", m.Name, m.ID)
				models = append(models, ModelInfo{
					ID:      m.ID,
					Name:    m.Name,
					Model:   m.Model,
					APIBase: m.APIBase,
				})
			}
		}
	}

	templates := cfg.Templates
	if len(templates) == 0 {
		templates = circuits.Templates()
	}

	// Initialize database stores
	circuitStore, runStore, err := store.NewStores(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("initialize stores: %w", err)
	}

	log.Printf("[store] Initialized database storage")

	// Initialize lore source
	loreBook := cfg.Lore
	if loreBook == nil && cfg.Embedder != nil {
		loreBook = lore.NewSemanticIndex(newVectorStore(cfg), cfg.Embedder, cfg.EmbedModel)
	}
	if loreBook == nil {
		if isPostgresDSN(cfg.DatabaseDSN) {
			book, err := lore.NewPostgresBook(cfg.DatabaseDSN)
			if err != nil {
				log.Printf("[lore] Failed to initialize postgres lorebook: %v", err)
			} else {
				loreBook = book
				log.Printf("[lore] Initialized postgres lorebook")
			}
		}
	}
	if loreBook == nil {
		loreBook = lore.NewMemoryBook()
		log.Printf("[lore] Using in-memory lorebook")
	}

	collector := monitor.NewInMemoryCollector("server")
	eng := engine.New(engine.EngineConfig{
		Caller:    cfg.Caller,
		Lore:      loreBook,
		Collector: collector,
		Handlers:  cfg.Handlers,
	})

	return &Server{
		engine:    eng,
		collector: collector,
		models:    models,
		templates: templates,
		circuits:  circuitStore,
		runs:      runStore,
		loreBook:  loreBook,
	}, nil
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	var errs []error
	if err := s.runs.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.circuits.Close(); err != nil {
		errs = append(errs, err)
	}
	if closer, ok := s.loreBook.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close stores: %v", errs)
	}
	return nil
}

// Handler returns an http.Handler for the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /init", s.handleInit)
	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.HandleFunc("POST /validate", s.handleValidate)

	mux.HandleFunc("GET /circuits", s.handleCircuitList)
	mux.HandleFunc("GET /circuits/{id}", s.handleCircuitGet)
	mux.HandleFunc("POST /circuits/save", s.handleCircuitSave)
	mux.HandleFunc("POST /circuits/delete", s.handleCircuitDelete)

	mux.HandleFunc("GET /runs", s.handleRunList)
	mux.HandleFunc("GET /runs/{id}", s.handleRunGet)
	mux.HandleFunc("DELETE /runs/{id}", s.handleRunDelete)
	mux.HandleFunc("GET /metrics/summary", s.handleMetricsSummary)

	return corsMiddleware(mux)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// newVectorStore picks the vector store backing the semantic lore
// index: pgvector when a postgres DSN is configured, in-memory
// otherwise (including when pgvector setup fails).
func newVectorStore(cfg Config) lore.VectorStore {
	if isPostgresDSN(cfg.DatabaseDSN) {
		dim := cfg.EmbedDimension
		if dim <= 0 {
			dim = 1536
		}
		pg, err := lore.NewPgVectorStore(cfg.DatabaseDSN, dim)
		if err != nil {
			log.Printf("[lore] Failed to initialize pgvector store: %v", err)
		} else {
			log.Printf("[lore] Using pgvector semantic index")
			return pg
		}
	}
	log.Printf("[lore] Using in-memory semantic index")
	return lore.NewMemoryVectorStore()
}

func defaultModels() []ModelInfo {
	return []ModelInfo{
		{ID: "openai-gpt5", Name: "GPT-5.2 (OpenAI)", Model: "gpt-5.2-2025-12-11"},
		{ID: "openai-codex", Name: "GPT-5.2 Codex (OpenAI)", Model: "gpt-5.2-codex"},
		{ID: "anthropic-opus", Name: "Claude Opus 4.5 (Anthropic)", Model: "claude-opus-4-5-20251101"},
		{ID: "anthropic-sonnet", Name: "Claude Sonnet 4.5 (Anthropic)", Model: "claude-sonnet-4-5-20250929"},
		{ID: "anthropic-haiku", Name: "Claude Haiku 4.5 (Anthropic)", Model: "claude-haiku-4-5-20251001"},
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
