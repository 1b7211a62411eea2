// Package circuitry provides a graph execution engine for user-authored
// node/edge circuits.
//
// Example usage:
//
//	def := circuitry.NewBuilder().
//	    Node("in", circuitry.NodeInput).Done().
//	    Node("prompt", circuitry.NodePromptBuilder).
//	        Config("template", "Answer briefly: {{message}}").
//	        Done().
//	    Node("llm", circuitry.NodeLLMConnector).
//	        Config("provider", "openai").
//	        Config("model", "gpt-4").
//	        Done().
//	    Edge("in", "prompt").
//	    Edge("prompt", "llm").
//	    Build()
//
//	caller := llm.NewUnifiedCaller(llm.UnifiedConfig{OpenAIKey: os.Getenv("OPENAI_API_KEY")})
//	eng := circuitry.NewEngine(circuitry.EngineConfig{Caller: caller})
//	result := eng.Run(ctx, def, map[string]any{"message": "hi"}, "user-1")
package circuitry

import (
	"github.com/hubenschmidt/go-circuitry/circuits"
	"github.com/hubenschmidt/go-circuitry/core"
	"github.com/hubenschmidt/go-circuitry/engine"
	"github.com/hubenschmidt/go-circuitry/graph"
	"github.com/hubenschmidt/go-circuitry/llm"
	"github.com/hubenschmidt/go-circuitry/lore"
	"github.com/hubenschmidt/go-circuitry/monitor"
	"github.com/hubenschmidt/go-circuitry/server"
)

// Re-export node types for convenience
const (
	NodeInput             = graph.NodeInput
	NodeVariableProcessor = graph.NodeVariableProcessor
	NodeConditional       = graph.NodeConditional
	NodePromptBuilder     = graph.NodePromptBuilder
	NodeLLMConnector      = graph.NodeLLMConnector
	NodeOutput            = graph.NodeOutput
	NodeSystemPrompt      = graph.NodeSystemPrompt
	NodeLoreInjection     = graph.NodeLoreInjection
)

// Graph aliases
type (
	Builder     = graph.Builder
	NodeBuilder = graph.NodeBuilder
	Definition  = graph.Definition
	Node        = graph.Node
	Edge        = graph.Edge
)

// NewBuilder creates a new circuit definition builder.
func NewBuilder() *Builder {
	return graph.NewBuilder()
}

// Engine aliases
type (
	Engine           = engine.Engine
	EngineConfig     = engine.EngineConfig
	ExecutionResult  = engine.ExecutionResult
	ValidationResult = engine.ValidationResult
	LogEntry         = engine.LogEntry
	Handler          = engine.Handler
	HandlerResult    = engine.HandlerResult
)

// NewEngine creates a new circuit execution engine.
func NewEngine(cfg EngineConfig) *Engine {
	return engine.New(cfg)
}

// Check validates a circuit definition without executing it.
func Check(def Definition) ValidationResult {
	return engine.Check(def)
}

// LLM aliases
type (
	Caller        = llm.Caller
	UnifiedCaller = llm.UnifiedCaller
	UnifiedConfig = llm.UnifiedConfig
)

// NewUnifiedCaller creates an LLM caller that routes to the provider
// named by each llm_connector node.
func NewUnifiedCaller(cfg UnifiedConfig) *UnifiedCaller {
	return llm.NewUnifiedCaller(cfg)
}

// Lore aliases
type (
	LoreEntry  = lore.Entry
	LoreQuery  = lore.Query
	MemoryBook = lore.MemoryBook
)

// NewMemoryBook creates an in-memory lorebook.
func NewMemoryBook() *MemoryBook {
	return lore.NewMemoryBook()
}

// NewLoreBook opens a persistent lorebook; the DSN selects sqlite or
// postgres.
func NewLoreBook(dsn string) (*lore.SQLBook, error) {
	return lore.NewBook(dsn)
}

// Semantic lore aliases
type (
	SemanticIndex = lore.SemanticIndex
	VectorStore   = lore.VectorStore
)

// NewSemanticIndex builds a lore index that recalls entries by
// embedding similarity instead of keyword matching.
func NewSemanticIndex(store VectorStore, embedder llm.EmbeddingClient, model string) *SemanticIndex {
	return lore.NewSemanticIndex(store, embedder, model)
}

// NewMemoryVectorStore creates an in-memory vector store for the
// semantic lore index.
func NewMemoryVectorStore() *lore.MemoryVectorStore {
	return lore.NewMemoryVectorStore()
}

// Core type alias
type CircuitError = core.CircuitError

// Monitor aliases
type (
	Collector         = monitor.Collector
	InMemoryCollector = monitor.InMemoryCollector
	CircuitMetrics    = monitor.CircuitMetrics
)

// NewInMemoryCollector creates a new in-memory metrics collector.
func NewInMemoryCollector(circuitID string) *InMemoryCollector {
	return monitor.NewInMemoryCollector(circuitID)
}

// Server aliases
type (
	Server       = server.Server
	ServerConfig = server.Config
)

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	return server.New(cfg)
}

// Template aliases
type Template = circuits.Template

// Templates returns the built-in circuit templates.
func Templates() []Template {
	return circuits.Templates()
}
