package lore

import (
	"context"
	"fmt"
	"strings"

	"github.com/hubenschmidt/go-circuitry/llm"
)

// SemanticIndex answers lore queries by embedding the keywords and
// searching a vector store, so circuits can recall entries whose
// keyword never appears verbatim in the query.
type SemanticIndex struct {
	store    VectorStore
	embedder llm.EmbeddingClient
	model    string
}

// NewSemanticIndex builds a semantic lore index over the given vector
// store using the embedding model named.
func NewSemanticIndex(store VectorStore, embedder llm.EmbeddingClient, model string) *SemanticIndex {
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &SemanticIndex{store: store, embedder: embedder, model: model}
}

// Index embeds entries and stores them for retrieval. Entries are
// embedded as "keyword: content" so both halves contribute.
func (s *SemanticIndex) Index(ctx context.Context, entries ...Entry) error {
	inputs := make([]string, len(entries))
	for i, e := range entries {
		inputs[i] = e.Keyword + ": " + e.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, s.model, inputs)
	if err != nil {
		return fmt.Errorf("embed lore entries: %w", err)
	}
	if len(embeddings) != len(entries) {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(entries))
	}

	embedded := make([]EmbeddedEntry, len(entries))
	for i, e := range entries {
		embedded[i] = EmbeddedEntry{Entry: e, Embedding: embeddings[i].Embedding}
	}
	return s.store.Upsert(ctx, embedded)
}

// Query embeds the joined keywords and returns the nearest entries.
func (s *SemanticIndex) Query(ctx context.Context, keywords []string, limit int) ([]Entry, error) {
	query := strings.TrimSpace(strings.Join(keywords, " "))
	if query == "" {
		return nil, nil
	}

	resp, err := s.embedder.Embed(ctx, s.model, query)
	if err != nil {
		return nil, fmt.Errorf("embed lore query: %w", err)
	}

	return s.store.Search(ctx, resp.Embedding, limit)
}

// Delete removes indexed entries by id.
func (s *SemanticIndex) Delete(ctx context.Context, ids []string) error {
	return s.store.Delete(ctx, ids)
}

// Close releases the underlying vector store.
func (s *SemanticIndex) Close() error {
	return s.store.Close()
}

var _ Query = (*SemanticIndex)(nil)
