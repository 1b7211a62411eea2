package lore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// EmbeddedEntry is a lorebook entry paired with its embedding.
type EmbeddedEntry struct {
	Entry
	Embedding []float64 `json:"embedding,omitempty"`
}

// VectorStore stores embedded lore entries and retrieves the nearest
// ones by cosine similarity.
type VectorStore interface {
	// Upsert stores entries, updating existing ones by id.
	Upsert(ctx context.Context, entries []EmbeddedEntry) error

	// Search finds entries similar to the given embedding, best first.
	Search(ctx context.Context, embedding []float64, topK int) ([]Entry, error)

	// Delete removes entries by id.
	Delete(ctx context.Context, ids []string) error

	// Close releases resources.
	Close() error
}

// MemoryVectorStore is an in-memory vector store for development and
// testing.
type MemoryVectorStore struct {
	mu      sync.RWMutex
	entries map[string]EmbeddedEntry
}

func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{
		entries: make(map[string]EmbeddedEntry),
	}
}

func (s *MemoryVectorStore) Upsert(ctx context.Context, entries []EmbeddedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return nil
}

// Search scores every stored entry by brute-force cosine similarity.
func (s *MemoryVectorStore) Search(ctx context.Context, embedding []float64, topK int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if len(e.Embedding) == 0 {
			continue
		}
		scored := e.Entry
		scored.Score = CosineSimilarity(embedding, e.Embedding)
		results = append(results, scored)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryVectorStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.entries, id)
	}
	return nil
}

func (s *MemoryVectorStore) Close() error {
	return nil
}

// Count returns the number of stored entries.
func (s *MemoryVectorStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ VectorStore = (*MemoryVectorStore)(nil)
