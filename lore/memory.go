package lore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryBook is an in-memory lorebook for development and testing.
type MemoryBook struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryBook() *MemoryBook {
	return &MemoryBook{}
}

// Add appends entries to the book.
func (b *MemoryBook) Add(entries ...Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entries...)
}

// Query matches entries whose keyword equals (score 1.0) or contains
// (score 0.5) any of the requested keywords, case-insensitively, best
// scores first with insertion order as the tiebreak.
func (b *MemoryBook) Query(ctx context.Context, keywords []string, limit int) ([]Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matches []Entry
	for _, e := range b.entries {
		if score := matchScore(e.Keyword, keywords); score > 0 {
			e.Score = score
			matches = append(matches, e)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Count returns the number of entries in the book.
func (b *MemoryBook) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

func matchScore(entryKeyword string, keywords []string) float64 {
	entry := strings.ToLower(entryKeyword)
	best := 0.0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		switch {
		case entry == kw:
			return 1.0
		case strings.Contains(entry, kw) || strings.Contains(kw, entry):
			best = 0.5
		}
	}
	return best
}

var _ Query = (*MemoryBook)(nil)
