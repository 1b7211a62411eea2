// Package lore provides lorebook lookup for circuits: keyword-matched
// entries from an in-memory or SQL-backed book, and a semantic index
// over embedded entries for fuzzy recall. The lore_injection node
// delegates here through the Query capability.
package lore

import (
	"context"
	"fmt"
	"strings"
)

// Entry is one lorebook record surfaced to a circuit.
type Entry struct {
	ID      string  `json:"id"`
	Keyword string  `json:"keyword"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Query is the capability the lore_injection node delegates to.
type Query interface {
	Query(ctx context.Context, keywords []string, limit int) ([]Entry, error)
}

// Format renders entries as "[keyword]: content" lines in match order,
// the shape circuits inject into prompts.
func Format(entries []Entry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("[%s]: %s", e.Keyword, e.Content)
	}
	return strings.Join(lines, "\n")
}
