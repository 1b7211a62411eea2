package lore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PgVectorStore is a PostgreSQL-based lore vector store using pgvector.
type PgVectorStore struct {
	db        *sql.DB
	dimension int
}

// NewPgVectorStore creates a pgvector-backed lore store. The dimension
// parameter is the embedding dimension (e.g. 1536 for OpenAI).
func NewPgVectorStore(dsn string, dimension int) (*PgVectorStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PgVectorStore{db: db, dimension: dimension}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PgVectorStore) migrate() error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS lore_vectors (
			id TEXT PRIMARY KEY,
			keyword TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_lore_vectors_embedding ON lore_vectors USING hnsw (embedding vector_cosine_ops)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

func (s *PgVectorStore) Upsert(ctx context.Context, entries []EmbeddedEntry) error {
	for _, e := range entries {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO lore_vectors (id, keyword, content, embedding)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				keyword = EXCLUDED.keyword,
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding
		`, e.ID, e.Keyword, e.Content, formatEmbedding(e.Embedding))
		if err != nil {
			return fmt.Errorf("upsert lore vector: %w", err)
		}
	}
	return nil
}

// Search uses pgvector's cosine distance operator; similarity is
// 1 - distance, matching the in-memory store's scoring.
func (s *PgVectorStore) Search(ctx context.Context, embedding []float64, topK int) ([]Entry, error) {
	if topK <= 0 {
		topK = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, keyword, content, 1 - (embedding <=> $1) AS score
		FROM lore_vectors
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`, formatEmbedding(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("search lore vectors: %w", err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Keyword, &e.Content, &e.Score); err != nil {
			return nil, fmt.Errorf("scan lore vector: %w", err)
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func (s *PgVectorStore) Delete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM lore_vectors WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete lore vector: %w", err)
		}
	}
	return nil
}

func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// formatEmbedding renders a vector in pgvector's text format: [1,2,3]
func formatEmbedding(embedding []float64) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

var _ VectorStore = (*PgVectorStore)(nil)
