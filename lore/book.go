package lore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// SQLBook is a lorebook persisted in SQLite or PostgreSQL. It owns its
// database handle and creates its own table, so it can share a DSN with
// the circuit stores without coordinating migrations.
type SQLBook struct {
	db       *sql.DB
	postgres bool
}

// NewBook opens a SQL-backed lorebook based on the DSN:
// postgres:// or postgresql:// for PostgreSQL, anything else as a
// SQLite path.
func NewBook(dsn string) (*SQLBook, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return NewPostgresBook(dsn)
	}
	return NewSQLiteBook(dsn)
}

// NewSQLiteBook opens a SQLite-backed lorebook at the given path.
func NewSQLiteBook(path string) (*SQLBook, error) {
	if path == "" {
		path = "data/lorebook.db"
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	book := &SQLBook{db: db}
	if err := book.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate lorebook: %w", err)
	}
	return book, nil
}

// NewPostgresBook opens a PostgreSQL-backed lorebook.
func NewPostgresBook(dsn string) (*SQLBook, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	book := &SQLBook{db: db, postgres: true}
	if err := book.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate lorebook: %w", err)
	}
	return book, nil
}

func (b *SQLBook) migrate() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS lorebook (
			id TEXT PRIMARY KEY,
			keyword TEXT NOT NULL,
			content TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create lorebook table: %w", err)
	}
	return nil
}

// Upsert stores entries, replacing existing ones by id.
func (b *SQLBook) Upsert(ctx context.Context, entries ...Entry) error {
	for _, e := range entries {
		var err error
		if b.postgres {
			_, err = b.db.ExecContext(ctx, `
				INSERT INTO lorebook (id, keyword, content) VALUES ($1, $2, $3)
				ON CONFLICT (id) DO UPDATE SET keyword = EXCLUDED.keyword, content = EXCLUDED.content`,
				e.ID, e.Keyword, e.Content)
		} else {
			_, err = b.db.ExecContext(ctx, `
				INSERT OR REPLACE INTO lorebook (id, keyword, content) VALUES (?, ?, ?)`,
				e.ID, e.Keyword, e.Content)
		}
		if err != nil {
			return fmt.Errorf("insert lore entry: %w", err)
		}
	}
	return nil
}

// Delete removes entries by id.
func (b *SQLBook) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		query := `DELETE FROM lorebook WHERE id = ?`
		if b.postgres {
			query = `DELETE FROM lorebook WHERE id = $1`
		}
		if _, err := b.db.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("delete lore entry: %w", err)
		}
	}
	return nil
}

// Query fetches candidate rows whose keyword matches any requested
// keyword as a substring, then scores them like MemoryBook: exact
// matches first, substring matches after.
func (b *SQLBook) Query(ctx context.Context, keywords []string, limit int) ([]Entry, error) {
	var conds []string
	var args []any
	n := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		n++
		if b.postgres {
			conds = append(conds, fmt.Sprintf("LOWER(keyword) LIKE $%d", n))
		} else {
			conds = append(conds, "LOWER(keyword) LIKE ?")
		}
		args = append(args, "%"+kw+"%")
	}
	if len(conds) == 0 {
		return nil, nil
	}

	rows, err := b.db.QueryContext(ctx,
		`SELECT id, keyword, content FROM lorebook WHERE `+strings.Join(conds, " OR "), args...)
	if err != nil {
		return nil, fmt.Errorf("query lorebook: %w", err)
	}
	defer rows.Close()

	var matches []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Keyword, &e.Content); err != nil {
			return nil, fmt.Errorf("scan lore entry: %w", err)
		}
		e.Score = matchScore(e.Keyword, keywords)
		matches = append(matches, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Close releases the database handle.
func (b *SQLBook) Close() error {
	return b.db.Close()
}

var _ Query = (*SQLBook)(nil)
