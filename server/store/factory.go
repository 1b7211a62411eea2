package store

import (
	"fmt"
	"strings"
)

// NewStores creates circuit and run stores based on the DSN.
// - Empty DSN: SQLite at data/circuitry.db
// - postgres:// or postgresql://: PostgreSQL
// - Anything else: SQLite at the specified path
func NewStores(dsn string) (CircuitStore, RunStore, error) {
	if dsn == "" {
		return NewSQLiteStores("data/circuitry.db")
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		cs, rs, err := NewPostgresStores(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return cs, rs, nil
	}

	return NewSQLiteStores(dsn)
}
