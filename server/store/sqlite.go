package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hubenschmidt/go-circuitry/server/store/migrations"
	_ "modernc.org/sqlite"
)

// SQLiteCircuitStore implements CircuitStore using SQLite
type SQLiteCircuitStore struct {
	db *sql.DB
}

// SQLiteRunStore implements RunStore using SQLite
type SQLiteRunStore struct {
	db *sql.DB
}

// NewSQLiteStores creates SQLite-backed circuit and run stores
func NewSQLiteStores(dsn string) (CircuitStore, RunStore, error) {
	if dsn == "" {
		dsn = "data/circuitry.db"
	}

	dir := filepath.Dir(dsn)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := runSQLiteMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteCircuitStore{db: db}, &SQLiteRunStore{db: db}, nil
}

func runSQLiteMigrations(db *sql.DB) error {
	data, err := migrations.SQLite.ReadFile("sqlite/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	_, err = db.Exec(string(data))
	if err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

// CircuitStore implementation

func (s *SQLiteCircuitStore) Save(ctx context.Context, c CircuitInfo) (CircuitInfo, error) {
	definition, err := json.Marshal(c.Definition)
	if err != nil {
		return c, fmt.Errorf("marshal definition: %w", err)
	}

	// Saving an existing id bumps its version.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO circuits (id, name, description, version, definition)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			version = circuits.version + 1,
			definition = excluded.definition`,
		c.ID, c.Name, c.Description, string(definition),
	)
	if err != nil {
		return c, fmt.Errorf("insert circuit: %w", err)
	}
	return s.Get(ctx, c.ID)
}

func (s *SQLiteCircuitStore) Get(ctx context.Context, id string) (CircuitInfo, error) {
	var c CircuitInfo
	var definitionJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, version, definition
		FROM circuits WHERE id = ?`, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.Version, &definitionJSON,
	)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("query circuit: %w", err)
	}

	if err := json.Unmarshal([]byte(definitionJSON), &c.Definition); err != nil {
		return c, fmt.Errorf("unmarshal definition: %w", err)
	}
	return c, nil
}

func (s *SQLiteCircuitStore) List(ctx context.Context) ([]CircuitInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, version, definition
		FROM circuits ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query circuits: %w", err)
	}
	defer rows.Close()

	var circuits []CircuitInfo
	for rows.Next() {
		var c CircuitInfo
		var definitionJSON string
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Version, &definitionJSON); err != nil {
			return nil, fmt.Errorf("scan circuit: %w", err)
		}
		if err := json.Unmarshal([]byte(definitionJSON), &c.Definition); err != nil {
			return nil, fmt.Errorf("unmarshal definition: %w", err)
		}
		circuits = append(circuits, c)
	}
	return circuits, rows.Err()
}

func (s *SQLiteCircuitStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM circuits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete circuit: %w", err)
	}
	return nil
}

func (s *SQLiteCircuitStore) Close() error {
	return s.db.Close()
}

// RunStore implementation

func (s *SQLiteRunStore) Add(ctx context.Context, r RunInfo) error {
	inputs, err := json.Marshal(r.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	logs, err := json.Marshal(r.Logs)
	if err != nil {
		return fmt.Errorf("marshal logs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			run_id, circuit_id, circuit_name, actor_ref, timestamp, inputs,
			success, output, error, execution_ms, node_errors, logs
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.CircuitID, r.CircuitName, r.ActorRef, r.Timestamp, string(inputs),
		r.Success, r.Output, r.Error, r.ExecutionMS, r.NodeErrors, string(logs),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLiteRunStore) Get(ctx context.Context, id string) (RunInfo, error) {
	var r RunInfo
	var inputsJSON, logsJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, circuit_id, circuit_name, actor_ref, timestamp, inputs,
			   success, output, error, execution_ms, node_errors, logs
		FROM runs WHERE run_id = ?`, id).Scan(
		&r.RunID, &r.CircuitID, &r.CircuitName, &r.ActorRef, &r.Timestamp, &inputsJSON,
		&r.Success, &r.Output, &r.Error, &r.ExecutionMS, &r.NodeErrors, &logsJSON,
	)
	if err == sql.ErrNoRows {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("query run: %w", err)
	}

	if err := json.Unmarshal([]byte(inputsJSON), &r.Inputs); err != nil {
		return r, fmt.Errorf("unmarshal inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(logsJSON), &r.Logs); err != nil {
		return r, fmt.Errorf("unmarshal logs: %w", err)
	}
	return r, nil
}

func (s *SQLiteRunStore) List(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, circuit_id, circuit_name, actor_ref, timestamp, inputs,
			   success, output, error, execution_ms, node_errors, logs
		FROM runs ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		var inputsJSON, logsJSON string
		if err := rows.Scan(
			&r.RunID, &r.CircuitID, &r.CircuitName, &r.ActorRef, &r.Timestamp, &inputsJSON,
			&r.Success, &r.Output, &r.Error, &r.ExecutionMS, &r.NodeErrors, &logsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(inputsJSON), &r.Inputs); err != nil {
			return nil, fmt.Errorf("unmarshal inputs: %w", err)
		}
		if err := json.Unmarshal([]byte(logsJSON), &r.Logs); err != nil {
			return nil, fmt.Errorf("unmarshal logs: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteRunStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

func (s *SQLiteRunStore) Summary(ctx context.Context) (MetricsSummary, error) {
	var m MetricsSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0),
			COALESCE(SUM(node_errors), 0),
			COALESCE(AVG(execution_ms), 0)
		FROM runs`).Scan(
		&m.TotalRuns, &m.CompletedRuns, &m.FailedRuns,
		&m.TotalNodeErrs, &m.AvgExecutionMS,
	)
	if err != nil {
		return m, fmt.Errorf("query summary: %w", err)
	}
	return m, nil
}

func (s *SQLiteRunStore) Close() error {
	return s.db.Close()
}
