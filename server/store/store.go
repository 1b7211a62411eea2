package store

import (
	"context"
	"errors"

	"github.com/hubenschmidt/go-circuitry/engine"
	"github.com/hubenschmidt/go-circuitry/graph"
)

// ErrNotFound is returned when an entity is not found
var ErrNotFound = errors.New("not found")

// CircuitInfo is a saved, versioned circuit definition. Version starts
// at 1 and increments on every save of the same id.
type CircuitInfo struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Version     int              `json:"version"`
	Definition  graph.Definition `json:"definition"`
}

// RunInfo is the persisted record of one circuit execution.
type RunInfo struct {
	RunID       string             `json:"run_id"`
	CircuitID   string             `json:"circuit_id"`
	CircuitName string             `json:"circuit_name"`
	ActorRef    string             `json:"actor_ref,omitempty"`
	Timestamp   int64              `json:"timestamp"`
	Inputs      map[string]any     `json:"inputs,omitempty"`
	Success     bool               `json:"success"`
	Output      string             `json:"output"`
	Error       string             `json:"error,omitempty"`
	ExecutionMS float64            `json:"execution_ms"`
	NodeErrors  int                `json:"node_errors"`
	Logs        []engine.LogEntry  `json:"logs,omitempty"`
}

// MetricsSummary contains aggregated run metrics
type MetricsSummary struct {
	TotalRuns      int     `json:"total_runs"`
	CompletedRuns  int     `json:"completed_runs"`
	FailedRuns     int     `json:"failed_runs"`
	TotalNodeErrs  int     `json:"total_node_errors"`
	AvgExecutionMS float64 `json:"avg_execution_ms"`
}

// CircuitStore defines the interface for circuit persistence
type CircuitStore interface {
	Save(ctx context.Context, c CircuitInfo) (CircuitInfo, error)
	Get(ctx context.Context, id string) (CircuitInfo, error)
	List(ctx context.Context) ([]CircuitInfo, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// RunStore defines the interface for run trace persistence
type RunStore interface {
	Add(ctx context.Context, r RunInfo) error
	Get(ctx context.Context, id string) (RunInfo, error)
	List(ctx context.Context) ([]RunInfo, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (MetricsSummary, error)
	Close() error
}
