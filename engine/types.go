package engine

import (
	"context"
	"time"

	"github.com/hubenschmidt/go-circuitry/graph"
)

// Level classifies a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Event tags the lifecycle moment a log entry records.
type Event string

const (
	EventExecuteCircuit         Event = "EXECUTE_CIRCUIT"
	EventExecuteCircuitComplete Event = "EXECUTE_CIRCUIT_COMPLETE"
	EventExecuteNodeStart       Event = "EXECUTE_NODE_START"
	EventExecuteNodeComplete    Event = "EXECUTE_NODE_COMPLETE"
	EventExecuteNodeError       Event = "EXECUTE_NODE_ERROR"
)

// LogEntry is one structured execution event. Entries are append-only
// and ordered by emission time; only Context.Record constructs them.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Event     Event          `json:"event"`
	NodeID    string         `json:"node_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// ExecutionResult is the envelope returned for every run. Success is
// false only for structural failures (parse or validation); individual
// node errors leave Success true and surface as ERROR-level log entries.
type ExecutionResult struct {
	Success     bool           `json:"success"`
	Output      string         `json:"output"`
	Variables   map[string]any `json:"variables"`
	ExecutionMS float64        `json:"execution_ms"`
	Logs        []LogEntry     `json:"logs"`
	Error       string         `json:"error,omitempty"`
}

// ValidationResult is the response of the standalone validate operation.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors"`
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
}

// HandlerResult is the delta a node handler produces: optional text
// output (empty means none) and variable writes merged into the run's
// bindings, overwriting on collision.
type HandlerResult struct {
	Output    string
	Variables map[string]any
}

// Handler executes one node against the run context. Errors are caught
// by the per-node boundary: the node's downstream edges are pruned but
// the run continues.
type Handler func(ctx context.Context, node *graph.Node, ec *Context, actorRef string) (HandlerResult, error)
