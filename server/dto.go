package server

import (
	"github.com/hubenschmidt/go-circuitry/circuits"
	"github.com/hubenschmidt/go-circuitry/engine"
	"github.com/hubenschmidt/go-circuitry/graph"
	"github.com/hubenschmidt/go-circuitry/server/store"
)

type ModelInfo struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Model   string  `json:"model"`
	APIBase *string `json:"api_base,omitempty"`
}

// Re-export types from store and circuits packages
type (
	CircuitInfo    = store.CircuitInfo
	RunInfo        = store.RunInfo
	MetricsSummary = store.MetricsSummary
	Template       = circuits.Template
)

type InitResponse struct {
	Models    []ModelInfo   `json:"models"`
	Templates []Template    `json:"templates"`
	Circuits  []CircuitInfo `json:"circuits"`
}

type ExecuteRequest struct {
	CircuitID string           `json:"circuit_id,omitempty"`
	Circuit   *graph.Definition `json:"circuit,omitempty"`
	Inputs    map[string]any   `json:"inputs,omitempty"`
	ActorRef  string           `json:"actor_ref,omitempty"`
}

type ExecuteResponse struct {
	RunID       string           `json:"run_id"`
	Success     bool             `json:"success"`
	Output      string           `json:"output"`
	Variables   map[string]any   `json:"variables"`
	ExecutionMS float64          `json:"execution_ms"`
	Logs        []engine.LogEntry `json:"logs"`
	Error       string            `json:"error,omitempty"`
}

type ValidateRequest struct {
	Circuit graph.Definition `json:"circuit"`
}

type SaveCircuitRequest struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Circuit     graph.Definition `json:"circuit"`
}

type RunListResponse struct {
	Runs []RunInfo `json:"runs"`
}
