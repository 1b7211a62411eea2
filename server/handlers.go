package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hubenschmidt/go-circuitry/engine"
	"github.com/hubenschmidt/go-circuitry/graph"
	"github.com/hubenschmidt/go-circuitry/server/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	saved, err := s.circuits.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := InitResponse{
		Models:    s.models,
		Templates: s.templates,
		Circuits:  saved,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var def graph.Definition
	circuitID := req.CircuitID
	circuitName := "Ad-hoc Circuit"

	switch {
	case req.Circuit != nil:
		def = *req.Circuit
		if circuitID == "" {
			circuitID = "adhoc"
		}
	case req.CircuitID != "":
		saved, err := s.circuits.Get(r.Context(), req.CircuitID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		def = saved.Definition
		circuitName = saved.Name
	default:
		http.Error(w, "circuit or circuit_id required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	start := time.Now()
	result := s.engine.Run(ctx, def, req.Inputs, req.ActorRef)

	runID := uuid.NewString()

	nodeErrors := 0
	for _, entry := range result.Logs {
		if entry.Event == engine.EventExecuteNodeError {
			nodeErrors++
		}
	}

	if err := s.runs.Add(r.Context(), RunInfo{
		RunID:       runID,
		CircuitID:   circuitID,
		CircuitName: circuitName,
		ActorRef:    req.ActorRef,
		Timestamp:   start.UnixMilli(),
		Inputs:      req.Inputs,
		Success:     result.Success,
		Output:      result.Output,
		Error:       result.Error,
		ExecutionMS: result.ExecutionMS,
		NodeErrors:  nodeErrors,
		Logs:        result.Logs,
	}); err != nil {
		// The execution already happened; losing the record is not a
		// reason to fail the request.
		result.Logs = append(result.Logs, engine.LogEntry{
			Timestamp: time.Now(),
			Level:     engine.LevelWarn,
			Event:     engine.EventExecuteCircuitComplete,
			Details:   map[string]any{"persist_error": err.Error()},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ExecuteResponse{
		RunID:       runID,
		Success:     result.Success,
		Output:      result.Output,
		Variables:   result.Variables,
		ExecutionMS: result.ExecutionMS,
		Logs:        result.Logs,
		Error:       result.Error,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(engine.Check(req.Circuit))
}

func (s *Server) handleCircuitList(w http.ResponseWriter, r *http.Request) {
	saved, err := s.circuits.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(saved)
}

func (s *Server) handleCircuitGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	circuit, err := s.circuits.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(circuit)
}

func (s *Server) handleCircuitSave(w http.ResponseWriter, r *http.Request) {
	var req SaveCircuitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	saved, err := s.circuits.Save(r.Context(), CircuitInfo{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Definition:  req.Circuit,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "id": saved.ID, "version": saved.Version})
}

func (s *Server) handleCircuitDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.circuits.Delete(r.Context(), req.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (s *Server) handleRunList(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runs.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RunListResponse{Runs: runs})
}

func (s *Server) handleRunGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, err := s.runs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

func (s *Server) handleRunDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.runs.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.runs.Summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
