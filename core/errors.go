package core

import (
	"errors"
	"fmt"
)

var (
	ErrNodeNotFound    = errors.New("node not found")
	ErrCircuitNotFound = errors.New("circuit not found")
	ErrInvalidCircuit  = errors.New("invalid circuit")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrExecutionFailed = errors.New("execution failed")
	ErrCyclicCircuit   = errors.New("cyclic circuit detected")
	ErrNoProvider      = errors.New("no LLM provider configured")
	ErrLLMRequest      = errors.New("LLM request failed")
)

type CircuitError struct {
	Op      string
	Node    string
	Err     error
	Context map[string]any
}

func (e *CircuitError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s [node=%s]: %v", e.Op, e.Node, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CircuitError) Unwrap() error {
	return e.Err
}

func NewCircuitError(op, node string, err error) *CircuitError {
	return &CircuitError{Op: op, Node: node, Err: err}
}

func WithContext(err *CircuitError, key string, val any) *CircuitError {
	if err.Context == nil {
		err.Context = make(map[string]any)
	}
	err.Context[key] = val
	return err
}
