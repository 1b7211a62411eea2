// Package engine interprets circuit graphs: it validates them, walks
// them from their entry nodes, dispatches per-type node handlers, and
// aggregates text output, variable bindings, and a structured event log
// into a result envelope.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hubenschmidt/go-circuitry/graph"
	"github.com/hubenschmidt/go-circuitry/llm"
	"github.com/hubenschmidt/go-circuitry/lore"
	"github.com/hubenschmidt/go-circuitry/monitor"
)

// previewLimit caps the result preview stored in node-complete log
// entries so a chatty node cannot bloat the log.
const previewLimit = 200

// Engine executes circuits. It holds no per-run state: one Engine may
// serve concurrent runs, each getting its own Graph and Context.
type Engine struct {
	caller    llm.Caller
	lore      lore.Query
	collector monitor.Collector
	handlers  map[string]Handler
}

// EngineConfig wires the engine's collaborators. All fields are
// optional: without a Caller the llm_connector node errors at
// execution, without a Lore source the lore_injection node does, and a
// nil Collector disables metrics. Handlers overrides or extends the
// built-in node handler registry.
type EngineConfig struct {
	Caller    llm.Caller
	Lore      lore.Query
	Collector monitor.Collector
	Handlers  map[string]Handler
}

func New(cfg EngineConfig) *Engine {
	collector := cfg.Collector
	if collector == nil {
		collector = monitor.NewNoOpCollector()
	}

	e := &Engine{
		caller:    cfg.Caller,
		lore:      cfg.Lore,
		collector: collector,
	}

	e.handlers = e.defaultHandlers()
	for name, h := range cfg.Handlers {
		e.handlers[name] = h
	}
	return e
}

// RunJSON decodes a wire-format definition and runs it. A malformed
// definition produces a failed envelope, never an error.
func (e *Engine) RunJSON(ctx context.Context, raw []byte, inputs map[string]any, actorRef string) ExecutionResult {
	start := time.Now()
	g, err := graph.ParseJSON(raw)
	if err != nil {
		return failedResult(err.Error(), inputs, start)
	}
	return e.run(ctx, g, inputs, actorRef, start)
}

// Run executes a circuit definition with the given input bindings and
// optional actor reference. It always returns a result envelope:
// structural problems (validation failure) yield Success=false with no
// node executed, while individual node errors are isolated, logged at
// ERROR level, and leave Success=true.
func (e *Engine) Run(ctx context.Context, def graph.Definition, inputs map[string]any, actorRef string) ExecutionResult {
	return e.run(ctx, graph.Parse(def), inputs, actorRef, time.Now())
}

func (e *Engine) run(ctx context.Context, g *graph.Graph, inputs map[string]any, actorRef string, start time.Time) ExecutionResult {
	if errs := Validate(g); len(errs) > 0 {
		return failedResult(strings.Join(errs, "; "), inputs, start)
	}

	ec := NewContext(inputs)
	ec.Record(EventExecuteCircuit, map[string]any{"inputs": ec.Snapshot()}, LevelInfo)

	log.Printf("[engine] executing circuit: %d nodes, %d edges", len(g.Nodes), len(g.Edges))

	executed := make(map[string]bool, len(g.Nodes))
	for _, entry := range g.EntryNodes() {
		e.traverse(ctx, g, entry, ec, executed, actorRef)
	}

	output := strings.Join(ec.Output(), "\n")
	elapsed := elapsedMS(start)

	ec.clearCurrentNode()
	ec.Record(EventExecuteCircuitComplete, map[string]any{
		"execution_ms":   elapsed,
		"output":         output,
		"variable_count": len(ec.Variables),
	}, LevelInfo)

	log.Printf("[engine] circuit complete in %.1fms, %d nodes executed", elapsed, len(executed))

	return ExecutionResult{
		Success:     true,
		Output:      output,
		Variables:   ec.Snapshot(),
		ExecutionMS: elapsedMS(start),
		Logs:        ec.Logs(),
	}
}

// edgeFrame is one pending traversal step: an edge waiting to be
// followed, paired with the node it leaves.
type edgeFrame struct {
	origin *graph.Node
	edge   *graph.Edge
}

// traverse walks everything reachable from one entry node. The worklist
// is an explicit LIFO stack rather than recursion, so deep circuits
// cannot exhaust the call stack; edges are pushed in reverse declared
// order and the branch decision is taken when a frame is popped, which
// reproduces declared-order depth-first traversal exactly, including
// branch rules seeing variable writes from earlier sibling subtrees.
func (e *Engine) traverse(ctx context.Context, g *graph.Graph, entry *graph.Node, ec *Context, executed map[string]bool, actorRef string) {
	var stack []edgeFrame
	e.visit(ctx, g, entry, ec, executed, actorRef, &stack)

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !followEdge(frame.origin, frame.edge, ec.Variables) {
			continue
		}

		// Dangling targets are tolerated: the edge is simply not descended.
		target, ok := g.NodeByID(frame.edge.Target)
		if !ok {
			continue
		}
		e.visit(ctx, g, target, ec, executed, actorRef, &stack)
	}
}

// visit executes a single node behind the run-scoped re-entry guard and
// pushes its outgoing edges. The guard makes visits idempotent: a node
// reachable from two entry points or two converging branches executes
// at most once per run, and even an invalid cyclic graph cannot loop.
func (e *Engine) visit(ctx context.Context, g *graph.Graph, node *graph.Node, ec *Context, executed map[string]bool, actorRef string, stack *[]edgeFrame) {
	if executed[node.ID] {
		return
	}
	executed[node.ID] = true
	ec.setCurrentNode(node.ID)

	ec.Record(EventExecuteNodeStart, map[string]any{"node_type": string(node.Type)}, LevelInfo)

	nodeStart := time.Now()
	result, err := e.dispatch(ctx, node, ec, actorRef)
	nodeElapsed := elapsedMS(nodeStart)

	if err != nil {
		// Node failures are isolated: log, skip the node's downstream
		// edges, and let sibling branches keep running.
		log.Printf("[engine] node %s failed: %v", node.ID, err)
		ec.Record(EventExecuteNodeError, map[string]any{
			"error":        err.Error(),
			"execution_ms": nodeElapsed,
		}, LevelError)
		e.collector.Record(monitor.NodeMetrics{
			NodeID:     node.ID,
			NodeType:   string(node.Type),
			DurationMS: nodeElapsed,
			Success:    false,
			Error:      err.Error(),
		})
		return
	}

	if result.Output != "" {
		ec.AppendOutput(result.Output)
	}
	if result.Variables != nil {
		ec.Merge(result.Variables)
	}

	ec.Record(EventExecuteNodeComplete, map[string]any{
		"execution_ms": nodeElapsed,
		"result":       preview(result),
	}, LevelInfo)
	e.collector.Record(monitor.NodeMetrics{
		NodeID:     node.ID,
		NodeType:   string(node.Type),
		DurationMS: nodeElapsed,
		Success:    true,
	})

	edges := g.Outgoing(node.ID)
	for i := len(edges) - 1; i >= 0; i-- {
		*stack = append(*stack, edgeFrame{origin: node, edge: edges[i]})
	}
}

func (e *Engine) dispatch(ctx context.Context, node *graph.Node, ec *Context, actorRef string) (HandlerResult, error) {
	handler, ok := e.handlers[string(node.Type)]
	if !ok {
		// Unknown node types forward the bindings untouched.
		handler = e.executeInput
	}
	return handler(ctx, node, ec, actorRef)
}

func failedResult(msg string, inputs map[string]any, start time.Time) ExecutionResult {
	vars := make(map[string]any, len(inputs))
	for k, v := range inputs {
		vars[k] = v
	}
	return ExecutionResult{
		Success:     false,
		Variables:   vars,
		ExecutionMS: elapsedMS(start),
		Logs:        []LogEntry{},
		Error:       msg,
	}
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

func preview(result HandlerResult) string {
	s := result.Output
	if s == "" && result.Variables != nil {
		s = fmt.Sprintf("%v", result.Variables)
	}
	if len(s) > previewLimit {
		// Back up to a rune boundary so the cut never splits a
		// multi-byte character.
		cut := previewLimit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	return s
}
