package engine

import (
	"fmt"

	"github.com/hubenschmidt/go-circuitry/graph"
)

// Validation error messages surfaced to circuit authors.
const (
	msgNoEntryNode = "Circuit must have at least one entry node."
	msgHasCycles   = "Circuit contains cycles (infinite loops)"
)

// Validate runs the structural checks on a parsed circuit and returns
// every error found; an empty slice means the circuit is valid. It does
// not short-circuit, except that cycles are reported at most once per
// call.
func Validate(g *graph.Graph) []string {
	var errs []string

	if len(g.EntryNodes()) == 0 {
		errs = append(errs, msgNoEntryNode)
	}

	if hasCycle(g) {
		errs = append(errs, msgHasCycles)
	}

	errs = append(errs, duplicateIDs(g)...)

	for _, n := range g.Nodes {
		errs = append(errs, checkNodeConfig(n)...)
	}

	return errs
}

// Check parses a definition and validates it, returning the envelope
// the editor uses to lint circuits before saving. It never executes
// anything.
func Check(def graph.Definition) ValidationResult {
	g := graph.Parse(def)
	errs := Validate(g)
	return ValidationResult{
		Valid:     len(errs) == 0,
		Errors:    errs,
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
	}
}

// hasCycle runs a white/gray/black DFS over the outgoing-edge index.
// One back-edge is enough; the scan stops at the first cycle found.
func hasCycle(g *graph.Graph) bool {
	visited := make(map[string]bool, len(g.Nodes))
	inStack := make(map[string]bool)

	var visit func(id string) bool
	visit = func(id string) bool {
		visited[id] = true
		inStack[id] = true
		for _, e := range g.Outgoing(id) {
			if _, ok := g.NodeByID(e.Target); !ok {
				continue
			}
			if inStack[e.Target] {
				return true
			}
			if !visited[e.Target] && visit(e.Target) {
				return true
			}
		}
		inStack[id] = false
		return false
	}

	for _, n := range g.Nodes {
		if !visited[n.ID] && visit(n.ID) {
			return true
		}
	}
	return false
}

// duplicateIDs flags node ids declared more than once. The parser keeps
// the last declaration; this diagnostic gives authors the feedback
// without rejecting legacy circuits outright.
func duplicateIDs(g *graph.Graph) []string {
	seen := make(map[string]int, len(g.Nodes))
	var errs []string
	for _, n := range g.Nodes {
		seen[n.ID]++
		if seen[n.ID] == 2 {
			errs = append(errs, fmt.Sprintf("Duplicate node id: %s", n.ID))
		}
	}
	return errs
}

// checkNodeConfig enforces per-type required fields. The true_path and
// false_path markers on conditionals are legacy: runtime branching is
// edge-handle driven, but their presence is still checked so authors
// migrating old circuits get a useful message. Unknown node types pass
// silently.
func checkNodeConfig(n *graph.Node) []string {
	var errs []string
	switch n.Type {
	case graph.NodeConditional:
		if _, ok := n.Config["condition"]; !ok {
			errs = append(errs, fmt.Sprintf("Node %s: conditional node requires a condition", n.ID))
		}
		_, hasTrue := n.Config["true_path"]
		_, hasFalse := n.Config["false_path"]
		if !hasTrue && !hasFalse {
			errs = append(errs, fmt.Sprintf("Node %s: conditional node requires a true_path or false_path", n.ID))
		}
	case graph.NodeLLMConnector:
		if n.ConfigString("provider") == "" {
			errs = append(errs, fmt.Sprintf("Node %s: llm_connector node requires a provider", n.ID))
		}
		if n.ConfigString("model") == "" {
			errs = append(errs, fmt.Sprintf("Node %s: llm_connector node requires a model", n.ID))
		}
	case graph.NodePromptBuilder:
		if n.ConfigString("template") == "" {
			errs = append(errs, fmt.Sprintf("Node %s: prompt_builder node requires a template", n.ID))
		}
	}
	return errs
}
