package engine

import (
	"strings"

	"github.com/hubenschmidt/go-circuitry/core"
	"github.com/hubenschmidt/go-circuitry/graph"
)

// EvaluateCondition matches a conditional node's expression against the
// variable bindings.
//
// The supported grammar is exactly one form: `left == right`. The first
// `==` splits the expression and both operands are trimmed. When the
// left operand names a known variable, its value is compared as a
// string against the right operand with wrapping single or double
// quotes stripped; otherwise the two trimmed operands are compared
// literally, quotes included. An expression without `==` evaluates to
// true.
//
// There is no support for &&, ||, !=, numeric comparison, or nesting.
func EvaluateCondition(expr string, variables map[string]any) bool {
	if !strings.Contains(expr, "==") {
		return true
	}

	parts := strings.SplitN(expr, "==", 2)
	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])

	if v, ok := variables[left]; ok {
		return core.Str(v) == stripQuotes(right)
	}
	return left == right
}

// followEdge applies the branch-following rule. Edges leaving a
// conditional node are gated on the freshest condition_result via their
// target handle: "true" follows on a truthy result, "false" on a falsy
// one, and any other handle (or none) is an unconditional default edge.
// Edges leaving every other node type are always followed.
func followEdge(origin *graph.Node, edge *graph.Edge, variables map[string]any) bool {
	if origin == nil || origin.Type != graph.NodeConditional {
		return true
	}
	switch edge.TargetHandle {
	case "true":
		return core.Truthy(variables["condition_result"])
	case "false":
		return !core.Truthy(variables["condition_result"])
	default:
		return true
	}
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
