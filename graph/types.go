package graph

import "github.com/hubenschmidt/go-circuitry/core"

// NodeType tags a node with the handler that executes it. Types are
// open-ended strings rather than a closed enum: circuit authors can
// introduce new types and the engine treats unrecognized ones as
// pass-throughs.
type NodeType string

const (
	NodeInput             NodeType = "input_node"
	NodeVariableProcessor NodeType = "variable_processor"
	NodeConditional       NodeType = "conditional"
	NodePromptBuilder     NodeType = "prompt_builder"
	NodeLLMConnector      NodeType = "llm_connector"
	NodeOutput            NodeType = "output_node"
	NodeSystemPrompt      NodeType = "system_prompt"
	NodeLoreInjection     NodeType = "lore_injection"
)

// Position holds canvas coordinates for rendering. The engine ignores it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a typed unit of work in a circuit.
type Node struct {
	ID       string         `json:"id"`
	Type     NodeType       `json:"type"`
	Label    string         `json:"label,omitempty"`
	Position Position       `json:"position,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
}

// ConfigString reads a config value as a string, empty if absent.
func (n *Node) ConfigString(key string) string {
	v, ok := n.Config[key]
	if !ok || v == nil {
		return ""
	}
	return core.Str(v)
}

// ConfigInt reads a config value as an int, falling back to def when
// the key is absent or not numeric. JSON decoding yields float64.
func (n *Node) ConfigInt(key string, def int) int {
	switch v := n.Config[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// Edge is a directed connection between two nodes. TargetHandle carries
// branch semantics ("true"/"false") on edges leaving conditional nodes.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}
