// Package graph holds the circuit graph model: the wire format accepted
// from authoring tools, the parsed in-memory graph with its lookup
// indexes, and a fluent builder for programmatic circuits.
package graph

import (
	"encoding/json"
	"fmt"
)

// RawNode is the wire shape of a node as emitted by the circuit editor.
// Handler configuration travels inside the data wrapper; the display
// label, when present, lives at data.label.
type RawNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position *Position      `json:"position,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// RawEdge is the wire shape of an edge. Handle keys are camelCase for
// compatibility with the React-Flow-based editor.
type RawEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Definition is a complete circuit definition in wire form.
type Definition struct {
	Nodes []RawNode `json:"nodes"`
	Edges []RawEdge `json:"edges"`
}

// Graph is the parsed, read-only form of a circuit. It owns the node
// and edge lists in declaration order plus three derived indexes.
// Build one per validation or execution request and discard it after.
type Graph struct {
	Nodes []*Node
	Edges []*Edge

	NodesByID     map[string]*Node
	EdgesBySource map[string][]*Edge
	EdgesByTarget map[string][]*Edge
}

// Parse builds a Graph from a wire definition. It is a pure function:
// missing optional fields default, and duplicate node ids silently keep
// the last declaration in the id index (the validator reports them).
func Parse(def Definition) *Graph {
	g := &Graph{
		Nodes:         make([]*Node, 0, len(def.Nodes)),
		Edges:         make([]*Edge, 0, len(def.Edges)),
		NodesByID:     make(map[string]*Node, len(def.Nodes)),
		EdgesBySource: make(map[string][]*Edge),
		EdgesByTarget: make(map[string][]*Edge),
	}

	for _, rn := range def.Nodes {
		node := &Node{
			ID:     rn.ID,
			Type:   NodeType(rn.Type),
			Config: rn.Data,
		}
		if node.Config == nil {
			node.Config = map[string]any{}
		}
		if rn.Position != nil {
			node.Position = *rn.Position
		}
		if label, ok := rn.Data["label"].(string); ok {
			node.Label = label
		}
		g.Nodes = append(g.Nodes, node)
		g.NodesByID[node.ID] = node
	}

	for _, re := range def.Edges {
		edge := &Edge{
			ID:           re.ID,
			Source:       re.Source,
			Target:       re.Target,
			SourceHandle: re.SourceHandle,
			TargetHandle: re.TargetHandle,
		}
		g.Edges = append(g.Edges, edge)
		g.EdgesBySource[edge.Source] = append(g.EdgesBySource[edge.Source], edge)
		g.EdgesByTarget[edge.Target] = append(g.EdgesByTarget[edge.Target], edge)
	}

	return g
}

// ParseJSON decodes a wire-format circuit and parses it.
func ParseJSON(raw []byte) (*Graph, error) {
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("decode circuit definition: %w", err)
	}
	return Parse(def), nil
}

// NodeByID looks a node up by id.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	n, ok := g.NodesByID[id]
	return n, ok
}

// Outgoing returns the edges leaving a node in declared order.
func (g *Graph) Outgoing(id string) []*Edge {
	return g.EdgesBySource[id]
}

// Incoming returns the edges arriving at a node in declared order.
func (g *Graph) Incoming(id string) []*Edge {
	return g.EdgesByTarget[id]
}

// EntryNodes returns the traversal roots: nodes with no incoming edges,
// in declaration order.
func (g *Graph) EntryNodes() []*Node {
	var entries []*Node
	for _, n := range g.Nodes {
		if len(g.EdgesByTarget[n.ID]) == 0 {
			entries = append(entries, n)
		}
	}
	return entries
}
