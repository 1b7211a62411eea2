package graph

import "fmt"

// Builder assembles a wire-format circuit definition fluently.
//
//	def := graph.NewBuilder().
//	    Node("in", graph.NodeInput).Done().
//	    Node("p", graph.NodePromptBuilder).Config("template", "Hi {{name}}").Done().
//	    Edge("in", "p").
//	    Build()
type Builder struct {
	def   Definition
	edges int
}

// NodeBuilder configures a single node before handing control back to
// its parent Builder.
type NodeBuilder struct {
	builder *Builder
	node    RawNode
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Node starts a node with the given id and type.
func (b *Builder) Node(id string, nodeType NodeType) *NodeBuilder {
	return &NodeBuilder{
		builder: b,
		node: RawNode{
			ID:   id,
			Type: string(nodeType),
			Data: map[string]any{},
		},
	}
}

// Edge adds an unconditional edge from source to target.
func (b *Builder) Edge(source, target string) *Builder {
	return b.BranchEdge(source, target, "")
}

// BranchEdge adds an edge with a target handle; use "true"/"false" on
// edges leaving a conditional node.
func (b *Builder) BranchEdge(source, target, handle string) *Builder {
	b.edges++
	b.def.Edges = append(b.def.Edges, RawEdge{
		ID:           fmt.Sprintf("e%d", b.edges),
		Source:       source,
		Target:       target,
		TargetHandle: handle,
	})
	return b
}

// Build returns the assembled definition.
func (b *Builder) Build() Definition {
	return b.def
}

// Config sets one handler config key on the node.
func (n *NodeBuilder) Config(key string, val any) *NodeBuilder {
	n.node.Data[key] = val
	return n
}

// Label sets the display label.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Data["label"] = label
	return n
}

// Done appends the node and returns the parent builder.
func (n *NodeBuilder) Done() *Builder {
	n.builder.def.Nodes = append(n.builder.def.Nodes, n.node)
	return n.builder
}
