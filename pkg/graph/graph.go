package graph

import "fmt"

// DesignGraph is the construction tree of one workspace. Nodes are only
// ever appended; hiding a consumed input changes its visibility, never the
// node itself.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Order     []NodeID          `json:"order"`
	NameIndex map[string]NodeID `json:"name_index"`
	Hidden    map[NodeID]bool   `json:"hidden,omitempty"`
	Version   uint64            `json:"version"`
}

// New creates an empty DesignGraph.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Hidden:    make(map[NodeID]bool),
	}
}

// AddNode appends a node. A node whose name is already indexed takes the
// name over; the previous holder is returned with ok set.
func (g *DesignGraph) AddNode(n *Node) (prev NodeID, ok bool) {
	if _, dup := g.Nodes[n.ID]; !dup {
		g.Order = append(g.Order, n.ID)
	}
	g.Nodes[n.ID] = n
	if n.Name != "" {
		prev, ok = g.NameIndex[n.Name]
		g.NameIndex[n.Name] = n.ID
	}
	g.Version++
	return prev, ok && prev != n.ID
}

// Lookup returns the node currently holding the given name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Inputs returns the input nodes of the given node.
func (g *DesignGraph) Inputs(n *Node) []*Node {
	inputs := make([]*Node, 0, len(n.Inputs))
	for _, id := range n.Inputs {
		if in := g.Nodes[id]; in != nil {
			inputs = append(inputs, in)
		}
	}
	return inputs
}

// Ordered returns the nodes in insertion order. Inputs always precede
// their consumers in a valid graph.
func (g *DesignGraph) Ordered() []*Node {
	out := make([]*Node, 0, len(g.Order))
	for _, id := range g.Order {
		if n := g.Nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Roots returns the nodes no other node consumes, in insertion order.
func (g *DesignGraph) Roots() []*Node {
	consumed := make(map[NodeID]bool)
	for _, n := range g.Nodes {
		for _, id := range n.Inputs {
			consumed[id] = true
		}
	}
	var roots []*Node
	for _, n := range g.Ordered() {
		if !consumed[n.ID] {
			roots = append(roots, n)
		}
	}
	return roots
}

// Hide marks a node invisible.
func (g *DesignGraph) Hide(id NodeID) {
	g.Hidden[id] = true
}

// Visible reports whether a node is shown.
func (g *DesignGraph) Visible(id NodeID) bool {
	return !g.Hidden[id]
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}

// CountKind returns how many nodes have the given kind.
func (g *DesignGraph) CountKind(k NodeKind) int {
	n := 0
	for _, node := range g.Nodes {
		if node.Kind == k {
			n++
		}
	}
	return n
}
