package graph

import "github.com/chazu/printparts/pkg/geom"

// NodeKind enumerates the types of nodes in the construction tree.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // box, cylinder, prism, wedge, ellipsoid, extrusion
	NodePlace                     // rigid re-placement of one input
	NodeFuse                      // union of two or more inputs
	NodeCut                       // base minus tool
	NodeMirror                    // reflection of one input
	NodeFillet                    // rounded edges
	NodeChamfer                   // bevelled edges
	NodeArray                     // orthogonal replication
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodePlace:
		return "place"
	case NodeFuse:
		return "fuse"
	case NodeCut:
		return "cut"
	case NodeMirror:
		return "mirror"
	case NodeFillet:
		return "fillet"
	case NodeChamfer:
		return "chamfer"
	case NodeArray:
		return "array"
	default:
		return "unknown"
	}
}

// arity returns the exact number of inputs a kind takes, or -1 for
// "two or more".
func (k NodeKind) arity() int {
	switch k {
	case NodePrimitive:
		return 0
	case NodeFuse:
		return -1
	case NodeCut:
		return 2
	default:
		return 1
	}
}

// Node is the fundamental element of the construction tree.
type Node struct {
	ID        NodeID         `json:"id"`
	Kind      NodeKind       `json:"kind"`
	Name      string         `json:"name,omitempty"`
	Placement geom.Placement `json:"placement"`
	Inputs    []NodeID       `json:"inputs,omitempty"`
	Data      NodeData       `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
