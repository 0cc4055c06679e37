package workspace

import (
	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/graph"
	"github.com/chazu/printparts/pkg/kernel"
	"github.com/chazu/printparts/pkg/kernel/topo"
)

// Solid is an immutable handle to one construction step's result.
// Downstream steps never change it; consuming it only hides it.
type Solid struct {
	ws        *Workspace
	id        graph.NodeID
	name      string
	kind      string
	placement geom.Placement
	lineage   string
	shape     kernel.Solid
}

// ID returns the construction tree node of the solid.
func (s *Solid) ID() graph.NodeID { return s.id }

// Name returns the solid's name in its workspace.
func (s *Solid) Name() string { return s.name }

// Kind names the step that built the solid: box, fuse, fillet, ...
func (s *Solid) Kind() string { return s.kind }

// Placement returns the placement the solid was built with.
func (s *Solid) Placement() geom.Placement { return s.placement }

// Lineage returns the structural fingerprint of the construction sequence
// that produced the solid, for example "fillet[1,3,5,7](box)". Dimensions
// and placements are not part of it.
func (s *Solid) Lineage() string { return s.lineage }

// Shape returns the realized kernel solid.
func (s *Solid) Shape() kernel.Solid { return s.shape }

// BoundingBox returns the world-space bounding box.
func (s *Solid) BoundingBox() geom.Box { return s.shape.BoundingBox() }

// Topology returns the kernel's edge enumeration.
func (s *Solid) Topology() topo.Topology { return s.shape.Topology() }

// EdgeCount returns the number of enumerated edges.
func (s *Solid) EdgeCount() int { return s.shape.Topology().EdgeCount() }

// Edge returns the edge with the given 1-based index.
func (s *Solid) Edge(i int) (topo.Edge, bool) { return s.shape.Topology().Edge(i) }

// Contains reports whether p lies strictly inside the solid.
func (s *Solid) Contains(p geom.Vec3) bool { return s.shape.Distance(p) < 0 }

// Visible reports whether the solid is shown, meaning no later step
// consumed it.
func (s *Solid) Visible() bool { return s.ws.graph.Visible(s.id) }

func (s *Solid) String() string { return s.kind + " " + s.name }
