// Package kernel defines the abstract geometry kernel interface.
// Implementations realize solids, booleans and edge features behind this
// interface and own the edge enumeration of every solid they produce.
// The kernel abstraction allows swapping backends without changing the
// rest of the system.
package kernel

import (
	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/kernel/topo"
)

// ErrGeometryInfeasible is returned when a feature would self-intersect
// a solid or an input is degenerate.
var ErrGeometryInfeasible = topo.ErrInfeasible

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() geom.Box
	// Distance returns the signed distance to the surface; negative inside.
	Distance(p geom.Vec3) float64
	// Topology returns the kernel's edge enumeration for this solid.
	Topology() topo.Topology
}

// Kernel is the abstract geometry kernel interface.
// Primitives are built in their local frame; Place positions them.
type Kernel interface {
	// Primitives. Box has its min corner at the origin; Cylinder stands
	// on the origin along +Z; Extrusion sweeps a z=0 profile by offset;
	// Hexahedron takes the corners of a convex solid with planar faces.
	Box(size geom.Vec3) (Solid, error)
	Cylinder(radius, height float64) (Solid, error)
	Extrusion(profile []geom.Vec2, offset geom.Vec3) (Solid, error)
	Hexahedron(corners topo.Hex) (Solid, error)
	Ellipsoid(radii geom.Vec3, lat1, lat2, lon float64) (Solid, error)

	// Boolean operations
	Union(solids ...Solid) (Solid, error)
	Difference(base, tool Solid) (Solid, error)

	// Transforms
	Place(s Solid, p geom.Placement) Solid
	Mirror(s Solid, plane geom.Plane) Solid

	// Edge features
	Fillet(s Solid, edges []topo.Feature) (Solid, error)
	Chamfer(s Solid, edges []topo.Feature) (Solid, error)

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
