// Package topo defines the deterministic edge and face enumeration the
// geometry kernel assigns to every solid it builds.
//
// Indices are 1-based and depend on how a solid was built: which
// primitive, which booleans, in which order. Construction scripts program
// against this numbering; it is never inferred from dimensions alone.
// The numbering follows the host convention for primitives (a box edge 1
// runs from the origin up +Z, edges 1,3,5,7 are the vertical edges) and
// applies fixed rules for derived solids:
//
//   - Fuse concatenates the inputs' edges in input order, dropping edges
//     that lie strictly inside another input.
//   - Cut keeps the base edges outside the tool, then appends the tool
//     edges that lie inside the base, now concave.
//   - Fillet and chamfer replace each selected edge, in place, by the two
//     boundary edges of the new face, so later indices shift.
//   - Place and mirror keep the order.
//
// Intersection curves created by booleans are not enumerated.
package topo

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/printparts/pkg/geom"
)

// ErrInfeasible reports a feature that would self-intersect the solid or
// that the edge geometry cannot carry.
var ErrInfeasible = errors.New("geometry infeasible")

// insideEps is the depth below which a point counts as strictly inside.
const insideEps = 1e-6

// EdgeKind distinguishes edge curve types.
type EdgeKind int

const (
	Line   EdgeKind = iota // straight segment
	Circle                 // full circle
	Curve                  // free-form curve (ellipse, meridian)
)

func (k EdgeKind) String() string {
	switch k {
	case Line:
		return "line"
	case Circle:
		return "circle"
	case Curve:
		return "curve"
	default:
		return "unknown"
	}
}

// Edge is one boundary edge of a solid.
//
// In holds, for each of the two adjacent faces, the unit direction lying in
// that face, perpendicular to the edge, pointing away from it. Reach is how
// far the face extends in that direction. For circle edges both are given
// at Start, in the half-plane spanned by the radial direction and Axis.
type Edge struct {
	Kind    EdgeKind
	Start   geom.Vec3
	End     geom.Vec3
	Mid     geom.Vec3 // a point halfway along the edge
	In      [2]geom.Vec3
	Reach   [2]float64
	Faces   [2]int
	Concave bool // material lies outside the angle between In[0] and In[1]
	Smooth  bool // the adjacent faces meet tangentially

	Center geom.Vec3 // circle edges only
	Axis   geom.Vec3
	Radius float64
}

// Length returns the edge length.
func (e Edge) Length() float64 {
	switch e.Kind {
	case Circle:
		return 2 * math.Pi * e.Radius
	case Curve:
		return e.Start.Distance(e.Mid) + e.Mid.Distance(e.End)
	default:
		return e.Start.Distance(e.End)
	}
}

// Direction returns the unit tangent of a line edge, or the tangent at
// Start for a circle edge.
func (e Edge) Direction() geom.Vec3 {
	if e.Kind == Circle {
		return e.Axis.Cross(e.Ref())
	}
	return e.End.Sub(e.Start).Normalize()
}

// Ref returns the unit radial direction from Center to Start.
func (e Edge) Ref() geom.Vec3 {
	return e.Start.Sub(e.Center).Normalize()
}

// Angle returns the angle in radians between the two in-face directions.
func (e Edge) Angle() float64 {
	d := math.Max(-1, math.Min(1, e.In[0].Dot(e.In[1])))
	return math.Acos(d)
}

// Transform returns the edge moved by a placement.
func (e Edge) Transform(p geom.Placement) Edge {
	out := e
	out.Start, out.End, out.Mid = p.Apply(e.Start), p.Apply(e.End), p.Apply(e.Mid)
	out.In = [2]geom.Vec3{p.ApplyVector(e.In[0]), p.ApplyVector(e.In[1])}
	if e.Kind == Circle {
		out.Center = p.Apply(e.Center)
		out.Axis = p.ApplyVector(e.Axis)
	}
	return out
}

// Reflect returns the edge mirrored through a plane.
func (e Edge) Reflect(pl geom.Plane) Edge {
	out := e
	out.Start, out.End, out.Mid = pl.Reflect(e.Start), pl.Reflect(e.End), pl.Reflect(e.Mid)
	out.In = [2]geom.Vec3{pl.ReflectVector(e.In[0]), pl.ReflectVector(e.In[1])}
	if e.Kind == Circle {
		out.Center = pl.Reflect(e.Center)
		out.Axis = pl.ReflectVector(e.Axis)
	}
	return out
}

func (e Edge) String() string {
	return fmt.Sprintf("%s %v→%v faces=%v", e.Kind, e.Start, e.End, e.Faces)
}

// Topology is the enumerated boundary of a solid.
type Topology struct {
	Edges []Edge
	Faces int
}

// EdgeCount returns the number of edges.
func (t Topology) EdgeCount() int {
	return len(t.Edges)
}

// Edge returns the edge with the given 1-based index.
func (t Topology) Edge(i int) (Edge, bool) {
	if i < 1 || i > len(t.Edges) {
		return Edge{}, false
	}
	return t.Edges[i-1], true
}

// Transform returns the topology moved by a placement.
func (t Topology) Transform(p geom.Placement) Topology {
	out := Topology{Edges: make([]Edge, len(t.Edges)), Faces: t.Faces}
	for i, e := range t.Edges {
		out.Edges[i] = e.Transform(p)
	}
	return out
}

// Mirror returns the topology reflected through a plane.
func (t Topology) Mirror(pl geom.Plane) Topology {
	out := Topology{Edges: make([]Edge, len(t.Edges)), Faces: t.Faces}
	for i, e := range t.Edges {
		out.Edges[i] = e.Reflect(pl)
	}
	return out
}

// Classifier reports the signed distance from a point to a solid's
// surface; negative values are inside.
type Classifier interface {
	Distance(p geom.Vec3) float64
}

func strictlyInside(c Classifier, p geom.Vec3) bool {
	return c.Distance(p) < -insideEps
}

func offsetFaces(e Edge, off int) Edge {
	e.Faces = [2]int{e.Faces[0] + off, e.Faces[1] + off}
	return e
}

// Fuse enumerates the union of parts. cls[i] classifies parts[i].
func Fuse(parts []Topology, cls []Classifier) Topology {
	var out Topology
	for i, t := range parts {
		for _, e := range t.Edges {
			buried := false
			for j, c := range cls {
				if j != i && strictlyInside(c, e.Mid) {
					buried = true
					break
				}
			}
			if !buried {
				out.Edges = append(out.Edges, offsetFaces(e, out.Faces))
			}
		}
		out.Faces += t.Faces
	}
	return out
}

// Cut enumerates base minus tool.
func Cut(base, tool Topology, baseCls, toolCls Classifier) Topology {
	out := Topology{Faces: base.Faces + tool.Faces}
	for _, e := range base.Edges {
		if !strictlyInside(toolCls, e.Mid) {
			out.Edges = append(out.Edges, e)
		}
	}
	for _, e := range tool.Edges {
		if strictlyInside(baseCls, e.Mid) {
			e = offsetFaces(e, base.Faces)
			e.Concave = !e.Concave
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}
