package topo

import (
	"fmt"
	"math"

	"github.com/chazu/printparts/pkg/geom"
)

// FeatureKind selects the edge treatment.
type FeatureKind int

const (
	Fillet  FeatureKind = iota // circular blend
	Chamfer                    // flat bevel
)

func (k FeatureKind) String() string {
	if k == Chamfer {
		return "chamfer"
	}
	return "fillet"
}

// Feature selects one edge by 1-based index. For a fillet Size1 and Size2
// are the radii at the start and end of the edge; for a chamfer they are
// the setbacks on the first and second adjacent face.
type Feature struct {
	Index int
	Size1 float64
	Size2 float64
}

// minFaceAngle and maxFaceAngle bound the dihedral angles a feature can
// blend, in radians.
const (
	minFaceAngle = math.Pi / 180
	maxFaceAngle = math.Pi - math.Pi/180
)

// Setbacks returns how far the feature's boundary lies from the edge
// along In[0] and In[1] at parameter u in [0, 1] along the edge.
func (e Edge) Setbacks(kind FeatureKind, size1, size2, u float64) (float64, float64) {
	if kind == Chamfer {
		return size1, size2
	}
	r := size1 + (size2-size1)*u
	t := r / math.Tan(e.Angle()/2)
	return t, t
}

func maxSetbacks(e Edge, kind FeatureKind, f Feature) (float64, float64) {
	a0, a1 := e.Setbacks(kind, f.Size1, f.Size2, 0)
	b0, b1 := e.Setbacks(kind, f.Size1, f.Size2, 1)
	return math.Max(a0, b0), math.Max(a1, b1)
}

// CheckFeatures verifies that every feature can be carried by t.
// The returned error wraps ErrInfeasible.
func CheckFeatures(t Topology, kind FeatureKind, feats []Feature) error {
	for _, f := range feats {
		e, ok := t.Edge(f.Index)
		if !ok {
			return fmt.Errorf("edge %d: no such edge among %d: %w", f.Index, t.EdgeCount(), ErrInfeasible)
		}
		switch {
		case e.Kind == Curve:
			return fmt.Errorf("edge %d: %s on a free-form curve: %w", f.Index, kind, ErrInfeasible)
		case e.Smooth:
			return fmt.Errorf("edge %d: %s on a tangent seam: %w", f.Index, kind, ErrInfeasible)
		}
		if a := e.Angle(); a < minFaceAngle || a > maxFaceAngle {
			return fmt.Errorf("edge %d: faces meet at %.1f°: %w", f.Index, a*180/math.Pi, ErrInfeasible)
		}
		t0, t1 := maxSetbacks(e, kind, f)
		if t0 >= e.Reach[0]-geom.Eps || t1 >= e.Reach[1]-geom.Eps {
			return fmt.Errorf("edge %d: %s of %g/%g needs setbacks %.3f/%.3f but faces reach %.3f/%.3f: %w",
				f.Index, kind, f.Size1, f.Size2, t0, t1, e.Reach[0], e.Reach[1], ErrInfeasible)
		}
	}
	return checkOverlaps(t, kind, feats)
}

// checkOverlaps rejects two parallel line edges on a shared face whose
// setbacks meet or cross.
func checkOverlaps(t Topology, kind FeatureKind, feats []Feature) error {
	for i := 0; i < len(feats); i++ {
		a, _ := t.Edge(feats[i].Index)
		if a.Kind != Line {
			continue
		}
		for j := i + 1; j < len(feats); j++ {
			b, _ := t.Edge(feats[j].Index)
			if b.Kind != Line || math.Abs(a.Direction().Dot(b.Direction())) < 1-1e-9 {
				continue
			}
			for sa := 0; sa < 2; sa++ {
				for sb := 0; sb < 2; sb++ {
					if a.Faces[sa] != b.Faces[sb] {
						continue
					}
					ta := maxSetbackOn(a, kind, feats[i], sa)
					tb := maxSetbackOn(b, kind, feats[j], sb)
					gap := lineGap(a, b)
					if ta+tb >= gap-geom.Eps {
						return fmt.Errorf("edges %d and %d: setbacks %.3f+%.3f exceed their %.3f spacing on face %d: %w",
							feats[i].Index, feats[j].Index, ta, tb, gap, a.Faces[sa], ErrInfeasible)
					}
				}
			}
		}
	}
	return nil
}

func maxSetbackOn(e Edge, kind FeatureKind, f Feature, side int) float64 {
	t0, t1 := maxSetbacks(e, kind, f)
	if side == 0 {
		return t0
	}
	return t1
}

// lineGap returns the distance between two parallel lines.
func lineGap(a, b Edge) float64 {
	d := a.Direction()
	v := b.Start.Sub(a.Start)
	return v.Sub(d.Scale(v.Dot(d))).Length()
}

// ApplyFeatures enumerates t after the features. Each selected edge is
// replaced in place by the boundary edge on its first face, then the one
// on its second face; the new face gets the next free face number.
func ApplyFeatures(t Topology, kind FeatureKind, feats []Feature) (Topology, error) {
	if err := CheckFeatures(t, kind, feats); err != nil {
		return Topology{}, err
	}
	byIndex := make(map[int]Feature, len(feats))
	for _, f := range feats {
		byIndex[f.Index] = f
	}

	out := Topology{Faces: t.Faces}
	for i, e := range t.Edges {
		f, ok := byIndex[i+1]
		if !ok {
			out.Edges = append(out.Edges, e)
			continue
		}
		out.Faces++
		b0, b1 := boundaryEdges(e, kind, f, out.Faces)
		out.Edges = append(out.Edges, b0, b1)
	}
	return out, nil
}

func boundaryEdges(e Edge, kind FeatureKind, f Feature, face int) (Edge, Edge) {
	s0, s1 := e.Setbacks(kind, f.Size1, f.Size2, 0)
	e0, e1 := e.Setbacks(kind, f.Size1, f.Size2, 1)
	m0, m1 := e.Setbacks(kind, f.Size1, f.Size2, 0.5)

	shift := func(side int, ts, te, tm float64) Edge {
		b := e
		dir := e.In[side]
		b.Start = e.Start.Add(dir.Scale(ts))
		b.End = e.End.Add(dir.Scale(te))
		b.Mid = e.Mid.Add(dir.Scale(tm))
		if e.Kind == Circle {
			b.End = b.Start
			moved := e.Start.Add(dir.Scale(ts))
			axial := moved.Sub(e.Center).Dot(e.Axis)
			b.Center = e.Center.Add(e.Axis.Scale(axial))
			b.Radius = moved.Sub(b.Center).Length()
			b.Mid = b.Center.Sub(e.Ref().Scale(b.Radius))
		}
		return b
	}
	p0 := e.Start.Add(e.In[0].Scale(s0))
	p1 := e.Start.Add(e.In[1].Scale(s1))
	chord := p1.Sub(p0)

	b0 := shift(0, s0, e0, m0)
	b0.Faces = [2]int{e.Faces[0], face}
	b0.In = [2]geom.Vec3{e.In[0], chord.Normalize()}
	b0.Reach = [2]float64{e.Reach[0] - math.Max(s0, e0), chord.Length()}
	b0.Smooth = kind == Fillet

	b1 := shift(1, s1, e1, m1)
	b1.Faces = [2]int{e.Faces[1], face}
	b1.In = [2]geom.Vec3{e.In[1], chord.Neg().Normalize()}
	b1.Reach = [2]float64{e.Reach[1] - math.Max(s1, e1), chord.Length()}
	b1.Smooth = kind == Fillet

	return b0, b1
}
