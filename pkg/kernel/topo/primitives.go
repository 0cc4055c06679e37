package topo

import (
	"math"

	"github.com/chazu/printparts/pkg/geom"
)

// Hex holds the eight corners of a hexahedron indexed [i][j][k], where
// i, j and k select the low or high end along the local x, y and z axes.
type Hex [2][2][2]geom.Vec3

// hexEdges lists the hexahedron edges in enumeration order: the varying
// axis and the fixed index on the other two axes.
var hexEdges = [12]struct {
	along int
	fixed [3]int
}{
	{2, [3]int{0, 0, 0}}, {1, [3]int{0, 0, 1}}, {2, [3]int{0, 1, 0}}, {1, [3]int{0, 0, 0}},
	{2, [3]int{1, 0, 0}}, {1, [3]int{1, 0, 1}}, {2, [3]int{1, 1, 0}}, {1, [3]int{1, 0, 0}},
	{0, [3]int{0, 0, 0}}, {0, [3]int{0, 0, 1}}, {0, [3]int{0, 1, 0}}, {0, [3]int{0, 1, 1}},
}

func (h Hex) at(idx [3]int) geom.Vec3 {
	return h[idx[0]][idx[1]][idx[2]]
}

// Hexahedron enumerates a convex hexahedron. Faces are numbered
// 1 x-low, 2 x-high, 3 y-low, 4 y-high, 5 z-low, 6 z-high.
// Zero-length edges are dropped.
func Hexahedron(h Hex) Topology {
	out := Topology{Faces: 6}
	for _, he := range hexEdges {
		a, b := he.fixed, he.fixed
		a[he.along], b[he.along] = 0, 1
		start, end := h.at(a), h.at(b)
		if start.Distance(end) < geom.Eps {
			continue
		}
		e := Edge{Kind: Line, Start: start, End: end, Mid: start.Lerp(end, 0.5)}
		dir := end.Sub(start).Normalize()

		slot := 0
		for axis := 0; axis < 3; axis++ {
			if axis == he.along {
				continue
			}
			// The face fixes this axis; its opposite edge flips the other one.
			other := 3 - axis - he.along
			oa, ob := a, b
			oa[other], ob[other] = 1-oa[other], 1-ob[other]
			opp := h.at(oa).Lerp(h.at(ob), 0.5)
			e.In[slot], e.Reach[slot] = inFace(start, dir, opp)
			e.Faces[slot] = 1 + 2*axis + he.fixed[axis]
			slot++
		}
		out.Edges = append(out.Edges, e)
	}
	return out
}

// inFace returns the unit direction from the line (p, dir) toward q,
// perpendicular to the line, and the distance to q along it.
func inFace(p, dir, q geom.Vec3) (geom.Vec3, float64) {
	v := q.Sub(p)
	v = v.Sub(dir.Scale(v.Dot(dir)))
	return v.Normalize(), v.Length()
}

// Box enumerates a box with its minimum corner at the origin.
func Box(size geom.Vec3) Topology {
	var h Hex
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				h[i][j][k] = geom.V3(float64(i)*size.X, float64(j)*size.Y, float64(k)*size.Z)
			}
		}
	}
	return Hexahedron(h)
}

// Extrusion enumerates a polygon swept by offset. Edges are ordered
// vertical edge 0, then for each side i: top edge i, vertical edge i+1
// (except after the last side), bottom edge i. Faces are the sides
// 1..n, then top n+1 and bottom n+2.
func Extrusion(poly []geom.Vec2, offset geom.Vec3) Topology {
	n := len(poly)
	out := Topology{Faces: n + 2}
	if n < 3 {
		return out
	}
	bottom := make([]geom.Vec3, n)
	top := make([]geom.Vec3, n)
	for i, p := range poly {
		bottom[i] = p.Vec3(0)
		top[i] = bottom[i].Add(offset)
	}

	// Orient the polygon normal so the outline runs counter-clockwise.
	normal := geom.ZAxis
	if geom.SignedArea(poly) < 0 {
		normal = normal.Neg()
	}
	up := offset.Normalize()
	topFace, bottomFace := n+1, n+2

	vertical := func(i int) Edge {
		prev, next := bottom[(i+n-1)%n], bottom[(i+1)%n]
		e := Edge{Kind: Line, Start: bottom[i], End: top[i], Mid: bottom[i].Lerp(top[i], 0.5)}
		e.In[0], e.Reach[0] = inFace(bottom[i], up, prev)
		e.In[1], e.Reach[1] = inFace(bottom[i], up, next)
		e.Faces = [2]int{(i+n-1)%n + 1, i + 1}
		turn := bottom[i].Sub(prev).Cross(next.Sub(bottom[i])).Dot(normal)
		e.Concave = turn < 0
		return e
	}
	rim := func(i int, pts []geom.Vec3, face int, toward geom.Vec3) Edge {
		a, b := pts[i], pts[(i+1)%n]
		dir := b.Sub(a).Normalize()
		e := Edge{Kind: Line, Start: a, End: b, Mid: a.Lerp(b, 0.5)}
		e.In[0], e.Reach[0] = inFace(a, dir, a.Add(toward))
		inward := normal.Cross(dir).Normalize()
		e.In[1] = inward
		for _, p := range pts {
			if d := p.Sub(a).Dot(inward); d > e.Reach[1] {
				e.Reach[1] = d
			}
		}
		e.Faces = [2]int{i + 1, face}
		return e
	}

	out.Edges = append(out.Edges, vertical(0))
	for i := 0; i < n; i++ {
		out.Edges = append(out.Edges, rim(i, top, topFace, offset.Neg()))
		if i < n-1 {
			out.Edges = append(out.Edges, vertical(i+1))
		}
		out.Edges = append(out.Edges, rim(i, bottom, bottomFace, offset))
	}
	return out
}

// Cylinder enumerates a cylinder standing on the origin along +Z:
// edge 1 the top circle, edge 2 the seam, edge 3 the bottom circle.
// Faces are 1 lateral, 2 top, 3 bottom.
func Cylinder(radius, height float64) Topology {
	top := geom.V3(0, 0, height)
	rimTop := geom.V3(radius, 0, height)
	rimBottom := geom.V3(radius, 0, 0)
	circle := func(center, start geom.Vec3, toward float64, face int) Edge {
		return Edge{
			Kind:   Circle,
			Start:  start,
			End:    start,
			Mid:    center.Add(geom.V3(-radius, 0, 0)),
			In:     [2]geom.Vec3{geom.V3(0, 0, toward), geom.V3(-1, 0, 0)},
			Reach:  [2]float64{height, radius},
			Faces:  [2]int{1, face},
			Center: center,
			Axis:   geom.ZAxis,
			Radius: radius,
		}
	}
	seam := Edge{
		Kind:   Line,
		Start:  rimBottom,
		End:    rimTop,
		Mid:    rimBottom.Lerp(rimTop, 0.5),
		In:     [2]geom.Vec3{geom.YAxis, geom.YAxis.Neg()},
		Reach:  [2]float64{math.Pi * radius, math.Pi * radius},
		Faces:  [2]int{1, 1},
		Smooth: true,
	}
	return Topology{
		Faces: 3,
		Edges: []Edge{
			circle(top, rimTop, -1, 2),
			seam,
			circle(geom.Vec3{}, rimBottom, 1, 3),
		},
	}
}

// Ellipsoid enumerates an ellipsoid with semi-axes radii (x, y, z),
// truncated to latitudes [lat1, lat2] and longitudes [0, lon] in degrees.
// All its edges are curves: the meridian at longitude 0, the meridian at
// lon when the sweep is partial, then the lower and upper rims when
// truncated.
func Ellipsoid(radii geom.Vec3, lat1, lat2, lon float64) Topology {
	rad := math.Pi / 180
	point := func(lat, long float64) geom.Vec3 {
		return geom.V3(
			radii.X*math.Cos(lat*rad)*math.Cos(long*rad),
			radii.Y*math.Cos(lat*rad)*math.Sin(long*rad),
			radii.Z*math.Sin(lat*rad),
		)
	}
	full := lon >= 360
	out := Topology{Faces: 1}
	meridian := func(long float64, face int) Edge {
		return Edge{
			Kind:   Curve,
			Start:  point(lat1, long),
			End:    point(lat2, long),
			Mid:    point((lat1+lat2)/2, long),
			Faces:  [2]int{1, face},
			Smooth: full,
		}
	}
	if full {
		out.Edges = append(out.Edges, meridian(0, 1))
	} else {
		out.Edges = append(out.Edges, meridian(0, 2), meridian(lon, 3))
		out.Faces = 3
	}
	rimAt := func(lat float64) Edge {
		out.Faces++
		return Edge{
			Kind:  Curve,
			Start: point(lat, 0),
			End:   point(lat, lon),
			Mid:   point(lat, lon/2),
			Faces: [2]int{1, out.Faces},
		}
	}
	if lat1 > -90 {
		out.Edges = append(out.Edges, rimAt(lat1))
	}
	if lat2 < 90 {
		out.Edges = append(out.Edges, rimAt(lat2))
	}
	return out
}
