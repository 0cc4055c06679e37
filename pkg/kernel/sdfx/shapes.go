package sdfx

import (
	"math"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/kernel/topo"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func toV3(v geom.Vec3) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromV3(v v3.Vec) geom.Vec3 {
	return geom.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func toBox3(b geom.Box) sdf.Box3 {
	return sdf.Box3{Min: toV3(b.Min), Max: toV3(b.Max)}
}

func fromBox3(b sdf.Box3) geom.Box {
	return geom.Box{Min: fromV3(b.Min), Max: fromV3(b.Max)}
}

// placed evaluates a child SDF through the inverse of a rigid placement.
// Rigid motions preserve distances, so the field stays exact.
type placed struct {
	s   sdf.SDF3
	inv geom.Placement
	bb  sdf.Box3
}

func newPlaced(s sdf.SDF3, p geom.Placement) sdf.SDF3 {
	return &placed{
		s:   s,
		inv: p.Inverse(),
		bb:  toBox3(fromBox3(s.BoundingBox()).Transform(p)),
	}
}

func (s *placed) Evaluate(p v3.Vec) float64 {
	return s.s.Evaluate(toV3(s.inv.Apply(fromV3(p))))
}

func (s *placed) BoundingBox() sdf.Box3 { return s.bb }

// mirrored evaluates a child SDF through a plane reflection.
type mirrored struct {
	s     sdf.SDF3
	plane geom.Plane
	bb    sdf.Box3
}

func newMirrored(s sdf.SDF3, plane geom.Plane) sdf.SDF3 {
	bb := geom.EmptyBox()
	for _, c := range fromBox3(s.BoundingBox()).Corners() {
		bb = bb.Extend(plane.Reflect(c))
	}
	return &mirrored{s: s, plane: plane, bb: toBox3(bb)}
}

func (s *mirrored) Evaluate(p v3.Vec) float64 {
	return s.s.Evaluate(toV3(s.plane.Reflect(fromV3(p))))
}

func (s *mirrored) BoundingBox() sdf.Box3 { return s.bb }

// halfSpace is the set of points with Normal·p <= Offset.
type halfSpace struct {
	normal geom.Vec3
	offset float64
}

// polyhedron is a convex solid bounded by half-spaces.
type polyhedron struct {
	planes []halfSpace
	bb     sdf.Box3
}

// newHexahedron builds the convex hull of a hexahedron's corners from its
// six face planes. Faces collapsed to a line or a point are skipped.
func newHexahedron(h topo.Hex) (sdf.SDF3, error) {
	faces := [6][4][3]int{
		{{0, 0, 0}, {0, 1, 0}, {0, 1, 1}, {0, 0, 1}},
		{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
		{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
		{{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1}},
		{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	}
	at := func(i [3]int) geom.Vec3 { return h[i[0]][i[1]][i[2]] }

	var centroid geom.Vec3
	bb := geom.EmptyBox()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				centroid = centroid.Add(h[i][j][k].Scale(1.0 / 8))
				bb = bb.Extend(h[i][j][k])
			}
		}
	}
	s := &polyhedron{bb: toBox3(bb)}
	for _, f := range faces {
		n, ok := faceNormal(at(f[0]), at(f[1]), at(f[2]), at(f[3]))
		if !ok {
			continue
		}
		off := n.Dot(at(f[0]))
		if n.Dot(centroid) > off {
			n, off = n.Neg(), -off
		}
		s.planes = append(s.planes, halfSpace{normal: n, offset: off})
	}
	if len(s.planes) < 4 {
		return nil, errDegenerate("hexahedron has fewer than four faces")
	}
	return s, nil
}

// faceNormal returns the unit normal of a planar quad, which may have
// collapsed corners.
func faceNormal(pts ...geom.Vec3) (geom.Vec3, bool) {
	var n geom.Vec3
	for i := range pts {
		j := (i + 1) % len(pts)
		a, b := pts[i], pts[j]
		n = n.Add(geom.V3((a.Y-b.Y)*(a.Z+b.Z), (a.Z-b.Z)*(a.X+b.X), (a.X-b.X)*(a.Y+b.Y)))
	}
	if n.Length() < geom.Eps {
		return n, false
	}
	return n.Normalize(), true
}

func (s *polyhedron) Evaluate(p v3.Vec) float64 {
	q := fromV3(p)
	d := math.Inf(-1)
	for _, h := range s.planes {
		d = math.Max(d, h.normal.Dot(q)-h.offset)
	}
	return d
}

func (s *polyhedron) BoundingBox() sdf.Box3 { return s.bb }

// ellipsoid is a latitude/longitude-trimmed ellipsoid centered on the
// origin. The field is a bound, not an exact distance.
type ellipsoid struct {
	radii    geom.Vec3
	zLo, zHi float64
	trimLo   bool
	trimHi   bool
	sweep    float64 // longitude sweep in radians; 2π when whole
	bb       sdf.Box3
}

func newEllipsoid(radii geom.Vec3, lat1, lat2, lon float64) sdf.SDF3 {
	rad := math.Pi / 180
	s := &ellipsoid{
		radii:  radii,
		zLo:    radii.Z * math.Sin(lat1*rad),
		zHi:    radii.Z * math.Sin(lat2*rad),
		trimLo: lat1 > -90,
		trimHi: lat2 < 90,
		sweep:  math.Min(lon, 360) * rad,
	}
	s.bb = sdf.Box3{
		Min: v3.Vec{X: -radii.X, Y: -radii.Y, Z: s.zLo},
		Max: v3.Vec{X: radii.X, Y: radii.Y, Z: s.zHi},
	}
	return s
}

func (s *ellipsoid) Evaluate(p v3.Vec) float64 {
	q := fromV3(p)
	k0 := geom.V3(q.X/s.radii.X, q.Y/s.radii.Y, q.Z/s.radii.Z).Length()
	k1 := geom.V3(q.X/(s.radii.X*s.radii.X), q.Y/(s.radii.Y*s.radii.Y), q.Z/(s.radii.Z*s.radii.Z)).Length()
	var d float64
	if k1 == 0 {
		d = -math.Min(s.radii.X, math.Min(s.radii.Y, s.radii.Z))
	} else {
		d = k0 * (k0 - 1) / k1
	}
	if s.trimLo {
		d = math.Max(d, s.zLo-q.Z)
	}
	if s.trimHi {
		d = math.Max(d, q.Z-s.zHi)
	}
	if s.sweep < 2*math.Pi {
		d = math.Max(d, sectorDistance(geom.V2(q.X, q.Y), s.sweep))
	}
	return d
}

func (s *ellipsoid) BoundingBox() sdf.Box3 { return s.bb }

// sectorDistance bounds the distance from p to the planar sector spanning
// angles [0, sweep] around the origin; negative inside.
func sectorDistance(p geom.Vec2, sweep float64) float64 {
	a := math.Atan2(p.Y, p.X)
	if a < 0 {
		a += 2 * math.Pi
	}
	r := p.Length()
	// Distance to each bounding ray, measured perpendicular to it.
	toStart := math.Abs(p.Y)
	if p.X < 0 {
		toStart = r
	}
	end := geom.V2(math.Cos(sweep), math.Sin(sweep))
	toEnd := math.Abs(end.Cross(p))
	if end.Dot(p) < 0 {
		toEnd = r
	}
	d := math.Min(toStart, toEnd)
	if a <= sweep {
		return -d
	}
	return d
}

// sheared slants a straight extrusion so its top is displaced by
// shear·z in the xy-plane. The field is a bound.
type sheared struct {
	s     sdf.SDF3
	shear geom.Vec2
	bb    sdf.Box3
}

func (s *sheared) Evaluate(p v3.Vec) float64 {
	return s.s.Evaluate(v3.Vec{X: p.X - s.shear.X*p.Z, Y: p.Y - s.shear.Y*p.Z, Z: p.Z})
}

func (s *sheared) BoundingBox() sdf.Box3 { return s.bb }

// clipped reports a bounding box tighter than its child's.
type clipped struct {
	s  sdf.SDF3
	bb sdf.Box3
}

func (s *clipped) Evaluate(p v3.Vec) float64 { return s.s.Evaluate(p) }

func (s *clipped) BoundingBox() sdf.Box3 { return s.bb }
