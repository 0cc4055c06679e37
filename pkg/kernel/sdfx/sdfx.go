// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/kernel"
	"github.com/chazu/printparts/pkg/kernel/topo"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

func errDegenerate(msg string) error {
	return fmt.Errorf("%s: %w", msg, kernel.ErrGeometryInfeasible)
}

// sdfxSolid wraps an sdf.SDF3 and its edge enumeration.
type sdfxSolid struct {
	s    sdf.SDF3
	topo topo.Topology
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() geom.Box {
	return fromBox3(s.s.BoundingBox())
}

// Distance returns the signed distance bound at p.
func (s *sdfxSolid) Distance(p geom.Vec3) float64 {
	return s.s.Evaluate(toV3(p))
}

// Topology returns the edge enumeration.
func (s *sdfxSolid) Topology() topo.Topology {
	return s.topo
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution along the longest
// bounding box axis. Values below 1 keep the default.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.cells = n
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{cells: defaultMeshCells}
	for _, o := range opts {
		o(k)
	}
	return k
}

// MeshCells reports the configured tessellation resolution.
func (k *SdfxKernel) MeshCells() int {
	return k.cells
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3, t topo.Topology) kernel.Solid {
	return &sdfxSolid{s: s, topo: t}
}

func translate(s sdf.SDF3, v geom.Vec3) sdf.SDF3 {
	return sdf.Transform3D(s, sdf.Translate3d(toV3(v)))
}

// Box creates a box with the given dimensions. The resulting solid has its
// minimum corner at the origin (0,0,0).
// sdf.Box3D centers the box at the origin, so we translate by half-dimensions.
func (k *SdfxKernel) Box(size geom.Vec3) (kernel.Solid, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, errDegenerate(fmt.Sprintf("box %v", size))
	}
	s, err := sdf.Box3D(toV3(size), 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Box3D: %w", err)
	}
	return wrap(translate(s, size.Scale(0.5)), topo.Box(size)), nil
}

// Cylinder creates a cylinder standing on the origin along +Z.
// sdf.Cylinder3D is centered, so it is lifted by half its height.
func (k *SdfxKernel) Cylinder(radius, height float64) (kernel.Solid, error) {
	if radius <= 0 || height <= 0 {
		return nil, errDegenerate(fmt.Sprintf("cylinder r=%g h=%g", radius, height))
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Cylinder3D: %w", err)
	}
	return wrap(translate(s, geom.V3(0, 0, height/2)), topo.Cylinder(radius, height)), nil
}

// Extrusion sweeps a closed profile in the z=0 plane by offset. Offsets
// off the Z axis produce a slanted prism.
func (k *SdfxKernel) Extrusion(profile []geom.Vec2, offset geom.Vec3) (kernel.Solid, error) {
	if len(profile) < 3 {
		return nil, errDegenerate(fmt.Sprintf("profile with %d vertices", len(profile)))
	}
	if offset.Z <= geom.Eps {
		return nil, errDegenerate(fmt.Sprintf("extrusion offset %v does not leave the profile plane upward", offset))
	}
	verts := make([]v2.Vec, len(profile))
	for i, p := range profile {
		verts[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	s2, err := sdf.Polygon2D(verts)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	s := translate(sdf.Extrude3D(s2, offset.Z), geom.V3(0, 0, offset.Z/2))

	t := topo.Extrusion(profile, offset)
	if offset.X != 0 || offset.Y != 0 {
		bb := fromBox3(s.BoundingBox())
		bb = bb.Union(geom.BoxOf(bb.Min.Add(geom.V3(offset.X, offset.Y, 0)), bb.Max.Add(geom.V3(offset.X, offset.Y, 0))))
		s = &sheared{
			s:     s,
			shear: geom.V2(offset.X/offset.Z, offset.Y/offset.Z),
			bb:    toBox3(bb),
		}
	}
	return wrap(s, t), nil
}

// Hexahedron creates the convex solid spanned by eight corners. Corners
// may coincide, which is how wedges are built.
func (k *SdfxKernel) Hexahedron(corners topo.Hex) (kernel.Solid, error) {
	s, err := newHexahedron(corners)
	if err != nil {
		return nil, err
	}
	return wrap(s, topo.Hexahedron(corners)), nil
}

// Ellipsoid creates an ellipsoid centered on the origin, truncated to
// latitudes [lat1, lat2] and longitudes [0, lon] in degrees.
func (k *SdfxKernel) Ellipsoid(radii geom.Vec3, lat1, lat2, lon float64) (kernel.Solid, error) {
	if radii.X <= 0 || radii.Y <= 0 || radii.Z <= 0 {
		return nil, errDegenerate(fmt.Sprintf("ellipsoid radii %v", radii))
	}
	if lat1 >= lat2 || lon <= 0 {
		return nil, errDegenerate(fmt.Sprintf("ellipsoid angles %g..%g, %g", lat1, lat2, lon))
	}
	return wrap(newEllipsoid(radii, lat1, lat2, lon), topo.Ellipsoid(radii, lat1, lat2, lon)), nil
}

// Union returns the union of the solids.
func (k *SdfxKernel) Union(solids ...kernel.Solid) (kernel.Solid, error) {
	if len(solids) == 0 {
		return nil, errors.New("union of no solids")
	}
	ss := make([]sdf.SDF3, len(solids))
	tops := make([]topo.Topology, len(solids))
	cls := make([]topo.Classifier, len(solids))
	for i, s := range solids {
		ss[i] = unwrap(s)
		tops[i] = s.Topology()
		cls[i] = s
	}
	var u sdf.SDF3
	if len(ss) == 1 {
		u = ss[0]
	} else {
		u = sdf.Union3D(ss...)
	}
	return wrap(u, topo.Fuse(tops, cls)), nil
}

// Difference returns base minus tool. A tool whose bounding box does not
// overlap the base leaves the base unchanged.
func (k *SdfxKernel) Difference(base, tool kernel.Solid) (kernel.Solid, error) {
	if !base.BoundingBox().Overlaps(tool.BoundingBox()) {
		return base, nil
	}
	s := sdf.Difference3D(unwrap(base), unwrap(tool))
	return wrap(s, topo.Cut(base.Topology(), tool.Topology(), base, tool)), nil
}

// Place moves a solid rigidly.
func (k *SdfxKernel) Place(s kernel.Solid, p geom.Placement) kernel.Solid {
	if p.IsIdentity() {
		return s
	}
	return wrap(newPlaced(unwrap(s), p), s.Topology().Transform(p))
}

// Mirror reflects a solid through a plane.
func (k *SdfxKernel) Mirror(s kernel.Solid, plane geom.Plane) kernel.Solid {
	return wrap(newMirrored(unwrap(s), plane), s.Topology().Mirror(plane))
}

// Fillet rounds the selected edges.
func (k *SdfxKernel) Fillet(s kernel.Solid, edges []topo.Feature) (kernel.Solid, error) {
	return k.feature(s, topo.Fillet, edges)
}

// Chamfer bevels the selected edges.
func (k *SdfxKernel) Chamfer(s kernel.Solid, edges []topo.Feature) (kernel.Solid, error) {
	return k.feature(s, topo.Chamfer, edges)
}

// feature removes the cutter of every convex edge from the solid and adds
// the cutter of every concave edge to it.
func (k *SdfxKernel) feature(s kernel.Solid, kind topo.FeatureKind, edges []topo.Feature) (kernel.Solid, error) {
	t := s.Topology()
	out, err := topo.ApplyFeatures(t, kind, edges)
	if err != nil {
		return nil, err
	}
	var convex, concave []sdf.SDF3
	for _, f := range edges {
		e, _ := t.Edge(f.Index)
		c := newEdgeCutter(e, kind, f)
		if e.Concave {
			concave = append(concave, c)
		} else {
			convex = append(convex, c)
		}
	}
	body := unwrap(s)
	bb := body.BoundingBox()
	if len(convex) > 0 {
		body = sdf.Difference3D(body, unionOf(convex))
	}
	if len(concave) > 0 {
		// Material added at a concave edge fills the angle between faces
		// that already exist, so the base bounds still hold.
		body = &clipped{s: sdf.Union3D(body, unionOf(concave)), bb: bb}
	}
	return wrap(body, out), nil
}

func unionOf(ss []sdf.SDF3) sdf.SDF3 {
	if len(ss) == 1 {
		return ss[0]
	}
	return sdf.Union3D(ss...)
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
