package topo

import (
	"math"
	"testing"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxCls classifies points against an axis-aligned box.
type boxCls geom.Box

func (b boxCls) Distance(p geom.Vec3) float64 {
	d := math.Max(b.Min.X-p.X, p.X-b.Max.X)
	d = math.Max(d, math.Max(b.Min.Y-p.Y, p.Y-b.Max.Y))
	return math.Max(d, math.Max(b.Min.Z-p.Z, p.Z-b.Max.Z))
}

func near(t *testing.T, want, got geom.Vec3) {
	t.Helper()
	assert.True(t, want.Near(got, 1e-9), "want %v, got %v", want, got)
}

func TestBoxEnumeration(t *testing.T) {
	top := Box(geom.V3(90, 70, 22))
	require.Equal(t, 12, top.EdgeCount())
	assert.Equal(t, 6, top.Faces)

	cases := []struct {
		index      int
		start, end geom.Vec3
		faces      [2]int
	}{
		{1, geom.V3(0, 0, 0), geom.V3(0, 0, 22), [2]int{1, 3}},
		{2, geom.V3(0, 0, 22), geom.V3(0, 70, 22), [2]int{1, 6}},
		{3, geom.V3(0, 70, 0), geom.V3(0, 70, 22), [2]int{1, 4}},
		{4, geom.V3(0, 0, 0), geom.V3(0, 70, 0), [2]int{1, 5}},
		{5, geom.V3(90, 0, 0), geom.V3(90, 0, 22), [2]int{2, 3}},
		{7, geom.V3(90, 70, 0), geom.V3(90, 70, 22), [2]int{2, 4}},
		{9, geom.V3(0, 0, 0), geom.V3(90, 0, 0), [2]int{3, 5}},
		{12, geom.V3(0, 70, 22), geom.V3(90, 70, 22), [2]int{4, 6}},
	}
	for _, tc := range cases {
		e, ok := top.Edge(tc.index)
		require.True(t, ok)
		near(t, tc.start, e.Start)
		near(t, tc.end, e.End)
		assert.Equal(t, tc.faces, e.Faces, "edge %d", tc.index)
		assert.False(t, e.Concave)
	}

	e1, _ := top.Edge(1)
	near(t, geom.YAxis, e1.In[0])
	near(t, geom.XAxis, e1.In[1])
	assert.InDelta(t, 70, e1.Reach[0], 1e-9)
	assert.InDelta(t, 90, e1.Reach[1], 1e-9)

	_, ok := top.Edge(0)
	assert.False(t, ok)
	_, ok = top.Edge(13)
	assert.False(t, ok)
}

func TestWedgeDropsCollapsedEdges(t *testing.T) {
	// A ridge: the top face collapses in x to a line.
	var h Hex
	for i := 0; i < 2; i++ {
		for k := 0; k < 2; k++ {
			h[i][0][k] = geom.V3(float64(i)*10, 0, float64(k)*10)
			h[i][1][k] = geom.V3(5, 10, float64(k)*10)
		}
	}
	top := Hexahedron(h)
	assert.Equal(t, 10, top.EdgeCount(), "edges 11 and 12 collapse")
	for _, e := range top.Edges {
		assert.Greater(t, e.Length(), 0.0)
	}
}

func TestExtrusionEnumeration(t *testing.T) {
	sq := geom.RegularPolygon(4, 10)
	top := Extrusion(sq, geom.V3(0, 0, 5))
	require.Equal(t, 12, top.EdgeCount())
	assert.Equal(t, 6, top.Faces)

	for _, i := range []int{2, 5, 8, 11} {
		e, _ := top.Edge(i)
		assert.InDelta(t, 5, e.Start.Z, 1e-9, "edge %d is a top edge", i)
		assert.InDelta(t, 5, e.End.Z, 1e-9)
		assert.Equal(t, 5, e.Faces[1])
		near(t, geom.ZAxis.Neg(), e.In[0])
	}
	for _, i := range []int{4, 7, 10, 12} {
		e, _ := top.Edge(i)
		assert.InDelta(t, 0, e.Start.Z, 1e-9, "edge %d is a bottom edge", i)
		assert.Equal(t, 6, e.Faces[1])
	}
	for _, i := range []int{1, 3, 6, 9} {
		e, _ := top.Edge(i)
		assert.InDelta(t, 5, e.Length(), 1e-9, "edge %d is vertical", i)
	}

	hex := Extrusion(geom.RegularPolygon(6, 6), geom.V3(0, 0, 2.2))
	assert.Equal(t, 18, hex.EdgeCount())
}

func TestExtrusionConcaveVertex(t *testing.T) {
	l := []geom.Vec2{{0, 0}, {20, 0}, {20, 10}, {10, 10}, {10, 20}, {0, 20}}
	top := Extrusion(l, geom.V3(0, 0, 5))
	require.Equal(t, 18, top.EdgeCount())

	var concave []geom.Vec3
	for _, e := range top.Edges {
		if e.Concave {
			concave = append(concave, e.Start)
		}
	}
	require.Len(t, concave, 1)
	near(t, geom.V3(10, 10, 0), concave[0])
}

func TestCylinderEnumeration(t *testing.T) {
	top := Cylinder(4, 10)
	require.Equal(t, 3, top.EdgeCount())
	rim, _ := top.Edge(1)
	assert.Equal(t, Circle, rim.Kind)
	assert.InDelta(t, 10, rim.Center.Z, 1e-9)
	assert.InDelta(t, 2*math.Pi*4, rim.Length(), 1e-9)
	seam, _ := top.Edge(2)
	assert.True(t, seam.Smooth)
}

func TestEllipsoidEnumeration(t *testing.T) {
	full := Ellipsoid(geom.V3(2, 3, 4), -90, 90, 360)
	assert.Equal(t, 1, full.EdgeCount())

	dome := Ellipsoid(geom.V3(2, 2, 2), 0, 90, 360)
	assert.Equal(t, 2, dome.EdgeCount())

	wedge := Ellipsoid(geom.V3(2, 2, 2), -30, 60, 90)
	assert.Equal(t, 4, wedge.EdgeCount())
	for _, e := range wedge.Edges {
		assert.Equal(t, Curve, e.Kind)
	}
}

func TestTransformKeepsOrder(t *testing.T) {
	b := Box(geom.V3(1, 2, 3))
	pl := geom.Rotated(geom.V3(5, 0, 0), geom.ZAxis, 90)
	moved := b.Transform(pl)
	require.Equal(t, b.EdgeCount(), moved.EdgeCount())
	for i := range b.Edges {
		near(t, pl.Apply(b.Edges[i].Start), moved.Edges[i].Start)
		near(t, pl.ApplyVector(b.Edges[i].In[0]), moved.Edges[i].In[0])
	}

	mirrored := b.Mirror(geom.MirrorPlane(geom.Identity()))
	e1, _ := mirrored.Edge(5)
	near(t, geom.V3(-1, 0, 0), e1.Start)
}

func TestFuseOrderAndBurial(t *testing.T) {
	a := Box(geom.V3(10, 10, 10))
	b := Box(geom.V3(10, 10, 10)).Transform(geom.At(3, 3, 3))
	ca := boxCls{Max: geom.V3(10, 10, 10)}
	cb := boxCls{Min: geom.V3(3, 3, 3), Max: geom.V3(13, 13, 13)}

	ab := Fuse([]Topology{a, b}, []Classifier{ca, cb})
	ba := Fuse([]Topology{b, a}, []Classifier{cb, ca})

	assert.Equal(t, ab.EdgeCount(), ba.EdgeCount())
	assert.Equal(t, 12, ab.Faces)
	assert.Equal(t, 18, ab.EdgeCount(), "edges buried inside the other box are dropped")
	first, _ := ab.Edge(1)
	firstBA, _ := ba.Edge(1)
	assert.NotEqual(t, first.Start, firstBA.Start, "fuse order changes the enumeration")
}

func TestFuseDisjointKeepsEverything(t *testing.T) {
	var parts []Topology
	var cls []Classifier
	for i := 0; i < 3; i++ {
		off := geom.V3(float64(i)*20, 0, 0)
		parts = append(parts, Box(geom.V3(10, 10, 10)).Transform(geom.Translation(off)))
		cls = append(cls, boxCls{Min: off, Max: off.Add(geom.V3(10, 10, 10))})
	}
	out := Fuse(parts, cls)
	assert.Equal(t, 36, out.EdgeCount())
	last, _ := out.Edge(36)
	assert.Equal(t, [2]int{16, 18}, last.Faces)
}

func TestCutMarksToolEdgesConcave(t *testing.T) {
	base := Box(geom.V3(20, 20, 20))
	tool := Box(geom.V3(10, 10, 10)).Transform(geom.At(5, 5, 15))
	bc := boxCls{Max: geom.V3(20, 20, 20)}
	tc := boxCls{Min: geom.V3(5, 5, 15), Max: geom.V3(15, 15, 25)}

	out := Cut(base, tool, bc, tc)
	assert.Equal(t, 12, out.Faces)
	require.Equal(t, 16, out.EdgeCount(), "12 base edges then the 4 pocket edges")
	for _, e := range out.Edges[12:] {
		assert.True(t, e.Concave)
		assert.GreaterOrEqual(t, e.Faces[0], 7)
	}
}

func TestFilletShiftsIndices(t *testing.T) {
	b := Box(geom.V3(90, 70, 22))
	feats := []Feature{{1, 3, 3}, {3, 3, 3}, {5, 3, 3}, {7, 3, 3}}
	out, err := ApplyFeatures(b, Fillet, feats)
	require.NoError(t, err)
	require.Equal(t, 16, out.EdgeCount())
	assert.Equal(t, 10, out.Faces)

	// The top edges of the original box move to 3, 9, 14 and 16.
	for _, i := range []int{3, 9, 14, 16} {
		e, _ := out.Edge(i)
		assert.InDelta(t, 22, e.Start.Z, 1e-9, "edge %d", i)
		assert.InDelta(t, 22, e.End.Z, 1e-9, "edge %d", i)
		assert.False(t, e.Smooth)
	}
	b1, _ := out.Edge(1)
	near(t, geom.V3(0, 3, 0), b1.Start)
	assert.True(t, b1.Smooth)
	b2, _ := out.Edge(2)
	near(t, geom.V3(3, 0, 0), b2.Start)
	assert.Equal(t, [2]int{3, 7}, b2.Faces)
}

func TestChamferAfterFillet(t *testing.T) {
	b := Box(geom.V3(80, 60, 4))
	filleted, err := ApplyFeatures(b, Fillet, []Feature{{1, 3, 3}, {3, 3, 3}, {5, 3, 3}, {7, 3, 3}})
	require.NoError(t, err)
	_, err = ApplyFeatures(filleted, Chamfer, []Feature{{3, 3, 3}, {9, 3, 3}, {14, 3, 3}, {16, 3, 3}})
	require.NoError(t, err)

	_, err = ApplyFeatures(filleted, Fillet, []Feature{{1, 1, 1}})
	assert.ErrorIs(t, err, ErrInfeasible, "fillet boundaries are tangent seams")
}

func TestFeatureFeasibility(t *testing.T) {
	b := Box(geom.V3(10, 10, 4))
	cases := []struct {
		name  string
		kind  FeatureKind
		feats []Feature
		ok    bool
	}{
		{"fits", Fillet, []Feature{{1, 2, 2}}, true},
		{"exceeds face", Fillet, []Feature{{2, 5, 5}}, false},
		{"variable radius end exceeds", Fillet, []Feature{{2, 1, 4}}, false},
		{"chamfer asymmetric fits", Chamfer, []Feature{{2, 3, 1}}, true},
		{"opposite edges collide", Fillet, []Feature{{1, 5, 5}, {3, 5, 5}}, false},
		{"opposite edges clear", Fillet, []Feature{{1, 4, 4}, {3, 4, 4}}, true},
		{"no such edge", Fillet, []Feature{{13, 1, 1}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ApplyFeatures(b, tc.kind, tc.feats)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInfeasible)
			}
		})
	}
}

func TestFeatureOnCurvesAndSeams(t *testing.T) {
	cyl := Cylinder(5, 10)
	_, err := ApplyFeatures(cyl, Fillet, []Feature{{1, 1, 1}})
	assert.NoError(t, err, "rim circles can be filleted")
	_, err = ApplyFeatures(cyl, Chamfer, []Feature{{2, 1, 1}})
	assert.ErrorIs(t, err, ErrInfeasible)

	ell := Ellipsoid(geom.V3(2, 2, 2), 0, 90, 360)
	_, err = ApplyFeatures(ell, Chamfer, []Feature{{2, 0.1, 0.1}})
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestCircleFilletBoundaries(t *testing.T) {
	cyl := Cylinder(5, 10)
	out, err := ApplyFeatures(cyl, Fillet, []Feature{{1, 1, 1}})
	require.NoError(t, err)
	require.Equal(t, 4, out.EdgeCount())
	side, _ := out.Edge(1)
	lid, _ := out.Edge(2)
	assert.InDelta(t, 9, side.Center.Z, 1e-9)
	assert.InDelta(t, 5, side.Radius, 1e-9)
	assert.InDelta(t, 10, lid.Center.Z, 1e-9)
	assert.InDelta(t, 4, lid.Radius, 1e-9)
}
