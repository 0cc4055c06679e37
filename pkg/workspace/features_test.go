package workspace_test

import (
	"math"
	"testing"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/graph"
	"github.com/chazu/printparts/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundedTop lists the top edges of a box whose vertical edges were
// filleted.
var roundedTop = workspace.EdgeTable{
	Name:    "rounded-top",
	Lineage: "fillet[1,3,5,7](box)",
	Edges:   []int{3, 9, 14, 16},
}

func TestFilletShiftsTopEdges(t *testing.T) {
	w := newWorkspace(t)
	body := mustBox(t, w, "body", 90, 70, 22, geom.Identity())
	rounded, err := w.Fillet("rounded", body, workspace.Edges(3, 1, 3, 5, 7))
	require.NoError(t, err)

	assert.Equal(t, 16, rounded.EdgeCount())
	assert.Equal(t, roundedTop.Lineage, rounded.Lineage())
	for _, i := range roundedTop.Edges {
		e, ok := rounded.Edge(i)
		require.True(t, ok)
		assert.InDelta(t, 22, e.Start.Z, 1e-9, "edge %d", i)
		assert.InDelta(t, 22, e.End.Z, 1e-9, "edge %d", i)
	}
	assertBox(t, body.BoundingBox(), rounded.BoundingBox())
	assert.False(t, rounded.Contains(geom.V3(0.3, 0.3, 11)), "corner is rounded away")
	assert.True(t, rounded.Contains(geom.V3(3, 3, 11)))

	top, err := w.ChamferTable("top", rounded, roundedTop, 1)
	require.NoError(t, err)
	assert.Equal(t, 20, top.EdgeCount())
	assert.Equal(t, "chamfer[3,9,14,16](fillet[1,3,5,7](box))", top.Lineage())
	assert.False(t, top.Contains(geom.V3(45, 0.3, 21.8)))
}

func TestStaleEdgeTable(t *testing.T) {
	w := newWorkspace(t)
	plain := mustBox(t, w, "plain", 90, 70, 22, geom.Identity())

	_, err := w.ChamferTable("top", plain, roundedTop, 1)
	require.ErrorIs(t, err, workspace.ErrStaleEdgeTable)
	assert.Contains(t, err.Error(), "rounded-top")
	assert.True(t, plain.Visible())

	_, err = roundedTop.Select(nil, 1, 0)
	assert.ErrorIs(t, err, workspace.ErrInvalidParameter)
}

func TestFeatureValidation(t *testing.T) {
	tests := []struct {
		name  string
		edges []graph.EdgeSelector
		want  error
	}{
		{"empty", nil, workspace.ErrInvalidParameter},
		{"zero size", workspace.Edges(0, 1), workspace.ErrInvalidParameter},
		{"negative end size", []graph.EdgeSelector{{Index: 1, Size1: 1, Size2: -1}}, workspace.ErrInvalidParameter},
		{"duplicate", workspace.Edges(1, 2, 2), workspace.ErrInvalidParameter},
		{"index zero", workspace.Edges(1, 0), workspace.ErrEdgeIndexOutOfRange},
		{"past the end", workspace.Edges(1, 13), workspace.ErrEdgeIndexOutOfRange},
		{"too large", workspace.Edges(100, 1), workspace.ErrGeometryInfeasible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorkspace(t)
			base := mustBox(t, w, "base", 90, 70, 22, geom.Identity())

			_, err := w.Fillet("f", base, tt.edges)
			assert.ErrorIs(t, err, tt.want)
			_, err = w.Chamfer("c", base, tt.edges)
			assert.ErrorIs(t, err, tt.want)

			assert.True(t, base.Visible(), "base is unaffected")
			assert.Equal(t, 1, w.Graph().NodeCount())
		})
	}
}

func TestVariableFillet(t *testing.T) {
	w := newWorkspace(t)
	base := mustBox(t, w, "base", 20, 20, 20, geom.Identity())
	f, err := w.Fillet("f", base, []graph.EdgeSelector{{Index: 1, Size1: 1, Size2: 5}})
	require.NoError(t, err)

	// Edge 1 runs up the z axis; the radius grows from 1 to 5.
	assert.True(t, f.Contains(geom.V3(0.8, 0.8, 0.5)))
	assert.False(t, f.Contains(geom.V3(0.8, 0.8, 19.5)))
}

func TestAsymmetricChamfer(t *testing.T) {
	w := newWorkspace(t)
	base := mustBox(t, w, "base", 20, 20, 20, geom.Identity())
	c, err := w.Chamfer("c", base, []graph.EdgeSelector{{Index: 1, Size1: 2, Size2: 6}})
	require.NoError(t, err)

	e, _ := base.Edge(1)
	mid := geom.V3(0, 0, 10)
	// The bevel meets the first face 2 from the edge and the second face 6.
	keep := e.Start.Add(mid).Add(e.In[0].Scale(2.5)).Add(e.In[1].Scale(0.2))
	gone := e.Start.Add(mid).Add(e.In[0].Scale(0.2)).Add(e.In[1].Scale(5))
	assert.True(t, c.Contains(keep))
	assert.False(t, c.Contains(gone))
	assertBox(t, base.BoundingBox(), c.BoundingBox())
}

func TestConcaveFeatureKeepsBounds(t *testing.T) {
	w := newWorkspace(t)
	base := mustBox(t, w, "base", 20, 20, 10, geom.Identity())
	slot := mustBox(t, w, "slot", 10, 20, 5, geom.At(5, 0, 5))
	notched, err := w.Cut("notched", base, slot)
	require.NoError(t, err)

	// The slot floor meets its x=5 wall along a concave edge.
	idx := 0
	for i := 1; i <= notched.EdgeCount(); i++ {
		e, _ := notched.Edge(i)
		if e.Concave && math.Abs(e.Start.X-5) < 1e-9 && math.Abs(e.Start.Z-5) < 1e-9 {
			idx = i
			break
		}
	}
	require.NotZero(t, idx, "concave slot edge")

	corner := geom.V3(5.2, 10, 5.2)
	assert.False(t, notched.Contains(corner))

	for _, tt := range []struct {
		name  string
		apply func(string, *workspace.Solid, []graph.EdgeSelector) (*workspace.Solid, error)
	}{
		{"fillet", w.Fillet},
		{"chamfer", w.Chamfer},
	} {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.apply(tt.name, notched, workspace.Edges(1.5, idx))
			require.NoError(t, err)
			assertBox(t, notched.BoundingBox(), out.BoundingBox())
			assert.True(t, out.Contains(corner), "material fills the inside corner")
		})
	}
}
