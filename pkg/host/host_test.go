package host_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/host"
	"github.com/chazu/printparts/pkg/kernel/sdfx"
	"github.com/chazu/printparts/pkg/parts"
	"github.com/chazu/printparts/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHost(opts ...host.Option) *host.Headless {
	return host.NewHeadless(sdfx.New(sdfx.WithMeshCells(24)), opts...)
}

// buildCup builds a filleted box with a hole and a loose peg beside it.
func buildCup(t *testing.T, ws *workspace.Workspace) (*workspace.Solid, *workspace.Solid) {
	t.Helper()
	body, err := ws.MakeBox("body", 40, 30, 12, geom.Identity())
	require.NoError(t, err)
	rounded, err := ws.Fillet("rounded", body, workspace.Edges(2, 1, 3, 5, 7))
	require.NoError(t, err)
	hole, err := ws.MakeCylinder("hole", 4, 20, geom.At(20, 15, 2))
	require.NoError(t, err)
	cup, err := ws.Cut("cup", rounded, hole)
	require.NoError(t, err)
	peg, err := ws.MakeCylinder("peg", 3, 10, geom.At(60, 0, 0))
	require.NoError(t, err)
	return cup, peg
}

func TestCreateOrResetWorkspace(t *testing.T) {
	h := newHost()
	ws := h.CreateOrResetWorkspace("cup")
	buildCup(t, ws)
	require.NotZero(t, ws.Graph().NodeCount())

	again := h.CreateOrResetWorkspace("cup")
	assert.Same(t, ws, again)
	assert.Zero(t, again.Graph().NodeCount())

	other := h.CreateOrResetWorkspace("other")
	assert.NotEqual(t, ws.ID(), other.ID())
}

func TestRecompute(t *testing.T) {
	h := newHost()
	ws := h.CreateOrResetWorkspace("cup")
	buildCup(t, ws)

	doc, err := h.Recompute(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, "cup", doc.Workspace)
	require.Len(t, doc.Parts, 2, "both visible roots are delivered")
	assert.Equal(t, "cup", doc.Parts[0].Name)
	assert.Equal(t, "cut(fillet[1,3,5,7](box),cylinder)", doc.Parts[0].Lineage)
	assert.Equal(t, "peg", doc.Parts[1].Name)

	require.Len(t, doc.Meshes, 2)
	for _, m := range doc.Meshes {
		assert.NotEmpty(t, m.Vertices, m.PartName)
		assert.NotEmpty(t, m.Color, m.PartName)
	}
	assert.NotEqual(t, doc.Meshes[0].Color, doc.Meshes[1].Color)
	assert.True(t, doc.Bounds.Near(geom.BoxOf(geom.V3(0, -3, 0), geom.V3(63, 30, 12)), 1e-6), doc.Bounds.String())
}

func TestRegisterSelectsParts(t *testing.T) {
	h := newHost(host.WithMeshes(false))
	ws := h.CreateOrResetWorkspace("cup")
	cup, _ := buildCup(t, ws)

	require.NoError(t, h.Register(ws, cup))
	require.NoError(t, h.Register(ws, cup), "registering twice is harmless")

	doc, err := h.Recompute(context.Background(), ws)
	require.NoError(t, err)
	require.Len(t, doc.Parts, 1)
	assert.Equal(t, "cup", doc.Parts[0].Name)
	assert.Empty(t, doc.Meshes)

	stranger := h.CreateOrResetWorkspace("stranger")
	assert.ErrorIs(t, h.Register(stranger, cup), workspace.ErrInvalidParameter)
}

func TestRecomputeReportsCollisions(t *testing.T) {
	h := newHost(host.WithMeshes(false))
	ws := h.CreateOrResetWorkspace("dup")
	_, err := ws.MakeBox("part", 1, 1, 1, geom.Identity())
	require.NoError(t, err)
	_, err = ws.MakeBox("part", 2, 2, 2, geom.At(5, 0, 0))
	require.NoError(t, err)

	doc, err := h.Recompute(context.Background(), ws)
	require.NoError(t, err)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], `"part"`)
}

func TestStrictNamesHost(t *testing.T) {
	h := newHost(host.WithStrictNames(true))
	ws := h.CreateOrResetWorkspace("strict")
	_, err := ws.MakeBox("part", 1, 1, 1, geom.Identity())
	require.NoError(t, err)
	_, err = ws.MakeBox("part", 1, 1, 1, geom.Identity())
	assert.ErrorIs(t, err, workspace.ErrNameCollision)
}

func TestFitView(t *testing.T) {
	h := newHost()
	ws := h.CreateOrResetWorkspace("fit")
	assert.True(t, h.FitView(ws).IsEmpty())

	_, err := ws.MakeBox("a", 10, 10, 10, geom.Identity())
	require.NoError(t, err)
	_, err = ws.MakeBox("b", 10, 10, 10, geom.At(20, 20, 20))
	require.NoError(t, err)
	assert.True(t, h.FitView(ws).Near(geom.BoxOf(geom.V3(0, 0, 0), geom.V3(30, 30, 30)), 1e-9))
}

func TestRecomputeEmptyWorkspace(t *testing.T) {
	h := newHost()
	doc, err := h.Recompute(context.Background(), h.CreateOrResetWorkspace("empty"))
	require.NoError(t, err)
	assert.Empty(t, doc.Parts)
	assert.Empty(t, doc.Meshes)
	assert.Equal(t, geom.Box{}, doc.Bounds)
}

func TestConcurrentWorkspaces(t *testing.T) {
	h := newHost(host.WithMeshes(false))
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws := h.CreateOrResetWorkspace(string(rune('a' + i)))
			s, err := ws.MakeBox("box", float64(i+1), 1, 1, geom.Identity())
			if err != nil {
				errs[i] = err
				return
			}
			if err := h.Register(ws, s); err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = h.Recompute(context.Background(), ws)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestRecomputeMeshesEveryRegisteredPart(t *testing.T) {
	// Fine enough cells that the 3 mm strip is not lost between samples.
	h := host.NewHeadless(sdfx.New(sdfx.WithMeshCells(160)))
	ws := h.CreateOrResetWorkspace("ledstrip")
	res, err := parts.Build(ws, "ledstrip", map[string]float64{"sections": 2})
	require.NoError(t, err)
	for _, s := range res.Solids {
		require.NoError(t, h.Register(ws, s))
	}
	start := ws.Lookup("cap_start")
	require.NotNil(t, start)
	require.False(t, start.Visible(), "the mirror consumes the start cap")

	doc, err := h.Recompute(context.Background(), ws)
	require.NoError(t, err)
	require.Len(t, doc.Parts, 3)
	require.Len(t, doc.Meshes, len(doc.Parts))
	for i, p := range doc.Parts {
		assert.Equal(t, p.Name, doc.Meshes[i].PartName)
		assert.NotEmpty(t, doc.Meshes[i].Vertices, p.Name)
	}

	want := geom.EmptyBox()
	for _, s := range res.Solids {
		want = want.Union(s.BoundingBox())
	}
	assert.True(t, doc.Bounds.Near(want, 1e-9), doc.Bounds.String())
	assert.True(t, doc.Bounds.Near(h.FitView(ws), 1e-9))
	assert.True(t, doc.Bounds.Contains(start.BoundingBox().Min))
}

func TestPartReportsRotatedPlacement(t *testing.T) {
	h := newHost()
	ws := h.CreateOrResetWorkspace("turned")
	pl := geom.Rotated(geom.V3(5, 0, 0), geom.ZAxis, 90)
	_, err := ws.MakeBox("plate", 10, 4, 2, pl)
	require.NoError(t, err)

	doc, err := h.Recompute(context.Background(), ws)
	require.NoError(t, err)
	require.Len(t, doc.Parts, 1)
	assert.True(t, doc.Parts[0].Placement.Near(pl, 1e-9))

	b, err := json.Marshal(doc.Parts[0])
	require.NoError(t, err)
	var back host.Part
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Placement.Near(pl, 1e-9), string(b))
}
