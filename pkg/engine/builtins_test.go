package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/workspace"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(box "body" 1 2 3 :at p)`,
			expect: `(box "body" 1 2 3 "__kw_at" p)`,
		},
		{
			name:   "multiple keywords",
			input:  `(fillet r :edges e :size 3)`,
			expect: `(fillet r "__kw_edges" e "__kw_size" 3)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(ortho-array hex :base-at p)`,
			expect: `(ortho_array hex "__kw_base-at" p)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:lid-height`,
			expect: `"__kw_lid-height"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustEvaluate(t *testing.T, eng *Engine, source string) *workspace.Workspace {
	t.Helper()
	ws, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if ws == nil {
		t.Fatal("expected non-nil workspace")
	}
	return ws
}

func mustSolid(t *testing.T, ws *workspace.Workspace, name string) *workspace.Solid {
	t.Helper()
	s := ws.Lookup(name)
	if s == nil {
		t.Fatalf("expected solid named %q", name)
	}
	return s
}

func checkBox(t *testing.T, what string, got, want geom.Box) {
	t.Helper()
	near := func(a, b geom.Vec3) bool {
		return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6 && math.Abs(a.Z-b.Z) < 1e-6
	}
	if !near(got.Min, want.Min) || !near(got.Max, want.Max) {
		t.Errorf("%s bounds = %v..%v, want %v..%v", what, got.Min, got.Max, want.Min, want.Max)
	}
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

func TestBox(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `(box "body" 90 70 22)`)

	body := mustSolid(t, ws, "body")
	if body.Kind() != "box" {
		t.Errorf("kind = %q, want box", body.Kind())
	}
	if body.EdgeCount() != 12 {
		t.Errorf("edge count = %d, want 12", body.EdgeCount())
	}
	checkBox(t, "body", body.BoundingBox(), geom.BoxOf(geom.V3(0, 0, 0), geom.V3(90, 70, 22)))
}

func TestPlacementKeyword(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(box "moved" 2 2 2 :at (at 10 0 5))
(box "turned" 4 2 2 :at (at 0 0 0 :rot (rot :z 90)))
(box "vec" 1 1 1 :at (vec3 -3 -3 0))
`)
	checkBox(t, "moved", mustSolid(t, ws, "moved").BoundingBox(),
		geom.BoxOf(geom.V3(10, 0, 5), geom.V3(12, 2, 7)))
	checkBox(t, "turned", mustSolid(t, ws, "turned").BoundingBox(),
		geom.BoxOf(geom.V3(-2, 0, 0), geom.V3(0, 4, 2)))
	checkBox(t, "vec", mustSolid(t, ws, "vec").BoundingBox(),
		geom.BoxOf(geom.V3(-3, -3, 0), geom.V3(-2, -2, 1)))
}

func TestCylinderAndPrism(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(cylinder "peg" 3 10)
(prism "hex" 6 2 1.2)
(prism "square" 4 :inradius 5 :height 2)
`)
	if n := mustSolid(t, ws, "peg").EdgeCount(); n != 3 {
		t.Errorf("cylinder edge count = %d, want 3", n)
	}
	if n := mustSolid(t, ws, "hex").EdgeCount(); n != 18 {
		t.Errorf("hexagonal prism edge count = %d, want 18", n)
	}
	sq := mustSolid(t, ws, "square")
	if sq.Lineage() != "prism4" {
		t.Errorf("lineage = %q, want prism4", sq.Lineage())
	}
	// A square with inradius 5 spans 10 across its flats.
	bb := sq.BoundingBox()
	if math.Abs(bb.Max.Z-2) > 1e-6 {
		t.Errorf("prism height = %g, want 2", bb.Max.Z)
	}
	if !sq.Contains(geom.V3(4.9, 0, 1)) {
		t.Error("point just inside the flat should be inside the prism")
	}
}

func TestWedgeKeywords(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(wedge "clip" :xmax 20 :ymax 3 :zmax 8.2 :x2min 0 :x2max 0 :z2max 8.2)
`)
	clip := mustSolid(t, ws, "clip")
	if clip.EdgeCount() != 10 {
		t.Errorf("collapsed wedge edge count = %d, want 10", clip.EdgeCount())
	}
}

func TestExtrude(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(extrude "bar" (list 0 0 4 0 4 4 0 4) :distance 6)
`)
	bar := mustSolid(t, ws, "bar")
	if bar.Lineage() != "extrude4" {
		t.Errorf("lineage = %q, want extrude4", bar.Lineage())
	}
	checkBox(t, "bar", bar.BoundingBox(), geom.BoxOf(geom.V3(0, 0, 0), geom.V3(4, 4, 6)))
}

// ---------------------------------------------------------------------------
// Combinators
// ---------------------------------------------------------------------------

func TestCutHole(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(def body (box "body" 20 20 10))
(def hole (cylinder "hole" 5 10 :at (at 10 10 2)))
(cut "cup" body hole)
`)
	cup := mustSolid(t, ws, "cup")
	if cup.Lineage() != "cut(box,cylinder)" {
		t.Errorf("lineage = %q, want cut(box,cylinder)", cup.Lineage())
	}
	if cup.Contains(geom.V3(10, 10, 5)) {
		t.Error("hole center should be outside the cup")
	}
	if !cup.Contains(geom.V3(1, 1, 5)) {
		t.Error("corner should be inside the cup")
	}
	if got := len(ws.Visible()); got != 1 {
		t.Errorf("visible solids = %d, want 1 (inputs are consumed)", got)
	}
}

func TestFuseList(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(def a (box "a" 2 2 2))
(def b (box "b" 2 2 2 :at (at 5 0 0)))
(fuse "pair" (list a b))
`)
	pair := mustSolid(t, ws, "pair")
	if pair.Lineage() != "fuse(box,box)" {
		t.Errorf("lineage = %q, want fuse(box,box)", pair.Lineage())
	}
	checkBox(t, "pair", pair.BoundingBox(), geom.BoxOf(geom.V3(0, 0, 0), geom.V3(7, 2, 2)))
}

func TestMirrorAndPlace(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(def b (box "b" 10 10 10))
(def m (mirror "m" b))
(place "p" m (at 0 0 5))
`)
	p := mustSolid(t, ws, "p")
	checkBox(t, "p", p.BoundingBox(), geom.BoxOf(geom.V3(-10, 0, 5), geom.V3(0, 10, 15)))
	if p.Lineage() != "box" {
		t.Errorf("lineage = %q, want box", p.Lineage())
	}
}

func TestOrthoArray(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(ortho-array "grid" (box "cell" 2 2 2) :counts (list 3 2 1) :spacing (vec3 5 5 0))
`)
	grid := mustSolid(t, ws, "grid")
	if grid.Lineage() != "array3x2x1(box)" {
		t.Errorf("lineage = %q, want array3x2x1(box)", grid.Lineage())
	}
	if grid.EdgeCount() != 72 {
		t.Errorf("edge count = %d, want 72", grid.EdgeCount())
	}
	checkBox(t, "grid", grid.BoundingBox(), geom.BoxOf(geom.V3(0, 0, 0), geom.V3(12, 7, 2)))
}

// ---------------------------------------------------------------------------
// Edge features
// ---------------------------------------------------------------------------

func TestFilletThenChamfer(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(def r (fillet "r" (box "b" 20 10 5) :edges (list 1 3 5 7) :size 1))
(chamfer "c" r (edge 3 0.5) (edge 9 0.5) (edge 14 0.5) (edge 16 0.5))
`)
	r := mustSolid(t, ws, "r")
	if r.EdgeCount() != 16 {
		t.Errorf("filleted edge count = %d, want 16", r.EdgeCount())
	}
	c := mustSolid(t, ws, "c")
	if c.EdgeCount() != 20 {
		t.Errorf("chamfered edge count = %d, want 20", c.EdgeCount())
	}
	want := "chamfer[3,9,14,16](fillet[1,3,5,7](box))"
	if c.Lineage() != want {
		t.Errorf("lineage = %q, want %q", c.Lineage(), want)
	}
}

func TestEdgeCountBuiltin(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(box "probe" 1 1 1)
(box "sized" (edge-count (solid "probe")) 1 1)
`)
	bb := mustSolid(t, ws, "sized").BoundingBox()
	if math.Abs(bb.Max.X-12) > 1e-6 {
		t.Errorf("length = %g, want 12", bb.Max.X)
	}
}

// ---------------------------------------------------------------------------
// Parameters and warnings
// ---------------------------------------------------------------------------

func TestParamOverride(t *testing.T) {
	eng := newTestEngine()
	src := `(box "b" (param "length" 10) 5 5)`

	res, err := eng.EvaluateParams("params", src, map[string]float64{"length": 30, "bogus": 1})
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("eval errors: %v", res.Errors)
	}
	if res.Workspace.Name() != "params" {
		t.Errorf("workspace name = %q, want params", res.Workspace.Name())
	}
	bb := mustSolid(t, res.Workspace, "b").BoundingBox()
	if math.Abs(bb.Max.X-30) > 1e-6 {
		t.Errorf("length = %g, want 30", bb.Max.X)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one for the unread parameter", res.Warnings)
	}

	ws := mustEvaluate(t, eng, src)
	bb = mustSolid(t, ws, "b").BoundingBox()
	if math.Abs(bb.Max.X-10) > 1e-6 {
		t.Errorf("default length = %g, want 10", bb.Max.X)
	}
}

func TestNameCollisionWarns(t *testing.T) {
	res, err := newTestEngine().EvaluateParams("dup", `
(box "b" 1 1 1)
(box "b" 2 2 2)
`, nil)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("eval errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one collision", res.Warnings)
	}
	if res.Warnings[0].NodeID.IsZero() {
		t.Error("collision warning should name the winning node")
	}
	bb := mustSolid(t, res.Workspace, "b").BoundingBox()
	if math.Abs(bb.Max.X-2) > 1e-6 {
		t.Errorf("later solid should win, got length %g", bb.Max.X)
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestConstructionErrors(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		source string
		want   error
	}{
		{
			name:   "zero dimension",
			source: `(box "b" 0 1 1)`,
			want:   workspace.ErrInvalidParameter,
		},
		{
			name:   "edge out of range",
			source: `(fillet "f" (box "b" 1 1 1) (edge 13 0.1))`,
			want:   workspace.ErrEdgeIndexOutOfRange,
		},
		{
			name:   "fillet too large",
			source: `(fillet "f" (box "b" 2 2 2) (edge 1 100))`,
			want:   workspace.ErrGeometryInfeasible,
		},
		{
			name:   "strict name collision",
			opts:   []Option{WithStrictNames(true)},
			source: "(box \"b\" 1 1 1)\n(box \"b\" 2 2 2)",
			want:   workspace.ErrNameCollision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, evalErrs, err := newTestEngine(tt.opts...).Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if ws != nil {
				t.Fatal("expected nil workspace on failure")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			if !errors.Is(evalErrs[0], tt.want) {
				t.Errorf("error %v (cause %v), want %v", evalErrs[0], evalErrs[0].Err, tt.want)
			}
		})
	}
}

func TestUnknownSolid(t *testing.T) {
	_, evalErrs, err := newTestEngine().Evaluate(`(solid "missing")`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error for an unknown solid")
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	ws := mustEvaluate(t, newTestEngine(), `
(def wall 1.2)
(box "b" (+ 10 (* 2 wall)) 5 5)
`)
	bb := mustSolid(t, ws, "b").BoundingBox()
	if math.Abs(bb.Max.X-12.4) > 1e-9 {
		t.Errorf("length = %g, want 12.4", bb.Max.X)
	}
}
