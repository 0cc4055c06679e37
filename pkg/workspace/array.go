package workspace

import (
	"fmt"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/graph"
)

// ArraySpec describes an orthogonal grid of copies. Copy (i, j, k) is
// offset by i·Spacing[0] + j·Spacing[1] + k·Spacing[2] in the Base frame.
type ArraySpec struct {
	Counts  [3]int
	Spacing [3]geom.Vec3
	Base    geom.Placement
}

// GridSpacing returns axis-aligned spacing vectors.
func GridSpacing(sx, sy, sz float64) [3]geom.Vec3 {
	return [3]geom.Vec3{geom.V3(sx, 0, 0), geom.V3(0, sy, 0), geom.V3(0, 0, sz)}
}

// Copies returns the number of copies the array produces.
func (a ArraySpec) Copies() int {
	return a.Counts[0] * a.Counts[1] * a.Counts[2]
}

// Offsets returns the placement of every copy, i fastest, then j, then k.
func (a ArraySpec) Offsets() []geom.Placement {
	out := make([]geom.Placement, 0, max(a.Copies(), 0))
	for k := 0; k < a.Counts[2]; k++ {
		for j := 0; j < a.Counts[1]; j++ {
			for i := 0; i < a.Counts[0]; i++ {
				off := a.Spacing[0].Scale(float64(i)).
					Add(a.Spacing[1].Scale(float64(j))).
					Add(a.Spacing[2].Scale(float64(k)))
				out = append(out, geom.Compose(a.Base, geom.Translation(off)))
			}
		}
	}
	return out
}

func (a ArraySpec) data() graph.ArrayData {
	return graph.ArrayData{Counts: a.Counts, Spacing: a.Spacing, Base: a.Base}
}

// OrthoArray fuses the copies of src laid out by spec.
func (w *Workspace) OrthoArray(name string, src *Solid, spec ArraySpec) (*Solid, error) {
	for axis, c := range spec.Counts {
		if c < 1 {
			return nil, NewOpError("array", name, invalidf("array count on axis %d must be at least 1, got %d", axis, c))
		}
	}
	n := &graph.Node{
		Kind: graph.NodeArray,
		Data: spec.data(),
	}
	if src != nil {
		n.Placement = src.placement
	}
	lineage := fmt.Sprintf("array%dx%dx%d(%s)", spec.Counts[0], spec.Counts[1], spec.Counts[2], lineageOf(src))
	return w.build("array", name, n, lineage, src)
}
