package workspace

import (
	"strings"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/graph"
)

// Fuse unions two or more solids. The result enumerates the inputs' edges
// in argument order, dropping edges buried inside another input.
func (w *Workspace) Fuse(name string, solids ...*Solid) (*Solid, error) {
	if len(solids) < 2 {
		return nil, NewOpError("fuse", name, invalidf("fuse needs at least 2 solids, got %d", len(solids)))
	}
	if err := distinct(solids); err != nil {
		return nil, NewOpError("fuse", name, err)
	}
	lineages := make([]string, len(solids))
	for i, s := range solids {
		lineages[i] = s.lineage
	}
	n := &graph.Node{
		Kind:      graph.NodeFuse,
		Placement: geom.Identity(),
		Data:      graph.FuseData{},
	}
	return w.build("fuse", name, n, "fuse("+strings.Join(lineages, ",")+")", solids...)
}

// Cut subtracts tool from base. A tool that misses the base leaves it
// volumetrically unchanged.
func (w *Workspace) Cut(name string, base, tool *Solid) (*Solid, error) {
	if base != nil && base == tool {
		return nil, NewOpError("cut", name, invalidf("cannot cut %q from itself", base.name))
	}
	n := &graph.Node{
		Kind:      graph.NodeCut,
		Placement: geom.Identity(),
		Data:      graph.CutData{},
	}
	var lineage string
	if base != nil && tool != nil {
		lineage = "cut(" + base.lineage + "," + tool.lineage + ")"
	}
	return w.build("cut", name, n, lineage, base, tool)
}

// Mirror reflects src about the plane through plane.Base whose normal is
// plane.Rotation applied to X. The identity placement is the YZ plane.
func (w *Workspace) Mirror(name string, src *Solid, plane geom.Placement) (*Solid, error) {
	n := &graph.Node{
		Kind:      graph.NodeMirror,
		Placement: geom.Identity(),
		Data:      graph.MirrorData{Plane: plane},
	}
	return w.build("mirror", name, n, lineageOf(src), src)
}

// Place re-places src: the result's placement is pl composed on top of
// the source's placement.
func (w *Workspace) Place(name string, src *Solid, pl geom.Placement) (*Solid, error) {
	n := &graph.Node{
		Kind: graph.NodePlace,
		Data: graph.PlaceData{Delta: pl},
	}
	if src != nil {
		n.Placement = geom.Compose(pl, src.placement)
	}
	return w.build("place", name, n, lineageOf(src), src)
}

func lineageOf(s *Solid) string {
	if s == nil {
		return ""
	}
	return s.lineage
}

func distinct(solids []*Solid) error {
	seen := make(map[*Solid]bool, len(solids))
	for _, s := range solids {
		if s == nil {
			continue
		}
		if seen[s] {
			return invalidf("solid %q given twice", s.name)
		}
		seen[s] = true
	}
	return nil
}
