package workspace

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/printparts/pkg/graph"
	"github.com/chazu/printparts/pkg/kernel/topo"
)

// Edge selects edge index with a constant size: a fillet radius or a
// symmetric chamfer setback.
func Edge(index int, size float64) graph.EdgeSelector {
	return graph.EdgeSelector{Index: index, Size1: size}
}

// Edges selects every index with the same constant size.
func Edges(size float64, indices ...int) []graph.EdgeSelector {
	out := make([]graph.EdgeSelector, len(indices))
	for i, idx := range indices {
		out[i] = Edge(idx, size)
	}
	return out
}

// Fillet rounds the selected edges of base. Size1 and Size2 are the radii
// at the edge's start and end.
func (w *Workspace) Fillet(name string, base *Solid, edges []graph.EdgeSelector) (*Solid, error) {
	return w.feature("fillet", graph.NodeFillet, name, base, edges)
}

// Chamfer bevels the selected edges of base. Size1 is the setback on the
// edge's first face and Size2 on its second.
func (w *Workspace) Chamfer(name string, base *Solid, edges []graph.EdgeSelector) (*Solid, error) {
	return w.feature("chamfer", graph.NodeChamfer, name, base, edges)
}

func (w *Workspace) feature(op string, kind graph.NodeKind, name string, base *Solid, edges []graph.EdgeSelector) (*Solid, error) {
	if err := w.own(base); err != nil {
		return nil, NewOpError(op, name, err)
	}
	if err := checkSelectors(edges, base.EdgeCount()); err != nil {
		return nil, NewOpError(op, name, err)
	}
	n := &graph.Node{
		Kind:      kind,
		Placement: base.placement,
		Data:      graph.FeatureData{Edges: append([]graph.EdgeSelector(nil), edges...)},
	}
	return w.build(op, name, n, featureLineage(op, edges, base.lineage), base)
}

func checkSelectors(edges []graph.EdgeSelector, count int) error {
	if len(edges) == 0 {
		return invalidf("no edges selected")
	}
	seen := make(map[int]bool, len(edges))
	for _, e := range edges {
		s1, s2 := e.Sizes()
		if !(s1 > 0) || !(s2 > 0) {
			return invalidf("edge %d size must be positive, got %g/%g", e.Index, e.Size1, e.Size2)
		}
		if seen[e.Index] {
			return invalidf("edge %d selected twice", e.Index)
		}
		seen[e.Index] = true
	}
	for _, e := range edges {
		if e.Index < 1 || e.Index > count {
			return fmt.Errorf("edge %d of %d: %w", e.Index, count, ErrEdgeIndexOutOfRange)
		}
	}
	return nil
}

// featureLineage lists indices in selection order.
func featureLineage(op string, edges []graph.EdgeSelector, base string) string {
	idx := make([]string, len(edges))
	for i, e := range edges {
		idx[i] = strconv.Itoa(e.Index)
	}
	return op + "[" + strings.Join(idx, ",") + "](" + base + ")"
}

func features(edges []graph.EdgeSelector) []topo.Feature {
	out := make([]topo.Feature, len(edges))
	for i, e := range edges {
		s1, s2 := e.Sizes()
		out[i] = topo.Feature{Index: e.Index, Size1: s1, Size2: s2}
	}
	return out
}
