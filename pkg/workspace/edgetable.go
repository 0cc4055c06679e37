package workspace

import (
	"fmt"

	"github.com/chazu/printparts/pkg/graph"
)

// EdgeTable is a named set of edge indices valid for exactly one
// construction sequence, identified by its lineage. Indices depend on the
// kernel's enumeration, so a table must never be applied to a solid built
// differently.
type EdgeTable struct {
	Name    string
	Lineage string
	Edges   []int
}

// For checks that the table was written for s.
func (t EdgeTable) For(s *Solid) error {
	if s == nil {
		return invalidf("edge table %q applied to nil solid", t.Name)
	}
	if s.lineage != t.Lineage {
		return fmt.Errorf("edge table %q expects %s, solid %q is %s: %w",
			t.Name, t.Lineage, s.name, s.lineage, ErrStaleEdgeTable)
	}
	return nil
}

// Select returns selectors for the table's edges on s with sizes size1 and
// size2. It fails with ErrStaleEdgeTable when s has a different lineage.
func (t EdgeTable) Select(s *Solid, size1, size2 float64) ([]graph.EdgeSelector, error) {
	if err := t.For(s); err != nil {
		return nil, err
	}
	out := make([]graph.EdgeSelector, len(t.Edges))
	for i, idx := range t.Edges {
		out[i] = graph.EdgeSelector{Index: idx, Size1: size1, Size2: size2}
	}
	return out, nil
}

// FilletTable fillets the table's edges of base with radius r.
func (w *Workspace) FilletTable(name string, base *Solid, t EdgeTable, r float64) (*Solid, error) {
	sel, err := t.Select(base, r, 0)
	if err != nil {
		return nil, NewOpError("fillet", name, err)
	}
	return w.Fillet(name, base, sel)
}

// ChamferTable chamfers the table's edges of base with setback d.
func (w *Workspace) ChamferTable(name string, base *Solid, t EdgeTable, d float64) (*Solid, error) {
	sel, err := t.Select(base, d, 0)
	if err != nil {
		return nil, NewOpError("chamfer", name, err)
	}
	return w.Chamfer(name, base, sel)
}
