package parts

import (
	"fmt"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/workspace"
)

// Punch fuses tools into one cutter and removes it from base.
func Punch(ws *workspace.Workspace, name string, base *workspace.Solid, tools ...*workspace.Solid) (*workspace.Solid, error) {
	if len(tools) == 0 {
		return nil, workspace.NewOpError("punch", name, fmt.Errorf("no tools: %w", workspace.ErrInvalidParameter))
	}
	tool := tools[0]
	if len(tools) > 1 {
		toolName := ""
		if name != "" {
			toolName = name + "_tool"
		}
		var err error
		if tool, err = ws.Fuse(toolName, tools...); err != nil {
			return nil, err
		}
	}
	return ws.Cut(name, base, tool)
}

// HexPattern fuses two hexagonal prisms of circumradius r: one at the
// origin and one offset by (2r, r). Tiled with spacing (4r, 2r) the
// pattern forms a staggered honeycomb.
func HexPattern(ws *workspace.Workspace, name string, r, h float64) (*workspace.Solid, error) {
	spec := workspace.PrismSpec{Sides: 6, Circumradius: r, Height: h}
	one, err := ws.MakePrism("", spec, geom.Identity())
	if err != nil {
		return nil, err
	}
	two, err := ws.MakePrism("", spec, geom.At(2*r, r, 0))
	if err != nil {
		return nil, err
	}
	return ws.Fuse(name, one, two)
}

// HexGrid replicates a HexPattern cols×rows times and places the grid
// at base.
func HexGrid(ws *workspace.Workspace, name string, r, h float64, cols, rows int, base geom.Placement) (*workspace.Solid, error) {
	pattern, err := HexPattern(ws, "", r, h)
	if err != nil {
		return nil, err
	}
	return ws.OrthoArray(name, pattern, workspace.ArraySpec{
		Counts:  [3]int{cols, rows, 1},
		Spacing: workspace.GridSpacing(4*r, 2*r, 0),
		Base:    base,
	})
}

// TSpec sizes a T-shaped notch: a shaft along +y capped by a wider head.
type TSpec struct {
	ShaftLen, ShaftWid float64
	HeadLen, HeadWid   float64
	Height             float64
}

// Plug returns the tab that slides into a notch of this size with
// clearance tol on each side.
func (t TSpec) Plug(tol float64) TSpec {
	return TSpec{
		ShaftLen: t.ShaftLen - 2*tol,
		ShaftWid: t.ShaftWid,
		HeadLen:  t.HeadLen - 4*tol,
		HeadWid:  t.HeadWid - 2*tol,
		Height:   t.Height,
	}
}

// Mating returns the dimensions that must clear a matching notch: shaft
// width, head width and head depth.
func (t TSpec) Mating() geom.Vec3 {
	return geom.V3(t.ShaftLen, t.HeadLen, t.HeadWid)
}

// TNotch builds the T at pl. In its own frame the shaft spans
// [0, ShaftLen]×[0, ShaftWid] and the head sits centred on its far end.
func TNotch(ws *workspace.Workspace, name string, t TSpec, pl geom.Placement) (*workspace.Solid, error) {
	shaft, err := ws.MakeBox("", t.ShaftLen, t.ShaftWid, t.Height, pl)
	if err != nil {
		return nil, err
	}
	head, err := ws.MakeBox("", t.HeadLen, t.HeadWid, t.Height,
		geom.Compose(pl, geom.At(t.ShaftLen/2-t.HeadLen/2, t.ShaftWid, 0)))
	if err != nil {
		return nil, err
	}
	return ws.Fuse(name, head, shaft)
}
