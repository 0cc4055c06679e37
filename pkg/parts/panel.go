package parts

import (
	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/workspace"
)

func init() {
	Register(Script{
		Name:        "panel",
		Description: "honeycomb wall panel with a T-tab that slides into a support",
		Defaults: withNotch(Params{
			"length":     40,
			"width":      20,
			"height":     5,
			"hex_radius": 3,
			"columns":    3,
			"rows":       2,
			"tolerance":  0.05,
		}),
		Build: buildPanel,
	})
}

func buildPanel(ws *workspace.Workspace, p Params) ([]*workspace.Solid, error) {
	h := p["height"]
	slot := notchSpec(p, h)
	tab := slot.Plug(p["tolerance"])
	if err := CheckFit(tab.Mating(), slot.Mating(), p["tolerance"]); err != nil {
		return nil, err
	}

	// The honeycomb's first cell is centred 5mm in from the panel corner.
	plate, err := ws.MakeBox("plate", p["length"], p["width"], h, geom.At(-5, -5, 0))
	if err != nil {
		return nil, err
	}
	cols, rows := int(p["columns"]), int(p["rows"])
	grid, err := HexGrid(ws, "honeycomb", p["hex_radius"], h, cols, rows, geom.Identity())
	if err != nil {
		return nil, err
	}
	plate, err = ws.Cut("plate_cut", plate, grid)
	if err != nil {
		return nil, err
	}

	// The tab points out of the x-low edge, centred on it.
	at := geom.Placement{
		Base:     geom.V3(-5, -5+p["width"]/2-tab.ShaftLen/2, 0),
		Rotation: geom.RotZ(90),
	}
	t, err := TNotch(ws, "tab", tab, at)
	if err != nil {
		return nil, err
	}
	panel, err := ws.Fuse("panel", plate, t)
	if err != nil {
		return nil, err
	}
	return []*workspace.Solid{panel}, nil
}
