package parts

import (
	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/workspace"
)

// Edge tables for the box family. On a plain box the vertical edges are
// 1, 3, 5, 7 and the top edges 2, 6, 10, 12; a fillet splits each chosen
// edge in two and shifts every later index.
var (
	boxVerticals = workspace.EdgeTable{
		Name:    "box verticals",
		Lineage: "box",
		Edges:   []int{1, 3, 5, 7},
	}
	roundedBoxTop = workspace.EdgeTable{
		Name:    "rounded box top",
		Lineage: "fillet[1,3,5,7](box)",
		Edges:   []int{3, 9, 14, 16},
	}
	slotBackCorners = workspace.EdgeTable{
		Name:    "slot back corners",
		Lineage: "box",
		Edges:   []int{3, 7},
	}
	// The y-low top edge stays square so the slot opens onto that side.
	slotTop = workspace.EdgeTable{
		Name:    "slot top",
		Lineage: "fillet[3,7](box)",
		Edges:   []int{2, 7, 14},
	}
)

var tcgDefaults = Params{
	"length":        90,
	"width":         70,
	"height":        22,
	"floor":         1.2,
	"wall":          1,
	"lip":           1,
	"corner":        3,
	"lid_height":    2.2,
	// clearance is the lid's gap τ: the lid is nominal − τ and its slot is
	// nominal + τ. tolerance is the printer's per-side margin that the gap
	// between them has to cover.
	"clearance":     0.1,
	"tolerance":     0.1,
	"hex_radius":    6,
	"window_radius": 3,
}

func init() {
	Register(Script{
		Name:        "tcgbox",
		Description: "card box with a sliding honeycomb lid and side windows",
		Defaults:    tcgDefaults,
		Build:       buildTCGBox,
	})
	Register(Script{
		Name:        "lid",
		Description: "the card box lid on its own",
		Defaults:    tcgDefaults,
		Build: func(ws *workspace.Workspace, p Params) ([]*workspace.Solid, error) {
			lid, err := buildLid(ws, p)
			if err != nil {
				return nil, err
			}
			return []*workspace.Solid{lid}, nil
		},
	})
}

// lidNominal is the lid size before clearance: it spans the box between
// the side walls and from the open end to the back wall.
func lidNominal(p Params) geom.Vec3 {
	return geom.V3(p["length"]-2*p["wall"], p["width"]-p["wall"], p["lid_height"])
}

// lidClearance is the clearance vector applied to every axis of the lid.
func lidClearance(p Params) geom.Vec3 {
	return geom.V3(p["clearance"], p["clearance"], p["clearance"])
}

// lidFit checks the lid, nominal − clearance, against the slot it slides
// in, nominal + clearance.
func lidFit(p Params) error {
	n := lidNominal(p)
	return CheckFit(n.Sub(lidClearance(p)), n.Add(lidClearance(p)), p["tolerance"])
}

// buildLid makes the lid: a rounded, chamfered plate with a honeycomb.
func buildLid(ws *workspace.Workspace, p Params) (*workspace.Solid, error) {
	if err := lidFit(p); err != nil {
		return nil, err
	}
	size := lidNominal(p).Sub(lidClearance(p))
	plate, err := ws.MakeBox("lid_plate", size.X, size.Y, size.Z, geom.Identity())
	if err != nil {
		return nil, err
	}
	if plate, err = ws.FilletTable("lid_rounded", plate, boxVerticals, p["corner"]); err != nil {
		return nil, err
	}
	if plate, err = ws.ChamferTable("lid_bevel", plate, roundedBoxTop, p["lid_height"]*0.75); err != nil {
		return nil, err
	}
	r := p["hex_radius"]
	grid, err := HexGrid(ws, "lid_honeycomb", r, p["lid_height"], 3, 4, geom.At(12.5, 13, 0))
	if err != nil {
		return nil, err
	}
	return ws.Cut("lid", plate, grid)
}

// buildLidSlot makes the cutter for the lid's sliding slot, sized
// nominal + clearance and standing proud of the box top.
func buildLidSlot(ws *workspace.Workspace, p Params) (*workspace.Solid, error) {
	c := p["clearance"]
	size := lidNominal(p).Add(lidClearance(p))
	at := geom.At(p["wall"]-c/2, -c, p["height"]-p["lid_height"]-c/2)
	slot, err := ws.MakeBox("slot", size.X, size.Y, size.Z, at)
	if err != nil {
		return nil, err
	}
	if slot, err = ws.FilletTable("slot_rounded", slot, slotBackCorners, p["corner"]); err != nil {
		return nil, err
	}
	return ws.ChamferTable("slot_bevel", slot, slotTop, p["lid_height"]*0.75)
}

// buildShell makes the rounded box hollowed out to leave a lip the lid
// rests on, with the lid slot cut into its top.
func buildShell(ws *workspace.Workspace, p Params) (*workspace.Solid, error) {
	body, err := ws.MakeBox("body", p["length"], p["width"], p["height"], geom.Identity())
	if err != nil {
		return nil, err
	}
	if body, err = ws.FilletTable("body_rounded", body, boxVerticals, p["corner"]); err != nil {
		return nil, err
	}
	inset := p["wall"] + p["lip"]
	hollow, err := ws.MakeBox("hollow",
		p["length"]-2*inset, p["width"]-2*inset, p["height"]-p["floor"]-p["lid_height"],
		geom.At(inset, inset, p["floor"]))
	if err != nil {
		return nil, err
	}
	slot, err := buildLidSlot(ws, p)
	if err != nil {
		return nil, err
	}
	return Punch(ws, "shell", body, hollow, slot)
}

func buildTCGBox(ws *workspace.Workspace, p Params) ([]*workspace.Solid, error) {
	shell, err := buildShell(ws, p)
	if err != nil {
		return nil, err
	}

	r := p["hex_radius"]
	floor, err := HexGrid(ws, "floor_honeycomb", r, p["floor"], 3, 4, geom.At(14.5, 13, 0))
	if err != nil {
		return nil, err
	}

	// Windows through the long walls: prisms laid along -y.
	wr := p["window_radius"]
	long, err := HexGrid(ws, "long_windows", wr, p["width"], 7, 2,
		geom.Placement{Base: geom.V3(2*wr, p["width"], 2*wr), Rotation: geom.RotX(90)})
	if err != nil {
		return nil, err
	}
	// Windows through the short walls: the grid frame is turned so its
	// x, y and z run along y, z and x.
	short, err := HexGrid(ws, "short_windows", wr, p["length"], 5, 2,
		geom.Placement{Base: geom.V3(0, p["width"]/2-25.5, 2*wr), Rotation: geom.NewRotation(geom.V3(1, 1, 1), 120)})
	if err != nil {
		return nil, err
	}

	body, err := Punch(ws, "tcgbox", shell, floor, long, short)
	if err != nil {
		return nil, err
	}
	lid, err := buildLid(ws, p)
	if err != nil {
		return nil, err
	}
	return []*workspace.Solid{body, lid}, nil
}
