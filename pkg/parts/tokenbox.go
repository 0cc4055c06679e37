package parts

import (
	"maps"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/workspace"
)

// The bottom rim of a cylinder.
var cylinderFloorRim = workspace.EdgeTable{
	Name:    "cylinder floor rim",
	Lineage: "cylinder",
	Edges:   []int{3},
}

func init() {
	defaults := Params{
		"small_radius":  9.2,
		"large_radius":  18.5,
		"center_radius": 14,
		"notch_length":  14,
		"notch_width":   8,
		"spacing_extra": 2.1,
		"scoop":         3,
	}
	maps.Copy(defaults, tcgDefaults)
	Register(Script{
		Name:        "tokenbox",
		Description: "token box with finger-notched pockets on every side and a sliding lid",
		Defaults:    defaults,
		Build:       buildTokenBox,
	})
}

// tokenPocket makes a round pocket cutter with a notch running out along
// +y for a finger, its floor rim bevelled.
func tokenPocket(ws *workspace.Workspace, p Params, r float64) (*workspace.Solid, error) {
	h := p["height"] - p["floor"]
	head, err := ws.MakeCylinder("", r, h, geom.Identity())
	if err != nil {
		return nil, err
	}
	rim, err := cylinderFloorRim.Select(head, p["scoop"], p["scoop"]/3)
	if err != nil {
		return nil, err
	}
	if head, err = ws.Chamfer("", head, rim); err != nil {
		return nil, err
	}
	nl := p["notch_length"]
	notch, err := ws.MakeBox("", nl, p["notch_width"]+r, h, geom.At(-nl/2, 0, 0))
	if err != nil {
		return nil, err
	}
	return ws.Fuse("", notch, head)
}

// pocketRow places cols×rows copies of a pocket turned deg about z.
func pocketRow(ws *workspace.Workspace, p Params, r, deg float64, cols, rows int, step geom.Vec3, at geom.Vec3) (*workspace.Solid, error) {
	pocket, err := tokenPocket(ws, p, r)
	if err != nil {
		return nil, err
	}
	if deg != 0 {
		if pocket, err = ws.Place("", pocket, geom.Rotated(geom.Vec3{}, geom.ZAxis, deg)); err != nil {
			return nil, err
		}
	}
	return ws.OrthoArray("", pocket, workspace.ArraySpec{
		Counts:  [3]int{cols, rows, 1},
		Spacing: workspace.GridSpacing(step.X, step.Y, 0),
		Base:    geom.Translation(at),
	})
}

func buildTokenBox(ws *workspace.Workspace, p Params) ([]*workspace.Solid, error) {
	shell, err := ws.MakeBox("body", p["length"], p["width"], p["height"], geom.Identity())
	if err != nil {
		return nil, err
	}
	if shell, err = ws.FilletTable("body_rounded", shell, boxVerticals, p["corner"]); err != nil {
		return nil, err
	}

	s, l, gap := p["small_radius"], p["large_radius"], p["spacing_extra"]
	z := p["floor"]
	inset := p["wall"] + p["lip"]

	// Notches out through the y-low wall.
	sideA, err := pocketRow(ws, p, s, 180, 4, 1, geom.V3(2*s+gap, 0, 0),
		geom.V3(s+inset+gap, s, z))
	if err != nil {
		return nil, err
	}
	// Notches out through the x-low wall.
	sideB, err := pocketRow(ws, p, s, 90, 1, 2, geom.V3(0, 2*s+gap, 0),
		geom.V3(s, 3*s+gap, z))
	if err != nil {
		return nil, err
	}
	// Notches out through the y-high wall.
	sideC, err := pocketRow(ws, p, s, 0, 2, 1, geom.V3(2*s+gap, 0, 0),
		geom.V3(3*s, p["width"]-s, z))
	if err != nil {
		return nil, err
	}
	// One large pocket out through the x-high wall.
	sideD, err := pocketRow(ws, p, l, 270, 1, 1, geom.Vec3{},
		geom.V3(p["width"], l+2*s+gap, z))
	if err != nil {
		return nil, err
	}
	center, err := ws.MakeCylinder("center", p["center_radius"], p["height"]-z, geom.At(35, 35, z))
	if err != nil {
		return nil, err
	}
	slot, err := buildLidSlot(ws, p)
	if err != nil {
		return nil, err
	}
	box, err := Punch(ws, "tokenbox", shell, sideA, sideB, sideC, sideD, center, slot)
	if err != nil {
		return nil, err
	}
	lid, err := buildLid(ws, p)
	if err != nil {
		return nil, err
	}
	return []*workspace.Solid{box, lid}, nil
}
