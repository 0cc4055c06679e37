package parts

import (
	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/workspace"
)

// The long top edges of a box rounded on its four verticals.
var roundedBoxRails = workspace.EdgeTable{
	Name:    "rounded box rails",
	Lineage: "fillet[1,3,5,7](box)",
	Edges:   []int{14, 16},
}

func init() {
	Register(Script{
		Name:        "ledstrip",
		Description: "LED strip channel with ramped ends and two end caps",
		Defaults: Params{
			"sections":       3,
			"section_length": 51,
			"strip_width":    8,
			"wall":           1,
			"height":         3,
			"corner":         4,
			"ramp_length":    20,
			"cap_length":     18,
			"tolerance":      0.1,
		},
		Build: buildLEDStrip,
	})
}

// roundedBar makes a box rounded on its verticals with both long top
// edges flattened to half its height.
func roundedBar(ws *workspace.Workspace, name string, l, w, h, corner float64, pl geom.Placement) (*workspace.Solid, error) {
	bar, err := ws.MakeBox("", l, w, h, pl)
	if err != nil {
		return nil, err
	}
	if bar, err = ws.FilletTable("", bar, boxVerticals, corner); err != nil {
		return nil, err
	}
	return ws.ChamferTable(name, bar, roundedBoxRails, h/2)
}

func buildLEDStrip(ws *workspace.Workspace, p Params) ([]*workspace.Solid, error) {
	tol, wall, h := p["tolerance"], p["wall"], p["height"]
	length := p["sections"] * p["section_length"]
	outer := p["strip_width"] + 2*wall
	channelWidth := p["strip_width"] + 2*tol
	sleeveWidth := outer + 6*tol

	if err := CheckFit(geom.V3(0, p["strip_width"], 0), geom.V3(0, channelWidth, 0), tol); err != nil {
		return nil, err
	}
	if err := CheckFit(geom.V3(0, outer, 0), geom.V3(0, sleeveWidth, 0), tol); err != nil {
		return nil, err
	}

	body, err := roundedBar(ws, "strip_body", length, outer, h, p["corner"], geom.Identity())
	if err != nil {
		return nil, err
	}

	// The ramps drop the channel floor at both ends so the strip can be
	// fed in. The wedge's top ridge is collapsed to a line.
	ramp := workspace.WedgeSpec{
		Xmax: p["ramp_length"], Ymax: h, Zmax: channelWidth, Z2max: channelWidth,
	}
	in, err := ws.MakeWedge("ramp_in", ramp,
		geom.Placement{Base: geom.V3(0, p["strip_width"]+wall+tol, 0), Rotation: geom.RotX(90)})
	if err != nil {
		return nil, err
	}
	out, err := ws.MakeWedge("ramp_out", ramp,
		geom.Placement{Base: geom.V3(length, wall-tol, 0), Rotation: geom.NewRotation(geom.V3(0, 1, 1), 180)})
	if err != nil {
		return nil, err
	}
	channel, err := ws.MakeBox("channel", length, channelWidth, h, geom.At(0, wall-tol, -h/2))
	if err != nil {
		return nil, err
	}
	strip, err := Punch(ws, "strip", body, in, out, channel)
	if err != nil {
		return nil, err
	}

	capLen := p["cap_length"]
	block, err := ws.MakeBox("cap_block", capLen, channelWidth+2*wall+3, h+0.6, geom.At(0, -1, -0.6))
	if err != nil {
		return nil, err
	}
	sleeve, err := roundedBar(ws, "cap_sleeve", length, sleeveWidth, h, p["corner"], geom.At(1, 0, 0))
	if err != nil {
		return nil, err
	}
	throat, err := ws.MakeBox("cap_throat", p["strip_width"], capLen, h, geom.At(1, 1, 0))
	if err != nil {
		return nil, err
	}
	capStart, err := Punch(ws, "cap_start", block, sleeve, throat)
	if err != nil {
		return nil, err
	}
	capEnd, err := ws.Mirror("cap_end", capStart, geom.At(length/2, 0, 0))
	if err != nil {
		return nil, err
	}
	return []*workspace.Solid{strip, capStart, capEnd}, nil
}
