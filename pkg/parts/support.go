package parts

import (
	"maps"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/workspace"
)

// The top edges of a four-sided prism. Prism edges run: the first
// vertical, then per side its top, the next vertical and its bottom.
var squarePrismTop = workspace.EdgeTable{
	Name:    "square prism top",
	Lineage: "prism4",
	Edges:   []int{2, 5, 8, 11},
}

// defaultNotch is the T-slot shared by supports and the panels that
// slide into them.
var defaultNotch = Params{
	"shaft_length": 2,
	"shaft_width":  4,
	"head_length":  4,
	"head_width":   2,
}

func notchSpec(p Params, height float64) TSpec {
	return TSpec{
		ShaftLen: p["shaft_length"],
		ShaftWid: p["shaft_width"],
		HeadLen:  p["head_length"],
		HeadWid:  p["head_width"],
		Height:   height,
	}
}

func withNotch(p Params) Params {
	out := maps.Clone(defaultNotch)
	maps.Copy(out, p)
	return out
}

func init() {
	Register(Script{
		Name:        "support",
		Description: "terrain support: a chamfered square post with a T-slot at each corner",
		Defaults: withNotch(Params{
			"radius":       10,
			"height":       5,
			"chamfer":      2,
			"center_ratio": 0.45,
		}),
		Build: buildSupport,
	})
}

func buildSupport(ws *workspace.Workspace, p Params) ([]*workspace.Solid, error) {
	r, h, c := p["radius"], p["height"], p["chamfer"]
	post, err := ws.MakePrism("post", workspace.PrismSpec{Sides: 4, Circumradius: r, Height: h}, geom.Identity())
	if err != nil {
		return nil, err
	}
	if post, err = ws.ChamferTable("post_bevel", post, squarePrismTop, c); err != nil {
		return nil, err
	}

	// Each T points at the centre from just inside a corner; the head
	// sits where the chamfer starts.
	t := notchSpec(p, h)
	reach := t.HeadLen + t.ShaftLen + r - c - t.ShaftWid*0.75
	var tools []*workspace.Solid
	for k := 0; k < 4; k++ {
		pl := geom.Compose(
			geom.Rotated(geom.Vec3{}, geom.ZAxis, 90*float64(k)),
			geom.Placement{Base: geom.V3(t.ShaftLen/2, reach, 0), Rotation: geom.RotZ(180)},
		)
		notch, err := TNotch(ws, "", t, pl)
		if err != nil {
			return nil, err
		}
		tools = append(tools, notch)
	}

	core, err := ws.MakePrism("core", workspace.PrismSpec{Sides: 4, Circumradius: r * p["center_ratio"], Height: h}, geom.Identity())
	if err != nil {
		return nil, err
	}
	if core, err = ws.ChamferTable("core_bevel", core, squarePrismTop, c); err != nil {
		return nil, err
	}
	tools = append(tools, core)

	support, err := Punch(ws, "support", post, tools...)
	if err != nil {
		return nil, err
	}
	return []*workspace.Solid{support}, nil
}
