package workspace

import (
	"fmt"
	"math"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/graph"
)

// PrismSpec describes a regular polygon prism. Exactly one of
// Circumradius and Inradius must be set.
type PrismSpec struct {
	Sides        int
	Circumradius float64
	Inradius     float64
	Height       float64
}

// radius resolves the circumradius.
func (p PrismSpec) radius() (float64, error) {
	if p.Sides < 3 {
		return 0, invalidf("prism needs at least 3 sides, got %d", p.Sides)
	}
	switch {
	case p.Circumradius > 0 && p.Inradius > 0:
		return 0, invalidf("prism takes a circumradius or an inradius, not both")
	case p.Circumradius > 0:
		return p.Circumradius, nil
	case p.Inradius > 0:
		return p.Inradius / math.Cos(math.Pi/float64(p.Sides)), nil
	default:
		return 0, invalidf("prism radius must be positive")
	}
}

// WedgeSpec uses the host's ten-value wedge parameterization. The base
// rectangle [Xmin, Xmax] x [Zmin, Zmax] lies at y = Ymin and the top
// rectangle [X2min, X2max] x [Z2min, Z2max] at y = Ymax.
type WedgeSpec struct {
	Xmin, Ymin, Zmin, Z2min, X2min float64
	Xmax, Ymax, Zmax, Z2max, X2max float64
}

// DefaultWedge returns the host's default wedge.
func DefaultWedge() WedgeSpec {
	return WedgeSpec{
		Xmin: 0, Ymin: 0, Zmin: 0, Z2min: 2, X2min: 2,
		Xmax: 10, Ymax: 10, Zmax: 10, Z2max: 8, X2max: 8,
	}
}

func (w WedgeSpec) validate() error {
	switch {
	case w.Xmax <= w.Xmin:
		return invalidf("wedge xmax %g must exceed xmin %g", w.Xmax, w.Xmin)
	case w.Ymax <= w.Ymin:
		return invalidf("wedge ymax %g must exceed ymin %g", w.Ymax, w.Ymin)
	case w.Zmax <= w.Zmin:
		return invalidf("wedge zmax %g must exceed zmin %g", w.Zmax, w.Zmin)
	case w.X2max < w.X2min:
		return invalidf("wedge x2max %g is below x2min %g", w.X2max, w.X2min)
	case w.Z2max < w.Z2min:
		return invalidf("wedge z2max %g is below z2min %g", w.Z2max, w.Z2min)
	}
	return nil
}

func (w WedgeSpec) data() graph.WedgeData {
	return graph.WedgeData{
		Xmin: w.Xmin, Ymin: w.Ymin, Zmin: w.Zmin, Z2min: w.Z2min, X2min: w.X2min,
		Xmax: w.Xmax, Ymax: w.Ymax, Zmax: w.Zmax, Z2max: w.Z2max, X2max: w.X2max,
	}
}

// EllipsoidSpec uses the host's ellipsoid parameterization: R1 is the
// semi-axis along Z, R2 along X and R3 along Y. R3 == 0 means R3 = R2.
// Angle1 and Angle2 bound the latitude and Angle3 the longitude sweep,
// all in degrees.
type EllipsoidSpec struct {
	R1, R2, R3             float64
	Angle1, Angle2, Angle3 float64
}

// DefaultEllipsoid returns a whole ellipsoid with the given semi-axes.
func DefaultEllipsoid(r1, r2, r3 float64) EllipsoidSpec {
	return EllipsoidSpec{R1: r1, R2: r2, R3: r3, Angle1: -90, Angle2: 90, Angle3: 360}
}

func (e EllipsoidSpec) data() (graph.EllipsoidData, error) {
	r3 := e.R3
	if r3 == 0 {
		r3 = e.R2
	}
	if e.R1 <= 0 || e.R2 <= 0 || r3 <= 0 {
		return graph.EllipsoidData{}, invalidf("ellipsoid radii must be positive, got %g %g %g", e.R1, e.R2, e.R3)
	}
	if e.Angle1 < -90 || e.Angle2 > 90 || e.Angle1 >= e.Angle2 {
		return graph.EllipsoidData{}, invalidf("ellipsoid latitudes need -90 <= %g < %g <= 90", e.Angle1, e.Angle2)
	}
	if e.Angle3 <= 0 || e.Angle3 > 360 {
		return graph.EllipsoidData{}, invalidf("ellipsoid longitude %g outside (0, 360]", e.Angle3)
	}
	return graph.EllipsoidData{
		Radii: geom.V3(e.R2, r3, e.R1),
		Lat1:  e.Angle1,
		Lat2:  e.Angle2,
		Lon:   e.Angle3,
	}, nil
}

// Profile is a closed planar polygon lying in the z=0 plane of its
// placement.
type Profile struct {
	Points    []geom.Vec2
	Placement geom.Placement
}

func positive(what string, vals ...float64) error {
	for _, v := range vals {
		if !(v > 0) || math.IsInf(v, 1) {
			return invalidf("%s must be positive and finite, got %v", what, vals)
		}
	}
	return nil
}

// MakeBox creates an l x w x h box whose minimum corner sits at the
// placement's origin.
func (w *Workspace) MakeBox(name string, l, wd, h float64, pl geom.Placement) (*Solid, error) {
	if err := positive("box size", l, wd, h); err != nil {
		return nil, NewOpError("box", name, err)
	}
	n := &graph.Node{
		Kind:      graph.NodePrimitive,
		Placement: pl,
		Data:      graph.BoxData{Size: geom.V3(l, wd, h)},
	}
	return w.build("box", name, n, "box")
}

// MakeCylinder creates a cylinder whose base circle is centered on the
// placement's origin, axis along the placement's Z.
func (w *Workspace) MakeCylinder(name string, r, h float64, pl geom.Placement) (*Solid, error) {
	if err := positive("cylinder radius and height", r, h); err != nil {
		return nil, NewOpError("cylinder", name, err)
	}
	n := &graph.Node{
		Kind:      graph.NodePrimitive,
		Placement: pl,
		Data:      graph.CylinderData{Radius: r, Height: h},
	}
	return w.build("cylinder", name, n, "cylinder")
}

// MakePrism creates a regular polygon prism with its first vertex on the
// placement's X axis.
func (w *Workspace) MakePrism(name string, spec PrismSpec, pl geom.Placement) (*Solid, error) {
	r, err := spec.radius()
	if err != nil {
		return nil, NewOpError("prism", name, err)
	}
	if err := positive("prism height", spec.Height); err != nil {
		return nil, NewOpError("prism", name, err)
	}
	n := &graph.Node{
		Kind:      graph.NodePrimitive,
		Placement: pl,
		Data:      graph.PrismData{Sides: spec.Sides, Circumradius: r, Height: spec.Height},
	}
	return w.build("prism", name, n, fmt.Sprintf("prism%d", spec.Sides))
}

// MakeWedge creates a wedge from the host's ten-value parameterization.
func (w *Workspace) MakeWedge(name string, spec WedgeSpec, pl geom.Placement) (*Solid, error) {
	if err := spec.validate(); err != nil {
		return nil, NewOpError("wedge", name, err)
	}
	n := &graph.Node{
		Kind:      graph.NodePrimitive,
		Placement: pl,
		Data:      spec.data(),
	}
	return w.build("wedge", name, n, "wedge")
}

// MakeEllipsoid creates an ellipsoid centered on the placement's origin.
func (w *Workspace) MakeEllipsoid(name string, spec EllipsoidSpec, pl geom.Placement) (*Solid, error) {
	d, err := spec.data()
	if err != nil {
		return nil, NewOpError("ellipsoid", name, err)
	}
	n := &graph.Node{
		Kind:      graph.NodePrimitive,
		Placement: pl,
		Data:      d,
	}
	return w.build("ellipsoid", name, n, "ellipsoid")
}

// Extrude sweeps profile along the world direction dir by distance. The
// direction must leave the profile plane on its +Z side.
func (w *Workspace) Extrude(name string, profile Profile, dir geom.Vec3, distance float64) (*Solid, error) {
	if len(profile.Points) < 3 {
		return nil, NewOpError("extrude", name, invalidf("profile needs at least 3 points, got %d", len(profile.Points)))
	}
	if math.Abs(geom.SignedArea(profile.Points)) < geom.Eps {
		return nil, NewOpError("extrude", name, invalidf("profile encloses no area"))
	}
	if err := positive("extrusion distance", distance); err != nil {
		return nil, NewOpError("extrude", name, err)
	}
	if dir.Length() < geom.Eps {
		return nil, NewOpError("extrude", name, invalidf("extrusion direction is zero"))
	}
	offset := profile.Placement.Rotation.Inverse().Apply(dir.Normalize().Scale(distance))
	if offset.Z <= geom.Eps {
		return nil, NewOpError("extrude", name, invalidf("extrusion direction %v lies in or below the profile plane", dir))
	}
	n := &graph.Node{
		Kind:      graph.NodePrimitive,
		Placement: profile.Placement,
		Data: graph.ExtrusionData{
			Profile: append([]geom.Vec2(nil), profile.Points...),
			Offset:  offset,
		},
	}
	return w.build("extrude", name, n, fmt.Sprintf("extrude%d", len(profile.Points)))
}
