package graph

import "github.com/chazu/printparts/pkg/geom"

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// BoxData is a rectangular solid with its minimum corner at the local
// origin.
type BoxData struct {
	Size geom.Vec3 `json:"size"` // length x width x height in mm
}

func (BoxData) nodeData() {}

// CylinderData is a cylinder whose base is centered on the local origin,
// axis +Z.
type CylinderData struct {
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

func (CylinderData) nodeData() {}

// PrismData is a regular polygon prism. The polygon's first vertex lies on
// the local +X axis.
type PrismData struct {
	Sides        int     `json:"sides"`
	Circumradius float64 `json:"circumradius"`
	Height       float64 `json:"height"`
}

func (PrismData) nodeData() {}

// WedgeData uses the host's ten-value wedge parameterization: the base
// spans [Xmin, Xmax] x [Zmin, Zmax] at y = Ymin and the top spans
// [X2min, X2max] x [Z2min, Z2max] at y = Ymax.
type WedgeData struct {
	Xmin  float64 `json:"xmin"`
	Ymin  float64 `json:"ymin"`
	Zmin  float64 `json:"zmin"`
	Z2min float64 `json:"z2min"`
	X2min float64 `json:"x2min"`
	Xmax  float64 `json:"xmax"`
	Ymax  float64 `json:"ymax"`
	Zmax  float64 `json:"zmax"`
	Z2max float64 `json:"z2max"`
	X2max float64 `json:"x2max"`
}

func (WedgeData) nodeData() {}

// EllipsoidData is an ellipsoid truncated to latitudes [Lat1, Lat2] and
// longitudes [0, Lon], all in degrees.
type EllipsoidData struct {
	Radii geom.Vec3 `json:"radii"`
	Lat1  float64   `json:"lat1"`
	Lat2  float64   `json:"lat2"`
	Lon   float64   `json:"lon"`
}

func (EllipsoidData) nodeData() {}

// ExtrusionData sweeps a closed polygon in the local z=0 plane by Offset.
type ExtrusionData struct {
	Profile []geom.Vec2 `json:"profile"`
	Offset  geom.Vec3   `json:"offset"`
}

func (ExtrusionData) nodeData() {}

// ---------------------------------------------------------------------------
// Combinators
// ---------------------------------------------------------------------------

// PlaceData re-places its input; the node's Placement is the result's.
type PlaceData struct {
	Delta geom.Placement `json:"delta"` // applied on top of the input's placement
}

func (PlaceData) nodeData() {}

// FuseData unions its inputs in order.
type FuseData struct{}

func (FuseData) nodeData() {}

// CutData subtracts the second input from the first.
type CutData struct{}

func (CutData) nodeData() {}

// MirrorData reflects its input about the plane through Plane.Base with
// normal Plane.Rotation·X.
type MirrorData struct {
	Plane geom.Placement `json:"plane"`
}

func (MirrorData) nodeData() {}

// ---------------------------------------------------------------------------
// Edge features
// ---------------------------------------------------------------------------

// EdgeSelector selects one edge by its 1-based index. For a fillet Size1
// and Size2 are the start and end radii; for a chamfer the setbacks on the
// first and second adjacent face. Size2 == 0 means the same as Size1.
type EdgeSelector struct {
	Index int     `json:"index"`
	Size1 float64 `json:"size1"`
	Size2 float64 `json:"size2,omitempty"`
}

// Sizes returns Size1 and the effective Size2.
func (e EdgeSelector) Sizes() (float64, float64) {
	if e.Size2 == 0 {
		return e.Size1, e.Size1
	}
	return e.Size1, e.Size2
}

// FeatureData lists the edges a fillet or chamfer treats.
type FeatureData struct {
	Edges []EdgeSelector `json:"edges"`
}

func (FeatureData) nodeData() {}

// ---------------------------------------------------------------------------
// Array
// ---------------------------------------------------------------------------

// ArrayData replicates its input Counts[0] x Counts[1] x Counts[2] times.
// Copy (i, j, k) is offset by i·Spacing[0] + j·Spacing[1] + k·Spacing[2]
// in the Base frame.
type ArrayData struct {
	Counts  [3]int         `json:"counts"`
	Spacing [3]geom.Vec3   `json:"spacing"`
	Base    geom.Placement `json:"base"`
}

func (ArrayData) nodeData() {}
