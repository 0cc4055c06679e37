package graph

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Tier 2 — Geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for _, node := range g.Ordered() {
		for _, msg := range dataProblems(node.Data) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  msg,
				Severity: SeverityError,
			})
		}
	}
	errs = append(errs, validateDataKinds(g)...)
	warnings = append(warnings, validateNoOps(g)...)

	return errs, warnings
}

func positive(name string, v float64) []string {
	if v > 0 && !math.IsInf(v, 0) {
		return nil
	}
	return []string{fmt.Sprintf("%s is %.4f, must be positive", name, v)}
}

// dataProblems lists the parameter problems of one node payload.
func dataProblems(d NodeData) []string {
	var msgs []string
	switch d := d.(type) {
	case BoxData:
		msgs = append(msgs, positive("box length", d.Size.X)...)
		msgs = append(msgs, positive("box width", d.Size.Y)...)
		msgs = append(msgs, positive("box height", d.Size.Z)...)

	case CylinderData:
		msgs = append(msgs, positive("cylinder radius", d.Radius)...)
		msgs = append(msgs, positive("cylinder height", d.Height)...)

	case PrismData:
		if d.Sides < 3 {
			msgs = append(msgs, fmt.Sprintf("prism has %d sides, needs at least 3", d.Sides))
		}
		msgs = append(msgs, positive("prism circumradius", d.Circumradius)...)
		msgs = append(msgs, positive("prism height", d.Height)...)

	case WedgeData:
		if d.Xmax <= d.Xmin || d.Ymax <= d.Ymin || d.Zmax <= d.Zmin {
			msgs = append(msgs, "wedge base extents must be increasing")
		}
		if d.X2max < d.X2min || d.Z2max < d.Z2min {
			msgs = append(msgs, "wedge top extents must not be reversed")
		}

	case EllipsoidData:
		msgs = append(msgs, positive("ellipsoid radius1", d.Radii.Z)...)
		msgs = append(msgs, positive("ellipsoid radius2", d.Radii.X)...)
		msgs = append(msgs, positive("ellipsoid radius3", d.Radii.Y)...)
		if d.Lat1 < -90 || d.Lat2 > 90 || d.Lat1 >= d.Lat2 {
			msgs = append(msgs, fmt.Sprintf("ellipsoid latitudes %g..%g must satisfy -90 <= a1 < a2 <= 90", d.Lat1, d.Lat2))
		}
		if d.Lon <= 0 || d.Lon > 360 {
			msgs = append(msgs, fmt.Sprintf("ellipsoid longitude sweep %g must lie in (0, 360]", d.Lon))
		}

	case ExtrusionData:
		if len(d.Profile) < 3 {
			msgs = append(msgs, fmt.Sprintf("extrusion profile has %d vertices, needs at least 3", len(d.Profile)))
		}
		if d.Offset.IsZero() {
			msgs = append(msgs, "extrusion offset is zero")
		}

	case FeatureData:
		if len(d.Edges) == 0 {
			msgs = append(msgs, "no edges selected")
		}
		seen := make(map[int]bool, len(d.Edges))
		for _, e := range d.Edges {
			if e.Index < 1 {
				msgs = append(msgs, fmt.Sprintf("edge index %d, indices start at 1", e.Index))
			}
			if seen[e.Index] {
				msgs = append(msgs, fmt.Sprintf("edge %d selected twice", e.Index))
			}
			seen[e.Index] = true
			s1, s2 := e.Sizes()
			if s1 <= 0 || s2 <= 0 {
				msgs = append(msgs, fmt.Sprintf("edge %d sizes %g/%g must be positive", e.Index, s1, s2))
			}
		}

	case ArrayData:
		for axis, n := range d.Counts {
			if n < 1 {
				msgs = append(msgs, fmt.Sprintf("array count %d on axis %d, must be at least 1", n, axis))
			}
		}
	}
	return msgs
}

// validateDataKinds checks that each node's payload matches its kind.
func validateDataKinds(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Ordered() {
		if node.Data == nil {
			continue // reported by Tier 1
		}
		var ok bool
		switch node.Data.(type) {
		case BoxData, CylinderData, PrismData, WedgeData, EllipsoidData, ExtrusionData:
			ok = node.Kind == NodePrimitive
		case PlaceData:
			ok = node.Kind == NodePlace
		case FuseData:
			ok = node.Kind == NodeFuse
		case CutData:
			ok = node.Kind == NodeCut
		case MirrorData:
			ok = node.Kind == NodeMirror
		case FeatureData:
			ok = node.Kind == NodeFillet || node.Kind == NodeChamfer
		case ArrayData:
			ok = node.Kind == NodeArray
		}
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s node carries %T", node.Kind, node.Data),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateNoOps warns about steps that leave their input unchanged.
func validateNoOps(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Ordered() {
		switch d := node.Data.(type) {
		case PlaceData:
			if d.Delta.IsIdentity() {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: "placement is the identity",
				})
			}
		case ArrayData:
			if d.Counts == [3]int{1, 1, 1} && d.Base.IsIdentity() {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: "array of a single copy reproduces its input",
				})
			}
		}
	}

	return warnings
}
