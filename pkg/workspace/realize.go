package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/graph"
	"github.com/chazu/printparts/pkg/kernel"
	"github.com/chazu/printparts/pkg/kernel/topo"
)

// realizeNode builds the kernel solid of n from its realized inputs.
// Primitives are built in their local frame and then placed.
func realizeNode(k kernel.Kernel, n *graph.Node, inputs []kernel.Solid) (kernel.Solid, error) {
	var (
		s   kernel.Solid
		err error
	)
	switch d := n.Data.(type) {
	case graph.BoxData:
		s, err = k.Box(d.Size)
	case graph.CylinderData:
		s, err = k.Cylinder(d.Radius, d.Height)
	case graph.PrismData:
		s, err = k.Extrusion(geom.RegularPolygon(d.Sides, d.Circumradius), geom.V3(0, 0, d.Height))
	case graph.WedgeData:
		s, err = k.Hexahedron(wedgeCorners(d))
	case graph.EllipsoidData:
		s, err = k.Ellipsoid(d.Radii, d.Lat1, d.Lat2, d.Lon)
	case graph.ExtrusionData:
		s, err = k.Extrusion(d.Profile, d.Offset)

	case graph.PlaceData:
		return k.Place(inputs[0], d.Delta), nil
	case graph.FuseData:
		return k.Union(inputs...)
	case graph.CutData:
		return k.Difference(inputs[0], inputs[1])
	case graph.MirrorData:
		return k.Mirror(inputs[0], geom.MirrorPlane(d.Plane)), nil
	case graph.FeatureData:
		if n.Kind == graph.NodeChamfer {
			return k.Chamfer(inputs[0], features(d.Edges))
		}
		return k.Fillet(inputs[0], features(d.Edges))
	case graph.ArrayData:
		return realizeArray(k, inputs[0], ArraySpec{Counts: d.Counts, Spacing: d.Spacing, Base: d.Base})
	default:
		return nil, fmt.Errorf("no realization for %T", n.Data)
	}
	if err != nil {
		return nil, err
	}
	return k.Place(s, n.Placement), nil
}

func realizeArray(k kernel.Kernel, src kernel.Solid, spec ArraySpec) (kernel.Solid, error) {
	offsets := spec.Offsets()
	copies := make([]kernel.Solid, len(offsets))
	for i, off := range offsets {
		copies[i] = k.Place(src, off)
	}
	return k.Union(copies...)
}

func wedgeCorners(d graph.WedgeData) topo.Hex {
	var h topo.Hex
	for i := 0; i < 2; i++ {
		for kz := 0; kz < 2; kz++ {
			x, z := d.Xmin, d.Zmin
			x2, z2 := d.X2min, d.Z2min
			if i == 1 {
				x, x2 = d.Xmax, d.X2max
			}
			if kz == 1 {
				z, z2 = d.Zmax, d.Z2max
			}
			h[i][0][kz] = geom.V3(x, d.Ymin, z)
			h[i][1][kz] = geom.V3(x2, d.Ymax, z2)
		}
	}
	return h
}

// Replay validates g and realizes every node in construction order. It
// stops at the first failure or when ctx is done.
func Replay(ctx context.Context, g *graph.DesignGraph, k kernel.Kernel) (map[graph.NodeID]kernel.Solid, error) {
	res := graph.ValidateAll(g)
	if !res.OK() {
		errs := make([]error, len(res.Errors))
		for i, e := range res.Errors {
			errs[i] = e
		}
		return nil, fmt.Errorf("construction tree: %w", errors.Join(errs...))
	}
	for _, w := range res.Warnings {
		Logger().Debug("construction tree warning", "node", w.NodeID.Short(), "message", w.Message)
	}

	out := make(map[graph.NodeID]kernel.Solid, g.NodeCount())
	for _, n := range g.Ordered() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inputs := make([]kernel.Solid, len(n.Inputs))
		for i, id := range n.Inputs {
			inputs[i] = out[id]
		}
		s, err := realizeNode(k, n, inputs)
		if err != nil {
			return nil, NewOpError(n.Kind.String(), n.Name, err)
		}
		out[n.ID] = s
	}
	return out, nil
}
