package sdfx

import (
	"math"

	"github.com/chazu/printparts/pkg/geom"
	"github.com/chazu/printparts/pkg/kernel/topo"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// edgeCutter is the region a fillet or chamfer removes from a convex edge,
// or adds to a concave one. Each cross-section perpendicular to the edge is
// a triangle (chamfer) or a kite minus a disc (fillet) spanned by the two
// in-face directions.
type edgeCutter struct {
	e      topo.Edge
	kind   topo.FeatureKind
	f      topo.Feature
	u, w   geom.Vec3 // section frame: u along In[0]
	d2     geom.Vec2 // In[1] in the section frame
	dir    geom.Vec3 // line direction
	length float64
	ref    geom.Vec3 // circle radial reference at Start
	bb     sdf.Box3
}

func newEdgeCutter(e topo.Edge, kind topo.FeatureKind, f topo.Feature) *edgeCutter {
	c := &edgeCutter{e: e, kind: kind, f: f}
	c.u = e.In[0]
	c.w = e.Direction().Cross(c.u).Normalize()
	c.d2 = geom.V2(e.In[1].Dot(c.u), e.In[1].Dot(c.w)).Normalize()
	if e.Kind == topo.Circle {
		c.ref = e.Ref()
	} else {
		c.dir = e.Direction()
		c.length = e.Length()
	}
	c.bb = c.bounds()
	return c
}

// reach returns the largest distance from the edge any section point can
// have.
func (c *edgeCutter) reach() float64 {
	m := 0.0
	for _, u := range []float64{0, 1} {
		t1, t2 := c.e.Setbacks(c.kind, c.f.Size1, c.f.Size2, u)
		m = math.Max(m, math.Max(t1, t2))
		if c.kind == topo.Fillet {
			r := c.f.Size1 + (c.f.Size2-c.f.Size1)*u
			m = math.Max(m, r/math.Sin(c.e.Angle()/2))
		}
	}
	return m
}

func (c *edgeCutter) bounds() sdf.Box3 {
	m := c.reach()
	pad := geom.V3(m, m, m)
	if c.e.Kind == topo.Circle {
		a := c.e.Axis
		ext := geom.V3(
			c.e.Radius*math.Sqrt(math.Max(0, 1-a.X*a.X)),
			c.e.Radius*math.Sqrt(math.Max(0, 1-a.Y*a.Y)),
			c.e.Radius*math.Sqrt(math.Max(0, 1-a.Z*a.Z)),
		)
		return toBox3(geom.BoxOf(
			c.e.Center.Sub(ext).Sub(pad),
			c.e.Center.Add(ext).Add(pad),
		))
	}
	// The section stays within m of the line and the field is cut off at
	// the segment's ends, so only the perpendicular extent is padded.
	d := c.dir
	perp := geom.V3(
		m*math.Sqrt(math.Max(0, 1-d.X*d.X)),
		m*math.Sqrt(math.Max(0, 1-d.Y*d.Y)),
		m*math.Sqrt(math.Max(0, 1-d.Z*d.Z)),
	)
	return toBox3(geom.BoxOf(
		c.e.Start.Min(c.e.End).Sub(perp),
		c.e.Start.Max(c.e.End).Add(perp),
	))
}

func (c *edgeCutter) BoundingBox() sdf.Box3 { return c.bb }

func (c *edgeCutter) Evaluate(p v3.Vec) float64 {
	q := fromV3(p)
	var local geom.Vec3
	var u, along float64
	if c.e.Kind == topo.Circle {
		r := q.Sub(c.e.Center)
		h := r.Dot(c.e.Axis)
		radial := r.Sub(c.e.Axis.Scale(h))
		rho := radial.Length()
		// Rotate into the half-plane through Start.
		local = c.e.Center.Add(c.ref.Scale(rho)).Add(c.e.Axis.Scale(h)).Sub(c.e.Start)
		tan := c.e.Axis.Cross(c.ref)
		a := math.Atan2(radial.Dot(tan), radial.Dot(c.ref))
		if a < 0 {
			a += 2 * math.Pi
		}
		u = a / (2 * math.Pi)
		along = math.Inf(-1)
	} else {
		local = q.Sub(c.e.Start)
		s := local.Dot(c.dir)
		local = local.Sub(c.dir.Scale(s))
		if c.length > 0 {
			u = math.Max(0, math.Min(1, s/c.length))
		}
		along = math.Max(-s, s-c.length)
	}
	sec := geom.V2(local.Dot(c.u), local.Dot(c.w))
	return math.Max(c.section(sec, u), along)
}

// section returns the 2D signed distance bound to the removed region at
// parameter u along the edge.
func (c *edgeCutter) section(p geom.Vec2, u float64) float64 {
	d1 := geom.V2(1, 0)
	t1, t2 := c.e.Setbacks(c.kind, c.f.Size1, c.f.Size2, u)
	a, b := d1.Scale(t1), c.d2.Scale(t2)
	if c.kind == topo.Chamfer {
		return convexDistance(p, geom.Vec2{}, a, b)
	}
	r := c.f.Size1 + (c.f.Size2-c.f.Size1)*u
	half := c.e.Angle() / 2
	center := d1.Add(c.d2).Normalize().Scale(r / math.Sin(half))
	kite := convexDistance(p, geom.Vec2{}, a, center, b)
	return math.Max(kite, r-p.Sub(center).Length())
}

// convexDistance bounds the signed distance from p to a convex polygon
// given in either winding.
func convexDistance(p geom.Vec2, pts ...geom.Vec2) float64 {
	sign := 1.0
	if geom.SignedArea(pts) < 0 {
		sign = -1
	}
	d := math.Inf(-1)
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		edge := b.Sub(a)
		if edge.Length() < geom.Eps {
			continue
		}
		// Outward normal of a counter-clockwise edge.
		n := geom.V2(edge.Y, -edge.X).Scale(sign / edge.Length())
		d = math.Max(d, p.Sub(a).Dot(n))
	}
	return d
}
