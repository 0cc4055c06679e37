package geom

import "fmt"

// Placement is a rigid transform: rotate about the origin, then translate
// by Base. The zero value is the identity.
type Placement struct {
	Base     Vec3     `json:"base" yaml:"base"`
	Rotation Rotation `json:"rotation" yaml:"rotation"`
}

// Identity returns the neutral placement.
func Identity() Placement {
	return Placement{}
}

// At returns a pure translation.
func At(x, y, z float64) Placement {
	return Placement{Base: Vec3{X: x, Y: y, Z: z}}
}

// Translation returns a pure translation by v.
func Translation(v Vec3) Placement {
	return Placement{Base: v}
}

// Rotated returns a placement at base rotated deg degrees about axis.
func Rotated(base, axis Vec3, deg float64) Placement {
	return Placement{Base: base, Rotation: NewRotation(axis, deg)}
}

// Compose applies b in a's frame: the result maps p to a(b(p)).
// Composition is associative but not commutative.
func Compose(a, b Placement) Placement {
	return Placement{
		Base:     a.Rotation.Apply(b.Base).Add(a.Base),
		Rotation: a.Rotation.Mul(b.Rotation),
	}
}

// Then returns Compose(p, q); q is applied first.
func (p Placement) Then(q Placement) Placement {
	return Compose(p, q)
}

// Apply maps a point from the local frame to the parent frame.
func (p Placement) Apply(v Vec3) Vec3 {
	return p.Rotation.Apply(v).Add(p.Base)
}

// ApplyVector rotates a direction; translation does not apply.
func (p Placement) ApplyVector(v Vec3) Vec3 {
	return p.Rotation.Apply(v)
}

// Inverse returns the placement that undoes p.
func (p Placement) Inverse() Placement {
	inv := p.Rotation.Inverse()
	return Placement{Base: inv.Apply(p.Base).Neg(), Rotation: inv}
}

// IsIdentity reports whether p is the neutral placement.
func (p Placement) IsIdentity() bool {
	return p.Base.IsZero() && p.Rotation.IsIdentity()
}

// Near reports whether p and q agree within eps.
func (p Placement) Near(q Placement, eps float64) bool {
	return p.Base.Near(q.Base, eps) && p.Rotation.Near(q.Rotation, eps)
}

func (p Placement) String() string {
	if p.Rotation.IsIdentity() {
		return fmt.Sprintf("at%v", p.Base)
	}
	return fmt.Sprintf("at%v %v", p.Base, p.Rotation)
}

// Plane is an oriented plane through Origin with unit Normal.
type Plane struct {
	Origin Vec3
	Normal Vec3
}

// MirrorPlane returns the plane through pl.Base whose normal is pl's
// rotated X axis. The identity placement yields the YZ plane.
func MirrorPlane(pl Placement) Plane {
	return Plane{Origin: pl.Base, Normal: pl.ApplyVector(XAxis).Normalize()}
}

// Reflect mirrors a point through the plane.
func (pl Plane) Reflect(p Vec3) Vec3 {
	d := p.Sub(pl.Origin).Dot(pl.Normal)
	return p.Sub(pl.Normal.Scale(2 * d))
}

// ReflectVector mirrors a direction through the plane.
func (pl Plane) ReflectVector(v Vec3) Vec3 {
	return v.Sub(pl.Normal.Scale(2 * v.Dot(pl.Normal)))
}
