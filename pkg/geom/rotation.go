package geom

import (
	"encoding/json"
	"fmt"
	"math"
)

// Rotation is a unit quaternion. The zero value is the identity rotation.
type Rotation struct {
	x, y, z, w float64
}

// NewRotation returns a rotation of deg degrees about axis.
// The axis is normalized; a zero axis is taken to be +Z.
func NewRotation(axis Vec3, deg float64) Rotation {
	if axis.IsZero() {
		axis = ZAxis
	}
	a := axis.Normalize()
	half := deg * math.Pi / 360
	s := math.Sin(half)
	return Rotation{x: a.X * s, y: a.Y * s, z: a.Z * s, w: math.Cos(half)}
}

// RotX, RotY and RotZ return rotations about the principal axes.
func RotX(deg float64) Rotation { return NewRotation(XAxis, deg) }
func RotY(deg float64) Rotation { return NewRotation(YAxis, deg) }
func RotZ(deg float64) Rotation { return NewRotation(ZAxis, deg) }

// RotationBetween returns the shortest rotation taking direction from to
// direction to.
func RotationBetween(from, to Vec3) Rotation {
	f, t := from.Normalize(), to.Normalize()
	d := f.Dot(t)
	if d > 1-1e-12 {
		return Rotation{}
	}
	if d < -1+1e-12 {
		return NewRotation(f.Perpendicular(), 180)
	}
	c := f.Cross(t)
	q := Rotation{x: c.X, y: c.Y, z: c.Z, w: 1 + d}
	return q.normalized()
}

func (r Rotation) q() (x, y, z, w float64) {
	if r.x == 0 && r.y == 0 && r.z == 0 && r.w == 0 {
		return 0, 0, 0, 1
	}
	return r.x, r.y, r.z, r.w
}

func (r Rotation) normalized() Rotation {
	x, y, z, w := r.q()
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	return Rotation{x: x / n, y: y / n, z: z / n, w: w / n}
}

// Mul returns r·s: s is applied first, then r.
func (r Rotation) Mul(s Rotation) Rotation {
	ax, ay, az, aw := r.q()
	bx, by, bz, bw := s.q()
	return Rotation{
		x: aw*bx + ax*bw + ay*bz - az*by,
		y: aw*by - ax*bz + ay*bw + az*bx,
		z: aw*bz + ax*by - ay*bx + az*bw,
		w: aw*bw - ax*bx - ay*by - az*bz,
	}
}

// Inverse returns the opposite rotation.
func (r Rotation) Inverse() Rotation {
	x, y, z, w := r.q()
	return Rotation{x: -x, y: -y, z: -z, w: w}
}

// Apply rotates v.
func (r Rotation) Apply(v Vec3) Vec3 {
	x, y, z, w := r.q()
	u := Vec3{X: x, Y: y, Z: z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(w)).Add(u.Cross(t))
}

// IsIdentity reports whether r leaves every vector unchanged.
func (r Rotation) IsIdentity() bool {
	x, y, z, _ := r.q()
	return math.Abs(x) < Eps && math.Abs(y) < Eps && math.Abs(z) < Eps
}

// AxisAngle returns the rotation axis and angle in degrees.
// The identity reports +Z and 0.
func (r Rotation) AxisAngle() (Vec3, float64) {
	x, y, z, w := r.q()
	s := math.Sqrt(x*x + y*y + z*z)
	if s < Eps {
		return ZAxis, 0
	}
	deg := 2 * math.Atan2(s, w) * 180 / math.Pi
	return Vec3{X: x / s, Y: y / s, Z: z / s}, deg
}

// Near reports whether r and s rotate every unit vector to within eps
// of each other.
func (r Rotation) Near(s Rotation, eps float64) bool {
	for _, v := range []Vec3{XAxis, YAxis, ZAxis} {
		if !r.Apply(v).Near(s.Apply(v), eps) {
			return false
		}
	}
	return true
}

func (r Rotation) String() string {
	axis, deg := r.AxisAngle()
	return fmt.Sprintf("rot(%v, %g°)", axis, deg)
}

// axisAngle is the serialized form of a Rotation.
type axisAngle struct {
	Axis  Vec3    `json:"axis" yaml:"axis"`
	Angle float64 `json:"angle" yaml:"angle"`
}

func (r Rotation) axisAngle() axisAngle {
	axis, deg := r.AxisAngle()
	return axisAngle{Axis: axis, Angle: deg}
}

// MarshalJSON encodes r as its axis and angle in degrees.
func (r Rotation) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.axisAngle())
}

// UnmarshalJSON decodes an axis and angle in degrees.
func (r *Rotation) UnmarshalJSON(b []byte) error {
	var aa axisAngle
	if err := json.Unmarshal(b, &aa); err != nil {
		return err
	}
	*r = NewRotation(aa.Axis, aa.Angle)
	return nil
}

// MarshalYAML encodes r as its axis and angle in degrees.
func (r Rotation) MarshalYAML() (any, error) {
	return r.axisAngle(), nil
}

// UnmarshalYAML decodes an axis and angle in degrees.
func (r *Rotation) UnmarshalYAML(unmarshal func(any) error) error {
	var aa axisAngle
	if err := unmarshal(&aa); err != nil {
		return err
	}
	*r = NewRotation(aa.Axis, aa.Angle)
	return nil
}
