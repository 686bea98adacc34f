package sense

import "math"

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) LenSq() float64 { return v.Dot(v) }

func (v Vec3) Len() float64 { return math.Sqrt(v.LenSq()) }

// Normalize returns the unit vector pointing along v, or the zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}

	return v.Scale(1 / l)
}

// AngleTo returns the angle between v and o in degrees. It is 0 when either
// vector is zero.
func (v Vec3) AngleTo(o Vec3) float64 {
	d := v.Len() * o.Len()
	if d == 0 {
		return 0
	}

	cos := math.Max(-1, math.Min(1, v.Dot(o)/d))

	return math.Acos(cos) * 180 / math.Pi
}

// MoveTowards steps from v to target by at most maxStep and reports whether the
// target was reached.
func (v Vec3) MoveTowards(target Vec3, maxStep float64) (Vec3, bool) {
	delta := target.Sub(v)

	dist := delta.Len()
	if dist <= maxStep || dist == 0 {
		return target, true
	}

	return v.Add(delta.Scale(maxStep / dist)), false
}

// Distance returns the distance between a and b.
func Distance(a, b Vec3) float64 { return b.Sub(a).Len() }

// RotateY turns v around the vertical axis by deg degrees, counter-clockwise when
// seen from above.
func (v Vec3) RotateY(deg float64) Vec3 {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)

	return Vec3{X: v.X*cos + v.Z*sin, Y: v.Y, Z: -v.X*sin + v.Z*cos}
}
