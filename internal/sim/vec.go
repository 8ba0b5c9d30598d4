package sim

import "math"

// Vec3 is a position or velocity. Y is the vertical axis.
//
// Every product is wrapped in an explicit float64 conversion: the Go compiler
// is allowed to fuse x*y+z into one FMA instruction on some architectures,
// and a conversion forces the intermediate rounding, so peers on different
// CPUs compute identical bits.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{float64(v.X * s), float64(v.Y * s), float64(v.Z * s)}
}

func (v Vec3) Length() float64 {
	return math.Sqrt(float64(v.X*v.X) + float64(v.Y*v.Y) + float64(v.Z*v.Z))
}

func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// NormalizeOrZero returns the unit vector in v's direction, or the zero
// vector when v has no usable length.
func (v Vec3) NormalizeOrZero() Vec3 {
	l := v.Length()
	if l == 0 || math.IsInf(l, 0) || math.IsNaN(l) {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}
