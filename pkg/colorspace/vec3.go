// Package colorspace provides the vector, ray, and radiance-carrier types
// shared by every other package in the renderer: Vec3/Ray for geometry,
// Wavelength/RayColor for radiance, with tristimulus (RGB) and spectral
// (hero-wavelength) builds selected at compile time (see raycolor_rgb.go and
// raycolor_spectral.go).
package colorspace

import (
	"fmt"
	"math"
)

// Vec3 represents a 3D vector or an RGB color, following the renderer's
// convention of a single type for both geometric and tristimulus quantities.
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 represents a 2D vector, used for film coordinates and sample tuples.
type Vec2 struct {
	X, Y float64
}

func NewVec3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }
func NewVec2(x, y float64) Vec2    { return Vec2{X: x, Y: y} }

var (
	Zero3 = Vec3{0, 0, 0}
	One3  = Vec3{1, 1, 1}
)

func (v Vec3) String() string {
	return fmt.Sprintf("{%.4g, %.4g, %.4g}", v.X, v.Y, v.Z)
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Subtract(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Multiply(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}
func (v Vec3) MultiplyVec(o Vec3) Vec3 {
	return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}
func (v Vec3) Negate() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Length() float64        { return math.Sqrt(v.LengthSquared()) }
func (v Vec3) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }
func (v Vec3) Dot(o Vec3) float64     { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) AbsDot(o Vec3) float64  { return math.Abs(v.Dot(o)) }

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Zero3
	}
	return v.Multiply(1.0 / l)
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Luminance returns the Rec. 709 luminance of an RGB-interpreted Vec3.
func (v Vec3) Luminance() float64 {
	return 0.2126*v.X + 0.7152*v.Y + 0.0722*v.Z
}

func (v Vec3) Clamp(lo, hi float64) Vec3 {
	return Vec3{clampf(v.X, lo, hi), clampf(v.Y, lo, hi), clampf(v.Z, lo, hi)}
}

func (v Vec3) MaxComponent() float64 { return math.Max(v.X, math.Max(v.Y, v.Z)) }

func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// IsFinite reports whether every component is free of NaN/Inf.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

func clampf(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Ray represents a ray with an origin and direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Time      float64 // normalized shutter time in [0,1], for motion blur
}

func NewRay(origin, direction Vec3) Ray { return Ray{Origin: origin, Direction: direction} }

func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Direction.Multiply(t)) }
