package common

import "math"

// Vec2 represents a 2D vector in track coordinates (meters).
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add adds two vectors.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub subtracts other from v.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale multiplies the vector by a scalar.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the scalar product.
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product.
// Positive when other is counter-clockwise from v.
func (v Vec2) Cross(other Vec2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Perp returns v rotated by +90 degrees (left-hand side of the direction).
func (v Vec2) Perp() Vec2 {
	return Vec2{-v.Y, v.X}
}

// Len returns the length (magnitude) of the vector.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the distance between v and other.
func (v Vec2) Dist(other Vec2) float64 {
	return other.Sub(v).Len()
}

// Lerp interpolates linearly between v (t=0) and other (t=1).
func (v Vec2) Lerp(other Vec2, t float64) Vec2 {
	return v.Add(other.Sub(v).Scale(t))
}

// Normalize returns a unit vector in the same direction.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// IsFinite reports whether both components are neither NaN nor Inf.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
