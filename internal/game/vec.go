package game

import "math"

// Vec2 is a 2D point or velocity in world space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the vector length.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// DistanceTo returns the distance between two points.
func (v Vec2) DistanceTo(o Vec2) float64 { return math.Hypot(o.X-v.X, o.Y-v.Y) }

// Normalize returns the unit vector, or the zero vector for zero input.
// Never produces NaN.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// DirectionTo returns the unit vector from v toward o (zero if coincident).
func (v Vec2) DirectionTo(o Vec2) Vec2 {
	return o.Sub(v).Normalize()
}

// Clamp limits the point to the axis-aligned rectangle [min, max].
func (v Vec2) Clamp(minX, minY, maxX, maxY float64) Vec2 {
	return Vec2{
		X: clamp(v.X, minX, maxX),
		Y: clamp(v.Y, minY, maxY),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
