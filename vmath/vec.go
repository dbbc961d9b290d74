// Package vmath provides the small set of 2D vector helpers the flock and
// renderer share. Vectors are gonum r2.Vec values; everything here is pure.
package vmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is the vector type used throughout the pond.
type Vec = r2.Vec

// Zero is the zero vector.
var Zero = Vec{}

// Mag returns the length of v.
func Mag(v Vec) float64 {
	return r2.Norm(v)
}

// Heading returns the angle of v in radians, in [-Pi, Pi].
func Heading(v Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// FromAngle returns a vector of length mag pointing along angle.
func FromAngle(angle, mag float64) Vec {
	return Vec{X: math.Cos(angle) * mag, Y: math.Sin(angle) * mag}
}

// Normalize returns v scaled to unit length, or the zero vector for
// (near) zero input.
func Normalize(v Vec) Vec {
	m := r2.Norm(v)
	if m < 1e-12 {
		return Zero
	}
	return r2.Scale(1/m, v)
}

// SetMag returns v rescaled to length mag. Zero input stays zero.
func SetMag(v Vec, mag float64) Vec {
	return r2.Scale(mag, Normalize(v))
}

// Limit clamps the length of v to max.
func Limit(v Vec, max float64) Vec {
	n2 := r2.Norm2(v)
	if n2 > max*max && n2 > 0 {
		return r2.Scale(max/math.Sqrt(n2), v)
	}
	return v
}

// Lerp interpolates from a toward b by t.
func Lerp(a, b Vec, t float64) Vec {
	return Vec{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// Dist returns the euclidean distance between a and b.
func Dist(a, b Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Rotate returns v rotated by angle around the origin.
func Rotate(v Vec, angle float64) Vec {
	s, c := math.Sincos(angle)
	return Vec{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// Finite reports whether both components are finite.
func Finite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// NormalizeAngle wraps an angle to [-Pi, Pi].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// LerpF interpolates between two scalars.
func LerpF(start, end, t float64) float64 {
	return start + (end-start)*t
}

// Clamp clamps v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
