package systems

import (
	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/vmath"
	"gonum.org/v1/gonum/spatial/r2"
)

// Steering force calculations. All functions are pure and return the zero
// vector when there is nothing to steer toward.

// minSeparationDist floors neighbour distance in the separation sum.
const minSeparationDist = 8

// Alignment steers toward the average neighbour velocity.
func Alignment(k *components.Koi, neighbors []Neighbor, maxSpeed, maxForce float64) vmath.Vec {
	if len(neighbors) == 0 {
		return vmath.Zero
	}
	var sum vmath.Vec
	for _, n := range neighbors {
		sum = r2.Add(sum, n.Koi.Vel)
	}
	avg := r2.Scale(1/float64(len(neighbors)), sum)
	return steer(avg, k.Vel, maxSpeed, maxForce)
}

// Cohesion steers toward the neighbour centroid.
func Cohesion(k *components.Koi, neighbors []Neighbor, maxSpeed, maxForce float64) vmath.Vec {
	if len(neighbors) == 0 {
		return vmath.Zero
	}
	var sum vmath.Vec
	for _, n := range neighbors {
		sum = r2.Add(sum, n.Koi.Pos)
	}
	centroid := r2.Scale(1/float64(len(neighbors)), sum)
	return steer(r2.Sub(centroid, k.Pos), k.Vel, maxSpeed, maxForce)
}

// Separation steers away from neighbours closer than 0.7 x radius, each
// weighted by inverse distance.
func Separation(k *components.Koi, neighbors []Neighbor, radius, maxSpeed, maxForce float64) vmath.Vec {
	var sum vmath.Vec
	total := 0
	for _, n := range neighbors {
		d := n.Dist
		if d >= radius*0.7 {
			continue
		}
		if d < minSeparationDist {
			d = minSeparationDist
		}
		away := vmath.Normalize(r2.Sub(k.Pos, n.Koi.Pos))
		sum = r2.Add(sum, r2.Scale(1/d, away))
		total++
	}
	if total == 0 {
		return vmath.Zero
	}
	avg := r2.Scale(1/float64(total), sum)
	return steer(avg, k.Vel, maxSpeed, maxForce)
}

// Attraction steers toward target when within radius, growing stronger as
// the koi gets closer. The result is clamped to boost x maxForce.
func Attraction(k *components.Koi, target vmath.Vec, radius, boost, maxSpeed, maxForce float64) vmath.Vec {
	desired := r2.Sub(target, k.Pos)
	d := vmath.Mag(desired)
	if d > radius || radius <= 0 {
		return vmath.Zero
	}
	strength := 1 - d/radius
	desired = vmath.SetMag(desired, maxSpeed*strength)
	return vmath.Limit(r2.Sub(desired, k.Vel), maxForce*boost)
}

// EscapeForce is a strong push along heading.
func EscapeForce(heading, maxForce, multiplier float64) vmath.Vec {
	return vmath.FromAngle(heading, maxForce*multiplier)
}

// steer returns the Reynolds steering force toward desired: desired rescaled
// to maxSpeed, minus the current velocity, clamped to maxForce.
func steer(desired, vel vmath.Vec, maxSpeed, maxForce float64) vmath.Vec {
	return vmath.Limit(r2.Sub(vmath.SetMag(desired, maxSpeed), vel), maxForce)
}
