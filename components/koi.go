package components

import (
	"math"
	"math/rand"
	"time"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/vmath"
	"gonum.org/v1/gonum/spatial/r2"
)

// ApplyForces smooths, prioritises and accumulates this tick's flocking
// forces. Overcrowding (too many neighbours or too strong a combined force)
// starts an escape when the behaviour allows it.
func (k *Koi) ApplyForces(f Forces, neighborCount int, now time.Time, rng *rand.Rand, p *config.PhysicsConfig) Transition {
	sep := deadZone(vmath.Lerp(k.PrevSeparation, f.Separation, p.ForceSmoothing), p.DeadZone)
	ali := deadZone(vmath.Lerp(k.PrevAlignment, f.Alignment, p.ForceSmoothing), p.DeadZone)
	coh := deadZone(vmath.Lerp(k.PrevCohesion, f.Cohesion, p.ForceSmoothing), p.DeadZone)

	w := priority(vmath.Mag(sep), p)
	sep = r2.Scale(w.Separation, sep)
	ali = r2.Scale(w.Alignment, ali)
	coh = r2.Scale(w.Cohesion, coh)
	total := r2.Add(r2.Add(sep, ali), coh)

	k.Neighbors = neighborCount
	k.ForceWeight = vmath.Mag(total)

	tr := NoTransition
	if neighborCount > p.OvercrowdNeighbors || k.ForceWeight > p.OvercrowdForce {
		if k.Behavior.TriggerEscape(now, k.Heading(), CauseOvercrowding, rng, p) {
			k.History.Clear()
			tr |= EscapeStarted
		}
	}

	// Raw forces, so next tick's smoothing starts from unsmoothed input
	k.PrevSeparation = f.Separation
	k.PrevAlignment = f.Alignment
	k.PrevCohesion = f.Cohesion

	k.Accelerate(total)
	if f.Attraction != vmath.Zero {
		k.Accelerate(f.Attraction)
	}
	return tr
}

// Update advances the behaviour state machine, applies heading damping,
// checks for oscillation and integrates one tick of motion. Position moves
// by the previous velocity before the velocity is steered.
func (k *Koi) Update(maxSpeed float64, now time.Time, rng *rand.Rand, p *config.PhysicsConfig) Transition {
	tr := k.Behavior.Advance(now, rng, p)
	if tr.Has(EscapeEnded) {
		k.History.Clear()
	}

	heading := k.Heading()
	speed := k.Speed()
	if speed > p.MinDampingSpeed {
		change := vmath.NormalizeAngle(heading - k.PrevHeading)
		k.Accelerate(vmath.FromAngle(heading+math.Pi/2, change*-p.Damping*speed))
	}
	k.PrevHeading = heading

	k.History.Push(heading)
	if k.History.Len() >= p.OscillationCheck && k.History.Reversals() >= p.OscillationReversals {
		if k.Behavior.TriggerEscape(now, heading, CauseOscillation, rng, p) {
			k.History.Clear()
			tr |= EscapeStarted
		}
	}

	k.Pos = r2.Add(k.Pos, k.Vel)

	limit := k.MaxSpeed(maxSpeed)
	target := vmath.Limit(r2.Add(k.Vel, k.Acc), limit)
	k.Vel = vmath.Limit(vmath.Lerp(k.Vel, target, p.VelocitySmoothing), limit)

	minSpeed := limit * p.MinSpeedFraction
	if k.Speed() < minSpeed {
		if k.Vel == vmath.Zero {
			k.Vel = vmath.FromAngle(heading, minSpeed)
		} else {
			k.Vel = vmath.SetMag(k.Vel, minSpeed)
		}
	}

	k.Acc = vmath.Zero
	return tr
}

// Edges wraps the position to the opposite boundary of a w x h pond.
func (k *Koi) Edges(w, h float64) {
	if k.Pos.X >= w {
		k.Pos.X = 0
	} else if k.Pos.X < 0 {
		k.Pos.X = w
	}
	if k.Pos.Y >= h {
		k.Pos.Y = 0
	} else if k.Pos.Y < 0 {
		k.Pos.Y = h
	}
}

func deadZone(v vmath.Vec, threshold float64) vmath.Vec {
	if vmath.Mag(v) < threshold {
		return vmath.Zero
	}
	return v
}

// priority picks the weighting regime for a smoothed separation magnitude.
func priority(sepMag float64, p *config.PhysicsConfig) config.Weights {
	switch {
	case sepMag > p.SeparationHigh:
		return p.PriorityHigh
	case sepMag > p.SeparationMed:
		return p.PriorityMedium
	default:
		return config.Weights{Separation: 1, Alignment: 1, Cohesion: 1}
	}
}
