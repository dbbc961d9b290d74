// Package components defines ECS components for the pond.
package components

import (
	"math"
	"math/rand"
	"time"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/traits"
	"github.com/pthm-cable/koipond/vmath"
	"gonum.org/v1/gonum/spatial/r2"
)

// Forces holds the steering inputs for one tick.
type Forces struct {
	Separation vmath.Vec
	Alignment  vmath.Vec
	Cohesion   vmath.Vec
	Attraction vmath.Vec // zero when there is no target
}

// Koi holds one fish's physics, tunables and behaviour.
type Koi struct {
	ID int // stable creation index, also the render seed

	// Physics
	Pos vmath.Vec
	Vel vmath.Vec
	Acc vmath.Vec

	// Fixed at creation
	PerceptionRadius float64
	SpeedMultiplier  float64
	SizeMultiplier   float64
	LengthMultiplier float64
	TailLength       float64
	AnimationOffset  float64 // radians

	// Last tick's raw flocking forces (before prioritisation)
	PrevSeparation vmath.Vec
	PrevAlignment  vmath.Vec
	PrevCohesion   vmath.Vec
	PrevHeading    float64

	History  HeadingHistory
	Behavior Behavior

	// Last tick's bookkeeping, for telemetry and the inspector
	Neighbors   int
	ForceWeight float64 // magnitude of the prioritised flocking force
}

// Appearance holds the immutable colouring of one koi.
type Appearance struct {
	Pattern traits.Pattern
	Seed    int
}

// NewKoi creates a koi at a random position in a w x h pond. Draw order
// from rng is position, velocity, pattern, size/length/tail/speed, phase,
// then behaviour schedule.
func NewKoi(id int, w, h float64, now time.Time, rng *rand.Rand, cfg *config.Config) (Koi, Appearance) {
	pos := vmath.Vec{X: rng.Float64() * w, Y: rng.Float64() * h}
	vel := vmath.FromAngle(rng.Float64()*2*math.Pi, randRange(rng, cfg.Koi.InitialSpeed))
	pattern := traits.NewPattern(rng)

	k := Koi{
		ID:               id,
		Pos:              pos,
		Vel:              vel,
		PerceptionRadius: cfg.Physics.PerceptionRadius,
		SizeMultiplier:   randRange(rng, cfg.Koi.Size),
		LengthMultiplier: randRange(rng, cfg.Koi.Length),
		TailLength:       randRange(rng, cfg.Koi.Tail),
		SpeedMultiplier:  randRange(rng, cfg.Koi.Speed),
		AnimationOffset:  rng.Float64() * 2 * math.Pi,
		PrevHeading:      vmath.Heading(vel),
		History:          NewHeadingHistory(cfg.Physics.OscillationHistory),
	}
	k.Behavior = NewBehavior(now, rng, &cfg.Physics)

	// Never start faster than the koi's own cap
	k.Vel = vmath.Limit(k.Vel, k.MaxSpeed(cfg.Flocking.MaxSpeed))

	return k, Appearance{Pattern: pattern, Seed: id}
}

// Heading returns the current velocity angle.
func (k *Koi) Heading() float64 {
	return vmath.Heading(k.Vel)
}

// Speed returns the current velocity magnitude.
func (k *Koi) Speed() float64 {
	return vmath.Mag(k.Vel)
}

// MaxSpeed returns the koi's individual speed cap for a global maxSpeed.
func (k *Koi) MaxSpeed(maxSpeed float64) float64 {
	return maxSpeed * k.SpeedMultiplier
}

// Accelerate adds f to this tick's acceleration.
func (k *Koi) Accelerate(f vmath.Vec) {
	k.Acc = r2.Add(k.Acc, f)
}
