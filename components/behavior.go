package components

import (
	"math"
	"math/rand"
	"time"

	"github.com/pthm-cable/koipond/config"
)

// Mode identifies the active behaviour state.
type Mode uint8

const (
	ModeNormal      Mode = iota // Flocking with the group
	ModeEscaping                // Breaking out along a fixed heading
	ModeIndependent             // Ignoring the flock, drifting alone
)

// String returns the display name for a Mode.
func (m Mode) String() string {
	names := ModeNames()
	if int(m) < len(names) {
		return names[m]
	}
	return "Unknown"
}

// ModeNames returns the display names for all modes, in Mode order.
func ModeNames() []string {
	return []string{"Normal", "Escaping", "Independent"}
}

// EscapeCause records what triggered an escape.
type EscapeCause uint8

const (
	CauseNone EscapeCause = iota
	CauseOvercrowding
	CauseOscillation
)

func (c EscapeCause) String() string {
	switch c {
	case CauseOvercrowding:
		return "overcrowding"
	case CauseOscillation:
		return "oscillation"
	}
	return "none"
}

// State is one of Normal, Escaping or Independent.
type State interface {
	Mode() Mode
}

// Normal is the default flocking state.
type Normal struct{}

// Escaping overrides flocking with a fixed heading until Until.
type Escaping struct {
	Heading float64 // radians
	Until   time.Time
	Cause   EscapeCause
}

// Independent suppresses flocking until Until.
type Independent struct {
	Until time.Time
}

func (Normal) Mode() Mode      { return ModeNormal }
func (Escaping) Mode() Mode    { return ModeEscaping }
func (Independent) Mode() Mode { return ModeIndependent }

// Transition is a set of state changes that happened during one call.
type Transition uint8

const (
	EscapeStarted Transition = 1 << iota
	EscapeEnded
	IndependenceStarted
	IndependenceEnded

	NoTransition Transition = 0
)

// Has reports whether t includes all of other.
func (t Transition) Has(other Transition) bool {
	return t&other == other && other != 0
}

// Behavior is the per-koi stabilisation state machine. Exactly one State is
// active; the cooldown and independence schedule persist across states.
type Behavior struct {
	State State

	CooldownUntil      time.Time // no escape may start before this
	NextCheck          time.Time // next independence roll
	IndependenceChance float64   // fixed at creation
}

// NewBehavior returns a Normal behaviour with its first independence check
// scheduled from now.
func NewBehavior(now time.Time, rng *rand.Rand, p *config.PhysicsConfig) Behavior {
	return Behavior{
		State:              Normal{},
		NextCheck:          now.Add(randDuration(rng, p.IndependenceCheck)),
		IndependenceChance: randRange(rng, p.IndependenceChance),
	}
}

// Mode returns the active mode.
func (b *Behavior) Mode() Mode {
	if b.State == nil {
		return ModeNormal
	}
	return b.State.Mode()
}

// CanEscape reports whether an escape may start at now: the koi must be in
// Normal mode and past its cooldown.
func (b *Behavior) CanEscape(now time.Time) bool {
	return b.Mode() == ModeNormal && !now.Before(b.CooldownUntil)
}

// TriggerEscape starts an escape away from heading if allowed. The escape
// heading is offset by a random angle in the configured range, on a random
// side.
func (b *Behavior) TriggerEscape(now time.Time, heading float64, cause EscapeCause, rng *rand.Rand, p *config.PhysicsConfig) bool {
	if !b.CanEscape(now) {
		return false
	}
	sign := 1.0
	if rng.Float64() < 0.5 {
		sign = -1
	}
	offset := randRange(rng, p.EscapeAngleDeg) * math.Pi / 180
	b.State = Escaping{
		Heading: heading + sign*offset,
		Until:   now.Add(randDuration(rng, p.EscapeDuration)),
		Cause:   cause,
	}
	return true
}

// EscapeHeading returns the commanded heading while an escape is active.
// ok is true only in Escaping mode before the escape's end time.
func (b *Behavior) EscapeHeading(now time.Time) (heading float64, ok bool) {
	e, isEscaping := b.State.(Escaping)
	if !isEscaping || !now.Before(e.Until) {
		return 0, false
	}
	return e.Heading, true
}

// Advance applies time-based transitions at now.
func (b *Behavior) Advance(now time.Time, rng *rand.Rand, p *config.PhysicsConfig) Transition {
	switch s := b.State.(type) {
	case Escaping:
		if now.Before(s.Until) {
			return NoTransition
		}
		b.State = Normal{}
		b.CooldownUntil = now.Add(randDuration(rng, p.EscapeCooldown))
		return EscapeEnded

	case Independent:
		if now.Before(s.Until) {
			return NoTransition
		}
		b.State = Normal{}
		b.NextCheck = now.Add(randDuration(rng, p.IndependenceCheck))
		return IndependenceEnded

	default:
		b.State = Normal{}
		if now.Before(b.NextCheck) {
			return NoTransition
		}
		b.NextCheck = now.Add(randDuration(rng, p.IndependenceCheck))
		if rng.Float64() >= b.IndependenceChance {
			return NoTransition
		}
		b.State = Independent{Until: now.Add(randDuration(rng, p.IndependenceDuration))}
		return IndependenceStarted
	}
}

func randRange(rng *rand.Rand, r config.Range) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func randDuration(rng *rand.Rand, r config.Range) time.Duration {
	lo, hi := r.Durations()
	return lo + time.Duration(rng.Float64()*float64(hi-lo))
}
