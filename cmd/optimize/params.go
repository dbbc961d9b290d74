// Package main tunes flocking parameters with CMA-ES so that headless ponds
// settle into calm, cohesive schools.
package main

import (
	"github.com/pthm-cable/koipond/config"
)

// ParamSpec is one tunable config value. The search works on [0,1] and
// maps onto [Min, Max].
type ParamSpec struct {
	Name    string
	Path    string // dotted config key, for reports
	Min     float64
	Max     float64
	Default float64

	field func(*config.Config) *float64
}

func (s ParamSpec) span() float64 { return s.Max - s.Min }

func (s ParamSpec) clamp(v float64) float64 { return min(max(v, s.Min), s.Max) }

// ParamVector is the ordered search space.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the flocking weights plus the stabilisation knobs
// that most affect oscillation.
func NewParamVector() *ParamVector {
	flock := func(name string, lo, hi, def float64, f func(*config.FlockingConfig) *float64) ParamSpec {
		return ParamSpec{name, "flocking." + name, lo, hi, def, func(c *config.Config) *float64 { return f(&c.Flocking) }}
	}
	phys := func(name string, lo, hi, def float64, f func(*config.PhysicsConfig) *float64) ParamSpec {
		return ParamSpec{name, "physics." + name, lo, hi, def, func(c *config.Config) *float64 { return f(&c.Physics) }}
	}
	return &ParamVector{Specs: []ParamSpec{
		flock("alignment_weight", 0.1, 3.0, 1.0, func(f *config.FlockingConfig) *float64 { return &f.AlignmentWeight }),
		flock("cohesion_weight", 0.1, 3.0, 0.8, func(f *config.FlockingConfig) *float64 { return &f.CohesionWeight }),
		flock("separation_weight", 0.1, 3.0, 1.2, func(f *config.FlockingConfig) *float64 { return &f.SeparationWeight }),
		flock("max_force", 0.02, 0.3, 0.08, func(f *config.FlockingConfig) *float64 { return &f.MaxForce }),
		phys("perception_radius", 30, 150, 75, func(p *config.PhysicsConfig) *float64 { return &p.PerceptionRadius }),
		phys("damping", 0.1, 0.9, 0.45, func(p *config.PhysicsConfig) *float64 { return &p.Damping }),
		phys("force_smoothing", 0.05, 0.8, 0.25, func(p *config.PhysicsConfig) *float64 { return &p.ForceSmoothing }),
	}}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int { return len(pv.Specs) }

// DefaultVector returns each parameter's default.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.each(nil, func(s ParamSpec, _ float64) float64 { return s.Default })
}

// Normalize maps raw values onto [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.each(raw, func(s ParamSpec, v float64) float64 { return (v - s.Min) / s.span() })
}

// Denormalize maps [0,1] values back onto each parameter's range. Values
// outside [0,1] map outside the range; use Clamp before simulating.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	return pv.each(unit, func(s ParamSpec, u float64) float64 { return s.Min + u*s.span() })
}

// Clamp bounds every value to its parameter's range.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.each(v, ParamSpec.clamp)
}

// ApplyToConfig writes clamped values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, s := range pv.Specs {
		*s.field(cfg) = s.clamp(values[i])
	}
}

// ExtractFromConfig reads the current values out of cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return pv.each(nil, func(s ParamSpec, _ float64) float64 { return *s.field(cfg) })
}

func (pv *ParamVector) each(in []float64, fn func(ParamSpec, float64) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		var v float64
		if in != nil {
			v = in[i]
		}
		out[i] = fn(s, v)
	}
	return out
}
