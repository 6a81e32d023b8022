package sim

import (
	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/vec"
)

// AccelFunc injects extra per-body accelerations into every RK4 stage.
// It receives the (offset) stage state and the stage-shifted simulation
// clock, and must return one vector per body; any other length is ignored
// for that stage.
type AccelFunc func(bodies []body.Body, t float64) []vec.Vec3

// Config holds the live integration parameters.
type Config struct {
	G              float64
	TimeStep       float64
	Softening      float64
	SampleInterval float64 // simulation-time between stats recomputations
	Inject         AccelFunc
}

func DefaultConfig() Config {
	return Config{
		G:              1.0,
		TimeStep:       0.005,
		Softening:      0.05,
		SampleInterval: 0.25,
	}
}

// Overrides carries a partial config update; nil fields are left alone.
type Overrides struct {
	G              *float64
	TimeStep       *float64
	Softening      *float64
	SampleInterval *float64
}

func (c *Config) merge(o *Overrides) {
	if o.G != nil {
		c.G = *o.G
	}
	if o.TimeStep != nil {
		c.TimeStep = *o.TimeStep
	}
	if o.Softening != nil {
		c.Softening = *o.Softening
	}
	if o.SampleInterval != nil {
		c.SampleInterval = *o.SampleInterval
	}
}

// Ptr is a convenience for building Overrides literals.
func Ptr(v float64) *float64 { return &v }
