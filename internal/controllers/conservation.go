package controllers

import (
	"fmt"
	"math"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/stability"
)

// ConservationMonitor watches total energy and angular momentum against the
// values recorded on its first invocation. Past the tolerance it emits
// warnings; after repeated drift detections it shrinks the step size.
// The aggressive variant also rescales velocities in place to pull the
// z angular momentum back to its reference value.
type ConservationMonitor struct {
	EnergyTolerance   float64
	MomentumTolerance float64
	Aggressive        bool

	g       float64
	first   bool
	refE    float64
	refLz   float64
	strikes int
	check   gate
}

const (
	driftStrikeLimit = 3
	minTimeStep      = 1e-4
	// Velocity rescaling stays within ±5% per correction.
	maxVelocityScale = 0.05
)

func NewConservationMonitor(g float64, aggressive bool) *ConservationMonitor {
	return &ConservationMonitor{
		EnergyTolerance:   0.01,
		MomentumTolerance: 0.02,
		Aggressive:        aggressive,
		g:                 g,
		first:             true,
		check:             gate{interval: 1.0},
	}
}

func (m *ConservationMonitor) BeforeStep(bodies []body.Body, t, dt float64) *sim.Directive {
	if m.first {
		m.refE = stability.TotalEnergy(bodies, m.g)
		m.refLz = stability.AngularMomentum(bodies).Z
		m.first = false
		return nil
	}
	if !m.check.fire(dt) {
		return nil
	}

	e := stability.TotalEnergy(bodies, m.g)
	lz := stability.AngularMomentum(bodies).Z

	devE := 0.0
	if m.refE != 0 {
		devE = math.Abs(e-m.refE) / math.Abs(m.refE)
	}
	devL := math.Abs(lz-m.refLz) / (math.Abs(m.refLz) + 1e-12)

	if m.Aggressive && devL > m.MomentumTolerance && lz != 0 && sameSign(lz, m.refLz) {
		scale := m.refLz / lz
		scale = clamp(scale, 1-maxVelocityScale, 1+maxVelocityScale)
		for i := range bodies {
			bodies[i].Velocity = bodies[i].Velocity.Scale(scale)
		}
	}

	if devE <= m.EnergyTolerance {
		if m.strikes > 0 {
			m.strikes--
		}
		return nil
	}

	m.strikes++
	if m.strikes < driftStrikeLimit {
		return &sim.Directive{Feedback: &sim.Feedback{
			Severity: sim.SeverityWarning,
			Message:  fmt.Sprintf("energy drift %.2f%% at t=%.1f", devE*100, t),
		}}
	}

	m.strikes = 0
	return &sim.Directive{
		Overrides: &sim.Overrides{
			TimeStep: sim.Ptr(math.Max(dt*0.8, minTimeStep)),
		},
		Feedback: &sim.Feedback{
			Severity: sim.SeverityCritical,
			Message:  fmt.Sprintf("persistent drift %.2f%%, shrinking step", devE*100),
		},
	}
}

func sameSign(a, b float64) bool {
	return (a > 0) == (b > 0)
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
