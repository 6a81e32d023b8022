package controllers

import (
	"errors"
	"fmt"
	"math"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/stability"
)

// Rejection reasons for randomly generated initial conditions.
var (
	ErrVirialRange  = errors.New("virial ratio outside generation bounds")
	ErrTooClose     = errors.New("bodies closer than minimum separation")
	ErrRocheContact = errors.New("similar-mass star pair within Roche proximity")
)

// Generation-time acceptance bounds. Looser than the runtime verdict
// thresholds: a freshly generated system is allowed to start further from
// equilibrium than a running one is allowed to drift.
const (
	genVirialLower = 0.2
	genVirialUpper = 3.0
	minSeparation  = 0.5
	rocheFactor    = 2.5

	// Star pairs with a mass ratio inside this band count as similar-mass.
	similarMassRatio = 2.0
)

// ValidateInitialConditions gates randomly generated body sets: virial
// ratio within the generation bounds, no pair under the minimum
// separation, and no close, similar-mass star pair inside Roche proximity
// of their summed display radii.
func ValidateInitialConditions(bodies []body.Body, g float64) error {
	virial := stability.VirialRatio(bodies, g)
	if virial < genVirialLower || virial > genVirialUpper {
		return fmt.Errorf("%w: %.3f", ErrVirialRange, virial)
	}

	min, _ := stability.PairwiseExtrema(bodies)
	if min < minSeparation {
		return fmt.Errorf("%w: %.3f", ErrTooClose, min)
	}

	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			if !bodies[i].IsStar || !bodies[j].IsStar {
				continue
			}
			ratio := bodies[i].Mass / bodies[j].Mass
			if ratio < 1/similarMassRatio || ratio > similarMassRatio {
				continue
			}
			d := bodies[i].Position.Distance(bodies[j].Position)
			if d < rocheFactor*(bodies[i].Radius+bodies[j].Radius) {
				return fmt.Errorf("%w: %s and %s at %.3f", ErrRocheContact,
					bodies[i].Name, bodies[j].Name, d)
			}
		}
	}
	return nil
}

// RandomMonitor is the runtime companion to the generation validator: it
// watches a randomly generated system for instability and answers with
// adaptive parameter overrides instead of corrections, since a random
// system has no nominal orbit to restore.
type RandomMonitor struct {
	g        float64
	baseStep float64
	baseSoft float64

	refE    float64
	first   bool
	damped  bool
	check   gate
}

func NewRandomMonitor(g, baseStep, baseSoftening float64) *RandomMonitor {
	return &RandomMonitor{
		g:        g,
		baseStep: baseStep,
		baseSoft: baseSoftening,
		first:    true,
		check:    gate{interval: 1.0},
	}
}

func (m *RandomMonitor) BeforeStep(bodies []body.Body, t, dt float64) *sim.Directive {
	if m.first {
		m.refE = stability.TotalEnergy(bodies, m.g)
		m.first = false
		return nil
	}
	if !m.check.fire(dt) {
		return nil
	}

	dev := 0.0
	if m.refE != 0 {
		e := stability.TotalEnergy(bodies, m.g)
		dev = math.Abs(e-m.refE) / math.Abs(m.refE)
	}
	_, maxDist := stability.PairwiseExtrema(bodies)
	verdict := stability.Verdict(dev, stability.VirialRatio(bodies, m.g),
		maxDist, stability.SymmetryScore(bodies))

	switch verdict {
	case stability.StatusCritical:
		if m.damped {
			return &sim.Directive{Feedback: &sim.Feedback{
				Severity: sim.SeverityCritical,
				Message:  fmt.Sprintf("system unstable at t=%.1f", t),
			}}
		}
		m.damped = true
		return &sim.Directive{
			Overrides: &sim.Overrides{
				TimeStep:  sim.Ptr(math.Max(m.baseStep*0.25, minTimeStep)),
				Softening: sim.Ptr(m.baseSoft * 2),
			},
			Feedback: &sim.Feedback{
				Severity: sim.SeverityCritical,
				Message:  "instability detected, damping integration",
			},
		}
	case stability.StatusWarning:
		return &sim.Directive{Feedback: &sim.Feedback{
			Severity: sim.SeverityWarning,
			Message:  fmt.Sprintf("stability warning at t=%.1f", t),
		}}
	default:
		if m.damped {
			m.damped = false
			return &sim.Directive{Overrides: &sim.Overrides{
				TimeStep:  sim.Ptr(m.baseStep),
				Softening: sim.Ptr(m.baseSoft),
			}}
		}
		return nil
	}
}
