package controllers

import (
	"fmt"
	"math"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/stability"
)

// Phase labels the stages a chaotic few-body system moves through on its
// way to ejecting a member.
type Phase string

const (
	PhaseStableInteraction Phase = "stable-interaction"
	PhaseEnergyExchange    Phase = "energy-exchange"
	PhaseEjectionPossible  Phase = "ejection-possible"
	PhasePostEjection      Phase = "post-ejection"
)

// EjectionEvent records an unbound body and the partner it broke from.
type EjectionEvent struct {
	Body    string
	Partner string
	Time    float64
}

// Phase transition distances. Tighter than the analyzer's ejection
// threshold: the classifier flags "possible" well before a body is gone.
const (
	exchangeDistance = 12.0
	watchDistance    = 40.0
)

// PhaseClassifier tracks the ejection phase of a chaotic scenario from the
// maximum pairwise distance and the two-body energy of the fastest body
// against its nearest neighbor, and adapts step size and softening per
// phase: close interplay runs fine-grained, a post-ejection system can
// afford coarser steps.
type PhaseClassifier struct {
	g        float64
	baseStep float64
	baseSoft float64

	phase   Phase
	events  []EjectionEvent
	ejected map[string]bool
	check   gate
}

func NewPhaseClassifier(g, baseStep, baseSoftening float64) *PhaseClassifier {
	return &PhaseClassifier{
		g:        g,
		baseStep: baseStep,
		baseSoft: baseSoftening,
		phase:    PhaseStableInteraction,
		ejected:  make(map[string]bool),
		check:    gate{interval: 0.5},
	}
}

func (p *PhaseClassifier) Phase() Phase            { return p.phase }
func (p *PhaseClassifier) Events() []EjectionEvent { return p.events }

func (p *PhaseClassifier) BeforeStep(bodies []body.Body, t, dt float64) *sim.Directive {
	if !p.check.fire(dt) {
		return nil
	}

	_, maxDist := stability.PairwiseExtrema(bodies)
	runaway, partner := fastestPair(bodies)
	pairEnergy := stability.TwoBodyEnergy(bodies[runaway], bodies[partner], p.g)

	prev := p.phase
	switch {
	case maxDist > stability.EjectionDistance && pairEnergy > 0:
		if !p.ejected[bodies[runaway].Name] {
			p.ejected[bodies[runaway].Name] = true
			p.events = append(p.events, EjectionEvent{
				Body:    bodies[runaway].Name,
				Partner: bodies[partner].Name,
				Time:    t,
			})
		}
		p.phase = PhasePostEjection
	case pairEnergy > 0 || maxDist > watchDistance:
		if p.phase != PhasePostEjection {
			p.phase = PhaseEjectionPossible
		}
	case maxDist > exchangeDistance:
		if p.phase != PhasePostEjection {
			p.phase = PhaseEnergyExchange
		}
	default:
		if p.phase != PhasePostEjection {
			p.phase = PhaseStableInteraction
		}
	}

	if p.phase == prev {
		return nil
	}

	d := &sim.Directive{Feedback: &sim.Feedback{
		Severity: severityFor(p.phase),
		Message:  fmt.Sprintf("phase %s at t=%.1f", p.phase, t),
	}}
	switch p.phase {
	case PhaseEnergyExchange, PhaseEjectionPossible:
		// Close encounters: refine the step and tighten softening.
		d.Overrides = &sim.Overrides{
			TimeStep:  sim.Ptr(math.Max(p.baseStep*0.5, minTimeStep)),
			Softening: sim.Ptr(p.baseSoft * 0.5),
		}
	case PhasePostEjection:
		d.Overrides = &sim.Overrides{
			TimeStep:  sim.Ptr(p.baseStep),
			Softening: sim.Ptr(p.baseSoft),
		}
	}
	return d
}

// fastestPair returns the index of the fastest body relative to the system
// centroid velocity and its nearest neighbor.
func fastestPair(bodies []body.Body) (runaway, partner int) {
	best := -1.0
	for i := range bodies {
		if v := bodies[i].Velocity.MagnitudeSq(); v > best {
			best = v
			runaway = i
		}
	}
	nearest := math.Inf(1)
	partner = (runaway + 1) % len(bodies)
	for j := range bodies {
		if j == runaway {
			continue
		}
		if d := bodies[runaway].Position.Distance(bodies[j].Position); d < nearest {
			nearest = d
			partner = j
		}
	}
	return runaway, partner
}

func severityFor(p Phase) sim.Severity {
	switch p {
	case PhaseEjectionPossible:
		return sim.SeverityWarning
	case PhasePostEjection:
		return sim.SeverityCritical
	default:
		return sim.SeverityInfo
	}
}
