package controllers

import (
	"fmt"
	"math"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/stability"
)

// HierarchyMonitor watches a hierarchical system (star, planets, moons).
// On its first invocation it assigns every body a parent: the most massive
// body overall is the primary, everything else orbits whichever heavier
// body dominates it gravitationally. It then periodically scores ejection
// risk per satellite (separation growth, relative speed against escape
// speed) and checks that moons stay inside their parent's Hill sphere.
type HierarchyMonitor struct {
	g float64

	built   bool
	primary int
	parent  []int
	refDist []float64
	check   gate
}

const (
	separationWarnRatio     = 1.5
	separationCriticalRatio = 3.0
)

func NewHierarchyMonitor(g float64) *HierarchyMonitor {
	return &HierarchyMonitor{g: g, check: gate{interval: 2.0}}
}

func (h *HierarchyMonitor) BeforeStep(bodies []body.Body, t, dt float64) *sim.Directive {
	if !h.built {
		h.build(bodies)
		h.built = true
		return nil
	}
	if !h.check.fire(dt) {
		return nil
	}

	worst := sim.SeverityInfo
	var message string
	critical := false

	for i := range bodies {
		if i == h.primary {
			continue
		}
		p := h.parent[i]
		d := bodies[i].Position.Distance(bodies[p].Position)

		ratio := math.Inf(1)
		if h.refDist[i] > 0 {
			ratio = d / h.refDist[i]
		}

		vRel := bodies[i].Velocity.Sub(bodies[p].Velocity).Magnitude()
		vEsc := math.Sqrt(2 * h.g * (bodies[i].Mass + bodies[p].Mass) / d)

		switch {
		case vRel > vEsc && ratio > separationCriticalRatio:
			critical = true
			worst = sim.SeverityCritical
			message = fmt.Sprintf("%s exceeding escape speed of %s", bodies[i].Name, bodies[p].Name)
		case ratio > separationWarnRatio && worst != sim.SeverityCritical:
			worst = sim.SeverityWarning
			message = fmt.Sprintf("%s drifting from %s (%.1fx initial separation)", bodies[i].Name, bodies[p].Name, ratio)
		}

		// Moons: the parent itself orbits something heavier; verify the
		// moon is still inside the parent's Hill sphere.
		if gp := h.parent[p]; p != h.primary && worst != sim.SeverityCritical {
			hill := stability.HillRadius(bodies[p].Mass, bodies[gp].Mass,
				bodies[p].Position.Distance(bodies[gp].Position))
			if hill > 0 && d > hill {
				worst = sim.SeverityWarning
				message = fmt.Sprintf("%s outside Hill sphere of %s", bodies[i].Name, bodies[p].Name)
			}
		}
	}

	if worst == sim.SeverityInfo {
		return nil
	}
	d := &sim.Directive{Feedback: &sim.Feedback{Severity: worst, Message: message}}
	if critical {
		d.Overrides = &sim.Overrides{TimeStep: sim.Ptr(math.Max(dt*0.5, minTimeStep))}
	}
	return d
}

func (h *HierarchyMonitor) build(bodies []body.Body) {
	n := len(bodies)
	h.parent = make([]int, n)
	h.refDist = make([]float64, n)

	h.primary = 0
	for i := 1; i < n; i++ {
		if bodies[i].Mass > bodies[h.primary].Mass {
			h.primary = i
		}
	}

	for i := range bodies {
		if i == h.primary {
			h.parent[i] = i
			continue
		}
		best := h.primary
		bestPull := 0.0
		for j := range bodies {
			if j == i || bodies[j].Mass <= bodies[i].Mass {
				continue
			}
			d2 := bodies[i].Position.Sub(bodies[j].Position).MagnitudeSq()
			if d2 == 0 {
				continue
			}
			if pull := bodies[j].Mass / d2; pull > bestPull {
				bestPull = pull
				best = j
			}
		}
		h.parent[i] = best
		h.refDist[i] = bodies[i].Position.Distance(bodies[best].Position)
	}
}

// Parent exposes the computed hierarchy for telemetry and tests.
func (h *HierarchyMonitor) Parent(i int) int {
	if !h.built || i < 0 || i >= len(h.parent) {
		return -1
	}
	return h.parent[i]
}
