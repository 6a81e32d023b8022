// Package sim owns the fixed-step RK4 integrator over softened Newtonian
// gravity, the live configuration and the controller protocol. One
// Integrator instance is single-threaded: the external driver calls Step
// once per substep and reads Bodies between calls.
package sim

import (
	"math"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/gravity"
	"github.com/skanda-m/gravsim/internal/stability"
	"github.com/skanda-m/gravsim/internal/vec"
)

// Snapshot is the cached telemetry block. Immutable once produced.
type Snapshot struct {
	TotalEnergy     float64
	KineticEnergy   float64
	PotentialEnergy float64
	Habitable       bool

	EnergyDeviation float64
	VirialRatio     float64
	SymmetryScore   float64
	MinPairDistance float64
	MaxPairDistance float64
	AngularMomentumZ float64
	SpatialSpread   float64
	Status          stability.Status
}

// StatsFunc observes freshly recomputed stats, synchronously on the
// stepping call stack.
type StatsFunc func(Snapshot)

// deriv holds one RK4 stage: position derivatives (velocities) and
// velocity derivatives (accelerations), one entry per body.
type deriv struct {
	dpos []vec.Vec3
	dvel []vec.Vec3
}

func newDeriv(n int) deriv {
	return deriv{dpos: make([]vec.Vec3, n), dvel: make([]vec.Vec3, n)}
}

// Integrator advances a fixed set of bodies with classic RK4. All working
// buffers are allocated once at construction and reused every step.
type Integrator struct {
	bodies  []body.Body
	scratch []body.Body
	k1, k2, k3, k4 deriv

	cfg        Config
	controller Controller
	onStats    StatsFunc

	t           float64
	sampleAccum float64

	stats    Snapshot
	feedback *Feedback

	baselineEnergy float64
	hasBaseline    bool
}

// New deep-copies the initial bodies (the caller's slice is never aliased)
// and seeds the stats cache, so Stats never observes an empty value.
func New(initial []body.Body, cfg Config) *Integrator {
	n := len(initial)
	s := &Integrator{
		bodies:  body.Clone(initial),
		scratch: body.Scratch(initial),
		k1:      newDeriv(n),
		k2:      newDeriv(n),
		k3:      newDeriv(n),
		k4:      newDeriv(n),
		cfg:     cfg,
	}
	s.refreshStats()
	return s
}

// Bodies returns the live body slice. The driver may read it between steps;
// it stays valid and internally consistent for the integrator's lifetime.
func (s *Integrator) Bodies() []body.Body { return s.bodies }

// Time returns the current simulation time.
func (s *Integrator) Time() float64 { return s.t }

// Config returns a copy of the live configuration.
func (s *Integrator) Config() Config { return s.cfg }

// SetConfig replaces the full configuration.
func (s *Integrator) SetConfig(cfg Config) { s.cfg = cfg }

// ApplyOverrides merges only the provided fields into the live config.
func (s *Integrator) ApplyOverrides(o Overrides) { s.cfg.merge(&o) }

// SetStatsCallback registers an observer invoked at each stats
// recomputation; nil clears it.
func (s *Integrator) SetStatsCallback(cb StatsFunc) { s.onStats = cb }

// SetController attaches or detaches the stability controller, effective
// from the next Step. Attaching records a fresh energy baseline for
// deviation tracking; detaching clears it.
func (s *Integrator) SetController(c Controller) {
	s.controller = c
	s.feedback = nil
	if c != nil {
		s.baselineEnergy = stability.TotalEnergy(s.bodies, s.cfg.G)
		s.hasBaseline = true
	} else {
		s.hasBaseline = false
	}
}

// LastFeedback returns the most recent controller feedback, nil if none.
func (s *Integrator) LastFeedback() *Feedback { return s.feedback }

// EnergyDeviation is the relative drift of the current total energy from
// the baseline recorded at controller attachment, 0 without a baseline.
func (s *Integrator) EnergyDeviation() float64 {
	if !s.hasBaseline || s.baselineEnergy == 0 {
		return 0
	}
	e := stability.TotalEnergy(s.bodies, s.cfg.G)
	return math.Abs(e-s.baselineEnergy) / math.Abs(s.baselineEnergy)
}

// Stats returns the cached snapshot.
func (s *Integrator) Stats() Snapshot { return s.stats }

// Step advances the system by dt: controller hook, four gravity stages on
// the scratch buffer, in-place dt/6 combination, then time bookkeeping and
// the stats sampling schedule. No allocation in steady state.
func (s *Integrator) Step(dt float64) {
	if s.controller != nil {
		if d := s.controller.BeforeStep(s.bodies, s.t, dt); d != nil {
			if d.Overrides != nil {
				s.cfg.merge(d.Overrides)
			}
			if d.Inject != nil {
				s.cfg.Inject = d.Inject
			}
			if d.Feedback != nil {
				s.feedback = d.Feedback
			}
		}
	}

	s.stage(&s.k1, nil, 0, 0)
	s.stage(&s.k2, &s.k1, dt*0.5, dt*0.5)
	s.stage(&s.k3, &s.k2, dt*0.5, dt*0.5)
	s.stage(&s.k4, &s.k3, dt, dt)

	w := dt / 6.0
	for i := range s.bodies {
		dp := s.k1.dpos[i].
			AddScaled(s.k2.dpos[i], 2).
			AddScaled(s.k3.dpos[i], 2).
			Add(s.k4.dpos[i])
		dv := s.k1.dvel[i].
			AddScaled(s.k2.dvel[i], 2).
			AddScaled(s.k3.dvel[i], 2).
			Add(s.k4.dvel[i])
		s.bodies[i].Position = s.bodies[i].Position.AddScaled(dp, w)
		s.bodies[i].Velocity = s.bodies[i].Velocity.AddScaled(dv, w)
	}

	s.t += dt
	s.sampleAccum += dt
	if s.cfg.SampleInterval > 0 && s.sampleAccum >= s.cfg.SampleInterval {
		s.sampleAccum -= s.cfg.SampleInterval
		s.refreshStats()
		if s.onStats != nil {
			s.onStats(s.stats)
		}
	}
}

// stage evaluates one RK4 derivative at the base state offset by
// scale·prev, with the clock shifted by shift. prev == nil means the
// unmodified base state.
func (s *Integrator) stage(dst *deriv, prev *deriv, scale, shift float64) {
	for i := range s.bodies {
		s.scratch[i].Position = s.bodies[i].Position
		s.scratch[i].Velocity = s.bodies[i].Velocity
		if prev != nil {
			s.scratch[i].Position = s.scratch[i].Position.AddScaled(prev.dpos[i], scale)
			s.scratch[i].Velocity = s.scratch[i].Velocity.AddScaled(prev.dvel[i], scale)
		}
	}

	for i := range s.scratch {
		dst.dpos[i] = s.scratch[i].Velocity
	}
	gravity.Accelerations(s.scratch, s.cfg.G, s.cfg.Softening, dst.dvel)

	if s.cfg.Inject != nil {
		extra := s.cfg.Inject(s.scratch, s.t+shift)
		// A mismatched length degrades to a no-op for this stage rather
		// than halting the simulation.
		if len(extra) == len(s.scratch) {
			for i := range extra {
				dst.dvel[i] = dst.dvel[i].Add(extra[i])
			}
		}
	}
}

func (s *Integrator) refreshStats() {
	ke := stability.KineticEnergy(s.bodies)
	pe := stability.PotentialEnergy(s.bodies, s.cfg.G)
	min, max := stability.PairwiseExtrema(s.bodies)
	sym := stability.SymmetryScore(s.bodies)
	virial := stability.VirialRatio(s.bodies, s.cfg.G)
	dev := 0.0
	if s.hasBaseline && s.baselineEnergy != 0 {
		dev = math.Abs(ke+pe-s.baselineEnergy) / math.Abs(s.baselineEnergy)
	}
	s.stats = Snapshot{
		TotalEnergy:      ke + pe,
		KineticEnergy:    ke,
		PotentialEnergy:  pe,
		Habitable:        stability.Habitable(s.bodies),
		EnergyDeviation:  dev,
		VirialRatio:      virial,
		SymmetryScore:    sym,
		MinPairDistance:  min,
		MaxPairDistance:  max,
		AngularMomentumZ: stability.AngularMomentum(s.bodies).Z,
		SpatialSpread:    stability.SpatialSpread(s.bodies),
		Status:           stability.Verdict(dev, virial, max, sym),
	}
}
