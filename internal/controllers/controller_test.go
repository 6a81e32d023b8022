package controllers

import (
	"errors"
	"math"
	"testing"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/vec"
)

// ringBodies places n equal masses on a circle with tangential velocity ω·r.
func ringBodies(n int, radius, mass, omega float64) []body.Body {
	bodies := make([]body.Body, n)
	for i := range bodies {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pos := vec.Vec3{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
		bodies[i] = body.Body{
			Name:     string(rune('a' + i)),
			Mass:     mass,
			IsStar:   true,
			Position: pos,
			Velocity: vec.Vec3{Z: 1}.Cross(pos).Scale(omega),
		}
	}
	return bodies
}

func TestGateSchedule(t *testing.T) {
	g := gate{interval: 1.0}

	fires := 0
	for i := 0; i < 100; i++ {
		if g.fire(0.25) {
			fires++
		}
	}
	// 100 steps of 0.25 cover t=25 at interval 1.0.
	if fires != 25 {
		t.Errorf("expected 25 firings, got %d", fires)
	}
}

func TestOrbitKeeperFirstCallInstallsInjection(t *testing.T) {
	bodies := ringBodies(3, 1, 1, 0.8)
	ok := NewOrbitKeeper()

	d := ok.BeforeStep(bodies, 0, 0.01)
	if d == nil || d.Inject == nil {
		t.Fatal("first call must install the injection function")
	}
	if d2 := ok.BeforeStep(bodies, 0.01, 0.01); d2 != nil {
		t.Error("subsequent calls should be silent")
	}

	// On the nominal orbit the correction is negligible.
	for i, a := range d.Inject(bodies, 0) {
		if a.Magnitude() > 1e-9 {
			t.Errorf("body %d: correction %.2e on nominal orbit", i, a.Magnitude())
		}
	}
}

func TestOrbitKeeperCapsCorrection(t *testing.T) {
	bodies := ringBodies(3, 1, 1, 0.8)
	ok := NewOrbitKeeper()
	d := ok.BeforeStep(bodies, 0, 0.01)

	// Displace one body far off its ring; the correction must stay capped.
	perturbed := body.Clone(bodies)
	perturbed[0].Position = vec.Vec3{X: 10, Y: 10}
	perturbed[0].Velocity = vec.Vec3{X: -5}

	var maxCorrection float64
	for i, a := range d.Inject(perturbed, 1) {
		if a.Magnitude() > ok.MaxAccel+1e-12 {
			t.Errorf("body %d: correction %.4f exceeds cap %.4f", i, a.Magnitude(), ok.MaxAccel)
		}
		if a.Magnitude() > maxCorrection {
			maxCorrection = a.Magnitude()
		}
	}
	if maxCorrection == 0 {
		t.Error("expected a nonzero correction for a displaced body")
	}
}

func TestConservationMonitorEscalation(t *testing.T) {
	bodies := ringBodies(3, 1, 1, 0.8)
	m := NewConservationMonitor(1, false)

	// First call records the baseline silently.
	if d := m.BeforeStep(bodies, 0, 1.0); d != nil {
		t.Fatal("first call should only record the reference")
	}

	// Inflate kinetic energy well past tolerance.
	drifted := body.Clone(bodies)
	for i := range drifted {
		drifted[i].Velocity = drifted[i].Velocity.Scale(1.5)
	}

	var sawWarning, sawOverride bool
	for i := 0; i < driftStrikeLimit; i++ {
		d := m.BeforeStep(drifted, float64(i+1), 1.0)
		if d == nil {
			t.Fatalf("call %d: expected a directive under persistent drift", i)
		}
		if d.Overrides != nil {
			sawOverride = true
			if *d.Overrides.TimeStep >= 1.0 {
				t.Error("override should shrink the step")
			}
		} else if d.Feedback != nil && d.Feedback.Severity == sim.SeverityWarning {
			sawWarning = true
		}
	}
	if !sawWarning || !sawOverride {
		t.Errorf("expected warnings then an override, got warning=%v override=%v", sawWarning, sawOverride)
	}
}

func TestConservationMonitorAggressiveRestoresLz(t *testing.T) {
	bodies := ringBodies(3, 1, 1, 0.8)
	m := NewConservationMonitor(1, true)
	m.BeforeStep(bodies, 0, 1.0)

	// Spin the system up 4%: L_z too high, inside the clamp range.
	spun := body.Clone(bodies)
	for i := range spun {
		spun[i].Velocity = spun[i].Velocity.Scale(1.04)
	}
	before := spun[0].Velocity.Magnitude()
	m.BeforeStep(spun, 1, 1.0)
	after := spun[0].Velocity.Magnitude()

	if after >= before {
		t.Errorf("aggressive variant should damp excess angular momentum: %.4f -> %.4f", before, after)
	}
}

func hierarchicalBodies() []body.Body {
	return []body.Body{
		{Name: "star", Mass: 20, IsStar: true},
		{Name: "planet", Mass: 0.01, Position: vec.Vec3{X: 18},
			Velocity: vec.Vec3{Y: math.Sqrt(20.0 / 18)}},
		{Name: "moon", Mass: 1e-4, Position: vec.Vec3{X: 18.3},
			Velocity: vec.Vec3{Y: math.Sqrt(20.0/18) + math.Sqrt(0.01/0.3)}},
	}
}

func TestHierarchyMonitorBuildsTree(t *testing.T) {
	bodies := hierarchicalBodies()
	h := NewHierarchyMonitor(1)
	h.BeforeStep(bodies, 0, 0.01)

	if h.Parent(0) != 0 {
		t.Errorf("primary should parent itself, got %d", h.Parent(0))
	}
	if h.Parent(1) != 0 {
		t.Errorf("planet should orbit the star, got %d", h.Parent(1))
	}
	if h.Parent(2) != 1 {
		t.Errorf("moon should orbit the planet, got %d", h.Parent(2))
	}
}

func TestHierarchyMonitorFlagsEjection(t *testing.T) {
	bodies := hierarchicalBodies()
	h := NewHierarchyMonitor(1)
	h.BeforeStep(bodies, 0, 0.01)

	// Throw the planet far out, well past escape speed.
	bodies[1].Position = vec.Vec3{X: 80}
	bodies[1].Velocity = vec.Vec3{X: 5}
	bodies[2].Position = vec.Vec3{X: 80.3}
	bodies[2].Velocity = vec.Vec3{X: 5}

	var d *sim.Directive
	for i := 0; i < 10 && d == nil; i++ {
		d = h.BeforeStep(bodies, float64(i), 1.0)
	}
	if d == nil || d.Feedback == nil {
		t.Fatal("expected ejection feedback")
	}
	if d.Feedback.Severity != sim.SeverityCritical {
		t.Errorf("expected critical severity, got %s", d.Feedback.Severity)
	}
	if d.Overrides == nil || d.Overrides.TimeStep == nil {
		t.Error("high ejection risk should shrink the step")
	}
}

func TestPhaseClassifierTransitions(t *testing.T) {
	p := NewPhaseClassifier(1, 0.002, 0.02)
	if p.Phase() != PhaseStableInteraction {
		t.Fatalf("expected initial phase %s, got %s", PhaseStableInteraction, p.Phase())
	}

	pair := func(sep, speed float64) []body.Body {
		return []body.Body{
			{Name: "a", Mass: 1},
			{Name: "b", Mass: 1, Position: vec.Vec3{X: sep}, Velocity: vec.Vec3{X: speed}},
		}
	}

	// Bound bodies past the exchange distance: energy exchange, finer step.
	d := p.BeforeStep(pair(15, 0), 1, 0.5)
	if p.Phase() != PhaseEnergyExchange {
		t.Fatalf("expected %s, got %s", PhaseEnergyExchange, p.Phase())
	}
	if d == nil || d.Overrides == nil || *d.Overrides.TimeStep >= 0.002 {
		t.Error("exchange phase should refine the step")
	}

	// Past the watch distance: ejection possible, warning severity.
	d = p.BeforeStep(pair(50, 0), 2, 0.5)
	if p.Phase() != PhaseEjectionPossible {
		t.Fatalf("expected %s, got %s", PhaseEjectionPossible, p.Phase())
	}
	if d == nil || d.Feedback == nil || d.Feedback.Severity != sim.SeverityWarning {
		t.Error("expected a warning on possible ejection")
	}

	// Unbound and past the ejection distance: post-ejection, base parameters
	// restored, one event recorded.
	d = p.BeforeStep(pair(150, 3), 3, 0.5)
	if p.Phase() != PhasePostEjection {
		t.Fatalf("expected %s, got %s", PhasePostEjection, p.Phase())
	}
	if d == nil || d.Overrides == nil || *d.Overrides.TimeStep != 0.002 {
		t.Error("post-ejection should restore the base step")
	}
	if len(p.Events()) != 1 || p.Events()[0].Body != "b" {
		t.Errorf("expected one ejection event for b, got %+v", p.Events())
	}

	// Post-ejection is sticky.
	p.BeforeStep(pair(2, 0), 4, 0.5)
	if p.Phase() != PhasePostEjection {
		t.Errorf("post-ejection should be sticky, got %s", p.Phase())
	}
	if len(p.Events()) != 1 {
		t.Errorf("event recorded twice: %+v", p.Events())
	}
}

// An escaping body integrated through the simulator must carry the
// classifier from ejection-possible into post-ejection.
func TestPhaseClassifierEndToEndEjection(t *testing.T) {
	bodies := []body.Body{
		{Name: "binary-1", Mass: 1, Position: vec.Vec3{X: -0.5}, Velocity: vec.Vec3{Y: -math.Sqrt(0.5)}},
		{Name: "binary-2", Mass: 1, Position: vec.Vec3{X: 0.5}, Velocity: vec.Vec3{Y: math.Sqrt(0.5)}},
		{Name: "escaper", Mass: 1, Position: vec.Vec3{X: 30}, Velocity: vec.Vec3{X: 3}},
	}
	cfg := sim.Config{G: 1, TimeStep: 0.01, Softening: 0.02}
	p := NewPhaseClassifier(cfg.G, cfg.TimeStep, cfg.Softening)

	s := sim.New(bodies, cfg)
	s.SetController(p)

	sawPossible := false
	for s.Time() < 60 && p.Phase() != PhasePostEjection {
		if p.Phase() == PhaseEjectionPossible {
			sawPossible = true
		}
		s.Step(s.Config().TimeStep)
	}

	if !sawPossible {
		t.Error("classifier never flagged the escaper as a possible ejection")
	}
	if p.Phase() != PhasePostEjection {
		t.Fatal("escaper never classified as ejected")
	}
	events := p.Events()
	if len(events) != 1 || events[0].Body != "escaper" {
		t.Errorf("expected a single ejection event for the escaper, got %+v", events)
	}
}

func TestValidatorAcceptsRelaxedRing(t *testing.T) {
	good := ringBodies(4, 2, 1, math.Sqrt(0.12))
	if err := ValidateInitialConditions(good, 1); err != nil {
		t.Errorf("expected near-virialized ring to validate, got %v", err)
	}
}

func TestValidatorRejections(t *testing.T) {
	tooClose := []body.Body{
		{Name: "a", Mass: 1, Velocity: vec.Vec3{Y: 2}},
		{Name: "b", Mass: 1, Position: vec.Vec3{X: 0.1}, Velocity: vec.Vec3{Y: -2}},
		{Name: "c", Mass: 1, Position: vec.Vec3{X: 5}, Velocity: vec.Vec3{X: 2}},
	}
	if err := ValidateInitialConditions(tooClose, 1); !errors.Is(err, ErrTooClose) {
		t.Errorf("expected ErrTooClose, got %v", err)
	}

	hot := ringBodies(3, 2, 1, 10)
	if err := ValidateInitialConditions(hot, 1); !errors.Is(err, ErrVirialRange) {
		t.Errorf("expected ErrVirialRange, got %v", err)
	}

	roche := []body.Body{
		{Name: "a", Mass: 1, IsStar: true, Radius: 1, Velocity: vec.Vec3{Y: 0.5}},
		{Name: "b", Mass: 1.2, IsStar: true, Radius: 1, Position: vec.Vec3{X: 3},
			Velocity: vec.Vec3{Y: -0.5}},
	}
	if err := ValidateInitialConditions(roche, 1); !errors.Is(err, ErrRocheContact) {
		t.Errorf("expected ErrRocheContact, got %v", err)
	}
}

func TestRandomMonitorDampsInstability(t *testing.T) {
	bodies := ringBodies(4, 2, 1, math.Sqrt(0.12))
	m := NewRandomMonitor(1, 0.004, 0.05)
	m.BeforeStep(bodies, 0, 1.0) // reference

	// Blow the system apart: ejection distance plus broken energy budget.
	bodies[0].Position = vec.Vec3{X: 200}
	bodies[0].Velocity = vec.Vec3{X: 10}

	d := m.BeforeStep(bodies, 1, 1.0)
	if d == nil || d.Overrides == nil {
		t.Fatal("expected damping overrides for a critical system")
	}
	if *d.Overrides.TimeStep >= 0.004 {
		t.Error("expected a smaller step")
	}
	if *d.Overrides.Softening <= 0.05 {
		t.Error("expected increased softening")
	}

	// Already damped: critical again yields feedback only.
	d = m.BeforeStep(bodies, 2, 1.0)
	if d == nil || d.Overrides != nil || d.Feedback == nil {
		t.Error("expected feedback without re-damping")
	}
}
