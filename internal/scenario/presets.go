package scenario

import (
	"math"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/controllers"
	"github.com/skanda-m/gravsim/internal/gravity"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/stability"
	"github.com/skanda-m/gravsim/internal/vec"
)

// Chenciner-Montgomery figure-eight initial condition, G = 1, unit masses.
const (
	figX = 0.97000436
	figY = 0.24308753
	figVx = 0.93240737
	figVy = 0.86473146
)

// FigureEight is the classic three-body figure-eight choreography, watched
// by the conservation monitor in its aggressive variant.
func FigureEight(int64) (*Scenario, error) {
	cfg := sim.DefaultConfig()
	cfg.TimeStep = 0.002
	cfg.Softening = 0.01

	bodies := []body.Body{
		{Name: "Alpha", Mass: 1, IsStar: true, Color: "#ff6b6b", Radius: body.StarRadius(1),
			Position: vec.Vec3{X: figX, Y: -figY},
			Velocity: vec.Vec3{X: figVx / 2, Y: figVy / 2}},
		{Name: "Beta", Mass: 1, IsStar: true, Color: "#ffd93d", Radius: body.StarRadius(1),
			Position: vec.Vec3{X: -figX, Y: figY},
			Velocity: vec.Vec3{X: figVx / 2, Y: figVy / 2}},
		{Name: "Gamma", Mass: 1, IsStar: true, Color: "#6bcbef", Radius: body.StarRadius(1),
			Velocity: vec.Vec3{X: -figVx, Y: -figVy}},
	}

	return &Scenario{
		Name:        "figure-eight",
		Description: "three equal masses chasing each other along a figure-eight",
		Bodies:      bodies,
		Controller:  controllers.NewConservationMonitor(cfg.G, true),
		Config:      cfg,
	}, nil
}

// LagrangeTriangle places three equal masses on an equilateral triangle in
// circular rotation about their common centroid, held there by the orbit
// keeper.
func LagrangeTriangle(int64) (*Scenario, error) {
	cfg := sim.DefaultConfig()
	cfg.TimeStep = 0.004
	cfg.Softening = 0.02

	names := []string{"L-One", "L-Two", "L-Three"}
	colors := []string{"#f94144", "#f8961e", "#90be6d"}
	bodies := make([]body.Body, 3)
	for i := range bodies {
		angle := 2 * math.Pi * float64(i) / 3
		bodies[i] = body.Body{
			Name:     names[i],
			Mass:     1,
			IsStar:   true,
			Color:    colors[i],
			Radius:   body.StarRadius(1),
			Position: vec.Vec3{X: math.Cos(angle), Y: math.Sin(angle)},
		}
	}
	circularize(bodies, cfg.G)

	return &Scenario{
		Name:        "lagrange",
		Description: "equilateral three-body rotation (triangular Lagrange configuration)",
		Bodies:      bodies,
		Controller:  controllers.NewOrbitKeeper(),
		Config:      cfg,
	}, nil
}

// Rosette is a six-body ring on a common circular orbit.
func Rosette(int64) (*Scenario, error) {
	cfg := sim.DefaultConfig()
	cfg.TimeStep = 0.004
	cfg.Softening = 0.02

	const n = 6
	colors := []string{"#ef476f", "#f78c6b", "#ffd166", "#06d6a0", "#118ab2", "#073b4c"}
	names := []string{"Ring-A", "Ring-B", "Ring-C", "Ring-D", "Ring-E", "Ring-F"}
	bodies := make([]body.Body, n)
	for i := range bodies {
		angle := 2 * math.Pi * float64(i) / n
		bodies[i] = body.Body{
			Name:     names[i],
			Mass:     0.8,
			IsStar:   true,
			Color:    colors[i],
			Radius:   body.StarRadius(0.8),
			Position: vec.Vec3{X: 2 * math.Cos(angle), Y: 2 * math.Sin(angle)},
		}
	}
	circularize(bodies, cfg.G)

	return &Scenario{
		Name:        "rosette",
		Description: "hexagonal ring of equal masses on a shared circular orbit",
		Bodies:      bodies,
		Controller:  controllers.NewOrbitKeeper(),
		Config:      cfg,
	}, nil
}

// Hierarchical is a star with two planets and a moon around the outer one,
// watched by the hierarchy monitor for ejection risk.
func Hierarchical(int64) (*Scenario, error) {
	cfg := sim.DefaultConfig()
	cfg.TimeStep = 0.005
	cfg.Softening = 0.01

	const (
		starMass  = 20.0
		innerMass = 0.005
		outerMass = 0.01
		moonMass  = 1e-4

		innerDist = 6.0
		outerDist = 18.0
		moonDist  = 0.3
	)

	vInner := math.Sqrt(cfg.G * starMass / innerDist)
	vOuter := math.Sqrt(cfg.G * starMass / outerDist)
	vMoon := math.Sqrt(cfg.G * outerMass / moonDist)

	bodies := []body.Body{
		{Name: "Helios", Mass: starMass, IsStar: true, Color: "#ffd93d",
			Radius: body.StarRadius(starMass)},
		{Name: "Inner", Mass: innerMass, Color: "#6bcbef", Radius: 0.12,
			Position: vec.Vec3{X: innerDist},
			Velocity: vec.Vec3{Y: vInner}},
		{Name: "Outer", Mass: outerMass, Color: "#90be6d", Radius: 0.15,
			Position: vec.Vec3{X: outerDist},
			Velocity: vec.Vec3{Y: vOuter}},
		{Name: "Moon", Mass: moonMass, Color: "#adb5bd", Radius: 0.05,
			Position: vec.Vec3{X: outerDist + moonDist},
			Velocity: vec.Vec3{Y: vOuter + vMoon}},
	}

	return &Scenario{
		Name:        "hierarchical",
		Description: "star, two planets and a moon in a nested hierarchy",
		Bodies:      bodies,
		Controller:  controllers.NewHierarchyMonitor(cfg.G),
		Config:      cfg,
	}, nil
}

// ChaoticEjection is Burrau's Pythagorean three-body problem (masses 3:4:5
// at rest on a 3-4-5 triangle), which ends in a binary plus an escaper.
func ChaoticEjection(int64) (*Scenario, error) {
	cfg := sim.DefaultConfig()
	cfg.TimeStep = 0.002
	cfg.Softening = 0.02

	bodies := []body.Body{
		{Name: "Three", Mass: 3, IsStar: true, Color: "#ff6b6b", Radius: body.StarRadius(3),
			Position: vec.Vec3{X: 1, Y: 3}},
		{Name: "Four", Mass: 4, IsStar: true, Color: "#ffd93d", Radius: body.StarRadius(4),
			Position: vec.Vec3{X: -2, Y: -1}},
		{Name: "Five", Mass: 5, IsStar: true, Color: "#6bcbef", Radius: body.StarRadius(5),
			Position: vec.Vec3{X: 1, Y: -1}},
	}

	return &Scenario{
		Name:        "chaotic-ejection",
		Description: "Pythagorean three-body problem; chaotic interplay then ejection",
		Bodies:      bodies,
		Controller:  controllers.NewPhaseClassifier(cfg.G, cfg.TimeStep, cfg.Softening),
		Config:      cfg,
	}, nil
}

// circularize assigns each body the tangential velocity whose centripetal
// demand matches the actual inward gravitational pull at its initial
// position, so rings and triangles start on their nominal circular orbit
// regardless of geometry.
func circularize(bodies []body.Body, g float64) {
	acc := make([]vec.Vec3, len(bodies))
	gravity.Accelerations(bodies, g, 0, acc)
	c := stability.Centroid(bodies)
	up := vec.Vec3{Z: 1}

	for i := range bodies {
		r := bodies[i].Position.Sub(c)
		dist := r.Magnitude()
		if dist == 0 {
			continue
		}
		inward := -acc[i].Dot(r.Scale(1 / dist))
		if inward <= 0 {
			continue
		}
		speed := math.Sqrt(inward * dist)
		bodies[i].Velocity = up.Cross(r).Normalize().Scale(speed)
	}
}
