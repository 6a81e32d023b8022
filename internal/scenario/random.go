package scenario

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/controllers"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/stability"
	"github.com/skanda-m/gravsim/internal/vec"
)

// maxGenerationAttempts bounds the reject-and-retry loop; a healthy
// parameter range passes within a handful of draws.
const maxGenerationAttempts = 64

var randomPalette = []string{
	"#ff6b6b", "#ffd93d", "#6bcbef", "#90be6d", "#f78c6b", "#b197fc", "#63e6be",
}

// Random draws 3-7 bodies with a dominant central star, near-circular
// orbital velocities and one designated planet, retrying until the
// generation validator accepts the draw.
func Random(seed int64) (*Scenario, error) {
	cfg := sim.DefaultConfig()
	cfg.TimeStep = 0.004
	cfg.Softening = 0.05

	rng := rand.New(rand.NewSource(seed))

	var bodies []body.Body
	var lastErr error
	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		bodies = generate(rng)
		if lastErr = controllers.ValidateInitialConditions(bodies, cfg.G); lastErr == nil {
			return &Scenario{
				Name:        "random",
				Description: "randomly generated system (validated draw)",
				Bodies:      bodies,
				Controller:  controllers.NewRandomMonitor(cfg.G, cfg.TimeStep, cfg.Softening),
				Config:      cfg,
			}, nil
		}
	}
	return nil, fmt.Errorf("no valid random system after %d attempts: %w",
		maxGenerationAttempts, lastErr)
}

func generate(rng *rand.Rand) []body.Body {
	n := 3 + rng.Intn(5) // 3..7

	centralMass := 8 + 8*rng.Float64()
	bodies := make([]body.Body, 0, n)
	bodies = append(bodies, body.Body{
		Name:   "Primary",
		Mass:   centralMass,
		IsStar: true,
		Color:  randomPalette[0],
		Radius: body.StarRadius(centralMass),
	})

	for i := 1; i < n; i++ {
		// Last body drawn is the designated planet.
		planet := i == n-1

		mass := 0.3 + 2.2*rng.Float64()
		radius := body.StarRadius(mass)
		if planet {
			mass = 0.001 + 0.009*rng.Float64()
			radius = 0.1
		}

		dist := 2 + 8*rng.Float64()
		angle := 2 * math.Pi * rng.Float64()
		pos := vec.Vec3{
			X: dist * math.Cos(angle),
			Y: dist * math.Sin(angle),
			Z: 0.4 * (rng.Float64() - 0.5),
		}

		// Near-circular velocity about the primary with ±15% jitter.
		speed := math.Sqrt(centralMass/dist) * (0.85 + 0.3*rng.Float64())
		tangent := vec.Vec3{Z: 1}.Cross(pos).Normalize()

		bodies = append(bodies, body.Body{
			Name:     fmt.Sprintf("Body-%d", i),
			Mass:     mass,
			IsStar:   !planet,
			Color:    randomPalette[i%len(randomPalette)],
			Radius:   radius,
			Position: pos,
			Velocity: tangent.Scale(speed),
		})
	}

	// Recenter on the mass-weighted frame so the system does not drift.
	c := stability.Centroid(bodies)
	var p vec.Vec3
	total := 0.0
	for i := range bodies {
		p = p.AddScaled(bodies[i].Velocity, bodies[i].Mass)
		total += bodies[i].Mass
	}
	vMean := p.Scale(1 / total)
	for i := range bodies {
		bodies[i].Position = bodies[i].Position.Sub(c)
		bodies[i].Velocity = bodies[i].Velocity.Sub(vMean)
	}
	return bodies
}
