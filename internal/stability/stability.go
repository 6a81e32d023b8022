// Package stability provides pure analysis functions over body snapshots:
// energy, virial ratio, symmetry, pairwise geometry and a composite verdict.
// Everything here is stateless; controllers and telemetry both consume it.
package stability

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/vec"
)

// Status is the composite stability verdict.
type Status string

const (
	StatusStable   Status = "stable"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Verdict thresholds. Tuned for the unit-scale presets this simulator ships;
// adjust together if the length/mass scale of the scenarios ever changes.
const (
	EnergyDeviationLimit = 0.10
	VirialLowerBound     = 0.4
	VirialUpperBound     = 2.0
	EjectionDistance     = 100.0
	SymmetryFloor        = 0.8

	// Separations below this count as a near-collision.
	collisionFloor = 1e-3

	symmetryEps = 1e-9
)

// KineticEnergy is sum of ½m|v|² over all bodies.
func KineticEnergy(bodies []body.Body) float64 {
	ke := 0.0
	for i := range bodies {
		ke += 0.5 * bodies[i].Mass * bodies[i].Velocity.MagnitudeSq()
	}
	return ke
}

// PotentialEnergy is sum over unordered pairs of -G·mᵢ·mⱼ/d.
//
// The distance here is deliberately unsoftened: forces are regularized but
// the reported potential is the true Newtonian one. Keep the asymmetry.
func PotentialEnergy(bodies []body.Body, g float64) float64 {
	pe := 0.0
	n := len(bodies)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := bodies[i].Position.Distance(bodies[j].Position)
			pe -= g * bodies[i].Mass * bodies[j].Mass / d
		}
	}
	return pe
}

func TotalEnergy(bodies []body.Body, g float64) float64 {
	return KineticEnergy(bodies) + PotentialEnergy(bodies, g)
}

// VirialRatio returns 2K/|U|, or 0 when the potential is zero.
func VirialRatio(bodies []body.Body, g float64) float64 {
	u := PotentialEnergy(bodies, g)
	if u == 0 {
		return 0
	}
	return 2 * KineticEnergy(bodies) / math.Abs(u)
}

// Centroid is the mass-weighted mean position, origin when total mass is 0.
func Centroid(bodies []body.Body) vec.Vec3 {
	var c vec.Vec3
	total := 0.0
	for i := range bodies {
		c = c.AddScaled(bodies[i].Position, bodies[i].Mass)
		total += bodies[i].Mass
	}
	if total == 0 {
		return vec.Vec3{}
	}
	return c.Scale(1 / total)
}

// AngularMomentum is the total of rᵢ × (mᵢvᵢ) about the origin.
func AngularMomentum(bodies []body.Body) vec.Vec3 {
	var l vec.Vec3
	for i := range bodies {
		l = l.Add(bodies[i].Position.Cross(bodies[i].Velocity.Scale(bodies[i].Mass)))
	}
	return l
}

// SymmetryScore measures how evenly bodies spread around their centroid:
// 1/(1+σ/(μ+ε)) over per-body centroid distances. 1 means perfectly
// symmetric; fewer than 3 bodies always score 1.
func SymmetryScore(bodies []body.Body) float64 {
	if len(bodies) < 3 {
		return 1
	}
	c := Centroid(bodies)
	radii := make([]float64, len(bodies))
	for i := range bodies {
		radii[i] = bodies[i].Position.Distance(c)
	}
	mu := stat.Mean(radii, nil)
	sigma := stat.StdDev(radii, nil)
	return 1 / (1 + sigma/(mu+symmetryEps))
}

// PairwiseExtrema returns the minimum and maximum distance over all
// unordered pairs. Both are 0 for fewer than 2 bodies.
func PairwiseExtrema(bodies []body.Body) (min, max float64) {
	n := len(bodies)
	if n < 2 {
		return 0, 0
	}
	min = math.Inf(1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := bodies[i].Position.Distance(bodies[j].Position)
			if d < min {
				min = d
			}
			if d > max {
				max = d
			}
		}
	}
	return min, max
}

// SpatialSpread is the max/min pairwise distance ratio. Returns +Inf when
// the minimum separation is below the near-collision floor, which readers
// treat as a collision signal rather than an error.
func SpatialSpread(bodies []body.Body) float64 {
	min, max := PairwiseExtrema(bodies)
	if min < collisionFloor {
		return math.Inf(1)
	}
	return max / min
}

// HillRadius is the Hill-sphere radius of a satellite around its primary at
// separation d: d·(m/(3M))^(1/3). Zero for a non-positive mass ratio.
func HillRadius(mSatellite, mPrimary, d float64) float64 {
	if mPrimary <= 0 || mSatellite <= 0 {
		return 0
	}
	return d * math.Cbrt(mSatellite/(3*mPrimary))
}

// TwoBodyEnergy is the orbital energy of a pair in the reduced-mass frame:
// ½μ|v_rel|² - G·m₁·m₂/d. Positive means the pair is unbound.
func TwoBodyEnergy(a, b body.Body, g float64) float64 {
	d := a.Position.Distance(b.Position)
	if d == 0 {
		return 0
	}
	vRel := a.Velocity.Sub(b.Velocity).MagnitudeSq()
	mu := a.Mass * b.Mass / (a.Mass + b.Mass)
	return 0.5*mu*vRel - g*a.Mass*b.Mass/d
}

// Verdict counts threshold violations: two or more is critical, one is a
// warning, none is stable.
func Verdict(energyDeviation, virial, maxPairDistance, symmetry float64) Status {
	violations := 0
	if energyDeviation > EnergyDeviationLimit {
		violations++
	}
	if virial < VirialLowerBound || virial > VirialUpperBound {
		violations++
	}
	if maxPairDistance > EjectionDistance {
		violations++
	}
	if symmetry < SymmetryFloor {
		violations++
	}
	switch {
	case violations >= 2:
		return StatusCritical
	case violations >= 1:
		return StatusWarning
	default:
		return StatusStable
	}
}
