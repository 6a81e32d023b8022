package controllers

import (
	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/stability"
	"github.com/skanda-m/gravsim/internal/vec"
)

// OrbitKeeper holds a ring or triangular Lagrange configuration on its
// nominal circular orbit. On the first step it captures each body's target
// radius and the mean angular velocity from the initial mass-weighted
// geometry, then injects small radial + tangential + damping corrections,
// capped so the correction never visibly perturbs the orbit.
type OrbitKeeper struct {
	RadialGain   float64
	VelocityGain float64
	MaxAccel     float64

	initialized  bool
	targetRadius []float64
	omega        float64
	out          []vec.Vec3
}

func NewOrbitKeeper() *OrbitKeeper {
	return &OrbitKeeper{
		RadialGain:   0.5,
		VelocityGain: 0.2,
		MaxAccel:     0.05,
	}
}

func (o *OrbitKeeper) BeforeStep(bodies []body.Body, t, dt float64) *sim.Directive {
	if o.initialized {
		return nil
	}
	o.capture(bodies)
	o.initialized = true
	return &sim.Directive{Inject: o.correct}
}

func (o *OrbitKeeper) capture(bodies []body.Body) {
	c := stability.Centroid(bodies)
	o.targetRadius = make([]float64, len(bodies))
	o.out = make([]vec.Vec3, len(bodies))

	// Mean angular velocity about the centroid, from the z-component of
	// each body's specific angular momentum.
	sum := 0.0
	count := 0
	for i := range bodies {
		r := bodies[i].Position.Sub(c)
		o.targetRadius[i] = r.Magnitude()
		if o.targetRadius[i] > 1e-9 {
			sum += r.Cross(bodies[i].Velocity).Z / r.MagnitudeSq()
			count++
		}
	}
	if count > 0 {
		o.omega = sum / float64(count)
	}
}

// correct is the injected acceleration function, evaluated on the scratch
// stage state every RK4 stage.
func (o *OrbitKeeper) correct(bodies []body.Body, t float64) []vec.Vec3 {
	c := stability.Centroid(bodies)
	up := vec.Vec3{Z: 1}

	for i := range bodies {
		o.out[i] = vec.Vec3{}
		r := bodies[i].Position.Sub(c)
		dist := r.Magnitude()
		if dist < 1e-9 {
			continue
		}
		unit := r.Scale(1 / dist)

		// Radial spring toward the captured radius.
		a := unit.Scale(o.RadialGain * (o.targetRadius[i] - dist))

		// Damp toward the nominal circular velocity ω ẑ × r.
		vWant := up.Cross(r).Scale(o.omega)
		a = a.AddScaled(vWant.Sub(bodies[i].Velocity), o.VelocityGain)

		if mag := a.Magnitude(); mag > o.MaxAccel {
			a = a.Scale(o.MaxAccel / mag)
		}
		o.out[i] = a
	}
	return o.out
}
