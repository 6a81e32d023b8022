// Package gravity evaluates pairwise softened Newtonian accelerations.
package gravity

import (
	"math"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/vec"
)

// Accelerations writes the gravitational acceleration on every body into out,
// which must have len(bodies) entries. out is overwritten, not accumulated.
//
// Each unordered pair is evaluated once and applied with opposite sign to
// both bodies (Newton's third law). The softening length keeps the result
// finite even for coincident positions, so there is no singular-force path.
// O(n²), which is fine for the single-digit body counts this simulator runs.
func Accelerations(bodies []body.Body, g, softening float64, out []vec.Vec3) {
	for i := range out {
		out[i] = vec.Vec3{}
	}

	eps2 := softening * softening
	n := len(bodies)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := bodies[j].Position.Sub(bodies[i].Position)
			r2 := d.MagnitudeSq() + eps2

			rInv := 1.0 / math.Sqrt(r2)
			r3Inv := rInv * rInv * rInv

			out[i] = out[i].AddScaled(d, g*bodies[j].Mass*r3Inv)
			out[j] = out[j].AddScaled(d, -g*bodies[i].Mass*r3Inv)
		}
	}
}
