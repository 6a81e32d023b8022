package stability

import "github.com/skanda-m/gravsim/internal/body"

// Stellar-flux proxy band for the habitability readout. Mass stands in for
// luminosity at the unit scale the presets use.
const (
	fluxLower = 0.04
	fluxUpper = 1.5
)

// Habitable reports whether the designated planet (the first non-star body)
// receives a total stellar flux proxy Σ mᵢ/dᵢ² inside the habitable band.
// False when the set has no planet.
func Habitable(bodies []body.Body) bool {
	planet := -1
	for i := range bodies {
		if !bodies[i].IsStar {
			planet = i
			break
		}
	}
	if planet < 0 {
		return false
	}

	flux := 0.0
	for i := range bodies {
		if !bodies[i].IsStar {
			continue
		}
		d := bodies[i].Position.Distance(bodies[planet].Position)
		if d < collisionFloor {
			return false
		}
		flux += bodies[i].Mass / (d * d)
	}
	return flux >= fluxLower && flux <= fluxUpper
}
