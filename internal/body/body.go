package body

import (
	"math"

	"github.com/skanda-m/gravsim/internal/vec"
)

// Body is one point mass. Mass is constant after creation; Radius, Color and
// Name are presentation data carried through untouched by the physics.
type Body struct {
	Name     string
	Position vec.Vec3
	Velocity vec.Vec3
	Mass     float64
	Radius   float64
	Color    string
	IsStar   bool
}

// Clone deep-copies a body slice so the source is never aliased.
func Clone(src []Body) []Body {
	out := make([]Body, len(src))
	copy(out, src)
	return out
}

// Scratch returns a working copy with position and velocity zeroed,
// keeping mass and metadata. Used for intermediate integration stages.
func Scratch(src []Body) []Body {
	out := Clone(src)
	for i := range out {
		out[i].Position = vec.Vec3{}
		out[i].Velocity = vec.Vec3{}
	}
	return out
}

// StarRadius derives a display radius from stellar mass.
func StarRadius(mass float64) float64 {
	return 0.4 * math.Cbrt(mass)
}
