// Package controllers implements the per-scenario stability controllers:
// orbit-preserving correction, conservation monitoring, hierarchy ejection
// watching, ejection phase classification and randomized-scenario
// validation. All of them are built from the stability analyzer and hold
// only controller-local state.
package controllers

// gate fires on an accumulated-elapsed-time schedule: accumulate dt, fire
// when the interval is reached, subtract. Robust against floating-point
// drift of the simulation clock, unlike a modulo test on t.
type gate struct {
	interval float64
	accum    float64
}

func (g *gate) fire(dt float64) bool {
	g.accum += dt
	if g.accum < g.interval {
		return false
	}
	g.accum -= g.interval
	return true
}
