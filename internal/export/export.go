// Package export records trajectory frames and writes them as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/sim"
)

// Frame is one recorded instant of a run.
type Frame struct {
	Time   float64     `json:"time"`
	Bodies []body.Body `json:"bodies"`
}

// Recorder collects frames at a fixed stride of calls. It plugs into the
// driver loop, not the integrator: the core performs no I/O.
type Recorder struct {
	Scenario string
	Dt       float64

	stride int
	calls  int
	frames []Frame
	stats  []sim.Snapshot
}

// NewRecorder keeps every stride-th observed frame.
func NewRecorder(scenario string, dt float64, stride int) *Recorder {
	if stride < 1 {
		stride = 1
	}
	return &Recorder{Scenario: scenario, Dt: dt, stride: stride}
}

// Observe records the current state. The body slice is deep-copied; the
// live simulation array is never retained.
func (r *Recorder) Observe(t float64, bodies []body.Body) {
	r.calls++
	if (r.calls-1)%r.stride != 0 {
		return
	}
	r.frames = append(r.frames, Frame{Time: t, Bodies: body.Clone(bodies)})
}

// ObserveStats keeps stats snapshots alongside the frames.
func (r *Recorder) ObserveStats(s sim.Snapshot) {
	r.stats = append(r.stats, s)
}

func (r *Recorder) Frames() []Frame { return r.frames }

// EnergyHistory returns the recorded total-energy series.
func (r *Recorder) EnergyHistory() []float64 {
	out := make([]float64, len(r.stats))
	for i := range r.stats {
		out[i] = r.stats[i].TotalEnergy
	}
	return out
}

// WriteCSV emits one row per body per frame.
func (r *Recorder) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"time", "name", "x", "y", "z", "vx", "vy", "vz"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, f := range r.frames {
		for _, b := range f.Bodies {
			row := []string{
				formatFloat(f.Time),
				b.Name,
				formatFloat(b.Position.X), formatFloat(b.Position.Y), formatFloat(b.Position.Z),
				formatFloat(b.Velocity.X), formatFloat(b.Velocity.Y), formatFloat(b.Velocity.Z),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

type exportData struct {
	Scenario string         `json:"scenario"`
	Dt       float64        `json:"dt"`
	Frames   []Frame        `json:"frames"`
	Stats    []sim.Snapshot `json:"stats,omitempty"`
}

// WriteJSON emits the full recording as one indented JSON document.
func (r *Recorder) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{
		Scenario: r.Scenario,
		Dt:       r.Dt,
		Frames:   r.frames,
		Stats:    r.stats,
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
