package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/skanda-m/gravsim/internal/body"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/vec"
)

func sampleBodies() []body.Body {
	return []body.Body{
		{Name: "a", Mass: 1, Position: vec.Vec3{X: 1, Y: 2}, Velocity: vec.Vec3{X: 0.5}},
		{Name: "b", Mass: 2, Position: vec.Vec3{X: -3}, Velocity: vec.Vec3{Y: 1.25, Z: -0.5}},
	}
}

func TestStrideSkipsFrames(t *testing.T) {
	r := NewRecorder("test", 0.01, 3)
	bodies := sampleBodies()
	for i := 0; i < 10; i++ {
		r.Observe(float64(i)*0.01, bodies)
	}

	// Calls 1, 4, 7, 10 are kept.
	if got := len(r.Frames()); got != 4 {
		t.Errorf("expected 4 frames from 10 observations at stride 3, got %d", got)
	}
	if r.Frames()[1].Time != 0.03 {
		t.Errorf("second kept frame at t=%f, expected 0.03", r.Frames()[1].Time)
	}
}

func TestObserveDeepCopies(t *testing.T) {
	r := NewRecorder("test", 0.01, 1)
	bodies := sampleBodies()
	r.Observe(0, bodies)

	bodies[0].Position.X = 999
	if r.Frames()[0].Bodies[0].Position.X == 999 {
		t.Error("recorded frame aliases the live body slice")
	}
}

func TestWriteCSV(t *testing.T) {
	r := NewRecorder("test", 0.01, 1)
	r.Observe(0, sampleBodies())
	r.Observe(0.01, sampleBodies())

	var buf bytes.Buffer
	if err := r.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Header plus 2 bodies x 2 frames.
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[0][0] != "time" || rows[0][1] != "name" || len(rows[0]) != 8 {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "a" || rows[2][1] != "b" {
		t.Errorf("unexpected body order: %v %v", rows[1], rows[2])
	}
	if x, err := strconv.ParseFloat(rows[1][2], 64); err != nil || x != 1 {
		t.Errorf("expected x=1 for body a, got %q (%v)", rows[1][2], err)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	r := NewRecorder("figure-eight", 0.002, 1)
	r.Observe(0, sampleBodies())
	r.ObserveStats(sim.Snapshot{TotalEnergy: -1.25, Status: "stable"})

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Scenario string         `json:"scenario"`
		Dt       float64        `json:"dt"`
		Frames   []Frame        `json:"frames"`
		Stats    []sim.Snapshot `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Scenario != "figure-eight" || got.Dt != 0.002 {
		t.Errorf("metadata lost: %+v", got)
	}
	if len(got.Frames) != 1 || len(got.Frames[0].Bodies) != 2 {
		t.Fatalf("frames lost: %+v", got.Frames)
	}
	if got.Frames[0].Bodies[1].Velocity.Y != 1.25 {
		t.Error("body state lost in round trip")
	}
	if len(got.Stats) != 1 || got.Stats[0].TotalEnergy != -1.25 {
		t.Errorf("stats lost: %+v", got.Stats)
	}
}

func TestEnergyHistory(t *testing.T) {
	r := NewRecorder("test", 0.01, 1)
	for _, e := range []float64{-1, -1.01, -0.99} {
		r.ObserveStats(sim.Snapshot{TotalEnergy: e})
	}

	hist := r.EnergyHistory()
	if len(hist) != 3 || hist[1] != -1.01 {
		t.Errorf("unexpected energy history: %v", hist)
	}
}
