package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/skanda-m/gravsim/internal/scenario"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/stability"
	"github.com/skanda-m/gravsim/internal/vec"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	trailLength     = 160
	energyHistory   = 120
	framesPerSecond = 30
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).Width(38)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	trailColor    = "240"
)

type tickMsg time.Time

// Model drives a live terminal view of one running scenario.
type Model struct {
	scn           *scenario.Scenario
	seed          int64
	integ         *sim.Integrator
	stepsPerFrame int

	canvas     *Canvas
	trails     map[string][]vec.Vec3
	energyHist []float64
	zoom       float64
	paused     bool
}

// NewModel builds the live view for a scenario. stepsPerFrame is the
// driver's pacing decision; the step size itself always tracks the live
// config, so controller overrides take effect on screen.
func NewModel(scn *scenario.Scenario, seed int64, stepsPerFrame int) *Model {
	m := &Model{
		scn:           scn,
		seed:          seed,
		stepsPerFrame: stepsPerFrame,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		trails:        make(map[string][]vec.Vec3),
		zoom:          initialZoom(scn),
	}
	m.integ = sim.New(scn.Bodies, scn.Config)
	m.integ.SetController(scn.Controller)
	m.integ.SetStatsCallback(func(s sim.Snapshot) {
		m.energyHist = append(m.energyHist, s.TotalEnergy)
		if len(m.energyHist) > energyHistory {
			m.energyHist = m.energyHist[1:]
		}
	})
	return m
}

func initialZoom(scn *scenario.Scenario) float64 {
	_, max := stability.PairwiseExtrema(scn.Bodies)
	if max < 2 {
		max = 2
	}
	return max * 1.2
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/framesPerSecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.reset()
		case "+", "=":
			m.zoom = math.Max(m.zoom*0.8, 0.5)
		case "-", "_":
			m.zoom *= 1.25
		}
	case tickMsg:
		if !m.paused {
			for i := 0; i < m.stepsPerFrame; i++ {
				m.integ.Step(m.integ.Config().TimeStep)
			}
			m.recordTrails()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) reset() {
	scn, err := scenario.Get(m.scn.Name, m.seed)
	if err != nil {
		return
	}
	m.scn = scn
	m.integ = sim.New(scn.Bodies, scn.Config)
	m.integ.SetController(scn.Controller)
	m.trails = make(map[string][]vec.Vec3)
	m.energyHist = nil
	m.zoom = initialZoom(scn)
}

func (m *Model) recordTrails() {
	for _, b := range m.integ.Bodies() {
		trail := append(m.trails[b.Name], b.Position)
		if len(trail) > trailLength {
			trail = trail[1:]
		}
		m.trails[b.Name] = trail
	}
}

func (m *Model) View() string {
	m.canvas.Clear()

	for _, b := range m.integ.Bodies() {
		for _, p := range m.trails[b.Name] {
			x, y, ok := m.project(p)
			if ok {
				m.canvas.Set(x, y, trailColor)
			}
		}
	}
	for _, b := range m.integ.Bodies() {
		x, y, ok := m.project(b.Position)
		if !ok {
			continue
		}
		// A 2x2 dot blob keeps bodies visible over their trails.
		for dx := 0; dx <= 1; dx++ {
			for dy := 0; dy <= 1; dy++ {
				m.canvas.Set(x+dx, y+dy, b.Color)
			}
		}
	}

	left := m.canvas.String()
	right := panelStyle.Render(m.statsPanel())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("gravsim · %s", m.scn.Name)))
	sb.WriteByte('\n')
	sb.WriteString(body)
	sb.WriteByte('\n')
	if len(m.energyHist) > 1 {
		sb.WriteString(asciigraph.Plot(m.energyHist,
			asciigraph.Height(5), asciigraph.Width(canvasWidth),
			asciigraph.Caption("total energy")))
	}
	sb.WriteString(helpStyle.Render("space pause · r reset · +/- zoom · q quit"))
	return sb.String()
}

// project maps a world position to canvas sub-pixels; ok is false when the
// point falls outside the viewport.
func (m *Model) project(p vec.Vec3) (int, int, bool) {
	nx := p.X / m.zoom
	ny := p.Y / m.zoom
	if nx < -1 || nx > 1 || ny < -1 || ny > 1 {
		return 0, 0, false
	}
	x := int((nx + 1) / 2 * float64(canvasWidth*2-1))
	// Terminal rows grow downward.
	y := int((1 - (ny+1)/2) * float64(canvasHeight*4-1))
	return x, y, true
}

func (m *Model) statsPanel() string {
	s := m.integ.Stats()
	rows := []struct {
		label string
		value string
	}{
		{"time", fmt.Sprintf("%.2f", m.integ.Time())},
		{"energy", fmt.Sprintf("%.5f", s.TotalEnergy)},
		{"kinetic", fmt.Sprintf("%.5f", s.KineticEnergy)},
		{"potential", fmt.Sprintf("%.5f", s.PotentialEnergy)},
		{"virial", fmt.Sprintf("%.3f", s.VirialRatio)},
		{"symmetry", fmt.Sprintf("%.3f", s.SymmetryScore)},
		{"spread", fmt.Sprintf("%.2f", s.SpatialSpread)},
		{"L_z", fmt.Sprintf("%.4f", s.AngularMomentumZ)},
		{"habitable", fmt.Sprintf("%v", s.Habitable)},
		{"status", string(s.Status)},
	}

	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(labelStyle.Render(r.label))
		sb.WriteString(valueStyle.Render(r.value))
		sb.WriteByte('\n')
	}
	if fb := m.integ.LastFeedback(); fb != nil {
		style := warnStyle
		if fb.Severity == sim.SeverityCritical {
			style = criticalStyle
		}
		sb.WriteByte('\n')
		sb.WriteString(style.Render(fb.Message))
	}
	if m.paused {
		sb.WriteString("\n\npaused")
	}
	return sb.String()
}

// RunLive starts the interactive view and blocks until the user quits.
func RunLive(scn *scenario.Scenario, seed int64, stepsPerFrame int) error {
	_, err := tea.NewProgram(NewModel(scn, seed, stepsPerFrame)).Run()
	return err
}
