package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/skanda-m/gravsim/internal/config"
	"github.com/skanda-m/gravsim/internal/export"
	"github.com/skanda-m/gravsim/internal/scenario"
	"github.com/skanda-m/gravsim/internal/sim"
	"github.com/skanda-m/gravsim/internal/viz"
)

var (
	dt             float64
	duration       float64
	seed           int64
	gravityConst   float64
	softening      float64
	sampleInterval float64
	configFile     string
	stepsPerFrame  int
	stride         int
	format         string
	outPath        string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "interactive small-N gravitational simulator",
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario headless and report stats",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live terminal visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps", 8, "integration substeps per frame")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scenario.Names() {
				scn, err := scenario.Get(name, 1)
				if err != nil {
					return err
				}
				fmt.Printf("  %-18s %s\n", name, scn.Description)
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export [scenario]",
		Short: "run a scenario and export the trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  exportScenario,
	}
	addRunFlags(exportCmd)
	exportCmd.Flags().StringVar(&format, "format", "csv", "output format (csv|json)")
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	exportCmd.Flags().IntVar(&stride, "stride", 10, "record every n-th step")

	rootCmd.AddCommand(runCmd, liveCmd, scenariosCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep (0 = scenario default)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulation time")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().Float64Var(&gravityConst, "g", 0, "gravitational constant (0 = scenario default)")
	cmd.Flags().Float64Var(&softening, "softening", 0, "softening length (0 = scenario default)")
	cmd.Flags().Float64Var(&sampleInterval, "sample", 0, "stats sampling interval (0 = scenario default)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
}

// setup resolves config file, flags and scenario defaults into a ready
// integrator. CLI flags beat the config file, which beats the scenario.
func setup(cmd *cobra.Command, name string) (*sim.Integrator, *scenario.Scenario, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		if !cmd.Flags().Changed("dt") {
			dt = cfg.Dt
		}
		if !cmd.Flags().Changed("time") {
			duration = cfg.Duration
		}
		if cfg.Seed != 0 && !cmd.Flags().Changed("seed") {
			seed = cfg.Seed
		}
		if !cmd.Flags().Changed("g") {
			gravityConst = cfg.G
		}
		if !cmd.Flags().Changed("softening") {
			softening = cfg.Softening
		}
		if !cmd.Flags().Changed("sample") {
			sampleInterval = cfg.SampleInterval
		}
	}

	scn, err := scenario.Get(name, seed)
	if err != nil {
		return nil, nil, err
	}

	if dt > 0 {
		scn.Config.TimeStep = dt
	}
	if gravityConst > 0 {
		scn.Config.G = gravityConst
	}
	if softening > 0 {
		scn.Config.Softening = softening
	}
	if sampleInterval > 0 {
		scn.Config.SampleInterval = sampleInterval
	}

	integ := sim.New(scn.Bodies, scn.Config)
	integ.SetController(scn.Controller)
	return integ, scn, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	integ, scn, err := setup(cmd, args[0])
	if err != nil {
		return err
	}

	rec := export.NewRecorder(scn.Name, scn.Config.TimeStep, 1)
	integ.SetStatsCallback(rec.ObserveStats)

	fmt.Printf("running %s for t=%.1f...\n", scn.Name, duration)
	start := time.Now()

	steps := 0
	for integ.Time() < duration {
		integ.Step(integ.Config().TimeStep)
		steps++
	}

	fmt.Printf("completed %d steps in %v\n\n", steps, time.Since(start))

	s := integ.Stats()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "total energy\t%.6f\n", s.TotalEnergy)
	fmt.Fprintf(w, "kinetic\t%.6f\n", s.KineticEnergy)
	fmt.Fprintf(w, "potential\t%.6f\n", s.PotentialEnergy)
	fmt.Fprintf(w, "energy deviation\t%.4f%%\n", integ.EnergyDeviation()*100)
	fmt.Fprintf(w, "virial ratio\t%.4f\n", s.VirialRatio)
	fmt.Fprintf(w, "symmetry\t%.4f\n", s.SymmetryScore)
	fmt.Fprintf(w, "pair distance\t%.3f .. %.3f\n", s.MinPairDistance, s.MaxPairDistance)
	fmt.Fprintf(w, "angular momentum z\t%.6f\n", s.AngularMomentumZ)
	fmt.Fprintf(w, "habitable\t%v\n", s.Habitable)
	fmt.Fprintf(w, "status\t%s\n", s.Status)
	w.Flush()

	if fb := integ.LastFeedback(); fb != nil {
		fmt.Printf("\ncontroller: [%s] %s\n", fb.Severity, fb.Message)
	}

	if hist := rec.EnergyHistory(); len(hist) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(hist, asciigraph.Height(8), asciigraph.Width(64),
			asciigraph.Caption("total energy over time")))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	_, scn, err := setup(cmd, args[0])
	if err != nil {
		return err
	}
	return viz.RunLive(scn, seed, stepsPerFrame)
}

func exportScenario(cmd *cobra.Command, args []string) error {
	integ, scn, err := setup(cmd, args[0])
	if err != nil {
		return err
	}

	rec := export.NewRecorder(scn.Name, scn.Config.TimeStep, stride)
	integ.SetStatsCallback(rec.ObserveStats)

	for integ.Time() < duration {
		rec.Observe(integ.Time(), integ.Bodies())
		integ.Step(integ.Config().TimeStep)
	}
	rec.Observe(integ.Time(), integ.Bodies())

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "csv":
		return rec.WriteCSV(out)
	case "json":
		return rec.WriteJSON(out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
