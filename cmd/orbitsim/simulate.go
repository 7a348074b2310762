package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/san-kum/orbitsim/internal/automation"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/gui"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(experiment.Config{
		System: cfg,
		Steps:  steps,
		Stride: stride,
		Logger: logger,
	})
	if err := exp.Setup(registry.DefaultMetrics(cfg)); err != nil {
		return fmt.Errorf("failed to setup experiment: %w", err)
	}

	fmt.Printf("running %s (%d bodies) for %d steps...\n", cfg.Name, len(cfg.Bodies), steps)
	result, runErr := exp.Run(cmd.Context())
	if runErr != nil {
		logger.Error(cmd.Context(), "run stopped early", runErr, "system", cfg.Name)
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	runID, err := store.Save(exp.Metadata(result, runErr), exp.Samples())
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	fmt.Printf("\nrun id: %s\n", runID)
	if result != nil {
		fmt.Printf("steps: %d  days: %.1f\n", result.StepsTaken, result.Time/physics.Day)
		printMetrics(result.Metrics)
	}
	return runErr
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func newSimulatorFunc(cfg *config.Config) func() (*sim.Simulator, error) {
	return func() (*sim.Simulator, error) {
		return cfg.Clone().NewSimulator()
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	s, err := cfg.NewSimulator()
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	return viz.Run(cmd.Context(), s, viz.Options{
		Name:         cfg.Name,
		FPS:          cfg.View.FPS,
		StepsPerTick: stepsPerFrame,
		Theme:        themeName,
		View:         cfg.Viewport(),
		OutDir:       store.Dir(),
		Reset:        newSimulatorFunc(cfg),
	})
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	s, err := cfg.NewSimulator()
	if err != nil {
		return err
	}

	scene := gui.NewScene(s, gui.Options{
		Name:          cfg.Name,
		FPS:           cfg.View.FPS,
		StepsPerFrame: stepsPerFrame,
		View:          cfg.Viewport(),
		Reset:         newSimulatorFunc(cfg),
		Logger:        logger,
	})
	switch backend {
	case "raylib":
		return gui.NewRaylibApp(scene).Run(cmd.Context())
	case "ebiten":
		return gui.NewEbitenGame(scene).Run()
	default:
		return fmt.Errorf("unknown backend: %s (available: raylib, ebiten)", backend)
	}
}

func compareVariants(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	variants := experiment.Matrix(registry.ListOrderings(), registry.ListIntegrators())

	fmt.Printf("comparing %d variants of %s over %d steps...\n\n", len(variants), cfg.Name, steps)
	results, err := experiment.Compare(cmd.Context(), cfg, steps, variants, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tSTEPS\tENERGY DRIFT\tMOMENTUM DRIFT\tANGULAR DRIFT\tCLOSURE\tTIME\tERROR")
	for _, r := range results {
		errText := "-"
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%.3e\t%.3e\t%v\t%s\n",
			r.Variant, r.StepsTaken, r.EnergyDrift, r.MomentumDrift, r.AngularDrift,
			r.ClosureError, r.Elapsed.Round(time.Millisecond), errText)
	}
	return w.Flush()
}

func benchSystem(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	cpus := runtime.NumCPU()
	var variants []experiment.BenchVariant
	for _, solver := range experiment.NewRegistry().ListSolvers() {
		variants = append(variants, experiment.BenchVariant{Solver: solver, Workers: 1})
		if cpus > 1 {
			variants = append(variants, experiment.BenchVariant{Solver: solver, Workers: cpus})
		}
	}

	fmt.Printf("benchmarking %s (%d bodies, %d steps)...\n\n", cfg.Name, len(cfg.Bodies), steps)
	results, err := experiment.Bench(cmd.Context(), cfg, steps, variants)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tWORKERS\tSTEPS\tTIME\tSTEPS/SEC\tERROR")
	for _, r := range results {
		errText := "-"
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\t%s\n",
			r.Variant.Solver, r.Variant.Workers, r.Steps, r.Elapsed.Round(time.Millisecond), r.StepsPerSec, errText)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	fmt.Printf("scenario %s: %d steps\n\n", scenario.Name, len(scenario.Steps))
	results, err := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry(), store, logger)
	if err != nil {
		return err
	}

	failed := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRESULT\tRUN ID\tDETAILS")
	for _, r := range results {
		status, details, runID := "PASS", "-", r.RunID
		if !r.Passed() {
			status = "FAIL"
			details = fmt.Sprint(r.Failures)
			failed++
		}
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, status, runID, details)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenario steps failed", failed, len(results))
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	name := "inner"
	if len(args) > 0 {
		name = args[0]
	}
	sweep := &automation.ParameterSweep{
		Preset:    name,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepPoints,
		Steps:     steps,
	}

	fmt.Printf("sweeping %s from %g to %g on %s...\n\n", sweepParam, sweepMin, sweepMax, name)
	results, err := automation.RunSweep(cmd.Context(), sweep, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\tENERGY DRIFT\tCLOSURE\tERROR\n", sweepParam)
	for _, r := range results {
		errText := "-"
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%d\t%.3e\t%.3e\t%s\n", r.ParamValue, r.StepsTaken, r.EnergyDrift, r.ClosureError, errText)
	}
	return w.Flush()
}
