package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool
	logger  = logging.Discard()

	// System selection and physics overrides
	configFile    string
	ordering      string
	integrator    string
	solver        string
	dt            float64
	theta         float64
	minSeparation float64
	trailCapacity int
	workers       int
	validate      bool

	// Run length and recording
	steps  int
	stride int

	// Renderers
	frameRate     int
	themeName     string
	backend       string
	stepsPerFrame int

	// Output
	outPath   string
	svgWidth  int
	svgHeight int

	// Sweeps
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepPoints int
)

// main is the entry point for the orbitsim CLI. It exits with status 1 if
// the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "orbitsim",
		Short:         "2D n-body solar system simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLogger(verbose)
		},
		RunE: runLive,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbitsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	addLiveFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a headless simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSystemFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", 365, "number of steps")
	runCmd.Flags().IntVar(&stride, "stride", 1, "record every n-th step")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run the simulation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addLiveFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui [preset]",
		Short: "run the simulation in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	addSystemFlags(guiCmd)
	guiCmd.Flags().StringVar(&backend, "backend", "raylib", "window backend (raylib|ebiten)")
	guiCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	guiCmd.Flags().IntVar(&stepsPerFrame, "speed", 1, "steps per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot distance to anchor per body",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	orbitsCmd := &cobra.Command{
		Use:   "orbits [run_id]",
		Short: "summarise the recorded orbits",
		Args:  cobra.ExactArgs(1),
		RunE:  orbitsRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the recorded trails as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in systems",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset]",
		Short: "compare orderings and integrators on one system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareVariants,
	}
	addSystemFlags(compareCmd)
	compareCmd.Flags().IntVar(&steps, "steps", 365, "number of steps")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "time force solvers and worker counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchSystem,
	}
	addSystemFlags(benchCmd)
	benchCmd.Flags().IntVar(&steps, "steps", 1000, "number of steps")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a batch of scripted runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep a physics parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "dt", "parameter (dt|theta|min_separation)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 3600, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 86400, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")
	sweepCmd.Flags().IntVar(&steps, "steps", 365, "steps per run")

	initConfigCmd := &cobra.Command{
		Use:   "init-config [preset]",
		Short: "write a preset as a YAML config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initConfigCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, listCmd, showCmd, plotCmd, orbitsCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, compareCmd, benchCmd,
		scenarioCmd, sweepCmd, initConfigCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	p := config.DefaultPhysics()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&ordering, "ordering", p.Ordering, "force ordering (snapshot|sequential)")
	cmd.Flags().StringVar(&integrator, "integrator", p.Integrator, "integrator (symplectic|euler)")
	cmd.Flags().StringVar(&solver, "solver", p.Solver, "force solver (direct|barneshut)")
	cmd.Flags().Float64Var(&dt, "dt", p.Dt, "timestep in seconds")
	cmd.Flags().Float64Var(&theta, "theta", p.Theta, "barnes-hut opening angle")
	cmd.Flags().Float64Var(&minSeparation, "min-separation", p.MinSeparation, "force softening distance in metres")
	cmd.Flags().IntVar(&trailCapacity, "trail", p.TrailCapacity, "trail capacity per body")
	cmd.Flags().IntVar(&workers, "workers", p.Workers, "force phase workers")
	cmd.Flags().BoolVar(&validate, "validate", p.ValidateState, "check for NaN/Inf after every step")
}

func addLiveFlags(cmd *cobra.Command) {
	addSystemFlags(cmd)
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().StringVar(&themeName, "theme", "space", "colour theme")
	cmd.Flags().IntVar(&stepsPerFrame, "speed", 1, "steps per frame")
}

// loadSystem resolves the preset, then the config file, then any flags
// the user set explicitly.
func loadSystem(cmd *cobra.Command, args []string) (*config.Config, error) {
	name := "inner"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
	}

	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	p := &cfg.Physics
	if flags.Changed("ordering") {
		p.Ordering = ordering
	}
	if flags.Changed("integrator") {
		p.Integrator = integrator
	}
	if flags.Changed("solver") {
		p.Solver = solver
	}
	if flags.Changed("dt") {
		p.Dt = dt
	}
	if flags.Changed("theta") {
		p.Theta = theta
	}
	if flags.Changed("min-separation") {
		p.MinSeparation = minSeparation
	}
	if flags.Changed("trail") {
		p.TrailCapacity = trailCapacity
	}
	if flags.Changed("workers") {
		p.Workers = workers
	}
	if flags.Changed("validate") {
		p.ValidateState = validate
	}
	if flags.Changed("fps") {
		cfg.View.FPS = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w, "system", cfg.Name)
	}
	logger.Debug("system loaded", "system", cfg.Name, "bodies", len(cfg.Bodies), "config", configFile)
	return cfg, nil
}
