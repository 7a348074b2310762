package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/logging"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
)

type Config struct {
	System *config.Config
	Steps  int
	// Stride records every n-th step; zero records all of them.
	Stride int
	Logger *logging.Logger
}

// Experiment is one headless run of a system.
type Experiment struct {
	cfg       Config
	log       *logging.Logger
	simulator *sim.Simulator
	recorder  *storage.Recorder
}

func New(cfg Config) *Experiment {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Experiment{cfg: cfg, log: log}
}

// Setup builds the simulator and attaches the metrics and a recorder.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	if e.cfg.System == nil {
		return fmt.Errorf("experiment has no system")
	}
	s, err := e.cfg.System.NewSimulator()
	if err != nil {
		return err
	}
	e.simulator = s
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	e.recorder = storage.NewRecorder(e.cfg.Stride)
	e.simulator.AddObserver(e.recorder)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	e.log.Debug("run start",
		"system", e.cfg.System.Name,
		"steps", e.cfg.Steps,
		"ordering", e.cfg.System.Physics.Ordering,
		"integrator", e.cfg.System.Physics.Integrator)

	result, err := e.simulator.Run(ctx, e.cfg.Steps)
	if result != nil {
		e.log.Debug("run done", "system", e.cfg.System.Name, "steps_taken", result.StepsTaken)
	}
	return result, err
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Samples() []storage.Sample {
	if e.recorder == nil {
		return nil
	}
	return e.recorder.Samples()
}

// Metadata describes the run for the store. runErr, if any, is kept as text.
func (e *Experiment) Metadata(result *sim.Result, runErr error) storage.RunMetadata {
	sys := e.cfg.System
	meta := storage.RunMetadata{
		System:     sys.Name,
		Dt:         sys.Physics.Dt,
		G:          sys.Physics.G,
		Ordering:   sys.Physics.Ordering,
		Integrator: sys.Physics.Integrator,
		Solver:     sys.Physics.Solver,
		Metrics:    map[string]float64{},
	}
	if e.recorder != nil {
		meta.Stride = e.recorder.Stride()
	}
	if result != nil {
		meta.Steps = result.StepsTaken
		meta.Metrics = result.Metrics
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	if e.simulator != nil {
		for _, b := range e.simulator.Bodies() {
			meta.Bodies = append(meta.Bodies, storage.BodyMeta{
				Name:   b.Name,
				Mass:   b.Mass,
				Radius: b.Radius,
				Color:  config.FormatColor(b.Color),
				Anchor: b.Anchor,
			})
		}
	}
	return meta
}

// Anchor returns the name of the first anchor body, or "".
func Anchor(cfg *config.Config) string {
	for _, b := range cfg.Bodies {
		if b.Anchor {
			return b.Name
		}
	}
	return ""
}
