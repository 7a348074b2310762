package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/logging"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted batch of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep is a single run in a scenario. Config is a YAML file
// relative to the scenario; otherwise Preset names the system.
type ScenarioStep struct {
	Name       string  `yaml:"name"`
	Preset     string  `yaml:"preset"`
	Config     string  `yaml:"config"`
	Steps      int     `yaml:"steps"`
	Dt         float64 `yaml:"dt"`
	Ordering   string  `yaml:"ordering"`
	Integrator string  `yaml:"integrator"`
	Solver     string  `yaml:"solver"`
	Workers    int     `yaml:"workers"`
	Stride     int     `yaml:"stride"`
	Save       bool    `yaml:"save"`
	Expect     Expect  `yaml:"expect"`
}

// Expect holds optional upper bounds checked after a run. Zero disables a check.
type Expect struct {
	MaxEnergyDrift   float64 `yaml:"max_energy_drift"`
	MaxMomentumDrift float64 `yaml:"max_momentum_drift"`
	MaxClosureError  float64 `yaml:"max_closure_error"`
	Bounded          bool    `yaml:"bounded"`
}

type StepResult struct {
	Name     string
	RunID    string
	Result   *sim.Result
	Metadata storage.RunMetadata
	// Failures lists the expectations the run missed.
	Failures []string
}

func (r StepResult) Passed() bool { return len(r.Failures) == 0 }

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	scenario.dir = filepath.Dir(path)
	return scenario, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

func (s *Scenario) system(step ScenarioStep, registry *experiment.Registry) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case step.Config != "":
		path := step.Config
		if !filepath.IsAbs(path) && s.dir != "" {
			path = filepath.Join(s.dir, path)
		}
		cfg, err = config.Load(path)
	case step.Preset != "":
		cfg, err = registry.GetPreset(step.Preset)
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	p := &cfg.Physics
	if step.Dt > 0 {
		p.Dt = step.Dt
	}
	if step.Ordering != "" {
		p.Ordering = step.Ordering
	}
	if step.Integrator != "" {
		p.Integrator = step.Integrator
	}
	if step.Solver != "" {
		p.Solver = step.Solver
	}
	if step.Workers > 0 {
		p.Workers = step.Workers
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order. Runs are saved to store when
// the step asks for it and store is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, log *logging.Logger) ([]StepResult, error) {
	if log == nil {
		log = logging.Discard()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", name)

		cfg, err := scenario.system(step, registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		steps := step.Steps
		if steps <= 0 {
			steps = 365
		}

		exp := experiment.New(experiment.Config{System: cfg, Steps: steps, Stride: step.Stride, Logger: log})
		if err := exp.Setup(registry.DefaultMetrics(cfg)); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, runErr := exp.Run(ctx)
		res := StepResult{Name: name, Result: result, Metadata: exp.Metadata(result, runErr)}
		if step.Save && store != nil {
			id, err := store.Save(res.Metadata, exp.Samples())
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			res.RunID = id
			res.Metadata.ID = id
		}
		if runErr != nil {
			results = append(results, res)
			return results, fmt.Errorf("step %d run: %w", i+1, runErr)
		}

		res.Failures = check(step.Expect, result, exp.Samples(), experiment.Anchor(cfg))
		for _, f := range res.Failures {
			log.Warn("expectation failed", "name", name, "detail", f)
		}
		results = append(results, res)
	}

	return results, nil
}

func check(e Expect, result *sim.Result, samples []storage.Sample, anchor string) []string {
	var failures []string
	if e.MaxEnergyDrift > 0 && result.Metrics["energy_drift"] > e.MaxEnergyDrift {
		failures = append(failures, fmt.Sprintf("energy drift %.3e > %.3e", result.Metrics["energy_drift"], e.MaxEnergyDrift))
	}
	if e.MaxMomentumDrift > 0 && result.Metrics["momentum_drift"] > e.MaxMomentumDrift {
		failures = append(failures, fmt.Sprintf("momentum drift %.3e > %.3e", result.Metrics["momentum_drift"], e.MaxMomentumDrift))
	}
	if e.Bounded && result.Metrics["bounded"] < 1 {
		failures = append(failures, fmt.Sprintf("bounded fraction %.3f < 1", result.Metrics["bounded"]))
	}
	if e.MaxClosureError > 0 && anchor != "" {
		for _, s := range analysis.Summarize(samples, anchor) {
			if s.ClosureError > e.MaxClosureError {
				failures = append(failures, fmt.Sprintf("%s closure error %.3e > %.3e", s.Body, s.ClosureError, e.MaxClosureError))
			}
		}
	}
	return failures
}

// ParameterSweep runs one system across a range of values of a physics
// parameter: dt, theta or min_separation.
type ParameterSweep struct {
	Preset    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Steps     int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue   float64
	StepsTaken   int
	EnergyDrift  float64
	ClosureError float64
	Err          error
}

func setParam(p *config.PhysicsConfig, name string, v float64) error {
	switch name {
	case "dt":
		p.Dt = v
	case "theta":
		p.Theta = v
		p.Solver = string(sim.SolverBarnesHut)
	case "min_separation":
		p.MinSeparation = v
	default:
		return fmt.Errorf("cannot sweep parameter %q", name)
	}
	return nil
}

// RunSweep executes a parameter sweep. A run that fails is reported in
// its result; the sweep continues.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, log *logging.Logger) ([]SweepResult, error) {
	if log == nil {
		log = logging.Discard()
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 points, got %d", sweep.NumSteps)
	}
	base, err := registry.GetPreset(sweep.Preset)
	if err != nil {
		return nil, err
	}
	if err := setParam(&base.Physics, sweep.ParamName, sweep.ParamMin); err != nil {
		return nil, err
	}
	anchor := experiment.Anchor(base)

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := base.Clone()
		res := SweepResult{ParamValue: paramVal}
		if err := setParam(&cfg.Physics, sweep.ParamName, paramVal); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		exp := experiment.New(experiment.Config{System: cfg, Steps: sweep.Steps, Logger: log})
		if err := exp.Setup(registry.DefaultMetrics(cfg)); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		result, err := exp.Run(ctx)
		res.Err = err
		if result != nil {
			res.StepsTaken = result.StepsTaken
			res.EnergyDrift = result.Metrics["energy_drift"]
		}
		if anchor != "" {
			for _, s := range analysis.Summarize(exp.Samples(), anchor) {
				res.ClosureError = math.Max(res.ClosureError, s.ClosureError)
			}
		}
		results = append(results, res)

		log.Debug("sweep point", "param", sweep.ParamName, "value", paramVal, "index", i+1, "of", sweep.NumSteps)
	}
	return results, nil
}
