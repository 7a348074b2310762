package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
)

// boundFactor scales the initial extent of a system into the radius
// used by the bounded metric.
const boundFactor = 10.0

type Registry struct {
	orderings []sim.Ordering
	solvers   []sim.Solver
	metrics   map[string]func(cfg *config.Config) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		orderings: []sim.Ordering{sim.OrderingSnapshot, sim.OrderingSequential},
		solvers:   []sim.Solver{sim.SolverDirect, sim.SolverBarnesHut},
		metrics:   make(map[string]func(cfg *config.Config) sim.Metric),
	}

	r.metrics["energy"] = func(cfg *config.Config) sim.Metric { return metrics.NewEnergy(cfg.Physics.G) }
	r.metrics["energy_drift"] = func(cfg *config.Config) sim.Metric { return metrics.NewEnergyDrift(cfg.Physics.G) }
	r.metrics["momentum_drift"] = func(cfg *config.Config) sim.Metric { return metrics.NewMomentumDrift() }
	r.metrics["angular_momentum_drift"] = func(cfg *config.Config) sim.Metric { return metrics.NewAngularMomentumDrift() }
	r.metrics["bounded"] = func(cfg *config.Config) sim.Metric { return metrics.NewBounded(boundRadius(cfg)) }

	return r
}

// GetPreset returns a copy of the named system.
func (r *Registry) GetPreset(name string) (*config.Config, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return cfg, nil
}

func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	return integrators.New(name)
}

func (r *Registry) GetMetric(name string, cfg *config.Config) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListPresets() []string     { return config.ListPresets() }
func (r *Registry) ListIntegrators() []string { return integrators.Names() }

func (r *Registry) ListOrderings() []sim.Ordering {
	return append([]sim.Ordering(nil), r.orderings...)
}

func (r *Registry) ListSolvers() []sim.Solver {
	return append([]sim.Solver(nil), r.solvers...)
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns one instance of every registered metric.
func (r *Registry) DefaultMetrics(cfg *config.Config) []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name](cfg))
	}
	return out
}

// boundRadius is boundFactor times the largest initial distance from the
// origin, or boundFactor AU for a system sitting at the origin.
func boundRadius(cfg *config.Config) float64 {
	var extent float64
	for _, b := range cfg.Bodies {
		var p [2]float64
		switch {
		case b.PositionAU != nil:
			p = [2]float64{b.PositionAU[0] * physics.AU, b.PositionAU[1] * physics.AU}
		case b.Position != nil:
			p = *b.Position
		}
		extent = math.Max(extent, math.Hypot(p[0], p[1]))
	}
	if extent == 0 {
		extent = physics.AU
	}
	return boundFactor * extent
}
