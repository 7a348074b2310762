package experiment

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/logging"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/sim"
	"golang.org/x/sync/errgroup"
)

// Variant is one cell of the comparison matrix.
type Variant struct {
	Ordering   sim.Ordering
	Integrator string
}

func (v Variant) String() string {
	return string(v.Ordering) + "/" + v.Integrator
}

type CompareResult struct {
	Variant       Variant
	StepsTaken    int
	EnergyDrift   float64
	MomentumDrift float64
	AngularDrift  float64
	// ClosureError is the worst closure error over the orbiting bodies.
	ClosureError float64
	Elapsed      time.Duration
	Err          error
}

// Matrix returns every ordering and integrator combination.
func Matrix(orderings []sim.Ordering, integs []string) []Variant {
	out := make([]Variant, 0, len(orderings)*len(integs))
	for _, o := range orderings {
		for _, in := range integs {
			out = append(out, Variant{Ordering: o, Integrator: in})
		}
	}
	return out
}

// Compare runs each variant of base concurrently for steps steps. A
// variant that fails mid-run is reported in its result; only
// cancellation aborts the comparison.
func Compare(ctx context.Context, base *config.Config, steps int, variants []Variant, log *logging.Logger) ([]CompareResult, error) {
	if log == nil {
		log = logging.Discard()
	}
	results := make([]CompareResult, len(variants))
	g, ctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		g.Go(func() error {
			res, err := runVariant(ctx, base, steps, v, log)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			res.Err = err
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runVariant(ctx context.Context, base *config.Config, steps int, v Variant, log *logging.Logger) (CompareResult, error) {
	res := CompareResult{Variant: v}
	sys := base.Clone()
	sys.Physics.Ordering = string(v.Ordering)
	sys.Physics.Integrator = v.Integrator

	exp := New(Config{System: sys, Steps: steps, Logger: log})
	err := exp.Setup([]sim.Metric{
		metrics.NewEnergyDrift(sys.Physics.G),
		metrics.NewMomentumDrift(),
		metrics.NewAngularMomentumDrift(),
	})
	if err != nil {
		return res, err
	}

	start := time.Now()
	result, err := exp.Run(ctx)
	res.Elapsed = time.Since(start)
	if result != nil {
		res.StepsTaken = result.StepsTaken
		res.EnergyDrift = result.Metrics["energy_drift"]
		res.MomentumDrift = result.Metrics["momentum_drift"]
		res.AngularDrift = result.Metrics["angular_momentum_drift"]
	}
	if anchor := Anchor(sys); anchor != "" {
		for _, s := range analysis.Summarize(exp.Samples(), anchor) {
			res.ClosureError = math.Max(res.ClosureError, s.ClosureError)
		}
	}
	log.Debug("variant done", "variant", v.String(), "steps", res.StepsTaken, "elapsed", res.Elapsed)
	return res, err
}
