package experiment

import (
	"context"
	"time"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/sim"
)

type BenchVariant struct {
	Solver  sim.Solver
	Workers int
}

type BenchResult struct {
	Variant     BenchVariant
	Steps       int
	Elapsed     time.Duration
	StepsPerSec float64
	Err         error
}

// Bench times each solver and worker count in turn. Variants run one
// after another so they do not compete for cores.
func Bench(ctx context.Context, base *config.Config, steps int, variants []BenchVariant) ([]BenchResult, error) {
	results := make([]BenchResult, 0, len(variants))
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		sys := base.Clone()
		sys.Physics.Ordering = string(sim.OrderingSnapshot)
		sys.Physics.Solver = string(v.Solver)
		sys.Physics.Workers = v.Workers

		res := BenchResult{Variant: v}
		s, err := sys.NewSimulator()
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		start := time.Now()
		r, err := s.Run(ctx, steps)
		res.Elapsed = time.Since(start)
		res.Err = err
		if r != nil {
			res.Steps = r.StepsTaken
		}
		if secs := res.Elapsed.Seconds(); secs > 0 {
			res.StepsPerSec = float64(res.Steps) / secs
		}
		results = append(results, res)
	}
	return results, nil
}
