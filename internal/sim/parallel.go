package sim

import (
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// parallelFor splits [0, n) into contiguous chunks, one per worker, and
// returns the first error any chunk reports.
func parallelFor(n, workers int, fn func(i int) error) error {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// computeForces fills forces[i] with the net force on body i. Each call of
// force only writes state owned by body i.
func computeForces(forces []r2.Vec, workers int, force func(i int) (r2.Vec, error)) error {
	return parallelFor(len(forces), workers, func(i int) error {
		f, err := force(i)
		if err != nil {
			return err
		}
		forces[i] = f
		return nil
	})
}
