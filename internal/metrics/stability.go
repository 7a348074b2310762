package metrics

import (
	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Bounded is the fraction of observed steps in which every body stayed
// within radius of the origin.
type Bounded struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBounded(radius float64) *Bounded {
	return &Bounded{
		name:   "bounded",
		radius: radius,
	}
}

func (s *Bounded) Name() string {
	return s.name
}

func (s *Bounded) Observe(bodies []*physics.Body, t float64) {
	s.samples++
	for _, b := range bodies {
		if r2.Norm(b.Position) > s.radius {
			s.violations++
			break
		}
	}
}

func (s *Bounded) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Bounded) Reset() {
	s.violations = 0
	s.samples = 0
}
