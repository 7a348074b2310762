package integrators

import (
	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// SymplecticEuler kicks the velocity first and drifts the position with the
// new velocity.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Name() string { return NameSymplectic }

func (s *SymplecticEuler) Advance(b *physics.Body, force r2.Vec, dt float64) {
	b.Update(force, dt)
}
