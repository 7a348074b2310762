package integrators

import (
	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Euler is the classical explicit scheme: the position moves with the
// velocity from before the kick. It drifts outward on closed orbits and is
// kept for comparison runs.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return NameEuler }

func (e *Euler) Advance(b *physics.Body, force r2.Vec, dt float64) {
	v0 := b.Velocity
	b.Velocity = r2.Add(v0, r2.Scale(dt/b.Mass, force))
	b.Position = r2.Add(b.Position, r2.Scale(dt, v0))
}
