package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Integrator advances one body by dt under a net force already computed
// for the current step.
type Integrator interface {
	Name() string
	Advance(b *physics.Body, force r2.Vec, dt float64)
}

const (
	NameSymplectic = "symplectic"
	NameEuler      = "euler"
)

var registry = map[string]func() Integrator{
	NameSymplectic: func() Integrator { return NewSymplecticEuler() },
	NameEuler:      func() Integrator { return NewEuler() },
}

// New returns the integrator registered under name. An empty name selects
// semi-implicit Euler.
func New(name string) (Integrator, error) {
	if name == "" {
		name = NameSymplectic
	}
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return factory(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
