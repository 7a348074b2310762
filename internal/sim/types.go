package sim

import (
	"image/color"

	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Ordering selects how force evaluation and integration interleave within a step.
type Ordering string

const (
	// OrderingSnapshot computes every net force from pre-step positions, then
	// integrates all bodies.
	OrderingSnapshot Ordering = "snapshot"
	// OrderingSequential computes and integrates body by body, so later bodies
	// see the already moved earlier ones.
	OrderingSequential Ordering = "sequential"
)

type Solver string

const (
	SolverDirect    Solver = "direct"
	SolverBarnesHut Solver = "barneshut"
)

type Metric interface {
	Name() string
	Observe(bodies []*physics.Body, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, t float64, bodies []*physics.Body)
}

type Config struct {
	Dt            float64
	G             float64
	Ordering      Ordering
	Integrator    string
	Solver        Solver
	Theta         float64
	MinSeparation float64
	Workers       int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:       physics.Day,
		G:        physics.G,
		Ordering: OrderingSnapshot,
		Solver:   SolverDirect,
		Theta:    0.5,
		Workers:  1,
	}
}

type Result struct {
	StepsTaken int
	Time       float64
	Metrics    map[string]float64
}

// BodyView is a copy of one body's renderable state.
type BodyView struct {
	Name             string
	Position         r2.Vec
	Velocity         r2.Vec
	Mass             float64
	Radius           float64
	Color            color.RGBA
	Anchor           bool
	DistanceToAnchor float64
	Trail            []r2.Vec
}

// Frame is the post-step state handed to renderers.
type Frame struct {
	Step   int
	Time   float64
	Bodies []BodyView
}

func viewOf(b *physics.Body) BodyView {
	return BodyView{
		Name:             b.Name,
		Position:         b.Position,
		Velocity:         b.Velocity,
		Mass:             b.Mass,
		Radius:           b.Radius,
		Color:            b.Color,
		Anchor:           b.Anchor,
		DistanceToAnchor: b.DistanceToAnchor(),
		Trail:            b.Trail(),
	}
}
