package metrics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

func TotalMomentum(bodies []*physics.Body) r2.Vec {
	var p r2.Vec
	for _, b := range bodies {
		p = r2.Add(p, b.Momentum())
	}
	return p
}

// AngularMomentum is the z component of the total angular momentum about the origin.
func AngularMomentum(bodies []*physics.Body) float64 {
	l := make([]float64, len(bodies))
	for i, b := range bodies {
		l[i] = b.Mass * (b.Position.X*b.Velocity.Y - b.Position.Y*b.Velocity.X)
	}
	return floats.Sum(l)
}

// MomentumDrift reports the largest change of total linear momentum,
// relative to the summed momentum magnitudes of the first observation.
type MomentumDrift struct {
	name     string
	initial  r2.Vec
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(bodies []*physics.Body, t float64) {
	p := TotalMomentum(bodies)
	if m.samples == 0 {
		m.initial = p
		for _, b := range bodies {
			m.scale += r2.Norm(b.Momentum())
		}
	}
	m.samples++

	if m.scale > 0 {
		drift := r2.Norm(r2.Sub(p, m.initial)) / m.scale
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = r2.Vec{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}

type AngularMomentumDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

func (a *AngularMomentumDrift) Observe(bodies []*physics.Body, t float64) {
	l := AngularMomentum(bodies)
	if a.samples == 0 {
		a.initial = l
	}
	a.samples++

	if a.initial != 0 {
		drift := math.Abs(l-a.initial) / math.Abs(a.initial)
		a.maxDrift = math.Max(a.maxDrift, drift)
	}
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}
