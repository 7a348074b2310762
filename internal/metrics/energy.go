package metrics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// TotalEnergy is the kinetic energy of every body plus the pairwise
// gravitational potential. Coincident pairs contribute no potential.
func TotalEnergy(bodies []*physics.Body, g float64) float64 {
	var e float64
	for i, a := range bodies {
		e += a.KineticEnergy()
		for _, b := range bodies[i+1:] {
			r := r2.Norm(r2.Sub(a.Position, b.Position))
			if r > 0 {
				e -= g * a.Mass * b.Mass / r
			}
		}
	}
	return e
}

// Energy reports the mean total energy over the observed steps.
type Energy struct {
	name        string
	g           float64
	samples     int
	totalEnergy float64
}

func NewEnergy(g float64) *Energy {
	return &Energy{name: "energy", g: g}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(bodies []*physics.Body, t float64) {
	e.totalEnergy += TotalEnergy(bodies, e.g)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift reports the largest relative deviation from the first
// observed total energy.
type EnergyDrift struct {
	name          string
	g             float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(g float64) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", g: g}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []*physics.Body, t float64) {
	energy := TotalEnergy(bodies, e.g)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
