package physics

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Gravity is the force law shared by every pair of bodies.
// MinSeparation > 0 clamps the distance used for the force magnitude;
// zero leaves near-coincident pairs unguarded except for exact coincidence.
type Gravity struct {
	G             float64
	MinSeparation float64
}

func DefaultGravity() Gravity {
	return Gravity{G: G}
}

// Params describes a body at construction time.
type Params struct {
	Name          string
	Position      r2.Vec
	Velocity      r2.Vec
	Mass          float64
	Radius        float64
	Color         color.RGBA
	Anchor        bool
	TrailCapacity int
}

// Body is one gravitating point mass. Bodies are compared by pointer, never by value.
type Body struct {
	Name     string
	Position r2.Vec
	Velocity r2.Vec
	Mass     float64
	Radius   float64
	Color    color.RGBA
	Anchor   bool

	trail            *Trail
	distanceToAnchor float64
}

// State is the mutable kinematic part of a body, used to roll back a failed step.
type State struct {
	Position         r2.Vec
	Velocity         r2.Vec
	DistanceToAnchor float64
}

func NewBody(p Params) (*Body, error) {
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return nil, fmt.Errorf("%w: body %q mass must be positive, got %g", ErrInvalidBody, p.Name, p.Mass)
	}
	if !finite(p.Position) || !finite(p.Velocity) {
		return nil, fmt.Errorf("%w: body %q has non-finite position or velocity", ErrInvalidBody, p.Name)
	}
	if p.Radius < 0 {
		return nil, fmt.Errorf("%w: body %q radius must be non-negative, got %g", ErrInvalidBody, p.Name, p.Radius)
	}
	capacity := p.TrailCapacity
	if capacity == 0 {
		capacity = DefaultTrailCapacity
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: body %q trail capacity must be positive, got %d", ErrInvalidBody, p.Name, capacity)
	}
	return &Body{
		Name:     p.Name,
		Position: p.Position,
		Velocity: p.Velocity,
		Mass:     p.Mass,
		Radius:   p.Radius,
		Color:    p.Color,
		Anchor:   p.Anchor,
		trail:    NewTrail(capacity),
	}, nil
}

// Attraction returns the force this body experiences from other.
// If other is the anchor, the separation is recorded as the distance to anchor.
func (b *Body) Attraction(other *Body, g Gravity) (r2.Vec, error) {
	d := r2.Sub(other.Position, b.Position)
	r := r2.Norm(d)
	if r == 0 {
		return r2.Vec{}, ErrDegenerateSeparation
	}

	rm := r
	if rm < g.MinSeparation {
		rm = g.MinSeparation
	}
	f := g.G * b.Mass * other.Mass / (rm * rm)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return r2.Vec{}, ErrDegenerateSeparation
	}

	// F*(dx/r, dy/r) equals F*(cos, sin) of atan2(dy, dx) but keeps an
	// axis-aligned pair exactly on its axis.
	if other.Anchor {
		b.distanceToAnchor = r
	}
	return r2.Vec{X: f * d.X / r, Y: f * d.Y / r}, nil
}

// TrackAnchor records the distance to anchor without evaluating a force.
func (b *Body) TrackAnchor(anchor *Body) {
	if anchor == nil || anchor == b {
		return
	}
	b.distanceToAnchor = r2.Norm(r2.Sub(anchor.Position, b.Position))
}

// Update applies a net force over dt with semi-implicit Euler: the position
// advances with the already updated velocity.
func (b *Body) Update(force r2.Vec, dt float64) {
	a := r2.Scale(1/b.Mass, force)
	b.Velocity = r2.Add(b.Velocity, r2.Scale(dt, a))
	b.Position = r2.Add(b.Position, r2.Scale(dt, b.Velocity))
}

func (b *Body) RecordPosition() {
	b.trail.Push(b.Position)
}

func (b *Body) Trail() []r2.Vec     { return b.trail.Points() }
func (b *Body) TrailLen() int       { return b.trail.Len() }
func (b *Body) TrailCap() int       { return b.trail.Cap() }
func (b *Body) TrailBuffer() *Trail { return b.trail }

func (b *Body) DistanceToAnchor() float64 { return b.distanceToAnchor }

func (b *Body) Momentum() r2.Vec {
	return r2.Scale(b.Mass, b.Velocity)
}

func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * r2.Norm2(b.Velocity)
}

func (b *Body) State() State {
	return State{Position: b.Position, Velocity: b.Velocity, DistanceToAnchor: b.distanceToAnchor}
}

func (b *Body) Restore(s State) {
	b.Position = s.Position
	b.Velocity = s.Velocity
	b.distanceToAnchor = s.DistanceToAnchor
}

func (b *Body) IsValid() bool {
	return finite(b.Position) && finite(b.Velocity)
}

func (b *Body) String() string {
	return fmt.Sprintf("%s m=%.4g p=(%.4g, %.4g) v=(%.4g, %.4g)",
		b.Name, b.Mass, b.Position.X, b.Position.Y, b.Velocity.X, b.Velocity.Y)
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
