package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

type Simulator struct {
	bodies     []*physics.Body
	anchor     *physics.Body
	cfg        Config
	gravity    physics.Gravity
	integrator integrators.Integrator
	forces     *forcePool
	saved      []physics.State
	metrics    []Metric
	observers  []Observer

	step int
	time float64
}

// New builds a simulator over bodies in the given order. The slice is
// copied; the bodies themselves are owned and mutated by the simulator.
func New(bodies []*physics.Body, cfg Config) (*Simulator, error) {
	if len(bodies) == 0 {
		return nil, ErrNoBodies
	}
	cfg = withDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s := &Simulator{
		bodies:     make([]*physics.Body, len(bodies)),
		cfg:        cfg,
		gravity:    physics.Gravity{G: cfg.G, MinSeparation: cfg.MinSeparation},
		integrator: integ,
		forces:     newForcePool(len(bodies)),
		saved:      make([]physics.State, len(bodies)),
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
	for i, b := range bodies {
		if b == nil {
			return nil, fmt.Errorf("%w: body %d is nil", ErrInvalidConfig, i)
		}
		if !b.IsValid() {
			return nil, fmt.Errorf("%w: body %d (%s)", physics.ErrInvalidBody, i, b.Name)
		}
		if b.TrailBuffer() == nil {
			return nil, fmt.Errorf("%w: body %d (%s) was not built with NewBody", physics.ErrInvalidBody, i, b.Name)
		}
		if b.Anchor && s.anchor == nil {
			s.anchor = b
		}
		s.bodies[i] = b
	}
	return s, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Ordering == "" {
		cfg.Ordering = OrderingSnapshot
	}
	if cfg.Solver == "" {
		cfg.Solver = SolverDirect
	}
	if cfg.Integrator == "" {
		cfg.Integrator = integrators.NameSymplectic
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	return cfg
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.G > 0) || math.IsInf(cfg.G, 0) {
		return fmt.Errorf("%w: g must be positive, got %g", ErrInvalidConfig, cfg.G)
	}
	switch cfg.Ordering {
	case OrderingSnapshot, OrderingSequential:
	default:
		return fmt.Errorf("%w: unknown ordering %q", ErrInvalidConfig, cfg.Ordering)
	}
	switch cfg.Solver {
	case SolverDirect:
	case SolverBarnesHut:
		if cfg.Ordering != OrderingSnapshot {
			return fmt.Errorf("%w: barneshut solver requires snapshot ordering", ErrInvalidConfig)
		}
		if cfg.Theta < 0 {
			return fmt.Errorf("%w: theta must be non-negative, got %g", ErrInvalidConfig, cfg.Theta)
		}
	default:
		return fmt.Errorf("%w: unknown solver %q", ErrInvalidConfig, cfg.Solver)
	}
	if cfg.MinSeparation < 0 {
		return fmt.Errorf("%w: min separation must be non-negative, got %g", ErrInvalidConfig, cfg.MinSeparation)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.Workers > 1 && cfg.Ordering != OrderingSnapshot {
		return fmt.Errorf("%w: parallel force phase requires snapshot ordering", ErrInvalidConfig)
	}
	return nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Bodies() []*physics.Body { return s.bodies }
func (s *Simulator) Config() Config          { return s.cfg }
func (s *Simulator) Time() float64           { return s.time }
func (s *Simulator) Steps() int              { return s.step }

// Frame copies the renderable state of every body, trails included.
func (s *Simulator) Frame() Frame {
	f := Frame{Step: s.step, Time: s.time, Bodies: make([]BodyView, len(s.bodies))}
	for i, b := range s.bodies {
		f.Bodies[i] = viewOf(b)
	}
	return f
}

// Step advances every body by one timestep and appends the new positions to
// the trails. On error no body is changed.
func (s *Simulator) Step() error {
	for i, b := range s.bodies {
		s.saved[i] = b.State()
	}

	var err error
	if s.cfg.Ordering == OrderingSequential {
		err = s.stepSequential()
	} else {
		err = s.stepSnapshot()
	}
	if err == nil && s.cfg.ValidateState {
		err = s.checkState()
	}
	if err != nil {
		for i, b := range s.bodies {
			b.Restore(s.saved[i])
		}
		return err
	}

	for _, b := range s.bodies {
		b.RecordPosition()
	}
	s.step++
	s.time += s.cfg.Dt
	return nil
}

func (s *Simulator) stepSnapshot() error {
	buf := s.forces.Get()
	defer s.forces.Put(buf)
	forces := *buf

	var err error
	if s.cfg.Solver == SolverBarnesHut {
		err = s.treeForces(forces)
	} else {
		err = computeForces(forces, s.cfg.Workers, s.netForce)
	}
	if err != nil {
		return err
	}

	for i, b := range s.bodies {
		s.integrator.Advance(b, forces[i], s.cfg.Dt)
	}
	return nil
}

func (s *Simulator) stepSequential() error {
	for i, b := range s.bodies {
		f, err := s.netForce(i)
		if err != nil {
			return err
		}
		s.integrator.Advance(b, f, s.cfg.Dt)
	}
	return nil
}

// netForce sums the attraction of every other body on body i.
func (s *Simulator) netForce(i int) (r2.Vec, error) {
	b := s.bodies[i]
	var total r2.Vec
	for j, other := range s.bodies {
		if j == i {
			continue
		}
		f, err := b.Attraction(other, s.gravity)
		if err != nil {
			return r2.Vec{}, s.pairError(i, j, err)
		}
		total = r2.Add(total, f)
	}
	return total, nil
}

type particle struct {
	body  *physics.Body
	index int
}

func (p *particle) Coord2() r2.Vec { return p.body.Position }
func (p *particle) Mass() float64  { return p.body.Mass }

func (s *Simulator) treeForces(forces []r2.Vec) error {
	particles := make([]barneshut.Particle2, len(s.bodies))
	for i, b := range s.bodies {
		particles[i] = &particle{body: b, index: i}
	}
	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return s.pairError(0, -1, fmt.Errorf("%w: %v", physics.ErrDegenerateSeparation, err))
	}

	return computeForces(forces, s.cfg.Workers, func(i int) (r2.Vec, error) {
		p := particles[i].(*particle)
		f, err := s.treeForce(plane, p)
		if err != nil {
			return r2.Vec{}, err
		}
		p.body.TrackAnchor(s.anchor)
		return f, nil
	})
}

// treeForce evaluates the net force on p through the quadtree. Aggregated
// nodes are passed to the force function with a nil partner.
func (s *Simulator) treeForce(plane *barneshut.Plane, p *particle) (r2.Vec, error) {
	partner := -1
	f := plane.ForceOn(p, s.cfg.Theta, func(_, p2 barneshut.Particle2, m1, m2 float64, v r2.Vec) r2.Vec {
		r := r2.Norm(v)
		if r == 0 {
			if q, ok := p2.(*particle); ok && q != p && partner < 0 {
				partner = q.index
			}
			return r2.Vec{}
		}
		rm := math.Max(r, s.gravity.MinSeparation)
		mag := s.gravity.G * m1 * m2 / (rm * rm)
		return r2.Vec{X: mag * v.X / r, Y: mag * v.Y / r}
	})
	if partner >= 0 {
		return r2.Vec{}, s.pairError(p.index, partner, physics.ErrDegenerateSeparation)
	}
	if math.IsNaN(f.X) || math.IsNaN(f.Y) || math.IsInf(f.X, 0) || math.IsInf(f.Y, 0) {
		return r2.Vec{}, s.pairError(p.index, -1, physics.ErrDegenerateSeparation)
	}
	return f, nil
}

func (s *Simulator) pairError(i, j int, err error) error {
	e := &SimulationError{Step: s.step, Time: s.time, I: i, J: j, Wrapped: err}
	e.Names[0] = s.bodies[i].Name
	if j >= 0 {
		e.Names[1] = s.bodies[j].Name
	}
	return e
}

func (s *Simulator) checkState() error {
	for i, b := range s.bodies {
		if !b.IsValid() {
			return SimError{
				Time:    s.time,
				Step:    s.step,
				Message: fmt.Sprintf("invalid state for body %d (%s)", i, b.Name),
			}
		}
	}
	return nil
}

// Run advances the simulation by steps, feeding metrics and observers after
// every completed step. It returns the partial result together with the
// first step error or context cancellation.
func (s *Simulator) Run(ctx context.Context, steps int) (*Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, steps)
	}

	result := &Result{Metrics: make(map[string]float64)}
	for _, m := range s.metrics {
		m.Reset()
		m.Observe(s.bodies, s.time)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.step, s.time, s.bodies)
	}

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		if err := s.Step(); err != nil {
			runErr = err
			break
		}
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(s.bodies, s.time)
		}
		for _, obs := range s.observers {
			obs.OnStep(s.step, s.time, s.bodies)
		}
	}

	result.Time = s.time
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, runErr
}

// IsDegenerate reports whether err was caused by two coincident bodies.
func IsDegenerate(err error) bool {
	return errors.Is(err, physics.ErrDegenerateSeparation)
}
