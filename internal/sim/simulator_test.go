package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func body(t *testing.T, name string, p, v r2.Vec, m float64, anchor bool) *physics.Body {
	t.Helper()
	b, err := physics.NewBody(physics.Params{Name: name, Position: p, Velocity: v, Mass: m, Anchor: anchor, TrailCapacity: 8})
	if err != nil {
		t.Fatalf("NewBody(%s): %v", name, err)
	}
	return b
}

func sunEarth(t *testing.T) []*physics.Body {
	return []*physics.Body{
		body(t, "sun", r2.Vec{}, r2.Vec{}, physics.SunMass, true),
		body(t, "earth", r2.Vec{X: -physics.AU}, r2.Vec{Y: 29783}, 5.9742e24, false),
	}
}

func innerBodies(t *testing.T) []*physics.Body {
	return []*physics.Body{
		body(t, "sun", r2.Vec{}, r2.Vec{}, physics.SunMass, true),
		body(t, "mercury", r2.Vec{X: 0.387 * physics.AU}, r2.Vec{Y: -47400}, 3.30e23, false),
		body(t, "venus", r2.Vec{X: 0.723 * physics.AU}, r2.Vec{Y: -35020}, 4.8685e24, false),
		body(t, "earth", r2.Vec{X: -physics.AU}, r2.Vec{Y: 29783}, 5.9742e24, false),
		body(t, "mars", r2.Vec{X: -1.524 * physics.AU}, r2.Vec{Y: 24077}, 6.39e23, false),
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -1 }},
		{"nan dt", func(c *Config) { c.Dt = math.NaN() }},
		{"zero g", func(c *Config) { c.G = 0 }},
		{"unknown ordering", func(c *Config) { c.Ordering = "random" }},
		{"unknown solver", func(c *Config) { c.Solver = "fmm" }},
		{"unknown integrator", func(c *Config) { c.Integrator = "rk4" }},
		{"negative min separation", func(c *Config) { c.MinSeparation = -1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"parallel sequential", func(c *Config) { c.Workers = 4; c.Ordering = OrderingSequential }},
		{"barneshut sequential", func(c *Config) { c.Solver = SolverBarnesHut; c.Ordering = OrderingSequential }},
		{"negative theta", func(c *Config) { c.Solver = SolverBarnesHut; c.Theta = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.cfg(&cfg)
			_, err := New(sunEarth(t), cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNew_NoBodies(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); !errors.Is(err, ErrNoBodies) {
		t.Errorf("expected ErrNoBodies, got %v", err)
	}
}

func TestNew_InvalidBodies(t *testing.T) {
	tests := []struct {
		name  string
		extra *physics.Body
		want  error
	}{
		{"nil body", nil, ErrInvalidConfig},
		{"zero mass literal", &physics.Body{Name: "ghost"}, physics.ErrInvalidBody},
		{"literal without trail", &physics.Body{Name: "mars", Mass: 6.39e23, Position: r2.Vec{X: -1.524 * physics.AU}}, physics.ErrInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodies := append(sunEarth(t), tt.extra)
			s, err := New(bodies, DefaultConfig())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if s != nil {
				t.Error("expected no simulator on error")
			}
		})
	}
}

func TestNew_LiteralBodiesDoNotPanic(t *testing.T) {
	bodies := []*physics.Body{
		{Name: "sun", Mass: physics.SunMass, Anchor: true},
		{Name: "earth", Mass: 5.9742e24, Position: r2.Vec{X: -physics.AU}, Velocity: r2.Vec{Y: 29783}},
	}
	s, err := New(bodies, DefaultConfig())
	if !errors.Is(err, physics.ErrInvalidBody) {
		t.Fatalf("expected ErrInvalidBody, got %v", err)
	}
	if s != nil {
		t.Fatal("struct literal bodies must be rejected before any step")
	}
}

func TestNew_Defaults(t *testing.T) {
	s, err := New(sunEarth(t), Config{Dt: 60, G: physics.G})
	if err != nil {
		t.Fatal(err)
	}
	cfg := s.Config()
	if cfg.Ordering != OrderingSnapshot || cfg.Solver != SolverDirect || cfg.Integrator != "symplectic" || cfg.Workers != 1 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestStep_LoneBody(t *testing.T) {
	b := body(t, "alone", r2.Vec{X: 10, Y: -4}, r2.Vec{X: 2, Y: 1}, 1e20, true)
	s, err := New([]*physics.Body{b}, Config{Dt: 3, G: physics.G})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if b.Velocity != (r2.Vec{X: 2, Y: 1}) {
		t.Errorf("lone body velocity changed: %v", b.Velocity)
	}
	if b.Position != (r2.Vec{X: 16, Y: -1}) {
		t.Errorf("lone body position = %v", b.Position)
	}
}

func TestStep_KnownValue(t *testing.T) {
	const (
		mass = 1e30
		d    = 1e11
		dt   = 1000.0
	)
	star := body(t, "star", r2.Vec{}, r2.Vec{}, mass, true)
	probe := body(t, "probe", r2.Vec{X: d}, r2.Vec{}, 1, false)
	s, err := New([]*physics.Body{star, probe}, Config{Dt: dt, G: physics.G})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}

	wantV := -physics.G * mass / (d * d) * dt
	if math.Abs(probe.Velocity.X-wantV) > 1e-12*math.Abs(wantV) {
		t.Errorf("vx = %e, want %e", probe.Velocity.X, wantV)
	}
	wantX := d + wantV*dt
	if math.Abs(probe.Position.X-wantX) > 1e-12*d {
		t.Errorf("x = %e, want %e", probe.Position.X, wantX)
	}
	if probe.Velocity.Y != 0 || probe.Position.Y != 0 || star.Position.Y != 0 {
		t.Error("motion left the x axis")
	}
	if probe.DistanceToAnchor() != d {
		t.Errorf("distance to anchor = %e, want %e", probe.DistanceToAnchor(), d)
	}
}

func TestStep_TrailGrowth(t *testing.T) {
	bodies := sunEarth(t)
	s, err := New(bodies, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	for k := 1; k <= 12; k++ {
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
		want := min(k, 8)
		for _, b := range bodies {
			if b.TrailLen() != want {
				t.Fatalf("after %d steps %s trail = %d, want %d", k, b.Name, b.TrailLen(), want)
			}
		}
	}

	last, _ := bodies[1].TrailBuffer().Last()
	if last != bodies[1].Position {
		t.Error("last trail point should be the current position")
	}
	if s.Steps() != 12 || s.Time() != 12*physics.Day {
		t.Errorf("steps=%d time=%f", s.Steps(), s.Time())
	}
}

func TestStep_DegenerateSeparation(t *testing.T) {
	for _, ordering := range []Ordering{OrderingSnapshot, OrderingSequential} {
		t.Run(string(ordering), func(t *testing.T) {
			a := body(t, "a", r2.Vec{X: 1, Y: 1}, r2.Vec{X: 5}, 1e20, false)
			b := body(t, "b", r2.Vec{X: 1, Y: 1}, r2.Vec{Y: 5}, 1e20, false)
			s, err := New([]*physics.Body{a, b}, Config{Dt: 10, G: physics.G, Ordering: ordering})
			if err != nil {
				t.Fatal(err)
			}

			err = s.Step()
			if !errors.Is(err, physics.ErrDegenerateSeparation) || !IsDegenerate(err) {
				t.Fatalf("expected degenerate separation, got %v", err)
			}
			var simErr *SimulationError
			if !errors.As(err, &simErr) {
				t.Fatalf("expected *SimulationError, got %T", err)
			}
			if simErr.I != 0 || simErr.J != 1 || simErr.Names != [2]string{"a", "b"} {
				t.Errorf("unexpected error context: %+v", simErr)
			}
			if a.Position != (r2.Vec{X: 1, Y: 1}) || a.Velocity != (r2.Vec{X: 5}) {
				t.Errorf("body a mutated: %v", a)
			}
			if a.TrailLen() != 0 || s.Steps() != 0 {
				t.Error("failed step must not be recorded")
			}
		})
	}
}

func TestStep_SequentialRollback(t *testing.T) {
	first := body(t, "first", r2.Vec{X: -1e9}, r2.Vec{Y: 100}, 1e24, false)
	second := body(t, "second", r2.Vec{X: 5e8}, r2.Vec{}, 1e24, false)
	third := body(t, "third", r2.Vec{X: 5e8}, r2.Vec{}, 1e24, false)

	s, err := New([]*physics.Body{first, second, third}, Config{Dt: 100, G: physics.G, Ordering: OrderingSequential})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Step(); err == nil {
		t.Fatal("expected degenerate separation")
	}
	if first.Position != (r2.Vec{X: -1e9}) || first.Velocity != (r2.Vec{Y: 100}) {
		t.Errorf("first body was not rolled back: %v", first)
	}
	if first.DistanceToAnchor() != 0 {
		t.Error("distance to anchor was not rolled back")
	}
}

func TestStep_MinSeparationClamp(t *testing.T) {
	a := body(t, "a", r2.Vec{}, r2.Vec{}, 1e20, false)
	b := body(t, "b", r2.Vec{X: 1}, r2.Vec{}, 1e20, false)
	s, err := New([]*physics.Body{a, b}, Config{Dt: 1, G: physics.G, MinSeparation: 1e5})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Step(); err != nil {
		t.Fatalf("clamped step failed: %v", err)
	}
	if !a.IsValid() || !b.IsValid() {
		t.Error("clamped step produced non-finite state")
	}
}

func TestStep_ValidateState(t *testing.T) {
	a := body(t, "fast", r2.Vec{}, r2.Vec{X: 1e10}, 1, false)
	b := body(t, "far", r2.Vec{Y: 1e12}, r2.Vec{}, 1, false)
	s, err := New([]*physics.Body{a, b}, Config{Dt: 1e300, G: physics.G, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}

	err = s.Step()
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if !a.IsValid() {
		t.Error("invalid state should have been rolled back")
	}
}

func TestStep_ParallelMatchesSerial(t *testing.T) {
	serial := innerBodies(t)
	parallel := innerBodies(t)

	cfg := DefaultConfig()
	s1, err := New(serial, cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Workers = 3
	s2, err := New(parallel, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 200; i++ {
		if err := s1.Step(); err != nil {
			t.Fatal(err)
		}
		if err := s2.Step(); err != nil {
			t.Fatal(err)
		}
	}

	for i := range serial {
		if serial[i].Position != parallel[i].Position || serial[i].Velocity != parallel[i].Velocity {
			t.Errorf("%s diverged: %v vs %v", serial[i].Name, serial[i], parallel[i])
		}
		if serial[i].DistanceToAnchor() != parallel[i].DistanceToAnchor() {
			t.Errorf("%s anchor distance diverged", serial[i].Name)
		}
	}
}

func TestStep_BarnesHutExactAtThetaZero(t *testing.T) {
	direct := innerBodies(t)
	tree := innerBodies(t)

	s1, err := New(direct, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Solver = SolverBarnesHut
	cfg.Theta = 0
	s2, err := New(tree, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 50; i++ {
		if err := s1.Step(); err != nil {
			t.Fatal(err)
		}
		if err := s2.Step(); err != nil {
			t.Fatal(err)
		}
	}

	for i := range direct {
		diff := r2.Norm(r2.Sub(direct[i].Position, tree[i].Position))
		if diff > 1e-9*physics.AU {
			t.Errorf("%s: barneshut differs from direct by %e m", direct[i].Name, diff)
		}
		if i > 0 && math.Abs(direct[i].DistanceToAnchor()-tree[i].DistanceToAnchor()) > 1e-9*physics.AU {
			t.Errorf("%s: anchor distance differs", direct[i].Name)
		}
	}
}

func TestFrame_IsCopy(t *testing.T) {
	bodies := sunEarth(t)
	s, err := New(bodies, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
	}

	f := s.Frame()
	if f.Step != 3 || len(f.Bodies) != 2 {
		t.Fatalf("unexpected frame: step=%d bodies=%d", f.Step, len(f.Bodies))
	}
	earth := f.Bodies[1]
	if earth.Name != "earth" || len(earth.Trail) != 3 || earth.Position != bodies[1].Position {
		t.Errorf("unexpected earth view: %+v", earth)
	}
	earth.Trail[0] = r2.Vec{}
	if bodies[1].TrailBuffer().At(0) == (r2.Vec{}) {
		t.Error("frame trail aliases the body trail")
	}
}

type countMetric struct {
	observed int
}

func (c *countMetric) Name() string                         { return "count" }
func (c *countMetric) Observe(_ []*physics.Body, _ float64) { c.observed++ }
func (c *countMetric) Value() float64                       { return float64(c.observed) }
func (c *countMetric) Reset()                               { c.observed = 0 }

type stepRecorder struct {
	steps []int
}

func (r *stepRecorder) OnStep(step int, _ float64, _ []*physics.Body) {
	r.steps = append(r.steps, step)
}

func TestRun(t *testing.T) {
	s, err := New(sunEarth(t), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	metric := &countMetric{}
	rec := &stepRecorder{}
	s.AddMetric(metric)
	s.AddObserver(rec)

	result, err := s.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 10 || result.Time != 10*physics.Day {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Metrics["count"] != 11 {
		t.Errorf("expected 11 observations, got %v", result.Metrics["count"])
	}
	if len(rec.steps) != 11 || rec.steps[0] != 0 || rec.steps[10] != 10 {
		t.Errorf("unexpected observer steps: %v", rec.steps)
	}
}

func TestRun_InvalidSteps(t *testing.T) {
	s, err := New(sunEarth(t), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(context.Background(), 0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	s, err := New(sunEarth(t), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, 100)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected empty partial result, got %+v", result)
	}
}

func TestRun_StopsOnStepError(t *testing.T) {
	a := body(t, "a", r2.Vec{}, r2.Vec{}, 1e20, false)
	b := body(t, "b", r2.Vec{}, r2.Vec{}, 1e20, false)
	s, err := New([]*physics.Body{a, b}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(context.Background(), 5)
	if !IsDegenerate(err) {
		t.Fatalf("expected degenerate separation, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected 0 steps, got %d", result.StepsTaken)
	}
}
