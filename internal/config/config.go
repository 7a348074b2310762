package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/viewport"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFPS   = 60
	DefaultTheta = 0.5
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Vec is a YAML [x, y] pair.
type Vec [2]float64

func (v Vec) R2() r2.Vec { return r2.Vec{X: v[0], Y: v[1]} }

type Config struct {
	Name    string        `yaml:"name"`
	Physics PhysicsConfig `yaml:"physics"`
	View    ViewConfig    `yaml:"view"`
	Bodies  []BodyConfig  `yaml:"bodies"`
}

type PhysicsConfig struct {
	G             float64 `yaml:"g"`
	Dt            float64 `yaml:"dt"`
	Ordering      string  `yaml:"ordering"`
	Integrator    string  `yaml:"integrator"`
	Solver        string  `yaml:"solver"`
	Theta         float64 `yaml:"theta"`
	MinSeparation float64 `yaml:"min_separation"`
	TrailCapacity int     `yaml:"trail_capacity"`
	Workers       int     `yaml:"workers"`
	ValidateState bool    `yaml:"validate_state"`
}

type ViewConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	PixelsPerAU float64 `yaml:"pixels_per_au"`
	FPS         int     `yaml:"fps"`
}

// BodyConfig describes one body. Position is in metres, PositionAU in
// astronomical units; PositionAU wins when both are set.
type BodyConfig struct {
	Name       string  `yaml:"name"`
	Position   *Vec    `yaml:"position,flow,omitempty"`
	PositionAU *Vec    `yaml:"position_au,flow,omitempty"`
	Velocity   Vec     `yaml:"velocity,flow"`
	Mass       float64 `yaml:"mass"`
	Radius     float64 `yaml:"radius"`
	Color      string  `yaml:"color,omitempty"`
	Anchor     bool    `yaml:"anchor,omitempty"`
}

func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		G:             physics.G,
		Dt:            physics.Day,
		Ordering:      string(sim.OrderingSnapshot),
		Integrator:    integrators.NameSymplectic,
		Solver:        string(sim.SolverDirect),
		Theta:         DefaultTheta,
		TrailCapacity: physics.DefaultTrailCapacity,
		Workers:       1,
	}
}

func DefaultView() ViewConfig {
	return ViewConfig{
		Width:       viewport.DefaultWidth,
		Height:      viewport.DefaultHeight,
		PixelsPerAU: viewport.DefaultPixelsPerAU,
		FPS:         DefaultFPS,
	}
}

// DefaultConfig is the inner solar system.
func DefaultConfig() *Config {
	return GetPreset("inner")
}

// Load reads a YAML file on top of the default configuration. A file
// without a bodies list keeps the default bodies.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file on top of base, which is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		b.Position = cloneVec(b.Position)
		b.PositionAU = cloneVec(b.PositionAU)
		out.Bodies[i] = b
	}
	return &out
}

func cloneVec(v *Vec) *Vec {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (c *Config) Validate() error {
	p := c.Physics
	if !(p.G > 0) {
		return invalid("physics.g must be positive, got %g", p.G)
	}
	if !(p.Dt > 0) {
		return invalid("physics.dt must be positive, got %g", p.Dt)
	}
	switch sim.Ordering(p.Ordering) {
	case sim.OrderingSnapshot, sim.OrderingSequential:
	default:
		return invalid("physics.ordering must be snapshot or sequential, got %q", p.Ordering)
	}
	if _, err := integrators.New(p.Integrator); err != nil {
		return invalid("physics.integrator: %v", err)
	}
	switch sim.Solver(p.Solver) {
	case sim.SolverDirect, sim.SolverBarnesHut:
	default:
		return invalid("physics.solver must be direct or barneshut, got %q", p.Solver)
	}
	if p.Theta < 0 {
		return invalid("physics.theta must be non-negative, got %g", p.Theta)
	}
	if p.MinSeparation < 0 {
		return invalid("physics.min_separation must be non-negative, got %g", p.MinSeparation)
	}
	if p.TrailCapacity < 1 {
		return invalid("physics.trail_capacity must be at least 1, got %d", p.TrailCapacity)
	}
	if p.Workers < 0 {
		return invalid("physics.workers must be non-negative, got %d", p.Workers)
	}

	v := c.View
	if v.Width <= 0 || v.Height <= 0 {
		return invalid("view size must be positive, got %dx%d", v.Width, v.Height)
	}
	if !(v.PixelsPerAU > 0) {
		return invalid("view.pixels_per_au must be positive, got %g", v.PixelsPerAU)
	}
	if v.FPS <= 0 {
		return invalid("view.fps must be positive, got %d", v.FPS)
	}

	if len(c.Bodies) == 0 {
		return invalid("at least one body is required")
	}
	seen := make(map[string]bool, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Name == "" {
			return invalid("bodies[%d]: name is required", i)
		}
		if seen[b.Name] {
			return invalid("bodies[%d]: duplicate name %q", i, b.Name)
		}
		seen[b.Name] = true
		if !(b.Mass > 0) {
			return invalid("bodies[%d] (%s): mass must be positive, got %g", i, b.Name, b.Mass)
		}
		if b.Radius < 0 {
			return invalid("bodies[%d] (%s): radius must be non-negative, got %g", i, b.Name, b.Radius)
		}
		if b.Color != "" {
			if _, err := ParseColor(b.Color); err != nil {
				return invalid("bodies[%d] (%s): %v", i, b.Name, err)
			}
		}
	}
	return nil
}

// Warnings reports suspicious but accepted settings.
func (c *Config) Warnings() []string {
	var out []string
	anchors := 0
	for _, b := range c.Bodies {
		if b.Anchor {
			anchors++
		}
	}
	switch {
	case anchors == 0:
		out = append(out, "no anchor body: distance to anchor stays zero")
	case anchors > 1:
		out = append(out, fmt.Sprintf("%d anchor bodies: distance to anchor is ambiguous", anchors))
	}
	if c.Physics.Workers > 1 && c.Physics.Ordering == string(sim.OrderingSequential) {
		out = append(out, "workers > 1 is ignored with sequential ordering")
	}
	return out
}

// BuildBodies validates the configuration and constructs the bodies in
// file order.
func (c *Config) BuildBodies() ([]*physics.Body, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	bodies := make([]*physics.Body, len(c.Bodies))
	for i, bc := range c.Bodies {
		b, err := buildBody(bc, AutoColor(i, len(c.Bodies)), c.Physics.TrailCapacity)
		if err != nil {
			return nil, err
		}
		bodies[i] = b
	}
	return bodies, nil
}

// buildBody uses fallback when bc has no colour of its own.
func buildBody(bc BodyConfig, fallback color.RGBA, trailCapacity int) (*physics.Body, error) {
	var pos r2.Vec
	if bc.Position != nil {
		pos = bc.Position.R2()
	}
	if bc.PositionAU != nil {
		pos = r2.Scale(physics.AU, bc.PositionAU.R2())
	}
	col := fallback
	if bc.Color != "" {
		var err error
		col, err = ParseColor(bc.Color)
		if err != nil {
			return nil, invalid("body %s: %v", bc.Name, err)
		}
	}
	return physics.NewBody(physics.Params{
		Name:          bc.Name,
		Position:      pos,
		Velocity:      bc.Velocity.R2(),
		Mass:          bc.Mass,
		Radius:        bc.Radius,
		Color:         col,
		Anchor:        bc.Anchor,
		TrailCapacity: trailCapacity,
	})
}

func (c *Config) SimConfig() sim.Config {
	p := c.Physics
	workers := p.Workers
	if sim.Ordering(p.Ordering) == sim.OrderingSequential {
		workers = 1
	}
	return sim.Config{
		Dt:            p.Dt,
		G:             p.G,
		Ordering:      sim.Ordering(p.Ordering),
		Integrator:    p.Integrator,
		Solver:        sim.Solver(p.Solver),
		Theta:         p.Theta,
		MinSeparation: p.MinSeparation,
		Workers:       workers,
		ValidateState: p.ValidateState,
	}
}

func (c *Config) Viewport() viewport.Viewport {
	return viewport.New(c.View.Width, c.View.Height, c.View.PixelsPerAU)
}

// NewSimulator builds the bodies and the simulator in one go.
func (c *Config) NewSimulator() (*sim.Simulator, error) {
	bodies, err := c.BuildBodies()
	if err != nil {
		return nil, err
	}
	return sim.New(bodies, c.SimConfig())
}
