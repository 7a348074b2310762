// Package gui draws the simulation in a desktop window.
//
// Scene holds the backend-independent state: pause, zoom, speed and the
// energy telemetry. RaylibApp and EbitenGame translate it into draw calls.
package gui

import (
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/san-kum/orbitsim/internal/logging"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/viewport"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	defaultFPS     = 60
	maxTelemetry   = 200
	maxStepsPerTic = 64
	zoomStep       = 1.1
)

var (
	ColBg      = color.RGBA{10, 10, 10, 255}
	ColAccent  = color.RGBA{180, 180, 180, 255}
	ColSelect  = color.RGBA{255, 255, 255, 255}
	ColText    = color.RGBA{140, 140, 140, 255}
	ColTextDim = color.RGBA{60, 60, 60, 255}
	ColError   = color.RGBA{230, 41, 55, 255}
)

type Options struct {
	Name          string
	FPS           int
	StepsPerFrame int
	View          viewport.Viewport
	Reset         func() (*sim.Simulator, error)
	Logger        *logging.Logger
}

// Disc is a body in screen space.
type Disc struct {
	Name   string
	Center r2.Vec
	Radius float64
	Color  color.RGBA
}

// Polyline is a trail in screen space.
type Polyline struct {
	Points []r2.Vec
	Color  color.RGBA
}

type Scene struct {
	sim       *sim.Simulator
	opts      Options
	log       *logging.Logger
	view      viewport.Viewport
	Running   bool
	Speed     int
	Telemetry []float64
	Err       error
}

func NewScene(s *sim.Simulator, opts Options) *Scene {
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 1
	}
	if opts.View.Width <= 0 || opts.View.Height <= 0 || opts.View.Scale <= 0 {
		opts.View = viewport.Default()
	}
	if opts.Name == "" {
		opts.Name = "orbitsim"
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	sc := &Scene{
		sim:     s,
		opts:    opts,
		log:     log.With("component", "gui", "system", opts.Name),
		view:    opts.View,
		Running: true,
		Speed:   opts.StepsPerFrame,
	}
	sc.Telemetry = append(make([]float64, 0, maxTelemetry), sc.energy())
	return sc
}

func (sc *Scene) Name() string              { return sc.opts.Name }
func (sc *Scene) FPS() int                  { return sc.opts.FPS }
func (sc *Scene) View() viewport.Viewport   { return sc.view }
func (sc *Scene) Simulator() *sim.Simulator { return sc.sim }
func (sc *Scene) Size() (width, height int) { return sc.view.Width, sc.view.Height }
func (sc *Scene) Resize(width, height int)  { sc.view = sc.view.Resize(width, height) }
func (sc *Scene) ZoomBy(factor float64)     { sc.view = sc.view.Zoom(factor) }
func (sc *Scene) ResetZoom()                { sc.view.Scale = sc.opts.View.Scale }
func (sc *Scene) TogglePause()              { sc.Running = !sc.Running && sc.Err == nil }
func (sc *Scene) Faster()                   { sc.Speed = min(sc.Speed*2, maxStepsPerTic) }
func (sc *Scene) Slower()                   { sc.Speed = max(sc.Speed/2, 1) }
func (sc *Scene) energy() float64           { return metrics.TotalEnergy(sc.sim.Bodies(), sc.sim.Config().G) }
func (sc *Scene) ZoomIn()                   { sc.ZoomBy(zoomStep) }
func (sc *Scene) ZoomOut()                  { sc.ZoomBy(1 / zoomStep) }

// Advance runs one frame worth of steps. A failed step halts the scene.
func (sc *Scene) Advance() {
	if !sc.Running || sc.Err != nil {
		return
	}
	for i := 0; i < sc.Speed; i++ {
		if err := sc.sim.Step(); err != nil {
			sc.Err = err
			sc.Running = false
			sc.log.Error(context.Background(), "simulation halted", err, "step", sc.sim.Steps())
			return
		}
	}
	sc.Telemetry = append(sc.Telemetry, sc.energy())
	if len(sc.Telemetry) > maxTelemetry {
		sc.Telemetry = sc.Telemetry[1:]
	}
}

func (sc *Scene) Reset() {
	if sc.opts.Reset == nil {
		return
	}
	s, err := sc.opts.Reset()
	if err != nil {
		sc.log.Error(context.Background(), "reset failed", err)
		return
	}
	sc.sim = s
	sc.Err = nil
	sc.Running = true
	sc.Telemetry = append(sc.Telemetry[:0], sc.energy())
	sc.log.Debug("reset")
}

// Shapes converts the current frame into screen-space trails and discs.
// Trails are returned only when they have more than two points.
func (sc *Scene) Shapes() ([]Polyline, []Disc) {
	frame := sc.sim.Frame()
	lines := make([]Polyline, 0, len(frame.Bodies))
	discs := make([]Disc, len(frame.Bodies))
	for i, b := range frame.Bodies {
		if len(b.Trail) > 2 {
			lines = append(lines, Polyline{Points: sc.view.Path(b.Trail), Color: b.Color})
		}
		r := b.Radius
		if r <= 0 {
			r = 2
		}
		discs[i] = Disc{Name: b.Name, Center: sc.view.ToScreen(b.Position), Radius: r, Color: b.Color}
	}
	return lines, discs
}

// TelemetryPath maps the energy history into a w by h box at (x, y).
func (sc *Scene) TelemetryPath(x, y, w, h float64) []r2.Vec {
	if len(sc.Telemetry) < 2 {
		return nil
	}
	lo, hi := sc.Telemetry[0], sc.Telemetry[0]
	for _, v := range sc.Telemetry {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	n := float64(len(sc.Telemetry) - 1)
	pts := make([]r2.Vec, len(sc.Telemetry))
	for i, v := range sc.Telemetry {
		pts[i] = r2.Vec{
			X: x + float64(i)/n*w,
			Y: y + h - (v-lo)/(hi-lo)*h,
		}
	}
	return pts
}

func (sc *Scene) Status() string {
	switch {
	case sc.Err != nil:
		return "HALTED"
	case !sc.Running:
		return "PAUSED"
	default:
		return "RUNNING"
	}
}

// HUD returns the text lines drawn in the top left corner.
func (sc *Scene) HUD() []string {
	lines := []string{
		fmt.Sprintf("orbitsim :: %s  %s", sc.opts.Name, sc.Status()),
		fmt.Sprintf("day %.1f  step %d  x%d", sc.sim.Time()/physics.Day, sc.sim.Steps(), sc.Speed),
		fmt.Sprintf("scale %.1f px/AU", sc.view.PixelsPerAU()),
	}
	if len(sc.Telemetry) > 0 {
		lines = append(lines, fmt.Sprintf("E: %.4e J", sc.Telemetry[len(sc.Telemetry)-1]))
	}
	for _, b := range sc.sim.Bodies() {
		if !b.Anchor {
			lines = append(lines, fmt.Sprintf("%-8s %.3f AU", b.Name, b.DistanceToAnchor()/physics.AU))
		}
	}
	if sc.Err != nil {
		lines = append(lines, sc.Err.Error())
	}
	return lines
}

const helpLine = "[SPACE] PAUSE  [R] RESET  [+/-] ZOOM  [UP/DOWN] SPEED  [Q] QUIT"
