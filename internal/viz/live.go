package viz

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbitsim/internal/export"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/viewport"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	defaultFPS      = 60
	zoomStep        = 1.25
	maxStepsPerTick = 64
)

type TickMsg time.Time

// Options configures a live session.
type Options struct {
	Name string
	FPS  int
	// StepsPerTick is how many simulator steps run per frame.
	StepsPerTick int
	Theme        string
	// View is the window viewport; it is scaled down to the canvas.
	View viewport.Viewport
	// OutDir receives SVG snapshots and GIF recordings.
	OutDir string
	// Reset rebuilds the simulation from its initial configuration.
	Reset func() (*sim.Simulator, error)
}

// Model owns the simulator for the lifetime of the terminal program.
type Model struct {
	sim           *sim.Simulator
	opts          Options
	canvas        *Canvas
	base          viewport.Viewport
	zoom          float64
	pixelRatio    float64
	running       bool
	stepsPerTick  int
	energyHistory []float64
	initialEnergy float64
	err           error
	status        string
	theme         Theme
	styles        styles
	showHelp      bool
	recorder      *GIFRecorder
}

func NewModel(s *sim.Simulator, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if opts.StepsPerTick <= 0 {
		opts.StepsPerTick = 1
	}
	if opts.View.Width <= 0 || opts.View.Height <= 0 || opts.View.Scale <= 0 {
		opts.View = viewport.Default()
	}
	if opts.Name == "" {
		opts.Name = "orbitsim"
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}

	canvas := NewCanvas(width, height)
	cw, ch := canvas.PixelSize()
	ratio := min(float64(cw)/float64(opts.View.Width), float64(ch)/float64(opts.View.Height))
	theme := GetTheme(opts.Theme)

	m := Model{
		sim:          s,
		opts:         opts,
		canvas:       canvas,
		base:         viewport.Viewport{Width: cw, Height: ch, Scale: opts.View.Scale * ratio},
		zoom:         1,
		pixelRatio:   ratio,
		running:      true,
		stepsPerTick: opts.StepsPerTick,
		theme:        theme,
		styles:       newStyles(theme),
	}
	m.resetHistory()
	m.draw()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input and advances the simulation once per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "+", "=":
			m.zoom *= zoomStep
		case "-", "_":
			m.zoom /= zoomStep
		case "0":
			m.zoom = 1
		case "up", "k":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "down", "j":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
			m.status = "theme: " + m.theme.Name
		case "s":
			m.saveSVG()
		case "b":
			m.saveBraille()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
		m.draw()
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the simulation. A failed step stops the loop; the
// simulator state is left as it was before the failing step.
func (m *Model) step() {
	for i := 0; i < m.stepsPerTick; i++ {
		if err := m.sim.Step(); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
	m.energyHistory = append(m.energyHistory, m.energy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m *Model) energy() float64 {
	return metrics.TotalEnergy(m.sim.Bodies(), m.sim.Config().G)
}

func (m *Model) resetHistory() {
	m.initialEnergy = m.energy()
	m.energyHistory = make([]float64, 0, historyCapacity)
	m.energyHistory = append(m.energyHistory, m.initialEnergy)
}

func (m *Model) reset() {
	if m.opts.Reset == nil {
		m.status = "reset unavailable"
		return
	}
	s, err := m.opts.Reset()
	if err != nil {
		m.status = "reset failed: " + err.Error()
		return
	}
	m.sim = s
	m.err = nil
	m.running = true
	m.status = "reset"
	m.resetHistory()
}

func (m *Model) view() viewport.Viewport {
	return m.base.Zoom(m.zoom)
}

func (m *Model) discRadius(r float64) int {
	return int(math.Round(r * m.pixelRatio * math.Sqrt(m.zoom)))
}

// draw renders trails first so discs stay on top.
func (m *Model) draw() {
	m.canvas.Clear()
	v := m.view()
	frame := m.sim.Frame()
	for _, b := range frame.Bodies {
		if len(b.Trail) > 2 {
			m.canvas.DrawPath(v.Path(b.Trail))
		}
	}
	for _, b := range frame.Bodies {
		p := v.ToScreen(b.Position)
		m.canvas.FillCircle(int(p.X), int(p.Y), m.discRadius(b.Radius))
	}
}

func (m *Model) outPath(suffix string) string {
	return filepath.Join(m.opts.OutDir, fmt.Sprintf("%s_%d%s", m.opts.Name, m.sim.Steps(), suffix))
}

func (m *Model) writeFile(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.status = "saved " + path
}

func (m *Model) saveSVG() {
	m.writeFile(m.outPath(".svg"), export.FrameToSVG(m.sim.Frame(), m.opts.View.Zoom(m.zoom)))
}

func (m *Model) saveBraille() {
	m.writeFile(m.outPath("_term.svg"), export.BrailleToSVG(m.canvas.Grid, 10, string(m.theme.Primary)))
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewGIFRecorder(color.White)
		m.status = "recording"
		return
	}
	path := m.outPath(".gif")
	if err := m.recorder.Save(path); err != nil {
		m.status = "gif failed: " + err.Error()
	} else {
		m.status = fmt.Sprintf("saved %s (%d frames)", path, m.recorder.Len())
	}
	m.recorder = nil
}

func (m Model) Running() bool  { return m.running }
func (m Model) Err() error     { return m.err }
func (m Model) Status() string { return m.status }

func (m Model) stateLabel() string {
	switch {
	case m.err != nil:
		return m.styles.failed.Render("HALTED")
	case !m.running:
		return m.styles.paused.Render("PAUSED")
	case m.recorder != nil:
		return m.styles.running.Render("RUNNING ● REC")
	default:
		return m.styles.running.Render("RUNNING")
	}
}

// View renders the canvas next to the stats panel.
func (m Model) View() string {
	st := m.styles
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(GradientText(strings.ToUpper(m.opts.Name), m.theme.Primary, m.theme.Accent)) + "\n")
	s.WriteString(m.stateLabel() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Day", fmt.Sprintf("%.1f", m.sim.Time()/physics.Day))
	row("Step", fmt.Sprintf("%d (x%d)", m.sim.Steps(), m.stepsPerTick))
	energy := m.energyHistory[len(m.energyHistory)-1]
	row("Energy", fmt.Sprintf("%.4e J", energy))
	if m.initialEnergy != 0 {
		row("Drift", fmt.Sprintf("%.2e", math.Abs((energy-m.initialEnergy)/m.initialEnergy)))
	}
	row("Scale", fmt.Sprintf("%.1f px/AU", m.opts.View.Zoom(m.zoom).PixelsPerAU()))

	s.WriteString("\nBODIES\n")
	for _, b := range m.sim.Bodies() {
		dist := "anchor"
		if !b.Anchor {
			dist = fmt.Sprintf("%.3f AU", b.DistanceToAnchor()/physics.AU)
		}
		s.WriteString("  " + st.label.Render(b.Name) + st.orbit.Render(dist) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + st.failed.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + st.value.Render(m.status) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause R:Reset Q:Quit\n+/-:Zoom ↑↓:Speed T:Theme\nS:SVG G:GIF ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  +/-      - Zoom in/out (0 resets)   ║
║  Up/K     - Double steps per frame   ║
║  Down/J   - Halve steps per frame    ║
║  S        - Save SVG of the frame    ║
║  B        - Save SVG of the canvas   ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, s *sim.Simulator, opts Options) error {
	p := tea.NewProgram(NewModel(s, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
