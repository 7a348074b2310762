package gui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// EbitenGame implements ebiten.Game over a Scene.
type EbitenGame struct {
	scene *Scene
}

func NewEbitenGame(sc *Scene) *EbitenGame {
	return &EbitenGame{scene: sc}
}

// Update is called every tick; returning ebiten.Termination ends RunGame.
func (g *EbitenGame) Update() error {
	sc := g.scene
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		sc.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		sc.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		sc.ZoomIn()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		sc.ZoomOut()
	}
	if inpututil.IsKeyJustPressed(ebiten.Key0) {
		sc.ResetZoom()
	}
	if _, wy := ebiten.Wheel(); wy > 0 {
		sc.ZoomIn()
	} else if wy < 0 {
		sc.ZoomOut()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		sc.Faster()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		sc.Slower()
	}
	sc.Advance()
	return nil
}

func (g *EbitenGame) Draw(screen *ebiten.Image) {
	sc := g.scene
	screen.Fill(ColBg)

	lines, discs := sc.Shapes()
	for _, l := range lines {
		for i := 1; i < len(l.Points); i++ {
			a, b := l.Points[i-1], l.Points[i]
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, l.Color, true)
		}
	}
	for _, d := range discs {
		vector.DrawFilledCircle(screen, float32(d.Center.X), float32(d.Center.Y), float32(d.Radius), d.Color, true)
	}

	_, h := sc.Size()
	pts := sc.TelemetryPath(20, float64(h-110), 300, 60)
	for i := 1; i < len(pts); i++ {
		vector.StrokeLine(screen, float32(pts[i-1].X), float32(pts[i-1].Y), float32(pts[i].X), float32(pts[i].Y), 1, ColAccent, true)
	}

	hud := strings.Join(sc.HUD(), "\n")
	hud += fmt.Sprintf("\n%.0f TPS", ebiten.ActualTPS())
	ebitenutil.DebugPrint(screen, hud)
	ebitenutil.DebugPrintAt(screen, helpLine, 20, h-30)
}

// Layout keeps the logical screen equal to the window so the viewport
// tracks resizes.
func (g *EbitenGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if w, h := g.scene.Size(); w != outsideWidth || h != outsideHeight {
		g.scene.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed or q is pressed.
func (g *EbitenGame) Run() error {
	w, h := g.scene.Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("orbitsim: " + g.scene.Name())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(g.scene.FPS())
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return g.scene.Err
}
