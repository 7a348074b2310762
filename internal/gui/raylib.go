package gui

import (
	"context"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// RaylibApp owns the raylib window. Only one may exist per process.
type RaylibApp struct {
	scene *Scene
}

func NewRaylibApp(sc *Scene) *RaylibApp {
	return &RaylibApp{scene: sc}
}

func (a *RaylibApp) initWindow() {
	w, h := a.scene.Size()
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w), int32(h), "orbitsim: "+a.scene.Name())
	rl.SetTargetFPS(int32(a.scene.FPS()))
	rl.SetExitKey(0)
}

// Run blocks until the window is closed, q is pressed or ctx is done.
func (a *RaylibApp) Run(ctx context.Context) error {
	a.initWindow()
	defer rl.CloseWindow()

	for !rl.WindowShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if a.Update() {
			return a.scene.Err
		}
		a.Draw()
	}
	return a.scene.Err
}

// Update handles input and advances the scene. It reports whether the
// user asked to quit.
func (a *RaylibApp) Update() bool {
	sc := a.scene
	if rl.IsKeyPressed(rl.KeyQ) {
		return true
	}
	if rl.IsWindowResized() {
		sc.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		sc.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		sc.Reset()
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		sc.ZoomIn()
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		sc.ZoomOut()
	}
	if rl.IsKeyPressed(rl.KeyZero) {
		sc.ResetZoom()
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		if wheel > 0 {
			sc.ZoomIn()
		} else {
			sc.ZoomOut()
		}
	}
	if rl.IsKeyPressed(rl.KeyUp) {
		sc.Faster()
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		sc.Slower()
	}
	sc.Advance()
	return false
}

func vec2(p r2.Vec) rl.Vector2 {
	return rl.NewVector2(float32(p.X), float32(p.Y))
}

func vec2s(pts []r2.Vec) []rl.Vector2 {
	out := make([]rl.Vector2, len(pts))
	for i, p := range pts {
		out[i] = vec2(p)
	}
	return out
}

func (a *RaylibApp) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(ColBg)

	lines, discs := a.scene.Shapes()
	for _, l := range lines {
		rl.DrawLineStrip(vec2s(l.Points), l.Color)
	}
	for _, d := range discs {
		rl.DrawCircleV(vec2(d.Center), float32(d.Radius), d.Color)
	}
	a.drawHUD()
}

func (a *RaylibApp) drawHUD() {
	sc := a.scene
	for i, line := range sc.HUD() {
		col := ColText
		switch {
		case i == 0:
			col = ColSelect
		case sc.Err != nil && i == len(sc.HUD())-1:
			col = ColError
		}
		rl.DrawText(line, 20, int32(20+i*20), 16, col)
	}

	_, h := sc.Size()
	if pts := sc.TelemetryPath(20, float64(h-110), 300, 60); pts != nil {
		rl.DrawLineStrip(vec2s(pts), ColAccent)
	}
	rl.DrawText(helpLine, 20, int32(h-30), 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), int32(sc.view.Width-80), 20, 14, ColTextDim)
}
