// Package viewport maps world coordinates in metres to screen pixels.
//
// The transform is a uniform scale followed by a translation that puts the
// world origin at the centre of the surface. Screen y grows downwards and
// world y is not flipped, so a body with positive world y is drawn below
// the centre.
package viewport

import (
	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultWidth       = 800
	DefaultHeight      = 800
	DefaultPixelsPerAU = 250.0
)

type Viewport struct {
	Width  int
	Height int
	// Scale is in pixels per metre.
	Scale float64
}

func New(width, height int, pixelsPerAU float64) Viewport {
	return Viewport{Width: width, Height: height, Scale: pixelsPerAU / physics.AU}
}

func Default() Viewport {
	return New(DefaultWidth, DefaultHeight, DefaultPixelsPerAU)
}

func (v Viewport) Center() r2.Vec {
	return r2.Vec{X: float64(v.Width) / 2, Y: float64(v.Height) / 2}
}

func (v Viewport) ToScreen(p r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(v.Scale, p), v.Center())
}

func (v Viewport) ToWorld(s r2.Vec) r2.Vec {
	return r2.Scale(1/v.Scale, r2.Sub(s, v.Center()))
}

// Path converts a trail to screen space.
func (v Viewport) Path(points []r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(points))
	for i, p := range points {
		out[i] = v.ToScreen(p)
	}
	return out
}

func (v Viewport) Contains(s r2.Vec) bool {
	return s.X >= 0 && s.Y >= 0 && s.X < float64(v.Width) && s.Y < float64(v.Height)
}

func (v Viewport) Zoom(factor float64) Viewport {
	if factor > 0 {
		v.Scale *= factor
	}
	return v
}

func (v Viewport) Resize(width, height int) Viewport {
	v.Width, v.Height = width, height
	return v
}

func (v Viewport) PixelsPerAU() float64 {
	return v.Scale * physics.AU
}

// Fit returns a viewport whose scale keeps every point inside the surface
// with the given pixel margin.
func (v Viewport) Fit(points []r2.Vec, margin float64) Viewport {
	var extent float64
	for _, p := range points {
		extent = max(extent, abs(p.X), abs(p.Y))
	}
	half := min(float64(v.Width), float64(v.Height))/2 - margin
	if extent == 0 || half <= 0 {
		return v
	}
	v.Scale = half / extent
	return v
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
