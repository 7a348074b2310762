package viewport

import (
	"math"
	"testing"

	"github.com/san-kum/orbitsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestToScreen(t *testing.T) {
	v := Default()
	tests := []struct {
		name  string
		world r2.Vec
		want  r2.Vec
	}{
		{"origin", r2.Vec{}, r2.Vec{X: 400, Y: 400}},
		{"earth", r2.Vec{X: -physics.AU}, r2.Vec{X: 150, Y: 400}},
		{"below", r2.Vec{Y: 0.4 * physics.AU}, r2.Vec{X: 400, Y: 500}},
	}

	for _, tt := range tests {
		got := v.ToScreen(tt.world)
		if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
			t.Errorf("%s: ToScreen = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	v := New(1024, 600, 120)
	p := r2.Vec{X: 1.3 * physics.AU, Y: -0.2 * physics.AU}
	back := v.ToWorld(v.ToScreen(p))
	if r2.Norm(r2.Sub(back, p)) > 1e-6*physics.AU {
		t.Errorf("round trip = %v, want %v", back, p)
	}
}

func TestZoomAndFit(t *testing.T) {
	v := Default()
	if z := v.Zoom(2); math.Abs(z.PixelsPerAU()-500) > 1e-9 {
		t.Errorf("zoomed scale = %f px/AU", z.PixelsPerAU())
	}
	if z := v.Zoom(-1); z.Scale != v.Scale {
		t.Error("non-positive zoom should be ignored")
	}

	fit := v.Fit([]r2.Vec{{X: 5.2 * physics.AU}, {Y: -physics.AU}}, 20)
	s := fit.ToScreen(r2.Vec{X: 5.2 * physics.AU})
	if !fit.Contains(s) || math.Abs(s.X-780) > 1e-6 {
		t.Errorf("fitted point at %v", s)
	}
}

func TestPath(t *testing.T) {
	v := Default()
	path := v.Path([]r2.Vec{{}, {X: physics.AU}})
	if len(path) != 2 || math.Abs(path[1].X-650) > 1e-9 {
		t.Errorf("unexpected path %v", path)
	}
}
