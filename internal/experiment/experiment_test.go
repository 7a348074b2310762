package experiment

import (
	"context"
	"testing"

	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if _, err := r.GetPreset("inner"); err != nil {
		t.Errorf("inner preset: %v", err)
	}
	if _, err := r.GetPreset("pluto"); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := r.GetIntegrator("euler"); err != nil {
		t.Errorf("euler: %v", err)
	}
	if _, err := r.GetIntegrator("rk9"); err == nil {
		t.Error("expected error for unknown integrator")
	}

	cfg, _ := r.GetPreset("earth")
	if _, err := r.GetMetric("bounded", cfg); err != nil {
		t.Errorf("bounded: %v", err)
	}
	if _, err := r.GetMetric("lyapunov", cfg); err == nil {
		t.Error("expected error for unknown metric")
	}
	if got := len(r.DefaultMetrics(cfg)); got != len(r.ListMetrics()) {
		t.Errorf("DefaultMetrics returned %d metrics", got)
	}
	if len(r.ListOrderings()) != 2 || len(r.ListSolvers()) != 2 {
		t.Error("unexpected ordering or solver count")
	}
}

func TestBoundRadius(t *testing.T) {
	r := NewRegistry()
	cfg, _ := r.GetPreset("earth")
	if got, want := boundRadius(cfg), boundFactor*physics.AU; got != want {
		t.Errorf("bound radius = %e, want %e", got, want)
	}
}

func TestExperiment_RunRecords(t *testing.T) {
	r := NewRegistry()
	cfg, _ := r.GetPreset("earth")
	exp := New(Config{System: cfg, Steps: 30, Stride: 10})
	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("run before setup should fail")
	}
	if err := exp.Setup(r.DefaultMetrics(cfg)); err != nil {
		t.Fatal(err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 30 {
		t.Errorf("expected 30 steps, got %d", result.StepsTaken)
	}
	if result.Metrics["bounded"] != 1 {
		t.Errorf("earth should stay bounded, got %f", result.Metrics["bounded"])
	}
	// steps 0, 10, 20, 30 for two bodies
	if got := len(exp.Samples()); got != 8 {
		t.Errorf("expected 8 samples, got %d", got)
	}

	meta := exp.Metadata(result, nil)
	if meta.System != "earth" || meta.Steps != 30 || meta.Stride != 10 || len(meta.Bodies) != 2 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if !meta.Bodies[0].Anchor || meta.Error != "" {
		t.Errorf("unexpected body metadata: %+v", meta.Bodies[0])
	}
}

func TestAnchor(t *testing.T) {
	cfg, _ := NewRegistry().GetPreset("binary")
	cfg.Bodies[0].Anchor = false
	cfg.Bodies[1].Anchor = false
	cfg.Bodies[2].Anchor = false
	if Anchor(cfg) != "" {
		t.Error("expected no anchor")
	}
	inner, _ := NewRegistry().GetPreset("inner")
	if Anchor(inner) != "sun" {
		t.Errorf("inner anchor = %q", Anchor(inner))
	}
}

func TestMatrix(t *testing.T) {
	m := Matrix([]sim.Ordering{sim.OrderingSnapshot, sim.OrderingSequential}, integrators.Names())
	if len(m) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(m))
	}
	if m[0].String() != "snapshot/euler" {
		t.Errorf("first variant = %s", m[0])
	}
}

func TestCompare(t *testing.T) {
	cfg, _ := NewRegistry().GetPreset("earth")
	variants := Matrix([]sim.Ordering{sim.OrderingSnapshot, sim.OrderingSequential}, integrators.Names())

	results, err := Compare(context.Background(), cfg, 365, variants, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(variants) {
		t.Fatalf("expected %d results, got %d", len(variants), len(results))
	}

	byName := map[string]CompareResult{}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s failed: %v", r.Variant, r.Err)
		}
		if r.StepsTaken != 365 {
			t.Errorf("%s took %d steps", r.Variant, r.StepsTaken)
		}
		byName[r.Variant.String()] = r
	}

	snap := byName["snapshot/symplectic"]
	if snap.MomentumDrift > 1e-6 {
		t.Errorf("snapshot ordering should conserve momentum, drift %e", snap.MomentumDrift)
	}
	if snap.EnergyDrift > 0.01 {
		t.Errorf("symplectic energy drift too large: %e", snap.EnergyDrift)
	}
	if byName["snapshot/euler"].EnergyDrift <= snap.EnergyDrift {
		t.Error("euler should drift more than symplectic")
	}
	if snap.ClosureError > 0.05 {
		t.Errorf("symplectic orbit should nearly close, error %f", snap.ClosureError)
	}

	if cfg.Physics.Ordering != string(sim.OrderingSnapshot) {
		t.Error("Compare must not modify the base config")
	}
}

func TestCompare_Cancelled(t *testing.T) {
	cfg, _ := NewRegistry().GetPreset("earth")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Compare(ctx, cfg, 100, Matrix([]sim.Ordering{sim.OrderingSnapshot}, []string{"symplectic"}), nil); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestBench(t *testing.T) {
	cfg, _ := NewRegistry().GetPreset("inner")
	results, err := Bench(context.Background(), cfg, 20, []BenchVariant{
		{Solver: sim.SolverDirect, Workers: 1},
		{Solver: sim.SolverDirect, Workers: 4},
		{Solver: sim.SolverBarnesHut, Workers: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil || r.Steps != 20 {
			t.Errorf("%+v: steps=%d err=%v", r.Variant, r.Steps, r.Err)
		}
	}
}
