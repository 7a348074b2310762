package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

var _ sim.Observer = (*Recorder)(nil)

func testSamples() []Sample {
	return []Sample{
		{Step: 0, Time: 0, Body: "sun", X: 0, Y: 0},
		{Step: 0, Time: 0, Body: "earth", X: -1.496e11, VY: 29783},
		{Step: 1, Time: 86400, Body: "sun", X: 12.5, Y: 0.25},
		{Step: 1, Time: 86400, Body: "earth", X: -1.4959e11, Y: 2.57e9, VX: -510.25, VY: 29780, DistanceToAnchor: 1.496e11},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		System:     "earth",
		Dt:         86400,
		G:          physics.G,
		Steps:      1,
		Stride:     1,
		Ordering:   "snapshot",
		Integrator: "symplectic",
		Solver:     "direct",
		Bodies:     []BodyMeta{{Name: "sun", Anchor: true}, {Name: "earth"}},
		Metrics:    map[string]float64{"energy_drift": 1.5e-6},
	}

	runID, err := st.Save(meta, testSamples())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "earth_") {
		t.Errorf("unexpected run id %q", runID)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ID != runID || loaded.System != "earth" || loaded.Integrator != "symplectic" {
		t.Errorf("unexpected metadata: %+v", loaded)
	}
	if loaded.Metrics["energy_drift"] != 1.5e-6 {
		t.Errorf("expected energy drift 1.5e-6, got %g", loaded.Metrics["energy_drift"])
	}
	if len(loaded.Bodies) != 2 || !loaded.Bodies[0].Anchor {
		t.Errorf("bodies lost: %+v", loaded.Bodies)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	want := testSamples()
	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d = %+v, want %+v", i, samples[i], want[i])
		}
	}
}

func TestStoreSave_UniqueIDs(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nested", "data"))
	ts := time.Unix(1700000000, 0)

	id1, err := st.Save(RunMetadata{System: "inner", Timestamp: ts}, nil)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := st.Save(RunMetadata{System: "inner", Timestamp: ts}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 {
		t.Errorf("run ids collide: %s", id1)
	}
	if id1 != "inner_1700000000" || id2 != "inner_1700000000-2" {
		t.Errorf("unexpected ids %s, %s", id1, id2)
	}
}

func TestStoreSave_FailedWriteLeavesNoRun(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	meta := RunMetadata{
		System:    "inner",
		Timestamp: time.Unix(1700000000, 0),
		Metrics:   map[string]float64{"energy_drift": math.NaN()},
	}

	if _, err := st.Save(meta, nil); err == nil {
		t.Fatal("expected an error encoding a NaN metric")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed save left %d entries behind", len(entries))
	}
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs after a failed save, got %d", len(runs))
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(RunMetadata{System: "b", Timestamp: time.Unix(200, 0)}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(RunMetadata{System: "a", Timestamp: time.Unix(100, 0)}, nil); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].System != "a" || runs[1].System != "b" {
		t.Errorf("runs not ordered by time: %s, %s", runs[0].System, runs[1].System)
	}
}

func TestStoreLoad_NotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadSamples("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRecorderWithSimulator(t *testing.T) {
	sun, _ := physics.NewBody(physics.Params{Name: "sun", Mass: physics.SunMass, Anchor: true})
	earth, _ := physics.NewBody(physics.Params{Name: "earth", Mass: 5.9742e24,
		Position: r2.Vec{X: -physics.AU}, Velocity: r2.Vec{Y: 29783}})

	s, err := sim.New([]*physics.Body{sun, earth}, sim.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecorder(5)
	s.AddObserver(rec)

	if _, err := s.Run(context.Background(), 20); err != nil {
		t.Fatal(err)
	}

	// steps 0, 5, 10, 15, 20 for two bodies
	samples := rec.Samples()
	if len(samples) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(samples))
	}
	groups, order := ByBody(samples)
	if len(order) != 2 || order[0] != "sun" || order[1] != "earth" {
		t.Errorf("unexpected body order %v", order)
	}
	last := groups["earth"][4]
	if last.Step != 20 || last.Time != 20*physics.Day || last.X != earth.Position.X {
		t.Errorf("unexpected last sample %+v", last)
	}
	if last.DistanceToAnchor == 0 {
		t.Error("distance to anchor not recorded")
	}

	rec.Reset()
	if len(rec.Samples()) != 0 {
		t.Error("reset should clear samples")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{ID: "earth_1", System: "earth"}
	if err := ExportJSON(&buf, meta, testSamples()); err != nil {
		t.Fatal(err)
	}

	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Run.ID != "earth_1" || len(decoded.Samples) != 4 {
		t.Errorf("unexpected export: %+v", decoded)
	}
	if decoded.Samples[3].DistanceToAnchor != 1.496e11 {
		t.Errorf("sample fields lost: %+v", decoded.Samples[3])
	}
}

func TestExportFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "run.json")
	csvPath := filepath.Join(dir, "run.csv")

	if err := ExportJSONFile(jsonPath, RunMetadata{ID: "x"}, testSamples()); err != nil {
		t.Fatal(err)
	}
	if err := ExportCSVFile(csvPath, testSamples()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "step,time,body,x,y,vx,vy,distance_to_anchor" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if len(lines) != 5 {
		t.Errorf("expected 5 lines, got %d", len(lines))
	}
	if _, err := os.Stat(jsonPath); err != nil {
		t.Errorf("json export missing: %v", err)
	}
}

func TestReadCSV_Malformed(t *testing.T) {
	in := "step,time,body,x,y,vx,vy,distance_to_anchor\nnope,0,sun,0,0,0,0,0\n"
	if _, err := ReadCSV(strings.NewReader(in)); err == nil {
		t.Error("expected error for malformed step")
	}
}
