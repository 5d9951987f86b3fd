package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/sim"
)

func sampleRun() ([]string, sim.Config, *sim.Result) {
	entities := []string{"probe"}
	cfg := sim.Config{Dt: 0.02, Duration: 0.04, Record: true}
	result := &sim.Result{
		Times: []float64{0, 0.02, 0.04},
		Ticks: [][]sim.EntityTick{
			{{Pos: mgl64.Vec3{100, 0, 0}, Field: mgl64.Vec3{-2.45, 0, 0}, Mag: 2.45, Dominant: 1, Up: mgl64.Vec3{0, 1, 0}}},
			{{Pos: mgl64.Vec3{100.5, 0, 0}, Field: mgl64.Vec3{-2.4, 0, 0}, Mag: 2.4, Dominant: 1, Up: mgl64.Vec3{0, 1, 0}}},
			{{Pos: mgl64.Vec3{101, 0, 0}, Mag: 0, Dominant: 1, ZeroG: true, Up: mgl64.Vec3{0, 1, 0}}},
		},
		Events: []sim.Event{
			{T: 0.02, Entity: "probe", Kind: sim.EventDominantChanged, Prev: 0, Next: 1},
			{T: 0.04, Entity: "probe", Kind: sim.EventEnteredZeroG},
		},
		Metrics:    map[string]float64{"zero_g_fraction": 1.0 / 3.0},
		StepsTaken: 2,
	}
	return entities, cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	entities, cfg, result := sampleRun()
	runID, err := st.Save("binary", entities, cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scene != "binary" {
		t.Errorf("expected scene 'binary', got %q", meta.Scene)
	}
	if meta.Steps != 2 || meta.Events != 2 {
		t.Errorf("expected 2 steps and 2 events, got %d and %d", meta.Steps, meta.Events)
	}
	if got := meta.Metrics["zero_g_fraction"]; math.Abs(got-1.0/3.0) > 1e-12 {
		t.Errorf("expected metric 1/3, got %f", got)
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		t.Fatalf("load ticks failed: %v", err)
	}
	if len(ticks) != 3 {
		t.Fatalf("expected 3 tick rows, got %d", len(ticks))
	}
	if ticks[0].Entity != "probe" {
		t.Errorf("expected entity 'probe', got %q", ticks[0].Entity)
	}
	if math.Abs(ticks[1].State.Pos[0]-100.5) > 1e-5 {
		t.Errorf("expected x=100.5, got %f", ticks[1].State.Pos[0])
	}
	if ticks[2].State.Dominant != 1 || !ticks[2].State.ZeroG {
		t.Error("dominant id and zero-g flag did not survive the round trip")
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		t.Fatalf("load events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != sim.EventDominantChanged || events[0].Next != 1 {
		t.Errorf("unexpected first event: %+v", events[0])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	entities, cfg, result := sampleRun()
	if _, err := st.Save("binary", entities, cfg, result); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreSaveTwiceKeepsBoth(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	entities, cfg, result := sampleRun()
	first, err := st.Save("binary", entities, cfg, result)
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	second, err := st.Save("binary", entities, cfg, result)
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if first == second {
		t.Fatalf("second save reused run id %s", first)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected both runs kept, got %d", len(runs))
	}
}

func TestStoreListMissingBaseDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty list, got %d runs", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	entities, cfg, result := sampleRun()
	runID, err := st.Save("binary", entities, cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "ticks.csv", "events.csv"} {
		path := filepath.Join(tmpDir, runID, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportCSV(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	entities, cfg, result := sampleRun()
	runID, err := st.Save("binary", entities, cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportCSV(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "time,entity,px") {
		t.Errorf("unexpected header: %s", lines[0])
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	entities, cfg, result := sampleRun()
	runID, err := st.Save("binary", entities, cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if data.Meta.Scene != "binary" || len(data.Ticks) != 3 || len(data.Events) != 2 {
		t.Errorf("unexpected export shape: scene=%q ticks=%d events=%d",
			data.Meta.Scene, len(data.Ticks), len(data.Events))
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	rec, err := OpenRecorder(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer rec.Close()

	entities, _, result := sampleRun()
	if err := rec.WriteRun("binary_1", entities, result); err != nil {
		t.Fatalf("write run: %v", err)
	}

	rows, err := rec.ReadRun("binary_1")
	if err != nil {
		t.Fatalf("read run: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].T != 0 || rows[2].T != 0.04 {
		t.Errorf("rows out of order: %f, %f", rows[0].T, rows[2].T)
	}
	if rows[1].State.Pos[0] != 100.5 {
		t.Errorf("expected exact x=100.5, got %v", rows[1].State.Pos[0])
	}
	if !rows[2].State.ZeroG || rows[2].State.Dominant != 1 {
		t.Error("flags did not survive the sqlite round trip")
	}

	if other, err := rec.ReadRun("missing"); err != nil || len(other) != 0 {
		t.Errorf("expected empty result for unknown run, got %d rows, err %v", len(other), err)
	}
}
