package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/orient"
)

type recorder struct {
	entered int
	exited  int
	changes [][2]field.SourceID
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		EnteredZeroG: func() { r.entered++ },
		ExitedZeroG:  func() { r.exited++ },
		DominantChanged: func(prev, next field.SourceID) {
			r.changes = append(r.changes, [2]field.SourceID{prev, next})
		},
	}
}

func planet(name string, center mgl64.Vec3, strength, radius float64) *field.Source {
	return &field.Source{
		Name:            name,
		Center:          center,
		SurfaceStrength: strength,
		SurfaceRadius:   radius,
		MaxRange:        math.Inf(1),
	}
}

func mustState(t *testing.T, cfg Config) *State {
	t.Helper()
	st, err := NewState(cfg)
	if err != nil {
		t.Fatalf("state construction failed: %v", err)
	}
	return st
}

func TestStepSingleSource(t *testing.T) {
	reg := field.NewRegistry()
	id, _ := reg.Register(planet("planet", mgl64.Vec3{}, 9.8, 50))
	sv := New(reg, nil)
	st := mustState(t, DefaultConfig())

	sv.Step(st, mgl64.Vec3{100, 0, 0}, 0.05)

	if math.Abs(st.FieldMagnitude()-2.45) > 1e-12 {
		t.Errorf("magnitude: got %.6f, expected 2.45", st.FieldMagnitude())
	}
	if st.CurrentField()[0] >= 0 {
		t.Errorf("field should pull toward the planet, got %v", st.CurrentField())
	}
	if st.Dominant() != id {
		t.Errorf("dominant: got %d, expected %d", st.Dominant(), id)
	}
	if st.IsZeroG() {
		t.Error("2.45 is far above the threshold, entity must be weighted")
	}
	want := mgl64.Vec3{1, 0, 0}
	if st.TargetUp().Sub(want).Len() > 1e-12 {
		t.Errorf("target up should point away from the planet, got %v", st.TargetUp())
	}
}

func TestZeroGClampAndEdges(t *testing.T) {
	reg := field.NewRegistry()
	src := planet("faint", mgl64.Vec3{}, 9.8, 50)
	reg.Register(src)
	sv := New(reg, nil)
	st := mustState(t, DefaultConfig())

	var rec recorder
	st.Subscribe(rec.hooks())

	// 9.8*50^2/400^2 = 0.153, below the 0.25 threshold.
	p := mgl64.Vec3{400, 0, 0}
	sv.Step(st, p, 0.05)

	if !st.IsZeroG() {
		t.Fatal("entity should be weightless below the threshold")
	}
	if st.CurrentField() != (mgl64.Vec3{}) || st.FieldMagnitude() != 0 {
		t.Errorf("weightless field must clamp to exact zero, got %v", st.CurrentField())
	}
	if rec.entered != 1 {
		t.Errorf("entered_zero_g should fire once, fired %d times", rec.entered)
	}

	for i := 0; i < 5; i++ {
		sv.Step(st, p, 0.05)
	}
	if rec.entered != 1 || rec.exited != 0 {
		t.Errorf("staying weightless must not re-fire, entered=%d exited=%d", rec.entered, rec.exited)
	}

	// The registry holds a reference: the owner can retune the source.
	src.SurfaceStrength = 98
	sv.Step(st, p, 0.05)
	if st.IsZeroG() {
		t.Fatal("tenfold strength should restore weight")
	}
	if rec.exited != 1 {
		t.Errorf("exited_zero_g should fire once, fired %d times", rec.exited)
	}
	if math.Abs(st.FieldMagnitude()-1.53125) > 1e-12 {
		t.Errorf("restored magnitude: got %.6f, expected 1.53125", st.FieldMagnitude())
	}
}

func TestMidpointCancellation(t *testing.T) {
	reg := field.NewRegistry()
	a, _ := reg.Register(planet("a", mgl64.Vec3{0, 0, 0}, 9.8, 50))
	reg.Register(planet("b", mgl64.Vec3{300, 0, 0}, 9.8, 50))
	sv := New(reg, nil)
	st := mustState(t, DefaultConfig())

	var rec recorder
	st.Subscribe(rec.hooks())

	sv.Step(st, mgl64.Vec3{150, 0, 0}, 0.05)

	if !st.IsZeroG() {
		t.Error("exact cancellation must read as weightless")
	}
	if st.CurrentField() != (mgl64.Vec3{}) {
		t.Errorf("clamped field must be exactly zero, got %v", st.CurrentField())
	}
	if rec.entered != 1 {
		t.Errorf("entered_zero_g fired %d times, expected 1", rec.entered)
	}
	// Dominance keeps tracking the raw accumulation even while weightless.
	if st.Dominant() != a {
		t.Errorf("dominant at the tie should be the earlier id, got %d", st.Dominant())
	}
}

func TestDominantChangeFiresOnce(t *testing.T) {
	reg := field.NewRegistry()
	a, _ := reg.Register(planet("a", mgl64.Vec3{0, 0, 0}, 9.8, 50))
	b, _ := reg.Register(planet("b", mgl64.Vec3{300, 0, 0}, 9.8, 50))

	cfg := DefaultConfig()
	cfg.ZeroGThreshold = 0 // isolate dominance from the weightless machine
	sv := New(reg, nil)
	st := mustState(t, cfg)

	sv.Step(st, mgl64.Vec3{50, 0, 0}, 0.05)
	if st.Dominant() != a {
		t.Fatalf("probe starts in a's grip, got %d", st.Dominant())
	}

	var rec recorder
	st.Subscribe(rec.hooks())

	for x := 51.0; x <= 250; x++ {
		sv.Step(st, mgl64.Vec3{x, 0, 0}, 0.05)
	}

	if len(rec.changes) != 1 {
		t.Fatalf("dominant_source_changed fired %d times, expected exactly 1", len(rec.changes))
	}
	if rec.changes[0] != [2]field.SourceID{a, b} {
		t.Errorf("change payload: got %v, expected [%d %d]", rec.changes[0], a, b)
	}
	if st.Dominant() != b {
		t.Errorf("probe ends in b's grip, got %d", st.Dominant())
	}
}

func TestZeroGDeadBand(t *testing.T) {
	reg := field.NewRegistry()
	src := planet("dial", mgl64.Vec3{}, 0.8, 50)
	reg.Register(src)

	cfg := DefaultConfig()
	cfg.ZeroGExitFactor = 1.2 // exit at 0.30
	sv := New(reg, nil)
	st := mustState(t, cfg)

	var rec recorder
	st.Subscribe(rec.hooks())

	// At distance 100 the magnitude is strength/4.
	p := mgl64.Vec3{100, 0, 0}
	steps := []struct {
		strength string
		value    float64
		wantZero bool
	}{
		{"0.8 -> 0.20, enters", 0.8, true},
		{"1.12 -> 0.28, inside the band, stays weightless", 1.12, true},
		{"1.24 -> 0.31, exits", 1.24, false},
		{"1.04 -> 0.26, inside the band, stays weighted", 1.04, false},
		{"0.96 -> 0.24, enters again", 0.96, true},
	}
	for _, stp := range steps {
		src.SurfaceStrength = stp.value
		sv.Step(st, p, 0.05)
		if st.IsZeroG() != stp.wantZero {
			t.Errorf("%s: zeroG=%v", stp.strength, st.IsZeroG())
		}
	}
	if rec.entered != 2 || rec.exited != 1 {
		t.Errorf("dead-band run: entered=%d exited=%d, expected 2/1", rec.entered, rec.exited)
	}

	// Factor 1 has a single edge: 0.28 sits above the threshold and exits.
	st2 := mustState(t, DefaultConfig())
	src.SurfaceStrength = 0.8
	sv.Step(st2, p, 0.05)
	src.SurfaceStrength = 1.12
	sv.Step(st2, p, 0.05)
	if st2.IsZeroG() {
		t.Error("without a dead-band 0.28 must exit immediately")
	}
}

func TestTargetHoldsWhenWeightless(t *testing.T) {
	reg := field.NewRegistry()
	reg.Register(planet("faint", mgl64.Vec3{400, 0, 0}, 9.8, 50))
	sv := New(reg, nil)
	st := mustState(t, DefaultConfig())

	for i := 0; i < 10; i++ {
		sv.Step(st, mgl64.Vec3{}, 0.05)
	}

	if !st.IsZeroG() {
		t.Fatal("0.153 is below the threshold")
	}
	if st.Dominant() == field.NoSource {
		t.Error("dominance still tracks while weightless")
	}
	up := mgl64.Vec3{0, 1, 0}
	if st.TargetUp() != up || st.SmoothedUp() != up {
		t.Errorf("orientation must hold while weightless, target=%v smoothed=%v", st.TargetUp(), st.SmoothedUp())
	}
}

func TestTargetHoldsWithoutDominant(t *testing.T) {
	reg := field.NewRegistry()
	pull := planet("pull", mgl64.Vec3{100, 0, 0}, 9.8, 50)
	pull.Participation = field.ContributesOnly
	reg.Register(pull)
	sv := New(reg, nil)
	st := mustState(t, DefaultConfig())

	sv.Step(st, mgl64.Vec3{}, 0.05)

	if st.Dominant() != field.NoSource {
		t.Errorf("contributes_only must not dominate, got %d", st.Dominant())
	}
	if st.FieldMagnitude() == 0 {
		t.Error("the pull still accumulates into the net field")
	}
	if st.TargetUp() != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("target must hold without a dominant, got %v", st.TargetUp())
	}
}

func TestDominantOnlySteersWithoutPull(t *testing.T) {
	reg := field.NewRegistry()
	anchor := planet("anchor", mgl64.Vec3{0, -100, 0}, 100, 10)
	anchor.Participation = field.DominantOnly
	anchorID, _ := reg.Register(anchor)
	reg.Register(planet("tug", mgl64.Vec3{200, 0, 0}, 9.8, 50))

	sv := New(reg, nil)
	st := mustState(t, DefaultConfig())

	sv.Step(st, mgl64.Vec3{}, 0.05)

	// anchor: 100*100/100^2 = 1.0 beats tug: 9.8*2500/200^2 = 0.6125.
	if st.Dominant() != anchorID {
		t.Fatalf("anchor should dominate, got %d", st.Dominant())
	}
	if st.CurrentField()[1] != 0 {
		t.Errorf("dominant_only must not pull, field %v", st.CurrentField())
	}
	if st.TargetUp() != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("target should point away from the anchor, got %v", st.TargetUp())
	}
}

func TestBoundedRotationPerTick(t *testing.T) {
	reg := field.NewRegistry()
	reg.Register(planet("below", mgl64.Vec3{0, -100, 0}, 98, 50))

	cfg := DefaultConfig()
	cfg.InitialUp = mgl64.Vec3{1, 0, 0}
	cfg.BlendRate = mgl64.DegToRad(90)
	cfg.MaxRotationRate = mgl64.DegToRad(45)
	sv := New(reg, nil)
	st := mustState(t, cfg)

	dt := 0.1
	bound := cfg.MaxRotationRate*dt + 1e-9
	prev := st.SmoothedUp()
	for i := 0; i < 50; i++ {
		sv.Step(st, mgl64.Vec3{}, dt)
		step := orient.AngleBetween(prev, st.SmoothedUp())
		if step > bound {
			t.Fatalf("tick %d rotated %.6f rad, cap is %.6f", i, step, bound)
		}
		prev = st.SmoothedUp()
	}
	if st.SmoothedUp() != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("smoothed up should have settled on +y, got %v", st.SmoothedUp())
	}
}

func TestStepOverSnapshotMatchesLive(t *testing.T) {
	reg := field.NewRegistry()
	reg.Register(planet("a", mgl64.Vec3{0, 0, 0}, 9.8, 50))
	reg.Register(planet("b", mgl64.Vec3{300, 0, 0}, 4.9, 25))

	p := mgl64.Vec3{120, 30, -10}
	live := mustState(t, DefaultConfig())
	snap := mustState(t, DefaultConfig())

	New(reg, nil).Step(live, p, 0.05)
	New(field.Views(reg.Snapshot(nil)), nil).Step(snap, p, 0.05)

	if live.CurrentField() != snap.CurrentField() {
		t.Errorf("snapshot solve diverged: %v vs %v", live.CurrentField(), snap.CurrentField())
	}
	if live.Dominant() != snap.Dominant() {
		t.Errorf("snapshot dominant diverged: %d vs %d", live.Dominant(), snap.Dominant())
	}
}

func TestZonesClampThroughSolver(t *testing.T) {
	reg := field.NewRegistry()
	reg.Register(planet("planet", mgl64.Vec3{}, 98, 50))
	zones := []field.Zone{{Name: "dock", Center: mgl64.Vec3{200, 0, 0}, Radius: 50, ForcedZero: true}}

	sv := New(reg, zones)
	st := mustState(t, DefaultConfig())
	var rec recorder
	st.Subscribe(rec.hooks())

	// 98*2500/200^2 = 6.125 outside the zone, zeroed inside it.
	sv.Step(st, mgl64.Vec3{200, 0, 0}, 0.05)

	if !st.IsZeroG() {
		t.Error("a hard zone should force weightlessness")
	}
	if rec.entered != 1 {
		t.Errorf("zone entry should fire entered_zero_g once, got %d", rec.entered)
	}
	if st.Dominant() == field.NoSource {
		t.Error("zones must not strip dominance")
	}
}

func TestNewStateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"negative threshold", func(c *Config) { c.ZeroGThreshold = -0.1 }, ErrThreshold},
		{"nan threshold", func(c *Config) { c.ZeroGThreshold = math.NaN() }, ErrThreshold},
		{"exit factor below 1", func(c *Config) { c.ZeroGExitFactor = 0.9 }, ErrExitFactor},
		{"negative blend rate", func(c *Config) { c.BlendRate = -1 }, ErrBlendRate},
		{"negative max rate", func(c *Config) { c.MaxRotationRate = -1 }, ErrMaxRate},
		{"zero up", func(c *Config) { c.InitialUp = mgl64.Vec3{} }, ErrInitialUp},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(&cfg)
		if _, err := NewState(cfg); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestSubscribeMultipleHooks(t *testing.T) {
	reg := field.NewRegistry()
	reg.Register(planet("faint", mgl64.Vec3{400, 0, 0}, 9.8, 50))
	sv := New(reg, nil)
	st := mustState(t, DefaultConfig())

	var first, second recorder
	st.Subscribe(first.hooks())
	st.Subscribe(second.hooks())

	sv.Step(st, mgl64.Vec3{}, 0.05)

	if first.entered != 1 || second.entered != 1 {
		t.Errorf("every subscriber fires, got %d and %d", first.entered, second.entered)
	}
}
