package solver

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/field"
)

// Config holds one entity's thresholds and rates. Angular rates are
// radians per second.
type Config struct {
	// ZeroGThreshold clamps the field to weightless below this magnitude.
	ZeroGThreshold float64
	// ZeroGExitFactor places the exit edge at threshold*factor. 1 keeps a
	// single edge; larger values open a dead-band against flicker.
	ZeroGExitFactor float64
	// BlendRate turns the smoothed up toward the target.
	BlendRate float64
	// MaxRotationRate caps the turn regardless of BlendRate. 0 means no cap.
	MaxRotationRate float64
	// InitialUp seeds both the smoothed and the target up.
	InitialUp mgl64.Vec3
}

func DefaultConfig() Config {
	return Config{
		ZeroGThreshold:  0.25,
		ZeroGExitFactor: 1.0,
		BlendRate:       mgl64.DegToRad(90),
		MaxRotationRate: mgl64.DegToRad(180),
		InitialUp:       mgl64.Vec3{0, 1, 0},
	}
}

// Hooks receives edge-triggered transitions at the end of a tick. Nil
// fields are skipped.
type Hooks struct {
	EnteredZeroG    func()
	ExitedZeroG     func()
	DominantChanged func(prev, next field.SourceID)
}

// State is one entity's solved gravity record. The solver tick is its only
// writer; consumers read through the accessors between ticks.
type State struct {
	cfg        Config
	fieldVec   mgl64.Vec3
	fieldMag   float64
	dominant   field.SourceID
	zeroG      bool
	targetUp   mgl64.Vec3
	smoothedUp mgl64.Vec3
	hooks      []Hooks
}

// NewState validates cfg and seeds the orientation from InitialUp.
func NewState(cfg Config) (*State, error) {
	if cfg.ZeroGThreshold < 0 || math.IsNaN(cfg.ZeroGThreshold) {
		return nil, ErrThreshold
	}
	if cfg.ZeroGExitFactor < 1 || math.IsNaN(cfg.ZeroGExitFactor) {
		return nil, ErrExitFactor
	}
	if cfg.BlendRate < 0 || math.IsNaN(cfg.BlendRate) {
		return nil, ErrBlendRate
	}
	if cfg.MaxRotationRate < 0 || math.IsNaN(cfg.MaxRotationRate) {
		return nil, ErrMaxRate
	}
	l := cfg.InitialUp.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return nil, ErrInitialUp
	}
	up := cfg.InitialUp.Mul(1 / l)
	return &State{cfg: cfg, targetUp: up, smoothedUp: up}, nil
}

// Subscribe adds transition hooks. Hooks fire synchronously inside the
// tick that causes the transition, in subscription order.
func (s *State) Subscribe(h Hooks) { s.hooks = append(s.hooks, h) }

// CurrentField is the zone-adjusted net field, exactly zero while
// weightless.
func (s *State) CurrentField() mgl64.Vec3 { return s.fieldVec }

// FieldMagnitude is the length of CurrentField.
func (s *State) FieldMagnitude() float64 { return s.fieldMag }

// Dominant is the source steering orientation, NoSource when none is in
// range.
func (s *State) Dominant() field.SourceID { return s.dominant }

// IsZeroG reports the weightless clamp.
func (s *State) IsZeroG() bool { return s.zeroG }

// TargetUp is the orientation goal, held while weightless or dominant-less.
func (s *State) TargetUp() mgl64.Vec3 { return s.targetUp }

// SmoothedUp is the rate-limited up vector consumers orient by.
func (s *State) SmoothedUp() mgl64.Vec3 { return s.smoothedUp }

// Config returns the immutable per-entity configuration.
func (s *State) Config() Config { return s.cfg }

func (s *State) fireDominant(prev, next field.SourceID) {
	for _, h := range s.hooks {
		if h.DominantChanged != nil {
			h.DominantChanged(prev, next)
		}
	}
}

func (s *State) fireZeroG(entered bool) {
	for _, h := range s.hooks {
		if entered && h.EnteredZeroG != nil {
			h.EnteredZeroG()
		}
		if !entered && h.ExitedZeroG != nil {
			h.ExitedZeroG()
		}
	}
}
