package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/field"
)

// Config drives a fixed-timestep run.
type Config struct {
	Dt       float64
	Duration float64
	Parallel bool
	Record   bool
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.02,
		Duration: 30.0,
		Record:   true,
	}
}

// EntityTick is one entity's recorded state after a tick.
type EntityTick struct {
	Pos      mgl64.Vec3
	Field    mgl64.Vec3
	Mag      float64
	Dominant field.SourceID
	ZeroG    bool
	Up       mgl64.Vec3
}

// Result collects a run: per-tick entity records, the transition log and
// final metric values.
type Result struct {
	Times      []float64
	Ticks      [][]EntityTick
	Events     []Event
	Metrics    map[string]float64
	StepsTaken int
}

func (sc *Scene) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

func (sc *Scene) record(result *Result) {
	row := make([]EntityTick, len(sc.Entities))
	for i, e := range sc.Entities {
		row[i] = EntityTick{
			Pos:      e.Pos,
			Field:    e.State.CurrentField(),
			Mag:      e.State.FieldMagnitude(),
			Dominant: e.State.Dominant(),
			ZeroG:    e.State.IsZeroG(),
			Up:       e.State.SmoothedUp(),
		}
	}
	result.Times = append(result.Times, sc.t)
	result.Ticks = append(result.Ticks, row)
}

// Run steps the scene for cfg.Duration and returns the collected result.
// The context cancels between ticks; a canceled run returns what it
// gathered alongside the context error.
func (sc *Scene) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := sc.validateConfig(cfg); err != nil {
		return nil, err
	}

	// Rounding keeps durations that are exact multiples of dt from
	// losing a step to binary representation (20/0.02 is not 1000 in
	// float64 arithmetic).
	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Metrics: make(map[string]float64),
	}
	if cfg.Record {
		result.Times = make([]float64, 0, steps+1)
		result.Ticks = make([][]EntityTick, 0, steps+1)
	}

	for _, m := range sc.metrics {
		m.Reset()
	}
	sc.parallel = cfg.Parallel

	if cfg.Record {
		sc.record(result)
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.Events = append(result.Events, sc.events...)
			return result, ctx.Err()
		default:
		}

		sc.Step(cfg.Dt)
		result.StepsTaken++

		if cfg.Record {
			sc.record(result)
		}
	}

	for _, m := range sc.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Events = append(result.Events, sc.events...)

	return result, nil
}

// RunWithCallback steps until the callback returns false or the duration
// elapses, recording nothing. Drivers that render every tick use this.
func (sc *Scene) RunWithCallback(ctx context.Context, cfg Config, callback func(sc *Scene, t float64) bool) error {
	if err := sc.validateConfig(cfg); err != nil {
		return err
	}
	sc.parallel = cfg.Parallel

	for sc.t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		sc.Step(cfg.Dt)
		if !callback(sc, sc.t) {
			return nil
		}
	}
	return nil
}
