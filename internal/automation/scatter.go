package automation

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/config"
	"github.com/san-kum/gravfield/internal/metrics"
	"github.com/san-kum/gravfield/internal/sim"
)

// Scatter reruns a scene with every entity start nudged by a random
// per-axis offset of at most Jitter, mapping how sensitive the outcome
// is to placement. A zero Seed draws from the clock.
type Scatter struct {
	Scene    string
	Jitter   float64
	Trials   int
	Seed     int64
	Duration float64
	Dt       float64
}

// ScatterTrial is one perturbed run. EndZeroG reports whether every
// entity was weightless when the run ended.
type ScatterTrial struct {
	Trial     int
	Starts    []mgl64.Vec3
	EndZeroG  bool
	ZeroGFrac float64
	Switches  float64
}

// RunScatter executes the trials and reports each outcome.
func RunScatter(ctx context.Context, sct *Scatter, w io.Writer) ([]ScatterTrial, error) {
	if sct.Trials < 1 {
		return nil, fmt.Errorf("scatter needs at least 1 trial, got %d", sct.Trials)
	}
	if sct.Jitter < 0 {
		return nil, fmt.Errorf("jitter must not be negative, got %f", sct.Jitter)
	}

	base, err := config.Resolve(sct.Scene)
	if err != nil {
		return nil, err
	}

	seed := sct.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	trials := make([]ScatterTrial, 0, sct.Trials)

	for trial := 0; trial < sct.Trials; trial++ {
		cfg := base.Clone()
		starts := make([]mgl64.Vec3, len(cfg.Entities))
		for i := range cfg.Entities {
			for j := 0; j < 3; j++ {
				cfg.Entities[i].Pos[j] += (rng.Float64() - 0.5) * 2 * sct.Jitter
			}
			starts[i] = cfg.Entities[i].Pos.Vec3()
		}

		sc, err := sim.FromConfig(cfg)
		if err != nil {
			return trials, fmt.Errorf("trial %d: %w", trial+1, err)
		}
		zg := metrics.NewZeroGFraction()
		ds := metrics.NewDominantSwitches()
		sc.AddMetric(zg)
		sc.AddMetric(ds)

		runCfg := sim.RunConfig(cfg)
		runCfg.Record = false
		if sct.Duration > 0 {
			runCfg.Duration = sct.Duration
		}
		if sct.Dt > 0 {
			runCfg.Dt = sct.Dt
		}

		if _, err := sc.Run(ctx, runCfg); err != nil {
			return trials, fmt.Errorf("trial %d: %w", trial+1, err)
		}

		endZeroG := true
		for _, e := range sc.Entities {
			if !e.State.IsZeroG() {
				endZeroG = false
				break
			}
		}

		trials = append(trials, ScatterTrial{
			Trial:     trial,
			Starts:    starts,
			EndZeroG:  endZeroG,
			ZeroGFrac: zg.Value(),
			Switches:  ds.Value(),
		})

		fmt.Fprintf(w, "trial %d/%d: zero_g=%.3f end_weightless=%v\n",
			trial+1, sct.Trials, zg.Value(), endZeroG)
	}

	return trials, nil
}

// ScatterStats counts how many trials ended fully weightless.
func ScatterStats(trials []ScatterTrial) (weightless, weighted int) {
	for _, t := range trials {
		if t.EndZeroG {
			weightless++
		} else {
			weighted++
		}
	}
	return
}
