package automation

import (
	"context"
	"fmt"
	"io"

	"github.com/san-kum/gravfield/internal/config"
	"github.com/san-kum/gravfield/internal/metrics"
	"github.com/san-kum/gravfield/internal/sim"
)

// Sweep varies one source's surface strength across [Min, Max] in Points
// evenly spaced runs, measuring how the weightless share and dominance
// churn respond. Zero Duration and Dt fall back to the scene's values.
type Sweep struct {
	Scene    string
	Source   string
	Min      float64
	Max      float64
	Points   int
	Duration float64
	Dt       float64
}

// SweepPoint is the outcome at one strength value.
type SweepPoint struct {
	Strength      float64
	ZeroGFraction float64
	Switches      float64
	MeanField     float64
}

// RunSweep runs the scene once per strength value. Nothing is persisted.
func RunSweep(ctx context.Context, sw *Sweep, w io.Writer) ([]SweepPoint, error) {
	if sw.Points < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 points, got %d", sw.Points)
	}

	base, err := config.Resolve(sw.Scene)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range base.Sources {
		if base.Sources[i].Name == sw.Source {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("scene %q has no source %q", base.Name, sw.Source)
	}

	points := make([]SweepPoint, 0, sw.Points)
	stride := (sw.Max - sw.Min) / float64(sw.Points-1)

	for i := 0; i < sw.Points; i++ {
		v := sw.Min + float64(i)*stride

		cfg := base.Clone()
		cfg.Sources[idx].Strength = v

		sc, err := sim.FromConfig(cfg)
		if err != nil {
			return points, fmt.Errorf("point %d: %w", i+1, err)
		}
		zg := metrics.NewZeroGFraction()
		ds := metrics.NewDominantSwitches()
		fs := metrics.NewFieldStats()
		sc.AddMetric(zg)
		sc.AddMetric(ds)
		sc.AddMetric(fs)

		runCfg := sim.RunConfig(cfg)
		runCfg.Record = false
		if sw.Duration > 0 {
			runCfg.Duration = sw.Duration
		}
		if sw.Dt > 0 {
			runCfg.Dt = sw.Dt
		}

		if _, err := sc.Run(ctx, runCfg); err != nil {
			return points, fmt.Errorf("point %d: %w", i+1, err)
		}

		points = append(points, SweepPoint{
			Strength:      v,
			ZeroGFraction: zg.Value(),
			Switches:      ds.Value(),
			MeanField:     fs.Value(),
		})
		fmt.Fprintf(w, "sweep %d/%d: strength=%.3f zero_g=%.3f switches=%.0f\n",
			i+1, sw.Points, v, zg.Value(), ds.Value())
	}

	return points, nil
}
