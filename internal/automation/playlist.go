// Package automation scripts batch work: playlists of scenes executed in
// sequence, strength sweeps and scattered-start trials.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravfield/internal/config"
	"github.com/san-kum/gravfield/internal/metrics"
	"github.com/san-kum/gravfield/internal/sim"
	"github.com/san-kum/gravfield/internal/storage"
)

// Playlist is a scripted sequence of runs.
type Playlist struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Steps       []PlaylistStep `yaml:"steps"`
}

// PlaylistStep runs one scene. Scene is a file path or a preset name;
// zero Duration and Dt fall back to the scene's own values.
type PlaylistStep struct {
	Scene    string  `yaml:"scene"`
	Duration float64 `yaml:"duration,omitempty"`
	Dt       float64 `yaml:"dt,omitempty"`
	Parallel bool    `yaml:"parallel,omitempty"`
}

// StepResult reports one completed playlist step.
type StepResult struct {
	Scene   string
	RunID   string
	Steps   int
	Metrics map[string]float64
}

// LoadPlaylist reads a playlist from a YAML file.
func LoadPlaylist(path string) (*Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pl Playlist
	if err := yaml.Unmarshal(data, &pl); err != nil {
		return nil, err
	}
	if len(pl.Steps) == 0 {
		return nil, fmt.Errorf("playlist %s has no steps", path)
	}
	return &pl, nil
}

// RunPlaylist executes every step in order, saving each run to the store.
// Progress lines go to w.
func RunPlaylist(ctx context.Context, pl *Playlist, st *storage.Store, w io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(pl.Steps))

	for i, step := range pl.Steps {
		fmt.Fprintf(w, "step %d/%d: %s\n", i+1, len(pl.Steps), step.Scene)

		cfg, err := config.Resolve(step.Scene)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		sc, err := sim.FromConfig(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		attachMetrics(sc)

		runCfg := sim.RunConfig(cfg)
		if step.Duration > 0 {
			runCfg.Duration = step.Duration
		}
		if step.Dt > 0 {
			runCfg.Dt = step.Dt
		}
		if step.Parallel {
			runCfg.Parallel = true
		}

		result, err := sc.Run(ctx, runCfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		runID, err := st.Save(cfg.Name, entityNames(sc), runCfg, result)
		if err != nil {
			return results, fmt.Errorf("step %d save: %w", i+1, err)
		}
		fmt.Fprintf(w, "  saved %s (%d steps, %d events)\n",
			runID, result.StepsTaken, len(result.Events))

		results = append(results, StepResult{
			Scene:   cfg.Name,
			RunID:   runID,
			Steps:   result.StepsTaken,
			Metrics: result.Metrics,
		})
	}

	return results, nil
}

func attachMetrics(sc *sim.Scene) {
	sc.AddMetric(metrics.NewZeroGFraction())
	sc.AddMetric(metrics.NewDominantSwitches())
	sc.AddMetric(metrics.NewMaxUpRate())
	sc.AddMetric(metrics.NewFieldStats())
}

func entityNames(sc *sim.Scene) []string {
	names := make([]string, len(sc.Entities))
	for i, e := range sc.Entities {
		names[i] = e.Name
	}
	return names
}
