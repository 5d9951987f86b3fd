package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/sim"
)

// Store keeps recorded runs as directories under a base path, one
// directory per run with metadata.json, ticks.csv and events.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Entities  []string           `json:"entities"`
	Steps     int                `json:"steps"`
	Events    int                `json:"events"`
	Metrics   map[string]float64 `json:"metrics"`
}

// TickRow is one entity's state at one recorded tick, flattened for CSV.
type TickRow struct {
	T      float64
	Entity string
	State  sim.EntityTick
}

var tickHeader = []string{
	"time", "entity",
	"px", "py", "pz",
	"gx", "gy", "gz",
	"mag", "dominant", "zero_g",
	"upx", "upy", "upz",
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// Save writes one run directory named <scene>_<unix> and returns its id.
// Back-to-back saves of one scene can share a second; the id gets a
// numeric suffix rather than overwriting the earlier run.
func (s *Store) Save(scene string, entities []string, cfg sim.Config, result *sim.Result) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}

	stamp := time.Now().Unix()
	runID := fmt.Sprintf("%s_%d", scene, stamp)
	for n := 2; ; n++ {
		err := os.Mkdir(filepath.Join(s.baseDir, runID), 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
		runID = fmt.Sprintf("%s_%d_%d", scene, stamp, n)
	}
	runDir := filepath.Join(s.baseDir, runID)

	meta := RunMetadata{
		ID:        runID,
		Scene:     scene,
		Timestamp: time.Now(),
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Entities:  entities,
		Steps:     result.StepsTaken,
		Events:    len(result.Events),
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := s.writeTicks(filepath.Join(runDir, "ticks.csv"), entities, result); err != nil {
		return "", err
	}
	if err := s.writeEvents(filepath.Join(runDir, "events.csv"), result.Events); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *Store) writeTicks(path string, entities []string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(tickHeader); err != nil {
		return err
	}

	for i, row := range result.Ticks {
		t := result.Times[i]
		for j, et := range row {
			name := ""
			if j < len(entities) {
				name = entities[j]
			}
			rec := []string{
				ff(t), name,
				ff(et.Pos[0]), ff(et.Pos[1]), ff(et.Pos[2]),
				ff(et.Field[0]), ff(et.Field[1]), ff(et.Field[2]),
				ff(et.Mag),
				strconv.FormatInt(int64(et.Dominant), 10),
				strconv.FormatBool(et.ZeroG),
				ff(et.Up[0]), ff(et.Up[1]), ff(et.Up[2]),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) writeEvents(path string, events []sim.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "entity", "kind", "prev", "next"}); err != nil {
		return err
	}
	for _, e := range events {
		rec := []string{
			ff(e.T), e.Entity, e.Kind,
			strconv.FormatInt(int64(e.Prev), 10),
			strconv.FormatInt(int64(e.Next), 10),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// List reads every run directory's metadata, skipping entries that do not
// parse. A missing base directory lists as empty rather than failing.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTicks reads a run's tick table back into memory.
func (s *Store) LoadTicks(runID string) ([]TickRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "ticks.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([]TickRow, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) != len(tickHeader) {
			continue
		}

		vals := make([]float64, len(rec))
		for k := 0; k < len(rec); k++ {
			if k == 1 || k == 9 || k == 10 {
				continue
			}
			v, err := strconv.ParseFloat(rec[k], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, tickHeader[k], err)
			}
			vals[k] = v
		}
		dom, err := strconv.ParseInt(rec[9], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d dominant: %w", i, err)
		}
		zg, err := strconv.ParseBool(rec[10])
		if err != nil {
			return nil, fmt.Errorf("row %d zero_g: %w", i, err)
		}

		rows = append(rows, TickRow{
			T:      vals[0],
			Entity: rec[1],
			State: sim.EntityTick{
				Pos:      mgl64.Vec3{vals[2], vals[3], vals[4]},
				Field:    mgl64.Vec3{vals[5], vals[6], vals[7]},
				Mag:      vals[8],
				Dominant: field.SourceID(dom),
				ZeroG:    zg,
				Up:       mgl64.Vec3{vals[11], vals[12], vals[13]},
			},
		})
	}

	return rows, nil
}

// LoadEvents reads a run's transition log.
func (s *Store) LoadEvents(runID string) ([]sim.Event, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "events.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	events := make([]sim.Event, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) != 5 {
			continue
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("event row %d: %w", i, err)
		}
		prev, err := strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("event row %d: %w", i, err)
		}
		next, err := strconv.ParseInt(rec[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("event row %d: %w", i, err)
		}
		events = append(events, sim.Event{
			T:      t,
			Entity: rec[1],
			Kind:   rec[2],
			Prev:   field.SourceID(prev),
			Next:   field.SourceID(next),
		})
	}

	return events, nil
}
