package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/gravfield/internal/sim"
)

// ExportData is the JSON shape of a full exported run.
type ExportData struct {
	Meta   RunMetadata `json:"meta"`
	Ticks  []TickRow   `json:"ticks"`
	Events []sim.Event `json:"events"`
}

// ExportJSON streams a saved run, metadata and all, as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	ticks, err := s.LoadTicks(runID)
	if err != nil {
		return err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: *meta, Ticks: ticks, Events: events})
}

// ExportCSV streams a saved run's tick table.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	ticks, err := s.LoadTicks(runID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(tickHeader); err != nil {
		return err
	}
	for _, row := range ticks {
		rec := []string{
			ff(row.T), row.Entity,
			ff(row.State.Pos[0]), ff(row.State.Pos[1]), ff(row.State.Pos[2]),
			ff(row.State.Field[0]), ff(row.State.Field[1]), ff(row.State.Field[2]),
			ff(row.State.Mag),
			strconv.FormatInt(int64(row.State.Dominant), 10),
			strconv.FormatBool(row.State.ZeroG),
			ff(row.State.Up[0]), ff(row.State.Up[1]), ff(row.State.Up[2]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
