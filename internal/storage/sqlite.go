package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/sim"
)

const ticksSchema = `
CREATE TABLE IF NOT EXISTS ticks (
	run      TEXT,
	time     REAL,
	entity   TEXT,
	px       REAL,
	py       REAL,
	pz       REAL,
	gx       REAL,
	gy       REAL,
	gz       REAL,
	mag      REAL,
	dominant INTEGER,
	zero_g   INTEGER,
	upx      REAL,
	upy      REAL,
	upz      REAL);
`

const ticksIndices = `
CREATE INDEX IF NOT EXISTS idx_run_time ON ticks (run, time);
CREATE INDEX IF NOT EXISTS idx_run_entity ON ticks (run, entity);
`

const ticksInsert = `INSERT INTO ticks VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

const ticksQuery = `SELECT time, entity, px, py, pz, gx, gy, gz, mag, dominant, zero_g, upx, upy, upz
FROM ticks WHERE run = ? ORDER BY time, entity;`

// Recorder mirrors recorded runs into one sqlite file for ad hoc querying.
// Journaling is off; the database is a disposable analysis artifact, the
// run directories stay the source of truth.
type Recorder struct {
	db *sql.DB
}

func OpenRecorder(filename string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", "file:"+filename+"?_journal_mode=OFF&_synchronous=OFF")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(ticksSchema); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(ticksIndices); err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{db: db}, nil
}

func (r *Recorder) Close() error { return r.db.Close() }

// WriteRun inserts every recorded tick under runID in one transaction.
// sqlite allows a single writer, so callers serialize themselves.
func (r *Recorder) WriteRun(runID string, entities []string, result *sim.Result) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(ticksInsert)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, row := range result.Ticks {
		t := result.Times[i]
		for j, et := range row {
			name := ""
			if j < len(entities) {
				name = entities[j]
			}
			_, err = stmt.Exec(
				runID, t, name,
				et.Pos[0], et.Pos[1], et.Pos[2],
				et.Field[0], et.Field[1], et.Field[2],
				et.Mag, int64(et.Dominant), et.ZeroG,
				et.Up[0], et.Up[1], et.Up[2])
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("insert tick %d: %w", i, err)
			}
		}
	}

	return tx.Commit()
}

// ReadRun loads every tick stored under runID, ordered by time then
// entity.
func (r *Recorder) ReadRun(runID string) ([]TickRow, error) {
	rows, err := r.db.Query(ticksQuery, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TickRow, 0)
	for rows.Next() {
		var tr TickRow
		var dom int64
		err := rows.Scan(
			&tr.T, &tr.Entity,
			&tr.State.Pos[0], &tr.State.Pos[1], &tr.State.Pos[2],
			&tr.State.Field[0], &tr.State.Field[1], &tr.State.Field[2],
			&tr.State.Mag, &dom, &tr.State.ZeroG,
			&tr.State.Up[0], &tr.State.Up[1], &tr.State.Up[2])
		if err != nil {
			return nil, err
		}
		tr.State.Dominant = field.SourceID(dom)
		out = append(out, tr)
	}
	return out, rows.Err()
}
