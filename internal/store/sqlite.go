package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/idtlab/autoignition/internal/sweep"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sweeps (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL,
	criterion  TEXT NOT NULL,
	created_at TEXT NOT NULL,
	conditions INTEGER NOT NULL,
	failures   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	sweep_id        TEXT NOT NULL REFERENCES sweeps(id),
	seq             INTEGER NOT NULL,
	temperature     REAL NOT NULL,
	pressure        REAL NOT NULL,
	inv_temperature REAL NOT NULL,
	delay           REAL,
	sigma           REAL,
	ok              INTEGER NOT NULL,
	failure         TEXT NOT NULL,
	flag            TEXT NOT NULL,
	PRIMARY KEY (sweep_id, seq)
);
`

// DB is a sqlite-backed sweep archive sharing the export contract with the
// per-run CSV store. Missing delays and sigmas are stored as NULL.
type DB struct {
	db *sql.DB
}

// OpenDB opens (and if needed initializes) the sqlite database at path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveSweep inserts the metadata row and one result row per condition,
// in a single transaction.
func (d *DB) SaveSweep(meta SweepMetadata, tab sweep.Table) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sweeps (id, label, criterion, created_at, conditions, failures) VALUES (?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Label, meta.Criterion, meta.Timestamp.Format(time.RFC3339Nano), meta.Conditions, meta.Failures,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO results (sweep_id, seq, temperature, pressure, inv_temperature, delay, sigma, ok, failure, flag)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range tab.OK {
		_, err := stmt.Exec(
			meta.ID, i,
			tab.Temperature[i], tab.Pressure[i], tab.InverseTemperature[i],
			nullFloat(tab.Delay[i]), nullFloat(tab.Sigma[i]),
			tab.OK[i], tab.Failure[i], tab.Flag[i],
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// ListSweeps returns stored sweep metadata, newest first.
func (d *DB) ListSweeps() ([]SweepMetadata, error) {
	rows, err := d.db.Query(
		`SELECT id, label, criterion, created_at, conditions, failures FROM sweeps ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sweeps []SweepMetadata
	for rows.Next() {
		var meta SweepMetadata
		var created string
		if err := rows.Scan(&meta.ID, &meta.Label, &meta.Criterion, &created, &meta.Conditions, &meta.Failures); err != nil {
			return nil, err
		}
		if meta.Timestamp, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, err
		}
		sweeps = append(sweeps, meta)
	}
	return sweeps, rows.Err()
}

// LoadSweep reads the result table for a sweep ID, NULLs back as NaN.
func (d *DB) LoadSweep(id string) (sweep.Table, error) {
	rows, err := d.db.Query(
		`SELECT temperature, pressure, inv_temperature, delay, sigma, ok, failure, flag
		 FROM results WHERE sweep_id = ? ORDER BY seq`,
		id,
	)
	if err != nil {
		return sweep.Table{}, err
	}
	defer rows.Close()

	var tab sweep.Table
	for rows.Next() {
		var T, P, invT float64
		var delay, sigma sql.NullFloat64
		var ok bool
		var failure, flag string
		if err := rows.Scan(&T, &P, &invT, &delay, &sigma, &ok, &failure, &flag); err != nil {
			return sweep.Table{}, err
		}
		tab.Temperature = append(tab.Temperature, T)
		tab.Pressure = append(tab.Pressure, P)
		tab.InverseTemperature = append(tab.InverseTemperature, invT)
		tab.Delay = append(tab.Delay, floatOrNaN(delay))
		tab.Sigma = append(tab.Sigma, floatOrNaN(sigma))
		tab.OK = append(tab.OK, ok)
		tab.Failure = append(tab.Failure, failure)
		tab.Flag = append(tab.Flag, flag)
	}
	if err := rows.Err(); err != nil {
		return sweep.Table{}, err
	}
	if len(tab.OK) == 0 {
		return sweep.Table{}, fmt.Errorf("store: no results for sweep %q", id)
	}
	return tab, nil
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
