// Package store archives batch results in SQLite so scenario sweeps can be
// compared long after their CSV files are gone.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/grain/telemetry"
)

// Store wraps a SQLite connection holding archived batches.
type Store struct {
	conn *sqlx.DB
}

// BatchMeta describes the batch being archived.
type BatchMeta struct {
	Scenario string
	Runs     int
	Ticks    int
	BaseSeed int64
	Started  time.Time
	Elapsed  time.Duration
}

// BatchRow is one archived batch as read back from the store.
type BatchRow struct {
	ID        int64   `db:"id"`
	Scenario  string  `db:"scenario"`
	Runs      int     `db:"runs"`
	Ticks     int     `db:"ticks"`
	BaseSeed  int64   `db:"base_seed"`
	Started   string  `db:"started"`
	ElapsedMS int64   `db:"elapsed_ms"`
	Failed    int     `db:"failed"`
	GiniMean  float64 `db:"gini_mean"`
	GiniStd   float64 `db:"gini_std"`
	PoorPct   float64 `db:"poor_pct"`
	MiddlePct float64 `db:"middle_pct"`
	RichPct   float64 `db:"rich_pct"`
}

// RunRow is one archived run. Metric columns are null for failed runs, so
// they surface here as pointers.
type RunRow struct {
	BatchID     int64    `db:"batch_id"`
	RunID       int      `db:"run_id"`
	MinWealth   *float64 `db:"min_wealth"`
	MaxWealth   *float64 `db:"max_wealth"`
	TotalWealth *float64 `db:"total_wealth"`
	GiniIndex   *float64 `db:"gini_index"`
	LorenzCurve *string  `db:"lorenz_curve"`
	Poor        *int     `db:"poor"`
	MiddleClass *int     `db:"middle_class"`
	Rich        *int     `db:"rich"`
	Error       *string  `db:"error"`
}

// Open opens or creates the archive at path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scenario TEXT NOT NULL,
		runs INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		base_seed INTEGER NOT NULL,
		started TEXT NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		gini_mean REAL NOT NULL,
		gini_std REAL NOT NULL,
		poor_pct REAL NOT NULL,
		middle_pct REAL NOT NULL,
		rich_pct REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		batch_id INTEGER NOT NULL REFERENCES batches(id),
		run_id INTEGER NOT NULL,
		min_wealth REAL,
		max_wealth REAL,
		total_wealth REAL,
		gini_index REAL,
		lorenz_curve TEXT,
		poor INTEGER,
		middle_class INTEGER,
		rich INTEGER,
		error TEXT,
		PRIMARY KEY (batch_id, run_id)
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveBatch archives one batch with all its runs and returns the batch id.
// Failed runs are stored with their error text and null metrics.
func (s *Store) SaveBatch(meta BatchMeta, results []telemetry.RunResult, summary telemetry.BatchSummary) (int64, error) {
	tx, err := s.conn.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO batches
		(scenario, runs, ticks, base_seed, started, elapsed_ms, failed,
		 gini_mean, gini_std, poor_pct, middle_pct, rich_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.Scenario, meta.Runs, meta.Ticks, meta.BaseSeed,
		meta.Started.UTC().Format(time.RFC3339), meta.Elapsed.Milliseconds(),
		summary.Failed, summary.GiniMean, summary.GiniStd,
		summary.PoorPct, summary.MiddlePct, summary.RichPct,
	)
	if err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("batch id: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO runs
		(batch_id, run_id, min_wealth, max_wealth, total_wealth, gini_index,
		 lorenz_curve, poor, middle_class, rich, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range results {
		if r.Err != nil {
			_, err = stmt.Exec(batchID, r.RunID, nil, nil, nil, nil, nil, nil, nil, nil, r.Err.Error())
		} else {
			var curve []byte
			curve, err = json.Marshal(r.Lorenz)
			if err != nil {
				return 0, fmt.Errorf("encode lorenz curve for run %d: %w", r.RunID, err)
			}
			_, err = stmt.Exec(batchID, r.RunID,
				r.MinWealth, r.MaxWealth, r.TotalWealth, r.GiniIndex,
				string(curve), r.Poor, r.MiddleClass, r.Rich, nil)
		}
		if err != nil {
			return 0, fmt.Errorf("insert run %d: %w", r.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return batchID, nil
}

// Batches returns every archived batch, newest first.
func (s *Store) Batches() ([]BatchRow, error) {
	var rows []BatchRow
	err := s.conn.Select(&rows, `SELECT * FROM batches ORDER BY id DESC`)
	return rows, err
}

// Runs returns the archived runs of one batch in run-id order.
func (s *Store) Runs(batchID int64) ([]RunRow, error) {
	var rows []RunRow
	err := s.conn.Select(&rows, `SELECT * FROM runs WHERE batch_id = ? ORDER BY run_id`, batchID)
	return rows, err
}
