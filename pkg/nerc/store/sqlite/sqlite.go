package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/cognicore/nerc/pkg/nerc/internalerr"
	"github.com/cognicore/nerc/pkg/nerc/store"
)

// sqliteStore implements store.Store on a single SQLite file
type sqliteStore struct {
	db *sql.DB
}

// Open opens (or creates) an event store at path with WAL mode enabled
func Open(ctx context.Context, path string) (store.Store, error) {
	// foreign_keys is per connection, so it goes in the DSN
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	// Enable WAL mode for concurrent readers
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable wal")
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init schema")
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	language TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	created_at TEXT NOT NULL,
	samples INTEGER NOT NULL DEFAULT 0,
	events INTEGER NOT NULL DEFAULT 0,
	finished INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
	run_id TEXT NOT NULL,
	sample INTEGER NOT NULL,
	position INTEGER NOT NULL,
	token TEXT NOT NULL,
	outcome TEXT NOT NULL,
	features TEXT NOT NULL,
	PRIMARY KEY(run_id, sample, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_events_outcome ON events(run_id, outcome);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// CreateRun registers a new run
func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return errors.Wrap(internalerr.ErrInvalidInput, "run id is empty")
	}

	const stmt = `
INSERT INTO runs (id, language, fingerprint, created_at, samples, events, finished)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		r.ID,
		r.Language,
		r.Fingerprint,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.Samples,
		r.Events,
		boolToInt(r.Finished),
	)
	return errors.Wrapf(err, "create run %s", r.ID)
}

// FinishRun records the final counts of a run and marks it finished
func (s *sqliteStore) FinishRun(ctx context.Context, id string, samples, events int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET samples=?, events=?, finished=1 WHERE id=?`,
		samples, events, id,
	)
	if err != nil {
		return errors.Wrapf(err, "finish run %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "finish run %s", id)
	}
	if n == 0 {
		return errors.Wrapf(internalerr.ErrNotFound, "run %s", id)
	}
	return nil
}

// GetRun returns a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, language, fingerprint, created_at, samples, events, finished
FROM runs WHERE id = ?`, id)

	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return store.Run{}, errors.Wrapf(internalerr.ErrNotFound, "run %s", id)
	}
	if err != nil {
		return store.Run{}, errors.Wrapf(err, "get run %s", id)
	}
	return r, nil
}

// Runs lists all runs, oldest first
func (s *sqliteStore) Runs(ctx context.Context) ([]store.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, language, fingerprint, created_at, samples, events, finished
FROM runs ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "list runs")
}

// DeleteRun removes a run and its events
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id=?`, id)
	if err != nil {
		return errors.Wrapf(err, "delete run %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(internalerr.ErrNotFound, "run %s", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r         store.Run
		createdAt string
		finished  int
	)
	if err := sc.Scan(&r.ID, &r.Language, &r.Fingerprint, &createdAt, &r.Samples, &r.Events, &finished); err != nil {
		return store.Run{}, err
	}
	if createdAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			r.CreatedAt = ts
		}
	}
	r.Finished = finished != 0
	return r, nil
}

// AppendEvents stores events of a run in one transaction
func (s *sqliteStore) AppendEvents(ctx context.Context, runID string, events []store.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if err := runExists(ctx, tx, runID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO events (run_id, sample, position, token, outcome, features)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, sample, position) DO UPDATE SET
	token=excluded.token,
	outcome=excluded.outcome,
	features=excluded.features`)
	if err != nil {
		return errors.Wrap(err, "prepare insert event")
	}
	defer stmt.Close()

	for _, ev := range events {
		feats, err := json.Marshal(ev.Features)
		if err != nil {
			return errors.Wrap(err, "encode features")
		}
		if _, err := stmt.ExecContext(ctx, runID, ev.Sample, ev.Position, ev.Token, ev.Outcome, string(feats)); err != nil {
			return errors.Wrapf(err, "insert event %d/%d", ev.Sample, ev.Position)
		}
	}

	return errors.Wrap(tx.Commit(), "commit events")
}

func runExists(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return errors.Wrapf(internalerr.ErrNotFound, "run %s", id)
	}
	return errors.Wrapf(err, "lookup run %s", id)
}

// Events returns the events of one sample in token order
func (s *sqliteStore) Events(ctx context.Context, runID string, sample int) ([]store.Event, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT sample, position, token, outcome, features
FROM events WHERE run_id = ? AND sample = ?
ORDER BY position`, runID, sample)
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	defer rows.Close()

	var events []store.Event
	for rows.Next() {
		var (
			ev    store.Event
			feats string
		)
		if err := rows.Scan(&ev.Sample, &ev.Position, &ev.Token, &ev.Outcome, &feats); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		if err := json.Unmarshal([]byte(feats), &ev.Features); err != nil {
			return nil, errors.Wrapf(err, "decode features of event %d/%d", ev.Sample, ev.Position)
		}
		events = append(events, ev)
	}
	return events, errors.Wrap(rows.Err(), "query events")
}

// OutcomeCounts returns how often each outcome occurs in a run
func (s *sqliteStore) OutcomeCounts(ctx context.Context, runID string) ([]store.OutcomeCount, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT outcome, COUNT(*) FROM events
WHERE run_id = ?
GROUP BY outcome`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "count outcomes")
	}
	defer rows.Close()

	var counts []store.OutcomeCount
	for rows.Next() {
		var c store.OutcomeCount
		if err := rows.Scan(&c.Outcome, &c.Count); err != nil {
			return nil, errors.Wrap(err, "scan outcome count")
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "count outcomes")
	}

	store.SortOutcomeCounts(counts)
	return counts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
