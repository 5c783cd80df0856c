package audit

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink persists raw entries and pipeline run history to a SQLite
// database, grounded on the teacher's store.New (same
// "sqlite3"+mattn/go-sqlite3 driver, same WAL/busy-timeout DSN tuning).
// It is the one Sink variant queryable after the process exits, which is
// why pipeline.RunHistory is built on top of it rather than the other
// variants.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if necessary) a SQLite database at path
// and ensures its schema exists.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("audit: opening sqlite db: %w", err)
	}
	s := &SQLiteSink{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS raw_entries (
			id INTEGER PRIMARY KEY,
			step_id TEXT,
			chunk_index INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			raw_response TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			total_time_ms INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS pipeline_run_steps (
			run_id TEXT NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
			step_id TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			error TEXT,
			output_json TEXT,
			PRIMARY KEY (run_id, step_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("audit: migrating sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Write(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO raw_entries (step_id, chunk_index, prompt, raw_response, created_at) VALUES (?, ?, ?, ?, ?)`,
		nullableString(e.StepID), e.ChunkIndex, e.Prompt, e.RawResponse, e.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("audit: writing raw entry: %w", err)
	}
	return nil
}

// RunStepRecord is one step's outcome as persisted for a pipeline run.
type RunStepRecord struct {
	StepID     string
	DurationMS int64
	Error      string
	OutputJSON string
}

// RecordRun persists one completed pipeline execution. Used by
// pipeline.RunHistory; kept on SQLiteSink rather than RunHistory itself so
// the schema lives alongside its migrations.
func (s *SQLiteSink) RecordRun(ctx context.Context, runID string, totalTimeMS int64, steps []RunStepRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("audit: beginning run record tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, started_at, total_time_ms) VALUES (?, CURRENT_TIMESTAMP, ?)`,
		runID, totalTimeMS,
	); err != nil {
		return fmt.Errorf("audit: inserting pipeline run: %w", err)
	}

	for _, st := range steps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pipeline_run_steps (run_id, step_id, duration_ms, error, output_json) VALUES (?, ?, ?, ?, ?)`,
			runID, st.StepID, st.DurationMS, nullableString(st.Error), st.OutputJSON,
		); err != nil {
			return fmt.Errorf("audit: inserting pipeline run step %q: %w", st.StepID, err)
		}
	}

	return tx.Commit()
}

// Run is one pipeline execution as read back from history.
type Run struct {
	ID          string
	TotalTimeMS int64
	Steps       []RunStepRecord
}

// GetRun reads back a single persisted run by id, for CLI/debug replay.
func (s *SQLiteSink) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	run.ID = runID
	row := s.db.QueryRowContext(ctx, `SELECT total_time_ms FROM pipeline_runs WHERE id = ?`, runID)
	if err := row.Scan(&run.TotalTimeMS); err != nil {
		return nil, fmt.Errorf("audit: reading pipeline run %q: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT step_id, duration_ms, COALESCE(error, ''), COALESCE(output_json, '') FROM pipeline_run_steps WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: reading pipeline run steps %q: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var st RunStepRecord
		if err := rows.Scan(&st.StepID, &st.DurationMS, &st.Error, &st.OutputJSON); err != nil {
			return nil, fmt.Errorf("audit: scanning pipeline run step: %w", err)
		}
		run.Steps = append(run.Steps, st)
	}
	return &run, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
