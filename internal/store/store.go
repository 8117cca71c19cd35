// internal/store/store.go
// Package store keeps a history of benchmark runs in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwiater/ollabench/internal/benchmark"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id has no row in the history.
var ErrRunNotFound = errors.New("run not found")

// DefaultPath is the history database used when none is configured.
var DefaultPath = filepath.Join("benchmarkData", "history.db")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	started_at      TEXT NOT NULL,
	finished_at     TEXT NOT NULL,
	models          TEXT NOT NULL,
	tasks           TEXT NOT NULL,
	temperature     REAL NOT NULL,
	request_timeout INTEGER NOT NULL,
	retry_timeout   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	run_id            TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	seq               INTEGER NOT NULL,
	model             TEXT NOT NULL,
	task              TEXT NOT NULL,
	prompt            TEXT NOT NULL,
	response          TEXT NOT NULL,
	generation_time   REAL NOT NULL,
	load_time         REAL NOT NULL,
	tokens_generated  INTEGER NOT NULL,
	tokens_per_second REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_records_model ON records(model);
`

// timeLayout keeps a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a run history backed by SQLite.
type Store struct {
	db *sql.DB
}

// RunSummary is one line of the history listing.
type RunSummary struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Models      []string
	TaskCount   int
	RecordCount int
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and its records in one transaction. Saving the same
// run id twice replaces the earlier copy.
func (s *Store) SaveRun(ctx context.Context, result *benchmark.RunResult) error {
	if result == nil {
		return errors.New("no run to save")
	}
	models, err := json.Marshal(result.Models)
	if err != nil {
		return fmt.Errorf("encode models: %w", err)
	}
	tasks, err := json.Marshal(result.Tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM records WHERE run_id = ?`,
		`DELETE FROM runs WHERE run_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, result.RunID); err != nil {
			return fmt.Errorf("replace run: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, finished_at, models, tasks, temperature, request_timeout, retry_timeout)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.StartedAt.UTC().Format(timeLayout),
		result.FinishedAt.UTC().Format(timeLayout),
		string(models),
		string(tasks),
		result.Options.Temperature,
		int64(result.Options.RequestTimeout),
		int64(result.Options.RetryTimeout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, seq, model, task, prompt, response, generation_time, load_time, tokens_generated, tokens_per_second)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range result.Records {
		if _, err := stmt.ExecContext(ctx, result.RunID, i, r.Model, r.Task, r.Prompt, r.Response,
			r.GenerationTime, r.LoadTime, r.TokensGenerated, r.TokensPerSecond); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.started_at, r.finished_at, r.models, r.tasks,
		       (SELECT COUNT(*) FROM records c WHERE c.run_id = r.run_id)
		FROM runs r
		ORDER BY r.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			summary               RunSummary
			started, finished     string
			modelsJSON, tasksJSON string
			tasks                 []benchmark.Task
		)
		if err := rows.Scan(&summary.RunID, &started, &finished, &modelsJSON, &tasksJSON, &summary.RecordCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if summary.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if summary.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		if err := json.Unmarshal([]byte(modelsJSON), &summary.Models); err != nil {
			return nil, fmt.Errorf("decode models: %w", err)
		}
		if err := json.Unmarshal([]byte(tasksJSON), &tasks); err != nil {
			return nil, fmt.Errorf("decode tasks: %w", err)
		}
		summary.TaskCount = len(tasks)
		out = append(out, summary)
	}
	return out, rows.Err()
}

// LoadRun rebuilds a stored run. Unknown ids return ErrRunNotFound.
func (s *Store) LoadRun(ctx context.Context, runID string) (*benchmark.RunResult, error) {
	var (
		result                       = &benchmark.RunResult{RunID: runID}
		started, finished            string
		modelsJSON, tasksJSON        string
		requestTimeout, retryTimeout int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT started_at, finished_at, models, tasks, temperature, request_timeout, retry_timeout
		FROM runs WHERE run_id = ?`, runID).
		Scan(&started, &finished, &modelsJSON, &tasksJSON, &result.Options.Temperature, &requestTimeout, &retryTimeout)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	if result.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if result.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	if err := json.Unmarshal([]byte(modelsJSON), &result.Models); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}
	if err := json.Unmarshal([]byte(tasksJSON), &result.Tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	result.Options.RequestTimeout = time.Duration(requestTimeout)
	result.Options.RetryTimeout = time.Duration(retryTimeout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT model, task, prompt, response, generation_time, load_time, tokens_generated, tokens_per_second
		FROM records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	result.Records = []benchmark.Record{}
	for rows.Next() {
		var r benchmark.Record
		if err := rows.Scan(&r.Model, &r.Task, &r.Prompt, &r.Response, &r.GenerationTime, &r.LoadTime, &r.TokensGenerated, &r.TokensPerSecond); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		result.Records = append(result.Records, r)
	}
	return result, rows.Err()
}
