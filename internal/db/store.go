package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/metalagman/goap/internal/goap"
)

// ErrRunNotFound is returned for operations on a missing run id.
var ErrRunNotFound = errors.New("run not found")

// Store provides persistence for facts, runs and run events.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a store on an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Fact is a stored determination for one condition.
type Fact struct {
	Condition     goap.Condition
	Determination goap.Determination
	Source        string
	UpdatedAt     string
}

// SetFact inserts or replaces the determination for a condition.
func (s *Store) SetFact(ctx context.Context, c goap.Condition, d goap.Determination, source string) error {
	updatedAt := s.now().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO facts(condition, determination, source, updated_at) VALUES(?, ?, ?, ?)
		ON CONFLICT(condition) DO UPDATE SET determination=excluded.determination, source=excluded.source, updated_at=excluded.updated_at`,
		string(c), d.String(), source, updatedAt); err != nil {
		return fmt.Errorf("upsert fact %s: %w", c, err)
	}
	return nil
}

// DeleteFact forgets a condition. Missing conditions are not an error.
func (s *Store) DeleteFact(ctx context.Context, c goap.Condition) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM facts WHERE condition=?`, string(c)); err != nil {
		return fmt.Errorf("delete fact %s: %w", c, err)
	}
	return nil
}

// Facts returns every stored fact ordered by condition.
func (s *Store) Facts(ctx context.Context) ([]Fact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT condition, determination, source, updated_at FROM facts ORDER BY condition`)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var facts []Fact
	for rows.Next() {
		var condition, determination string
		var f Fact
		if err := rows.Scan(&condition, &determination, &f.Source, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		d, err := goap.ParseDetermination(determination)
		if err != nil {
			return nil, fmt.Errorf("fact %s: %w", condition, err)
		}
		f.Condition = goap.Condition(condition)
		f.Determination = d
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facts: %w", err)
	}
	return facts, nil
}

// RunRecord is a stored planning run.
type RunRecord struct {
	RunID     string
	CreatedAt string
	Kind      string
	Goal      string
	Status    string
	Summary   string
}

// Event represents a timeline event for a run.
type Event struct {
	Seq      int
	TS       string
	Type     string
	Message  string
	DataJSON string
}

// CreateRun inserts the run record and a run_started event.
func (s *Store) CreateRun(ctx context.Context, runID, kind, goal string) error {
	createdAt := s.now().Format(time.RFC3339)
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin create run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs(run_id, created_at, kind, goal, status, summary) VALUES(?, ?, ?, ?, ?, '')`,
		runID, createdAt, kind, goal, "running"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}
	if err := s.insertEvent(ctx, tx, runID, Event{Type: "run_started", Message: kind + " started"}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create run: %w", err)
	}
	return nil
}

// AppendEvent adds an event to a run's timeline.
func (s *Store) AppendEvent(ctx context.Context, runID string, ev Event) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin append event: %w", err)
	}
	if err := s.insertEvent(ctx, tx, runID, ev); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append event: %w", err)
	}
	return nil
}

// FinishRun sets the final status and summary and appends a run_finished event.
func (s *Store) FinishRun(ctx context.Context, runID, status, summary string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin finish run: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE runs SET status=?, summary=? WHERE run_id=?`, status, summary, runID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	if err := s.insertEvent(ctx, tx, runID, Event{Type: "run_finished", Message: status}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finish run: %w", err)
	}
	return nil
}

// ListRuns returns runs newest first. A non-positive limit returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT run_id, created_at, kind, goal, status, summary FROM runs ORDER BY created_at DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.Kind, &r.Goal, &r.Status, &r.Summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Events returns a run's timeline in order.
func (s *Store) Events(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, ts, type, message, COALESCE(data_json, '') FROM events WHERE run_id=? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.Seq, &ev.TS, &ev.Type, &ev.Message, &ev.DataJSON); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// DeleteRun removes a run and, through the foreign key, its events.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id=?`, runID); err != nil {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}
	return nil
}

// GetRunStatus returns the status for a run id, or empty if missing.
func (s *Store) GetRunStatus(ctx context.Context, runID string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT status FROM runs WHERE run_id=?`, runID)
	var status string
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("read run status: %w", err)
	}
	return status, nil
}

func (s *Store) insertEvent(ctx context.Context, tx *sql.Tx, runID string, ev Event) error {
	seq, err := s.nextSeq(ctx, tx, runID)
	if err != nil {
		return err
	}
	ts := s.now().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `INSERT INTO events(run_id, seq, ts, type, message, data_json) VALUES(?, ?, ?, ?, ?, ?)`,
		runID, seq, ts, ev.Type, ev.Message, nullableString(ev.DataJSON)); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) nextSeq(ctx context.Context, tx *sql.Tx, runID string) (int, error) {
	var seq int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events WHERE run_id=?`, runID)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("read event seq: %w", err)
	}
	return seq + 1, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
