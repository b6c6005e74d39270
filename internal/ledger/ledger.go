// Package ledger records every submission of every sweep in a SQLite
// database, so that a sweep can be resumed and its history inspected.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
)

// Status is the outcome recorded for a run.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Entry is one row of the ledger.
type Entry struct {
	SweepID string
	Sweep   string
	RunName string
	Command string
	Status  Status
	Error   string
	Time    time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	sweep_id  TEXT    NOT NULL,
	sweep     TEXT    NOT NULL,
	run_name  TEXT    NOT NULL,
	command   TEXT    NOT NULL,
	status    TEXT    NOT NULL,
	error     TEXT    NOT NULL DEFAULT '',
	time      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_run_name ON runs (run_name, status);
`

// Ledger is a SQLite-backed submission history.
type Ledger struct {
	db *sql.DB
}

// NewSweepID returns a unique, time-sortable id for one sweep invocation.
func NewSweepID() string {
	return xid.New().String()
}

// Open opens (creating if needed) the ledger database at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %q: %w", path, err)
	}
	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise ledger %q: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Ledger opened.", "path", path)
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends an entry. A zero Time is replaced with the current time.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (sweep_id, sweep, run_name, command, status, error, time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SweepID, e.Sweep, e.RunName, e.Command, string(e.Status), e.Error, e.Time.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", e.RunName, err)
	}
	return nil
}

// Submitted reports whether runName has ever been submitted successfully.
func (l *Ledger) Submitted(ctx context.Context, runName string) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM runs WHERE run_name = ? AND status = ?`,
		runName, string(StatusSubmitted),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query run %s: %w", runName, err)
	}
	return n > 0, nil
}

// List returns up to limit entries, most recent first. A limit of zero or
// less returns everything.
func (l *Ledger) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT sweep_id, sweep, run_name, command, status, error, time FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var status string
		var nanos int64
		if err := rows.Scan(&e.SweepID, &e.Sweep, &e.RunName, &e.Command, &status, &e.Error, &nanos); err != nil {
			return nil, fmt.Errorf("failed to read run: %w", err)
		}
		e.Status = Status(status)
		e.Time = time.Unix(0, nanos)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Skip is a sweep.SkipFunc that skips runs already submitted.
func (l *Ledger) Skip(ctx context.Context, run sweep.Run) (bool, error) {
	return l.Submitted(ctx, run.Name)
}

// Observe records submitted, failed and skipped runs. Write failures are
// logged; they never stop a sweep.
func (l *Ledger) Observe(ctx context.Context, ev sweep.Event) {
	var status Status
	switch ev.Kind {
	case sweep.EventSubmitted:
		status = StatusSubmitted
	case sweep.EventFailed:
		status = StatusFailed
	case sweep.EventSkipped:
		status = StatusSkipped
	default:
		return
	}

	e := Entry{
		SweepID: ev.SweepID,
		Sweep:   ev.Sweep,
		RunName: ev.Run.Name,
		Command: ev.Run.Command,
		Status:  status,
		Time:    ev.Time,
	}
	if ev.Err != nil {
		e.Error = ev.Err.Error()
	}
	if err := l.Record(context.WithoutCancel(ctx), e); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to write ledger entry.", "run", e.RunName, "error", err)
	}
}
