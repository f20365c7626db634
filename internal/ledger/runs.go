package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// BeginRun records a new running run.
func (s *Store) BeginRun(ctx context.Context, start RunStart) error {
	if strings.TrimSpace(start.ID) == "" {
		return fmt.Errorf("begin run: id is required")
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, group_name, semester, selector, overwrite, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		start.ID, start.Group, start.Semester, start.Selector, boolToInt(start.Overwrite), StatusRunning, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun closes a run with its final status and totals.
func (s *Store) FinishRun(ctx context.Context, id string, status Status, totals RunTotals, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, meetings = ?, created = ?, updated = ?, skipped = ?, failed = ?,
             error_message = ?, finished_at = ?
         WHERE id = ?`,
		status, totals.Meetings, totals.Created, totals.Updated, totals.Skipped, totals.Failed,
		nullableString(message), s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// MarkInterrupted closes runs for the scope that were left running. Callers
// hold the scope's run lock, so any running row belongs to a dead process.
func (s *Store) MarkInterrupted(ctx context.Context, group, semester string) (int64, error) {
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ?
         WHERE group_name = ? AND semester = ? AND status = ?`,
		StatusInterrupted, InterruptedReason, s.timestamp(), group, semester, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted runs: %w", err)
	}
	return res.RowsAffected()
}

const runColumns = `id, group_name, semester, selector, overwrite, status, meetings, created, updated,
    skipped, failed, error_message, started_at, finished_at`

// GetRun loads one run.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return run, err
}

// RecentRuns returns the newest runs for a scope, newest first. An empty
// group or semester matches everything.
func (s *Store) RecentRuns(ctx context.Context, group, semester string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1 = 1`
	var args []any
	if group != "" {
		query += ` AND group_name = ?`
		args = append(args, group)
	}
	if semester != "" {
		query += ` AND semester = ?`
		args = append(args, semester)
	}
	query += ` ORDER BY started_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		overwrite int
		status    string
		errMsg    sql.NullString
		started   string
		finished  sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Group, &run.Semester, &run.Selector, &overwrite, &status,
		&run.Meetings, &run.Created, &run.Updated, &run.Skipped, &run.Failed,
		&errMsg, &started, &finished); err != nil {
		return Run{}, err
	}
	run.Overwrite = overwrite != 0
	run.Status = Status(status)
	run.Error = errMsg.String
	run.StartedAt = parseTimestamp(started)
	if finished.Valid {
		t := parseTimestamp(finished.String)
		run.FinishedAt = &t
	}
	return run, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// RecordOutcome appends one step outcome to a run.
func (s *Store) RecordOutcome(ctx context.Context, rec StepRecord) error {
	recorded := rec.RecordedAt
	if recorded.IsZero() {
		recorded = s.now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO outcomes (run_id, meeting_date, meeting_name, slug, step, outcome, detail,
             error_message, duration_ms, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.MeetingDate, rec.MeetingName, rec.Slug, rec.Step, rec.Outcome,
		nullableString(rec.Detail), nullableString(rec.Error), rec.Duration.Milliseconds(),
		recorded.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// Outcomes returns a run's step outcomes in the order they were recorded.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, run_id, meeting_date, meeting_name, slug, step, outcome, detail, error_message,
             duration_ms, recorded_at
         FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []StepRecord
	for rows.Next() {
		var (
			rec      StepRecord
			detail   sql.NullString
			errMsg   sql.NullString
			millis   int64
			recorded string
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.MeetingDate, &rec.MeetingName, &rec.Slug,
			&rec.Step, &rec.Outcome, &detail, &errMsg, &millis, &recorded); err != nil {
			return nil, err
		}
		rec.Detail = detail.String
		rec.Error = errMsg.String
		rec.Duration = time.Duration(millis) * time.Millisecond
		rec.RecordedAt = parseTimestamp(recorded)
		out = append(out, rec)
	}
	return out, rows.Err()
}
