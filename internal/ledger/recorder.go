package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"autobot/internal/logging"
	"autobot/internal/reconcile"
	"autobot/internal/services"
	"autobot/internal/syllabus"
)

// Recorder persists every step outcome of the run found in the context.
// Ledger write failures are logged and remembered but never interrupt the
// reconcile pass.
type Recorder struct {
	store  *Store
	logger *slog.Logger

	mu  sync.Mutex
	err error
}

// NewRecorder returns an observer writing to store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logging.NewComponentLogger(logger, "ledger")}
}

func (r *Recorder) OnMeetingStart(context.Context, syllabus.Meeting, int, int) {}

func (r *Recorder) OnStepOutcome(ctx context.Context, m syllabus.Meeting, outcome reconcile.Outcome) {
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		return
	}
	rec := StepRecord{
		RunID:       runID,
		MeetingDate: m.ISODate(),
		MeetingName: m.Name,
		Slug:        m.Slug,
		Step:        string(outcome.Step),
		Outcome:     string(outcome.Kind),
		Detail:      outcome.Detail,
		Duration:    outcome.Duration,
	}
	if outcome.Err != nil {
		rec.Error = outcome.Err.Error()
	}
	// the record must land even when the run is being cancelled
	if err := r.store.RecordOutcome(context.WithoutCancel(ctx), rec); err != nil {
		r.mu.Lock()
		r.err = errors.Join(r.err, err)
		r.mu.Unlock()
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "ledger write failed", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions of the state directory"),
			logging.String(logging.FieldImpact, "run history will be incomplete"),
		)
	}
}

func (r *Recorder) OnMeetingDone(context.Context, reconcile.MeetingResult) {}

// Err returns every write failure seen so far.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Totals condenses a report into ledger counters. Blocked and skipped steps
// are counted as skipped.
func Totals(report reconcile.Report) RunTotals {
	s := report.Summary()
	return RunTotals{
		Meetings: len(report.Results),
		Created:  s[reconcile.OutcomeCreated],
		Updated:  s[reconcile.OutcomeUpdated],
		Skipped:  s[reconcile.OutcomeSkippedExists] + s[reconcile.OutcomeSkipped] + s[reconcile.OutcomeBlocked],
		Failed:   s[reconcile.OutcomeFailed],
	}
}
