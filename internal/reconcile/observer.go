package reconcile

import (
	"context"
	"log/slog"

	"autobot/internal/logging"
	"autobot/internal/syllabus"
)

// Observer receives run progress. Calls arrive from a single goroutine at a
// time and always in chronological meeting order.
type Observer interface {
	OnMeetingStart(ctx context.Context, m syllabus.Meeting, index, total int)
	OnStepOutcome(ctx context.Context, m syllabus.Meeting, outcome Outcome)
	OnMeetingDone(ctx context.Context, result MeetingResult)
}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (mo MultiObserver) OnMeetingStart(ctx context.Context, m syllabus.Meeting, index, total int) {
	for _, o := range mo {
		if o != nil {
			o.OnMeetingStart(ctx, m, index, total)
		}
	}
}

func (mo MultiObserver) OnStepOutcome(ctx context.Context, m syllabus.Meeting, outcome Outcome) {
	for _, o := range mo {
		if o != nil {
			o.OnStepOutcome(ctx, m, outcome)
		}
	}
}

func (mo MultiObserver) OnMeetingDone(ctx context.Context, result MeetingResult) {
	for _, o := range mo {
		if o != nil {
			o.OnMeetingDone(ctx, result)
		}
	}
}

// LogObserver writes structured progress records.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver returns an observer logging under the reconcile component.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{Logger: logging.NewComponentLogger(logger, "reconcile")}
}

func (o *LogObserver) OnMeetingStart(ctx context.Context, m syllabus.Meeting, index, total int) {
	logging.WithContext(ctx, o.Logger).Info("meeting started",
		logging.String(logging.FieldEventType, "meeting_start"),
		logging.String("date", m.DateLabel()),
		logging.String("name", m.Name),
		logging.Int("position", index+1),
		logging.Int("total", total),
	)
}

func (o *LogObserver) OnStepOutcome(ctx context.Context, m syllabus.Meeting, outcome Outcome) {
	logger := logging.WithContext(ctx, o.Logger)
	attrs := []logging.Attr{
		logging.String(logging.FieldStep, string(outcome.Step)),
		logging.String("outcome", string(outcome.Kind)),
		logging.Duration("duration", outcome.Duration),
	}
	if outcome.Detail != "" {
		attrs = append(attrs, logging.String("detail", outcome.Detail))
	}
	if outcome.Kind == OutcomeFailed {
		logging.ErrorWithContext(logger, "step failed", "step_failure",
			append(attrs,
				logging.Error(outcome.Err),
				logging.String(logging.FieldErrorHint, "fix the cause and re-run upkeep; completed steps are skipped"),
			)...,
		)
		return
	}
	attrs = append(attrs, logging.String(logging.FieldEventType, "step_outcome"))
	logger.Info("step finished", logging.Args(attrs...)...)
}

func (o *LogObserver) OnMeetingDone(ctx context.Context, result MeetingResult) {
	logging.WithContext(ctx, o.Logger).Info("meeting finished",
		logging.String(logging.FieldEventType, "meeting_done"),
		logging.String("name", result.Meeting.Name),
		logging.Int("failed", result.Count(OutcomeFailed)),
		logging.Duration("duration", result.Finished.Sub(result.Started)),
	)
}

// event is one buffered observer call.
type event struct {
	ctx     context.Context
	kind    int
	meeting syllabus.Meeting
	index   int
	total   int
	outcome Outcome
	result  MeetingResult
}

const (
	eventStart = iota
	eventStep
	eventDone
)

// recorder buffers a meeting's events so they can be replayed in order.
type recorder struct {
	events []event
}

func (r *recorder) OnMeetingStart(ctx context.Context, m syllabus.Meeting, index, total int) {
	r.events = append(r.events, event{ctx: ctx, kind: eventStart, meeting: m, index: index, total: total})
}

func (r *recorder) OnStepOutcome(ctx context.Context, m syllabus.Meeting, outcome Outcome) {
	r.events = append(r.events, event{ctx: ctx, kind: eventStep, meeting: m, outcome: outcome})
}

func (r *recorder) OnMeetingDone(ctx context.Context, result MeetingResult) {
	r.events = append(r.events, event{ctx: ctx, kind: eventDone, result: result})
}

func (r *recorder) replay(o Observer) {
	for _, e := range r.events {
		switch e.kind {
		case eventStart:
			o.OnMeetingStart(e.ctx, e.meeting, e.index, e.total)
		case eventStep:
			o.OnStepOutcome(e.ctx, e.meeting, e.outcome)
		case eventDone:
			o.OnMeetingDone(e.ctx, e.result)
		}
	}
}
