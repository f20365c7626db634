package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"autobot/internal/logging"
	"autobot/internal/services"
	"autobot/internal/syllabus"
)

// Options controls a reconcile pass.
type Options struct {
	// Overwrite allows regenerating overwritable artifacts (the notebook).
	Overwrite bool
	// Workers bounds how many meetings are processed at once. Values below 2
	// keep the strictly sequential schedule.
	Workers int
}

// Reconciler runs a fixed, ordered set of steps over meetings.
type Reconciler struct {
	steps    []Step
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithObserver adds progress observers.
func WithObserver(observers ...Observer) Option {
	return func(r *Reconciler) {
		if existing, ok := r.observer.(MultiObserver); ok {
			r.observer = append(existing, observers...)
			return
		}
		r.observer = MultiObserver(observers)
	}
}

// WithLogger sets the reconcile logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// New builds a Reconciler. Steps are arranged in the canonical order
// regardless of how they are passed; each kind may appear once.
func New(steps []Step, opts ...Option) (*Reconciler, error) {
	ordered := make([]Step, 0, len(steps))
	seen := make(map[ArtifactKind]bool, len(steps))
	for _, step := range steps {
		if step == nil {
			continue
		}
		kind := step.Kind()
		if kind.rank() < 0 {
			return nil, fmt.Errorf("reconcile: unknown step kind %q", kind)
		}
		if seen[kind] {
			return nil, fmt.Errorf("reconcile: duplicate %s step", kind)
		}
		seen[kind] = true
		ordered = append(ordered, step)
	}
	slices.SortFunc(ordered, func(a, b Step) int {
		return a.Kind().rank() - b.Kind().rank()
	})

	r := &Reconciler{
		steps:    ordered,
		observer: MultiObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "reconcile")
	return r, nil
}

// Steps returns the kinds this reconciler runs, in order.
func (r *Reconciler) Steps() []ArtifactKind {
	kinds := make([]ArtifactKind, 0, len(r.steps))
	for _, s := range r.steps {
		kinds = append(kinds, s.Kind())
	}
	return kinds
}

// Reconcile processes meetings in the given order. Step failures are
// contained in the report; the returned error is non-nil only when ctx ends
// the run, in which case the report covers the meetings that completed.
func (r *Reconciler) Reconcile(ctx context.Context, meetings []syllabus.Meeting, opts Options) (Report, error) {
	report := Report{Started: r.now()}
	if id, ok := services.RunIDFromContext(ctx); ok {
		report.RunID = id
	}

	var err error
	if opts.Workers > 1 && len(meetings) > 1 {
		report.Results, err = r.runConcurrent(ctx, meetings, opts)
	} else {
		report.Results, err = r.runSequential(ctx, meetings, opts)
	}
	report.Finished = r.now()

	summary := report.Summary()
	r.logger.Info("reconcile finished",
		logging.String(logging.FieldEventType, "reconcile_complete"),
		logging.Int("meetings", len(report.Results)),
		logging.String("summary", summary.String()),
		logging.Duration("duration", report.Duration()),
	)
	return report, err
}

func (r *Reconciler) runSequential(ctx context.Context, meetings []syllabus.Meeting, opts Options) ([]MeetingResult, error) {
	results := make([]MeetingResult, 0, len(meetings))
	for i, m := range meetings {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, r.reconcileMeeting(ctx, m, i, len(meetings), opts, r.observer))
	}
	return results, ctx.Err()
}

// runConcurrent processes meetings on a bounded pool. Each meeting's events
// are buffered and released only once every earlier meeting has been
// released, so observers see the same sequence as a sequential run.
func (r *Reconciler) runConcurrent(ctx context.Context, meetings []syllabus.Meeting, opts Options) ([]MeetingResult, error) {
	total := len(meetings)
	results := make([]*MeetingResult, total)
	buffers := make([]*recorder, total)

	var (
		mu   sync.Mutex
		next int
	)
	release := func(i int, res MeetingResult, rec *recorder) {
		mu.Lock()
		defer mu.Unlock()
		results[i] = &res
		buffers[i] = rec
		for next < total && results[next] != nil {
			buffers[next].replay(r.observer)
			buffers[next] = nil
			next++
		}
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, m := range meetings {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			rec := &recorder{}
			res := r.reconcileMeeting(ctx, m, i, total, opts, rec)
			release(i, res, rec)
			return nil
		})
	}
	_ = g.Wait()

	// After cancellation some slots stay empty; keep the completed prefix
	// plus any later meetings that finished, still in order.
	out := make([]MeetingResult, 0, total)
	for i, res := range results {
		if res == nil {
			continue
		}
		if i >= next {
			buffers[i].replay(r.observer)
		}
		out = append(out, *res)
	}
	return out, ctx.Err()
}

func (r *Reconciler) reconcileMeeting(ctx context.Context, m syllabus.Meeting, index, total int, opts Options, obs Observer) MeetingResult {
	ctx = services.WithMeeting(ctx, m.Slug)
	result := MeetingResult{Meeting: m, Started: r.now()}
	obs.OnMeetingStart(ctx, m, index, total)

	states := make(map[ArtifactKind]OutcomeKind, len(r.steps))
	for _, step := range r.steps {
		kind := step.Kind()
		stepCtx := services.WithStep(ctx, string(kind))
		started := r.now()
		outcome := r.runStep(stepCtx, step, m, opts, states)
		outcome.Step = kind
		outcome.Duration = r.now().Sub(started)
		states[kind] = outcome.Kind
		result.Outcomes = append(result.Outcomes, outcome)
		obs.OnStepOutcome(stepCtx, m, outcome)
	}

	result.Finished = r.now()
	obs.OnMeetingDone(ctx, result)
	return result
}

func (r *Reconciler) runStep(ctx context.Context, step Step, m syllabus.Meeting, opts Options, states map[ArtifactKind]OutcomeKind) (outcome Outcome) {
	kind := step.Kind()
	if m.Skips(string(kind)) {
		return Skipped("skipped by syllabus")
	}
	for _, dep := range kind.Requires() {
		if s := states[dep]; s == OutcomeFailed || s == OutcomeBlocked {
			return Outcome{Kind: OutcomeBlocked, Detail: fmt.Sprintf("%s did not complete", dep)}
		}
	}
	if err := ctx.Err(); err != nil {
		return Failed(err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			outcome = Failed(fmt.Errorf("%s step panicked: %v", kind, rec))
		}
	}()

	exists, err := step.Exists(ctx, m)
	if err != nil {
		return Failed(wrapStepError(kind, "exists", err))
	}
	overwrite := opts.Overwrite && kind.Overwritable()
	if exists && kind.Policy() == PolicySkipIfExists && !overwrite {
		return SkippedExists("")
	}

	outcome, err = step.Apply(ctx, m, ApplyOptions{Overwrite: overwrite, Existed: exists})
	if err != nil {
		return Failed(wrapStepError(kind, "apply", err))
	}
	if outcome.Kind == "" {
		outcome.Kind = OutcomeSkipped
	}
	if outcome.Kind == OutcomeFailed && outcome.Err == nil {
		outcome.Err = errors.New(outcome.Detail)
	}
	return outcome
}

// wrapStepError keeps an existing classification and marks anything else as
// an external-service failure.
func wrapStepError(kind ArtifactKind, operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	for _, marker := range []error{services.ErrExternalService, services.ErrValidation, services.ErrSchema, services.ErrNotFound, services.ErrConfiguration} {
		if errors.Is(err, marker) {
			return err
		}
	}
	return services.Wrap(services.ErrExternalService, string(kind), operation, "", err)
}
