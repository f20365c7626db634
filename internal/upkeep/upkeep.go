// Package upkeep assembles one semester upkeep run: it locks the semester,
// loads and reorders the syllabus, resolves the selected meetings, and drives
// the reconciler over the configured artifact steps while recording the run
// in the ledger.
package upkeep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"autobot/internal/config"
	"autobot/internal/group"
	"autobot/internal/kernels"
	"autobot/internal/ledger"
	"autobot/internal/logging"
	"autobot/internal/notebook"
	"autobot/internal/notifications"
	"autobot/internal/papers"
	"autobot/internal/preflight"
	"autobot/internal/reconcile"
	"autobot/internal/resolver"
	"autobot/internal/services"
	"autobot/internal/site"
	"autobot/internal/syllabus"
	"autobot/internal/workspace"
)

// ErrLocked is returned when another run holds the semester lock.
var ErrLocked = errors.New("another upkeep run holds the semester lock")

// KernelWebBase prefixes kernel refs in post links.
const KernelWebBase = "https://www.kaggle.com/code/"

// HTTPDoer is the HTTP client shared by the paper fetcher and kernel client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request describes one upkeep invocation.
type Request struct {
	Config    *config.Config
	Group     group.Group
	Selector  resolver.Selector
	Overwrite bool
	// Workers overrides reconcile.workers when positive.
	Workers   int
	Observers []reconcile.Observer
	// HTTP replaces the default clients of the external adapters.
	HTTP     HTTPDoer
	Notifier notifications.Service
	Logger   *slog.Logger
}

// Result describes a finished invocation.
type Result struct {
	RunID string
	// Initialized is set when the syllabus was missing and a skeleton was
	// written instead of reconciling.
	Initialized bool
	// Reordered is set when the syllabus file was rewritten in date order.
	Reordered bool
	Meetings  []syllabus.Meeting
	Report    reconcile.Report
}

// LockPath is the run lock file for g.
func LockPath(cfg *config.Config, g group.Group) string {
	return filepath.Join(cfg.Paths.StateDir, "locks", fmt.Sprintf("%s-%s.lock", g.Name(), g.Semester()))
}

// Run executes an upkeep pass. Run-fatal problems (schema, selector,
// configuration) abort before any artifact is touched. Step failures are
// reported in Result.Report and never returned as the error.
func Run(ctx context.Context, req Request) (Result, error) {
	if req.Config == nil || req.Group == nil {
		return Result{}, errors.New("upkeep requires config and group")
	}
	cfg := req.Config
	g := req.Group
	logger := logging.NewComponentLogger(req.Logger, "upkeep").With(
		logging.String(logging.FieldGroup, g.Name()),
		logging.String(logging.FieldSemester, g.Semester().String()),
	)
	notifier := req.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return Result{}, err
	}
	lockPath := LockPath(cfg, g)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return Result{}, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return Result{}, fmt.Errorf("%s: %w", g.SitePath(), ErrLocked)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	store, err := ledger.Open(cfg)
	if err != nil {
		return Result{}, fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	if n, err := store.MarkInterrupted(ctx, g.Name(), g.Semester().String()); err != nil {
		return Result{}, err
	} else if n > 0 {
		logging.WarnWithContext(logger, "previous runs did not finish", "runs_interrupted",
			logging.Int64("runs", n),
			logging.String(logging.FieldImpact, "their history is incomplete"),
			logging.String(logging.FieldErrorHint, "artifacts are reconciled again by this run"),
		)
	}

	res := Result{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, res.RunID)
	logger = logging.WithContext(ctx, logger)
	if err := store.BeginRun(ctx, ledger.RunStart{
		ID:        res.RunID,
		Group:     g.Name(),
		Semester:  g.Semester().String(),
		Selector:  req.Selector.String(),
		Overwrite: req.Overwrite,
	}); err != nil {
		return res, err
	}
	logger.Info("upkeep started",
		logging.String(logging.FieldEventType, "upkeep_start"),
		logging.String("selector", req.Selector.String()),
		logging.Bool("overwrite", req.Overwrite),
	)

	finish := func(status ledger.Status, totals ledger.RunTotals, runErr error) {
		if err := store.FinishRun(context.WithoutCancel(ctx), res.RunID, status, totals, runErr); err != nil {
			logging.WarnWithContext(logger, "ledger finish failed", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run stays marked running until the next upkeep"),
			)
		}
	}
	fatal := func(err error) (Result, error) {
		logging.ErrorWithContext(logger, "upkeep aborted", "upkeep_aborted",
			logging.Error(err),
			logging.String("error_kind", services.Kind(err)),
			logging.String(logging.FieldErrorHint, "fix the reported problem and rerun; no artifacts were touched"),
		)
		finish(ledger.StatusFailed, ledger.RunTotals{}, err)
		if notifyErr := notifier.NotifyError(context.WithoutCancel(ctx), err, g.SitePath()); notifyErr != nil {
			logger.Warn("error notification failed", logging.Error(notifyErr))
		}
		return res, err
	}

	if err := preflight.Err(preflight.Local(cfg)); err != nil {
		return fatal(err)
	}

	syl := syllabus.NewStore(g, cfg.Paths.GroupsRoot, logger)
	if info, err := os.Stat(syl.Root()); err != nil || !info.IsDir() {
		return fatal(services.Wrap(services.ErrConfiguration, "upkeep", "locate semester",
			fmt.Sprintf("semester root %s does not exist; run semester-setup %s %s first", syl.Root(), g.Name(), g.Semester()), err))
	}
	loaded, err := syl.Load(ctx)
	if syllabus.IsMissing(err) {
		if _, err := syl.Init(ctx); err != nil {
			return fatal(err)
		}
		res.Initialized = true
		logger.Info("syllabus initialised; fill it in and rerun", logging.String("path", syl.Path()))
		finish(ledger.StatusCompleted, ledger.RunTotals{}, nil)
		return res, nil
	}
	if err != nil {
		return fatal(err)
	}
	overhead, err := syllabus.LoadOverhead(syl.Root())
	if err != nil {
		return fatal(err)
	}
	if res.Reordered, err = syl.PersistSorted(ctx); err != nil {
		return fatal(err)
	}
	res.Meetings, err = resolver.Resolve(loaded, req.Selector, resolver.Options{
		Strict: cfg.Reconcile.StrictSelectors,
		Logger: logger,
	})
	if err != nil {
		return fatal(err)
	}

	recorder := ledger.NewRecorder(store, logger)
	observers := append([]reconcile.Observer{reconcile.NewLogObserver(logger), recorder}, req.Observers...)
	r, err := reconcile.New(buildSteps(cfg, g, overhead, req.HTTP, logger),
		reconcile.WithObserver(observers...),
		reconcile.WithLogger(logger),
	)
	if err != nil {
		return fatal(err)
	}

	workers := cfg.Reconcile.Workers
	if req.Workers > 0 {
		workers = req.Workers
	}
	res.Report, err = r.Reconcile(ctx, res.Meetings, reconcile.Options{Overwrite: req.Overwrite, Workers: workers})

	totals := ledger.Totals(res.Report)
	status := ledger.StatusCompleted
	switch {
	case err != nil:
		status = ledger.StatusInterrupted
	case totals.Failed > 0:
		status = ledger.StatusFailed
	}
	finish(status, totals, err)

	summary := notifications.RunSummary{
		Group:    g.Name(),
		Semester: g.Semester().String(),
		Meetings: totals.Meetings,
		Created:  totals.Created,
		Updated:  totals.Updated,
		Skipped:  totals.Skipped,
		Failed:   totals.Failed,
		Duration: res.Report.Duration(),
	}
	if notifyErr := notifier.NotifyRunCompleted(context.WithoutCancel(ctx), summary); notifyErr != nil {
		logger.Warn("completion notification failed", logging.Error(notifyErr))
	}
	logger.Info("upkeep finished",
		logging.String(logging.FieldEventType, "upkeep_complete"),
		logging.String("status", string(status)),
		logging.String("summary", res.Report.Summary().String()),
	)
	return res, err
}

func buildSteps(cfg *config.Config, g group.Group, overhead syllabus.Overhead, doer HTTPDoer, logger *slog.Logger) []reconcile.Step {
	var (
		papersClient  papers.HTTPDoer
		kernelsClient kernels.HTTPDoer
	)
	if doer != nil {
		papersClient, kernelsClient = doer, doer
	}

	publisher := kernels.NewPublisher(kernels.NewClient(cfg.Kernels, kernelsClient), g, cfg.Kernels.Enabled, cfg.Kernels.Private, logger)
	exporterOpts := []site.ExporterOption{}
	if cfg.KernelsConfigured() {
		exporterOpts = append(exporterOpts, site.WithKernelLink(func(m syllabus.Meeting) string {
			return KernelWebBase + publisher.Ref(m)
		}))
	}
	if cfg.Site.Enabled && cfg.Site.Commit {
		exporterOpts = append(exporterOpts, site.WithCommitter(site.NewCommitter(cfg.Paths.SiteDir, cfg.Site.AuthorName, cfg.Site.AuthorEmail)))
	}

	return []reconcile.Step{
		workspace.New(logger),
		notebook.NewStep(g, overhead, logger),
		papers.NewFetcher(cfg.Papers, papersClient, logger),
		publisher,
		site.NewExporter(cfg.Site, cfg.Paths.SiteDir, g, overhead, logger, exporterOpts...),
	}
}
