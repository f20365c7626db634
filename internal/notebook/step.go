package notebook

import (
	"context"
	"fmt"
	"log/slog"

	"autobot/internal/fileutil"
	"autobot/internal/group"
	"autobot/internal/logging"
	"autobot/internal/reconcile"
	"autobot/internal/syllabus"
)

// Step materialises <slug>/<slug>.ipynb. It writes when the notebook is
// missing or when overwrite is requested; otherwise the reconciler never
// calls Apply for an existing notebook.
type Step struct {
	group    group.Group
	overhead syllabus.Overhead
	logger   *slog.Logger
}

// NewStep returns the notebook step for g.
func NewStep(g group.Group, overhead syllabus.Overhead, logger *slog.Logger) *Step {
	return &Step{group: g, overhead: overhead, logger: logging.NewComponentLogger(logger, "notebook")}
}

func (s *Step) Kind() reconcile.ArtifactKind { return reconcile.KindNotebook }

func (s *Step) Exists(_ context.Context, m syllabus.Meeting) (bool, error) {
	return fileutil.Exists(m.NotebookPath)
}

func (s *Step) Apply(ctx context.Context, m syllabus.Meeting, opts reconcile.ApplyOptions) (reconcile.Outcome, error) {
	if opts.Existed && !opts.Overwrite {
		return reconcile.SkippedExists(m.NotebookPath), nil
	}
	data, err := Build(s.group, m, s.overhead).Marshal()
	if err != nil {
		return reconcile.Outcome{}, fmt.Errorf("render notebook: %w", err)
	}
	if err := fileutil.WriteFileAtomic(m.NotebookPath, data, 0o644); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("write notebook: %w", err)
	}
	logging.WithContext(ctx, s.logger).Debug("notebook written",
		logging.String("path", m.NotebookPath),
		logging.Bool("regenerated", opts.Existed),
	)
	if opts.Existed {
		return reconcile.Updated("regenerated " + m.NotebookPath), nil
	}
	return reconcile.Created(m.NotebookPath), nil
}
