// Package workspace lays out a meeting's directory skeleton.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"autobot/internal/fileutil"
	"autobot/internal/logging"
	"autobot/internal/reconcile"
	"autobot/internal/syllabus"
)

const (
	dataDir    = "data"
	keepFile   = ".gitkeep"
	readmeFile = "README.md"
)

// Step ensures <root>/<slug>/ with data/.gitkeep and README.md. It only adds
// what is missing and never rewrites a file.
type Step struct {
	logger *slog.Logger
}

// New returns the workspace step.
func New(logger *slog.Logger) *Step {
	return &Step{logger: logging.NewComponentLogger(logger, "workspace")}
}

func (s *Step) Kind() reconcile.ArtifactKind { return reconcile.KindWorkspace }

// Exists reports whether every skeleton entry is present.
func (s *Step) Exists(_ context.Context, m syllabus.Meeting) (bool, error) {
	for _, path := range skeleton(m) {
		ok, err := fileutil.Exists(path)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (s *Step) Apply(ctx context.Context, m syllabus.Meeting, _ reconcile.ApplyOptions) (reconcile.Outcome, error) {
	if m.Dir == "" {
		return reconcile.Outcome{}, fmt.Errorf("meeting %s has no directory attached", m.Slug)
	}
	dirExisted, err := fileutil.Exists(m.Dir)
	if err != nil {
		return reconcile.Outcome{}, err
	}
	if err := os.MkdirAll(filepath.Join(m.Dir, dataDir), 0o755); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("create meeting directory: %w", err)
	}

	var added []string
	files := map[string][]byte{
		filepath.Join(m.Dir, dataDir, keepFile): nil,
		filepath.Join(m.Dir, readmeFile):        []byte(readme(m)),
	}
	for _, path := range skeleton(m)[2:] {
		err := fileutil.WriteNew(path, files[path], 0o644)
		if errors.Is(err, fileutil.ErrExists) {
			continue
		}
		if err != nil {
			return reconcile.Outcome{}, fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
		rel, _ := filepath.Rel(m.Dir, path)
		added = append(added, rel)
	}

	logging.WithContext(ctx, s.logger).Debug("workspace ensured",
		logging.String("dir", m.Dir),
		logging.Any("added", added),
	)
	if !dirExisted {
		return reconcile.Created(m.Dir), nil
	}
	return reconcile.Updated("added " + strings.Join(added, ", ")), nil
}

// skeleton lists directories first, then files.
func skeleton(m syllabus.Meeting) []string {
	return []string{
		m.Dir,
		filepath.Join(m.Dir, dataDir),
		filepath.Join(m.Dir, dataDir, keepFile),
		filepath.Join(m.Dir, readmeFile),
	}
}

func readme(m syllabus.Meeting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.DisplayTitle())
	fmt.Fprintf(&b, "Meeting date: %s\n", m.DateLabel())
	if m.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", m.Description)
	}
	fmt.Fprintf(&b, "\nThe notebook lives in `%s.ipynb`. Put datasets under `data/` and downloaded references under `papers/`.\n", m.Slug)
	return b.String()
}
