package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"autobot/internal/config"
	"autobot/internal/fileutil"
	"autobot/internal/group"
	"autobot/internal/logging"
	"autobot/internal/notebook"
	"autobot/internal/reconcile"
	"autobot/internal/syllabus"
)

// Exporter is the post reconcile step.
type Exporter struct {
	enabled    bool
	postsRoot  string
	group      group.Group
	overhead   syllabus.Overhead
	committer  *Committer
	kernelLink func(syllabus.Meeting) string
	logger     *slog.Logger
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithCommitter commits changed posts.
func WithCommitter(c *Committer) ExporterOption {
	return func(e *Exporter) { e.committer = c }
}

// WithKernelLink adds a kernel URL to each post's front matter.
func WithKernelLink(link func(syllabus.Meeting) string) ExporterOption {
	return func(e *Exporter) { e.kernelLink = link }
}

// NewExporter returns the post step for g writing beneath siteDir.
func NewExporter(cfg config.Site, siteDir string, g group.Group, overhead syllabus.Overhead, logger *slog.Logger, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		enabled:   cfg.Enabled && siteDir != "",
		postsRoot: filepath.Join(siteDir, filepath.FromSlash(cfg.PostsDir), filepath.FromSlash(g.SitePath())),
		group:     g,
		overhead:  overhead,
		logger:    logging.NewComponentLogger(logger, "site"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exporter) Kind() reconcile.ArtifactKind { return reconcile.KindPost }

// PostPath is where the meeting's post lives.
func (e *Exporter) PostPath(m syllabus.Meeting) string {
	return filepath.Join(e.postsRoot, m.Slug+".md")
}

func (e *Exporter) Exists(_ context.Context, m syllabus.Meeting) (bool, error) {
	if !e.enabled {
		return false, nil
	}
	return fileutil.Exists(e.PostPath(m))
}

func (e *Exporter) Apply(ctx context.Context, m syllabus.Meeting, opts reconcile.ApplyOptions) (reconcile.Outcome, error) {
	if !e.enabled {
		return reconcile.Skipped("site export disabled"), nil
	}
	nb, err := notebook.Read(m.NotebookPath)
	if errors.Is(err, fs.ErrNotExist) {
		return reconcile.Skipped("notebook not present"), nil
	}
	if err != nil {
		return reconcile.Outcome{}, err
	}
	content, err := e.Render(m, nb)
	if err != nil {
		return reconcile.Outcome{}, err
	}

	path := e.PostPath(m)
	outcome := reconcile.Created(path)
	if opts.Existed {
		current, err := os.ReadFile(path)
		if err != nil {
			return reconcile.Outcome{}, fmt.Errorf("read post: %w", err)
		}
		if bytes.Equal(current, content) {
			outcome = reconcile.SkippedExists(path)
		} else {
			outcome = reconcile.Updated(path)
		}
	}
	if outcome.Changed() {
		if err := fileutil.WriteFileAtomic(path, content, 0o644); err != nil {
			return reconcile.Outcome{}, fmt.Errorf("write post: %w", err)
		}
	}

	if e.committer != nil {
		message := fmt.Sprintf("Publish %s/%s", e.group.SitePath(), m.Slug)
		committed, err := e.committer.Commit(ctx, message, path)
		if err != nil {
			return reconcile.Outcome{}, err
		}
		if committed && !outcome.Changed() {
			outcome = reconcile.Updated("committed pending change to " + path)
		}
		if committed {
			logging.WithContext(ctx, e.logger).Info("post committed", logging.String("path", path))
		}
	}
	return outcome, nil
}

// Render builds the full post document for m.
func (e *Exporter) Render(m syllabus.Meeting, nb *notebook.Notebook) ([]byte, error) {
	meta := FrontMatter{
		Title:       m.DisplayTitle(),
		Date:        m.ISODate(),
		Slug:        m.Slug,
		Authors:     notebook.Authors(m, e.overhead),
		Tags:        m.Tags,
		Categories:  []string{e.group.Label()},
		Description: m.Description,
		Group:       e.group.Name(),
		Semester:    e.group.Semester().String(),
		Papers:      m.Papers,
	}
	if e.kernelLink != nil {
		meta.Kernel = e.kernelLink(m)
	}
	return WriteFrontMatter(meta, RenderMarkdown(nb))
}
