package site

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"autobot/internal/fileutil"
	"autobot/internal/group"
)

const indexFile = "_index.md"

// Registrar creates a semester's landing page on the site.
type Registrar struct {
	groupsRoot string
	committer  *Committer
}

// NewRegistrar returns a registrar writing under <siteDir>/<groupsDir>.
func NewRegistrar(siteDir, groupsDir string, committer *Committer) *Registrar {
	return &Registrar{
		groupsRoot: filepath.Join(siteDir, filepath.FromSlash(groupsDir)),
		committer:  committer,
	}
}

// IndexPath is the semester landing page for g.
func (r *Registrar) IndexPath(g group.Group) string {
	return filepath.Join(r.groupsRoot, filepath.FromSlash(g.SitePath()), indexFile)
}

// Register writes the landing page when absent and reports whether it did.
func (r *Registrar) Register(ctx context.Context, g group.Group) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	meta := FrontMatter{
		Title:    fmt.Sprintf("%s %s", g.Label(), g.Semester().Label()),
		Group:    g.Name(),
		Semester: g.Semester().String(),
	}
	body := fmt.Sprintf("Meetings of %s during %s.\n", g.Label(), g.Semester().Label())
	content, err := WriteFrontMatter(meta, []byte(body))
	if err != nil {
		return false, err
	}
	path := r.IndexPath(g)
	err = fileutil.WriteNew(path, content, 0o644)
	if errors.Is(err, fileutil.ErrExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("write semester index: %w", err)
	}
	if r.committer != nil {
		if _, err := r.committer.Commit(ctx, "Register "+g.SitePath(), path); err != nil {
			return true, err
		}
	}
	return true, nil
}
