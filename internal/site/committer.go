package site

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"autobot/internal/services"
)

// Committer records changed site files as commits. go-git worktrees are not
// safe for concurrent use, so commits are serialised.
type Committer struct {
	repoDir string
	name    string
	email   string
	now     func() time.Time

	mu sync.Mutex
}

// NewCommitter returns a committer for the repository containing repoDir.
func NewCommitter(repoDir, authorName, authorEmail string) *Committer {
	return &Committer{
		repoDir: repoDir,
		name:    strings.TrimSpace(authorName),
		email:   strings.TrimSpace(authorEmail),
		now:     time.Now,
	}
}

// Commit stages the given paths that differ from HEAD and commits them. It
// reports whether a commit was made; clean paths produce no commit.
func (c *Committer) Commit(ctx context.Context, message string, paths ...string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	repo, err := git.PlainOpenWithOptions(c.repoDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return false, services.Wrap(services.ErrConfiguration, "site", "open repository", c.repoDir+" is not a git repository", err)
		}
		return false, fmt.Errorf("open site repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open site worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("site status: %w", err)
	}

	root := wt.Filesystem.Root()
	staged := 0
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return false, fmt.Errorf("%s is outside the site repository", path)
		}
		rel = filepath.ToSlash(rel)
		fs, ok := status[rel]
		if !ok || (fs.Worktree == git.Unmodified && fs.Staging == git.Unmodified) {
			continue
		}
		if _, err := wt.Add(rel); err != nil {
			return false, fmt.Errorf("stage %s: %w", rel, err)
		}
		staged++
	}
	if staged == 0 {
		return false, nil
	}

	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: c.name, Email: c.email, When: c.now()},
	})
	if err != nil {
		return false, fmt.Errorf("commit site change: %w", err)
	}
	return true, nil
}
