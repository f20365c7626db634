// Package papers keeps each meeting's reference cache in sync with its
// citations. A reference, once fetched, is immutable: present files are
// never refetched or replaced.
package papers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"autobot/internal/config"
	"autobot/internal/fileutil"
	"autobot/internal/logging"
	"autobot/internal/reconcile"
	"autobot/internal/services"
	"autobot/internal/syllabus"
)

const defaultExt = ".pdf"

// HTTPDoer describes the HTTP client used to download references.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher is the papers reconcile step.
type Fetcher struct {
	enabled   bool
	client    HTTPDoer
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
}

// NewFetcher builds a fetcher from configuration. A nil client selects an
// http.Client with the configured timeout.
func NewFetcher(cfg config.Papers, client HTTPDoer, logger *slog.Logger) *Fetcher {
	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{
		enabled:   cfg.Enabled,
		client:    client,
		limiter:   newLimiter(cfg.RequestsPerMinute),
		userAgent: strings.TrimSpace(cfg.UserAgent),
		logger:    logging.NewComponentLogger(logger, "papers"),
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

func (f *Fetcher) Kind() reconcile.ArtifactKind { return reconcile.KindPapers }

// Exists reports whether every citation is already cached. A meeting without
// citations has nothing cached.
func (f *Fetcher) Exists(_ context.Context, m syllabus.Meeting) (bool, error) {
	if len(m.Papers) == 0 {
		return false, nil
	}
	for _, p := range m.Papers {
		_, ok, err := cached(m.PapersDir, p.Key())
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Apply downloads every citation that is not cached yet. A failed download
// does not stop the others; the errors are joined.
func (f *Fetcher) Apply(ctx context.Context, m syllabus.Meeting, _ reconcile.ApplyOptions) (reconcile.Outcome, error) {
	if !f.enabled {
		return reconcile.Skipped("paper downloads disabled"), nil
	}
	if len(m.Papers) == 0 {
		return reconcile.Skipped("no citations"), nil
	}
	logger := logging.WithContext(ctx, f.logger)

	var (
		fetched int
		errs    []error
	)
	for _, p := range m.Papers {
		key := p.Key()
		if _, ok, err := cached(m.PapersDir, key); err != nil {
			errs = append(errs, err)
			continue
		} else if ok {
			continue
		}
		dest, err := f.download(ctx, p.URL, m.PapersDir, key)
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		fetched++
		logger.Debug("reference fetched", logging.String("url", p.URL), logging.String("path", dest))
	}
	if err := errors.Join(errs...); err != nil {
		return reconcile.Outcome{}, err
	}
	if fetched == 0 {
		return reconcile.SkippedExists("all references cached"), nil
	}
	return reconcile.Created(fmt.Sprintf("%d of %d fetched", fetched, len(m.Papers))), nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, dir, key string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "papers", "build request", rawURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "papers", "download", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", services.Wrap(services.ErrExternalService, "papers", "download", fmt.Sprintf("GET %s returned %d", rawURL, resp.StatusCode), nil)
	}

	dest := filepath.Join(dir, key+extension(rawURL, resp.Header.Get("Content-Type")))
	err = fileutil.WriteStreamAtomic(dest, 0o644, func(w io.Writer) error {
		_, err := io.Copy(w, resp.Body)
		return err
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "papers", "save", rawURL, err)
	}
	return dest, nil
}

// cached finds <dir>/<key>.<ext>, ignoring in-flight temp files.
func cached(dir, key string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.TrimSuffix(name, filepath.Ext(name)) == key {
			return filepath.Join(dir, name), true, nil
		}
	}
	return "", false, nil
}

func extension(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); len(ext) > 1 && len(ext) <= 5 && isAlpha(ext[1:]) {
			return ext
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "application/pdf":
			return ".pdf"
		case "text/html":
			return ".html"
		}
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			return exts[0]
		}
	}
	return defaultExt
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
