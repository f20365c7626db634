package bootstrap

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"autobot/internal/fileutil"
	"autobot/internal/group"
	"autobot/internal/logging"
	"autobot/internal/services"
	"autobot/internal/syllabus"
)

// EnvFileName is the templated semester configuration file.
const EnvFileName = "env.yml"

//go:embed templates/env.yml.tmpl templates/overhead.yml
var templateFS embed.FS

var envTemplate = template.Must(template.New("env.yml.tmpl").
	Funcs(template.FuncMap{"quote": strconv.Quote}).
	ParseFS(templateFS, "templates/env.yml.tmpl"))

// SiteRegistrar creates the semester's site surface.
type SiteRegistrar interface {
	Register(ctx context.Context, g group.Group) (bool, error)
}

type envData struct {
	Org           string
	Group         string
	GroupLabel    string
	Semester      string
	SemesterLabel string
}

// Bootstrapper initializes semester roots under a groups root.
type Bootstrapper struct {
	groupsRoot string
	org        string
	confirmer  Confirmer
	registrar  SiteRegistrar
	logger     *slog.Logger
}

// New returns a bootstrapper. A nil registrar skips site registration.
func New(groupsRoot, org string, confirmer Confirmer, registrar SiteRegistrar, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		groupsRoot: groupsRoot,
		org:        org,
		confirmer:  confirmer,
		registrar:  registrar,
		logger:     logging.NewComponentLogger(logger, "bootstrap"),
	}
}

// Run materializes the skeleton for g. An existing semester root requires
// confirmation; declining returns services.ErrDeclined before any write.
func (b *Bootstrapper) Run(ctx context.Context, g group.Group) error {
	root := g.SemesterRoot(b.groupsRoot)
	logger := b.logger.With(
		logging.String(logging.FieldGroup, g.Name()),
		logging.String(logging.FieldSemester, g.Semester().String()),
	)

	exists, err := fileutil.Exists(root)
	if err != nil {
		return fmt.Errorf("inspect semester root: %w", err)
	}
	if exists {
		logging.WarnWithContext(logger, "semester root already exists", "semester_root_exists",
			logging.String("path", root),
			logging.String(logging.FieldImpact, "env.yml and overhead.yml will be overwritten"),
			logging.String(logging.FieldErrorHint, "decline to keep the current files"),
		)
		if b.confirmer == nil {
			return services.Wrap(services.ErrDeclined, "bootstrap", "confirm", "no confirmer available", nil)
		}
		ok, err := b.confirmer.Confirm(ctx, fmt.Sprintf("%s exists. The following actions are destructive. Continue?", root))
		if err != nil {
			return err
		}
		if !ok {
			return services.Wrap(services.ErrDeclined, "bootstrap", "confirm", root, nil)
		}
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create semester root: %w", err)
	}

	env, err := renderEnv(envData{
		Org:           b.org,
		Group:         g.Name(),
		GroupLabel:    g.Label(),
		Semester:      g.Semester().String(),
		SemesterLabel: g.Semester().Label(),
	})
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(root, EnvFileName), env, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", EnvFileName, err)
	}
	overhead, err := templateFS.ReadFile("templates/overhead.yml")
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(root, syllabus.OverheadFileName), overhead, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", syllabus.OverheadFileName, err)
	}
	logger.Info("semester configuration written", logging.String("path", root))

	if _, err := syllabus.NewStore(g, b.groupsRoot, b.logger).Init(ctx); err != nil {
		return err
	}

	if b.registrar == nil {
		return nil
	}
	registered, err := b.registrar.Register(ctx, g)
	if err != nil {
		return fmt.Errorf("register semester on site: %w", err)
	}
	if registered {
		logger.Info("semester registered on site", logging.String("site_path", g.SitePath()))
	}
	return nil
}

func renderEnv(data envData) ([]byte, error) {
	var buf bytes.Buffer
	if err := envTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", EnvFileName, err)
	}
	return buf.Bytes(), nil
}
