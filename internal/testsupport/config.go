package testsupport

import (
	"path/filepath"
	"testing"

	"autobot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// External integrations start disabled; options switch them on.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.GroupsRoot = filepath.Join(base, "groups")
	cfgVal.Paths.SiteDir = filepath.Join(base, "site")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Org.Name = "Test Org"
	cfgVal.Kernels.Enabled = false
	cfgVal.Papers.Enabled = false
	cfgVal.Site.Enabled = false
	cfgVal.Site.Commit = false
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithKernels enables the kernel publisher against baseURL.
func WithKernels(baseURL, username, key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Kernels.Enabled = true
		b.cfg.Kernels.BaseURL = baseURL
		b.cfg.Kernels.Username = username
		b.cfg.Kernels.Key = key
		b.cfg.Kernels.RequestsPerMinute = 0
	}
}

// WithPapers enables reference downloads.
func WithPapers() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Papers.Enabled = true
		b.cfg.Papers.RequestsPerMinute = 0
	}
}

// WithSite enables post export into the config's site directory.
func WithSite() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Site.Enabled = true
	}
}

// WithWorkers sets the reconcile worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reconcile.Workers = n
	}
}

// WithNtfy points notifications at topic.
func WithNtfy(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
