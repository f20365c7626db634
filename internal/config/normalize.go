package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrg()
	c.normalizeKernels()
	c.normalizePapers()
	c.normalizeSite()
	c.normalizeReconcile()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.GroupsRoot) == "" {
		c.Paths.GroupsRoot = defaultGroupsRoot
	}
	if c.Paths.GroupsRoot, err = expandPath(c.Paths.GroupsRoot); err != nil {
		return fmt.Errorf("paths.groups_root: %w", err)
	}
	if c.Paths.SiteDir, err = expandPath(strings.TrimSpace(c.Paths.SiteDir)); err != nil {
		return fmt.Errorf("paths.site_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrg() {
	c.Org.Name = strings.TrimSpace(c.Org.Name)
	if c.Org.Name == "" {
		c.Org.Name = defaultOrgName
	}
}

func (c *Config) normalizeKernels() {
	c.Kernels.BaseURL = strings.TrimRight(strings.TrimSpace(c.Kernels.BaseURL), "/")
	if c.Kernels.BaseURL == "" {
		c.Kernels.BaseURL = defaultKernelsBaseURL
	}
	c.Kernels.Username = strings.TrimSpace(c.Kernels.Username)
	if c.Kernels.Username == "" {
		if value, ok := os.LookupEnv("KAGGLE_USERNAME"); ok {
			c.Kernels.Username = strings.TrimSpace(value)
		}
	}
	c.Kernels.Key = strings.TrimSpace(c.Kernels.Key)
	if c.Kernels.Key == "" {
		if value, ok := os.LookupEnv("KAGGLE_KEY"); ok {
			c.Kernels.Key = strings.TrimSpace(value)
		}
	}
	if c.Kernels.RequestsPerMinute <= 0 {
		c.Kernels.RequestsPerMinute = defaultKernelsRequestsPerMin
	}
	if c.Kernels.TimeoutSeconds <= 0 {
		c.Kernels.TimeoutSeconds = defaultKernelsTimeoutSeconds
	}
}

func (c *Config) normalizePapers() {
	if c.Papers.TimeoutSeconds <= 0 {
		c.Papers.TimeoutSeconds = defaultPapersTimeoutSeconds
	}
	if c.Papers.RequestsPerMinute <= 0 {
		c.Papers.RequestsPerMinute = defaultPapersRequestsPerMinute
	}
	c.Papers.UserAgent = strings.TrimSpace(c.Papers.UserAgent)
	if c.Papers.UserAgent == "" {
		c.Papers.UserAgent = defaultPapersUserAgent
	}
}

func (c *Config) normalizeSite() {
	c.Site.PostsDir = strings.Trim(strings.TrimSpace(c.Site.PostsDir), "/")
	if c.Site.PostsDir == "" {
		c.Site.PostsDir = defaultPostsDir
	}
	c.Site.GroupsDir = strings.Trim(strings.TrimSpace(c.Site.GroupsDir), "/")
	if c.Site.GroupsDir == "" {
		c.Site.GroupsDir = defaultSiteGroupsDir
	}
	c.Site.AuthorName = strings.TrimSpace(c.Site.AuthorName)
	if c.Site.AuthorName == "" {
		c.Site.AuthorName = defaultSiteAuthorName
	}
	c.Site.AuthorEmail = strings.TrimSpace(c.Site.AuthorEmail)
	if c.Site.AuthorEmail == "" {
		c.Site.AuthorEmail = defaultSiteAuthorEmail
	}
}

func (c *Config) normalizeReconcile() {
	if c.Reconcile.Workers <= 0 {
		c.Reconcile.Workers = defaultReconcileWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
