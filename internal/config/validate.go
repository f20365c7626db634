package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateKernels(); err != nil {
		return err
	}
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validateReconcile(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.GroupsRoot) == "" {
		return errors.New("paths.groups_root must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateKernels() error {
	if !c.Kernels.Enabled {
		return nil
	}
	parsed, err := url.Parse(c.Kernels.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("kernels.base_url must be an absolute URL, got %q", c.Kernels.BaseURL)
	}
	return nil
}

func (c *Config) validateSite() error {
	if c.Site.Enabled && strings.TrimSpace(c.Paths.SiteDir) == "" {
		return errors.New("paths.site_dir must be set when site.enabled is true")
	}
	if strings.Contains(c.Site.PostsDir, "..") {
		return errors.New("site.posts_dir must stay inside paths.site_dir")
	}
	if strings.Contains(c.Site.GroupsDir, "..") {
		return errors.New("site.groups_dir must stay inside paths.site_dir")
	}
	return nil
}

func (c *Config) validateReconcile() error {
	if c.Reconcile.Workers > maxReconcileWorkers {
		return fmt.Errorf("reconcile.workers must be between 1 and %d", maxReconcileWorkers)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	return nil
}
