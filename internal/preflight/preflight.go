package preflight

import (
	"context"
	"errors"

	"autobot/internal/config"
	"autobot/internal/kernels"
	"autobot/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Local executes the filesystem checks for the given config.
func Local(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{CheckDirectoryAccess("Groups root", cfg.Paths.GroupsRoot)}
	if cfg.Site.Enabled {
		results = append(results, CheckSiteDir("Site checkout", cfg.Paths.SiteDir, cfg.Site.Commit))
	}
	return results
}

// RunAll executes Local plus the kernel host check. A nil doer selects the
// kernels client default.
func RunAll(ctx context.Context, cfg *config.Config, doer kernels.HTTPDoer) []Result {
	if cfg == nil {
		return nil
	}
	return append(Local(cfg), CheckKernelsFromConfig(ctx, cfg, doer))
}

// Err folds failed results into a configuration error, or nil when every
// check passed.
func Err(results []Result) error {
	var errs []error
	for _, r := range results {
		if !r.Passed {
			errs = append(errs, services.Wrap(services.ErrConfiguration, "preflight", r.Name, r.Detail, nil))
		}
	}
	return errors.Join(errs...)
}
