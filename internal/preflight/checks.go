package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"golang.org/x/sys/unix"

	"autobot/internal/config"
	"autobot/internal/kernels"
	"autobot/internal/services"
)

// Pinger verifies credentials against a remote host.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSiteDir verifies the site checkout. When requireRepo is set the
// directory must also sit inside a git repository.
func CheckSiteDir(name, path string, requireRepo bool) Result {
	access := CheckDirectoryAccess(name, path)
	if !access.Passed || !requireRepo {
		return access
	}
	if _, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true}); err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a git repository)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: open repository: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (git repository ok)", path)}
}

// CheckKernelHost performs one authenticated call with a 10-second timeout.
func CheckKernelHost(ctx context.Context, p Pinger) Result {
	const name = "Kernel host"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeHostError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckKernelsFromConfig evaluates kernel publishing from config and
// connectivity. Missing credentials pass because the kernel step is then
// skipped rather than failed.
func CheckKernelsFromConfig(ctx context.Context, cfg *config.Config, doer kernels.HTTPDoer) Result {
	const name = "Kernel host"

	switch {
	case cfg == nil:
		return Result{Name: name, Detail: "Unknown"}
	case !cfg.Kernels.Enabled:
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	case !cfg.KernelsConfigured():
		return Result{Name: name, Passed: true, Detail: "Missing credentials (kernel step skipped)"}
	}
	return CheckKernelHost(ctx, kernels.NewClient(cfg.Kernels, doer))
}

func summarizeHostError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (host unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (host unreachable)"
	}
	if errors.Is(err, services.ErrConfiguration) {
		return "auth failed (invalid username or key)"
	}
	return err.Error()
}
