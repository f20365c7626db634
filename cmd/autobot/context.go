package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"autobot/internal/config"
	"autobot/internal/group"
	"autobot/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	verboseFlag  *bool

	registry *group.Registry
	now      func() time.Time

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		verboseFlag:  verboseFlag,
		registry:     group.DefaultRegistry(),
		now:          time.Now,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger writes to state_dir/logs/autobot.log, and to stderr with
// --verbose. Console progress owns stdout.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		var overrides logging.Overrides
		if c.logLevelFlag != nil {
			overrides.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		if c.verboseFlag != nil {
			overrides.Verbose = *c.verboseFlag
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, overrides)
	})
	return c.logger, c.loggerErr
}

// resolveGroup maps "<group> [semester]" to a Group. The semester defaults
// to the one containing today.
func (c *commandContext) resolveGroup(args []string) (group.Group, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("group is required (one of %s)", strings.Join(c.registry.Names(), ", "))
	}
	semester := group.CurrentSemester(c.now())
	if len(args) > 1 {
		parsed, err := group.ParseSemester(args[1])
		if err != nil {
			return nil, err
		}
		semester = parsed
	}
	return c.registry.New(args[0], semester)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
