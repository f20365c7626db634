package config

const (
	defaultConfigPath              = "~/.config/autobot/config.toml"
	defaultGroupsRoot              = "~/ucfai"
	defaultSiteDir                 = "~/ucfai/ucfai.org"
	defaultOrgName                 = "ucfai"
	defaultKernelsBaseURL          = "https://www.kaggle.com/api/v1"
	defaultKernelsRequestsPerMin   = 20
	defaultKernelsTimeoutSeconds   = 60
	defaultPapersTimeoutSeconds    = 60
	defaultPapersRequestsPerMinute = 30
	defaultPapersUserAgent         = "autobot/dev (+https://ucfai.org)"
	defaultPostsDir                = "content"
	defaultSiteGroupsDir           = "content"
	defaultSiteAuthorName          = "autobot"
	defaultSiteAuthorEmail         = "autobot@ucfai.org"
	defaultReconcileWorkers        = 1
	defaultNotifyRequestTimeout    = 10
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	maxReconcileWorkers            = 8
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			GroupsRoot: defaultGroupsRoot,
			SiteDir:    defaultSiteDir,
			StateDir:   defaultStateDir(),
		},
		Org: Org{
			Name: defaultOrgName,
		},
		Kernels: Kernels{
			Enabled:           true,
			BaseURL:           defaultKernelsBaseURL,
			Private:           true,
			RequestsPerMinute: defaultKernelsRequestsPerMin,
			TimeoutSeconds:    defaultKernelsTimeoutSeconds,
		},
		Papers: Papers{
			Enabled:           true,
			TimeoutSeconds:    defaultPapersTimeoutSeconds,
			RequestsPerMinute: defaultPapersRequestsPerMinute,
			UserAgent:         defaultPapersUserAgent,
		},
		Site: Site{
			Enabled:     true,
			PostsDir:    defaultPostsDir,
			GroupsDir:   defaultSiteGroupsDir,
			AuthorName:  defaultSiteAuthorName,
			AuthorEmail: defaultSiteAuthorEmail,
		},
		Reconcile: Reconcile{
			Workers: defaultReconcileWorkers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
