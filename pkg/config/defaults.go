package config

const (
	defaultRemote = "origin"
	defaultHost   = "https://api.github.com"

	// defaultDefaultBranch is empty: the plan command detects the default
	// branch from the remote HEAD when nothing is configured.
	defaultDefaultBranch = ""

	defaultComparisonPolicy = "final-only"
	defaultVersionGap       = "warn"

	defaultBranchTemplate = "release/{major}.{minor}"

	defaultPartialMatch = "warn"

	defaultStorageDriver = "sqlite"
	defaultSQLitePath    = "cache.db"

	defaultEventsTopic = "cutplan.releases"

	defaultFetchWorkers  = 4
	defaultFetchPageSize = 100
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Repository: RepositoryConfig{
			Remote:        defaultRemote,
			DefaultBranch: defaultDefaultBranch,
			Host:          defaultHost,
		},
		Comparison: ComparisonConfig{
			Policy:     defaultComparisonPolicy,
			VersionGap: defaultVersionGap,
		},
		Branch: BranchConfig{
			Template: defaultBranchTemplate,
		},
		Attribution: AttributionConfig{
			PartialMatch: defaultPartialMatch,
			Patterns:     DefaultPatterns(),
		},
		Storage: StorageConfig{
			Driver:     defaultStorageDriver,
			SQLitePath: defaultSQLitePath,
		},
		Events: EventsConfig{
			Topic: defaultEventsTopic,
		},
		Fetch: FetchConfig{
			Workers:  defaultFetchWorkers,
			PageSize: defaultFetchPageSize,
		},
	}
}

// DefaultPatterns returns the standard ranked extraction patterns: branch
// names like "1234-fix-crash" first, then issue links in PR bodies, then
// issue references in PR titles.
func DefaultPatterns() []PatternConfig {
	return []PatternConfig{
		{
			Order:       1,
			Strategy:    "branch_name",
			Regex:       `^(?P<issue>\d+)-`,
			Description: "leading issue number in the source branch name",
		},
		{
			Order:       2,
			Strategy:    "pr_body",
			Regex:       `(?i)(?:closes|fixes|resolves)\s+#(?P<issue>\d+)`,
			Description: "closing keyword followed by an issue reference in the PR body",
		},
		{
			Order:       3,
			Strategy:    "pr_title",
			Regex:       `#(?P<issue>\d+)`,
			Description: "issue reference anywhere in the PR title",
		},
	}
}
