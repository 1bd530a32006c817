package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent cutplan configuration stored as config.toml
// in the .cutplan/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Repository  RepositoryConfig  `toml:"repository"`
	Comparison  ComparisonConfig  `toml:"comparison"`
	Branch      BranchConfig      `toml:"branch"`
	Attribution AttributionConfig `toml:"attribution"`
	Storage     StorageConfig     `toml:"storage"`
	Events      EventsConfig      `toml:"events"`
	Fetch       FetchConfig       `toml:"fetch"`
}

// RepositoryConfig identifies the local checkout and its hosted counterpart.
type RepositoryConfig struct {
	// Name is the "owner/repo" slug on the hosting provider.
	Name string `toml:"name,omitempty"`

	// Remote is the git remote release branches and tags live on.
	Remote string `toml:"remote,omitempty"`

	// DefaultBranch is the branch new release branches are cut from.
	DefaultBranch string `toml:"default_branch,omitempty"`

	// Host is the hosting provider API base URL.
	Host string `toml:"host,omitempty"`
}

// ComparisonConfig controls how the previous comparison version is chosen.
type ComparisonConfig struct {
	// Policy is "final-only" or "include-rcs".
	Policy string `toml:"policy,omitempty"`

	// VersionGap is "ignore", "warn", or "error" and controls what happens
	// when the target skips over the expected next version.
	VersionGap string `toml:"version_gap,omitempty"`
}

// BranchConfig controls release branch naming and sourcing.
type BranchConfig struct {
	// Template renders the branch name from the target version,
	// e.g. "release/{major}.{minor}".
	Template string `toml:"template,omitempty"`

	// FromPreviousRelease cuts new branches from the most recent existing
	// release branch instead of the default branch.
	FromPreviousRelease bool `toml:"from_previous_release,omitempty"`
}

// AttributionConfig controls issue attribution and partial match handling.
type AttributionConfig struct {
	// PartialMatch is "ignore", "warn", or "error".
	PartialMatch string `toml:"partial_match,omitempty"`

	// IssueRepos lists the "owner/repo" slugs issues are expected to live in.
	IssueRepos []string `toml:"issue_repos,omitempty"`

	// Patterns are the ranked extraction patterns, evaluated lowest order first.
	Patterns []PatternConfig `toml:"patterns,omitempty"`
}

// PatternConfig is one ranked extraction pattern.
type PatternConfig struct {
	Order       int    `toml:"order"`
	Strategy    string `toml:"strategy"`
	Regex       string `toml:"regex"`
	Description string `toml:"description,omitempty"`
}

// StorageConfig holds issue/PR cache storage settings.
type StorageConfig struct {
	// Driver is "sqlite", "postgres", or "inmemory".
	Driver string `toml:"driver,omitempty"`

	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventsConfig holds release event stream settings.
type EventsConfig struct {
	Enabled bool     `toml:"enabled,omitempty"`
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// FetchConfig holds hosting provider sync settings.
type FetchConfig struct {
	// Workers is the number of concurrent fetch workers.
	Workers uint `toml:"workers,omitempty"`

	// PageSize is the number of items requested per API page.
	PageSize uint `toml:"page_size,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
// Pattern entries are structured and edited in the file directly, so they are
// not addressable here.
var configKeys = map[string]configKeyInfo{
	"repository.name": {
		get: func(c *Config) string { return c.Repository.Name },
		set: func(c *Config, v string) error { c.Repository.Name = v; return nil },
	},
	"repository.remote": {
		get: func(c *Config) string { return c.Repository.Remote },
		set: func(c *Config, v string) error { c.Repository.Remote = v; return nil },
	},
	"repository.default_branch": {
		get: func(c *Config) string { return c.Repository.DefaultBranch },
		set: func(c *Config, v string) error { c.Repository.DefaultBranch = v; return nil },
	},
	"repository.host": {
		get: func(c *Config) string { return c.Repository.Host },
		set: func(c *Config, v string) error { c.Repository.Host = v; return nil },
	},
	"comparison.policy": {
		get: func(c *Config) string { return c.Comparison.Policy },
		set: func(c *Config, v string) error { c.Comparison.Policy = v; return nil },
	},
	"comparison.version_gap": {
		get: func(c *Config) string { return c.Comparison.VersionGap },
		set: func(c *Config, v string) error { c.Comparison.VersionGap = v; return nil },
	},
	"branch.template": {
		get: func(c *Config) string { return c.Branch.Template },
		set: func(c *Config, v string) error { c.Branch.Template = v; return nil },
	},
	"branch.from_previous_release": {
		get: func(c *Config) string { return strconv.FormatBool(c.Branch.FromPreviousRelease) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for branch.from_previous_release: %w", err)
			}
			c.Branch.FromPreviousRelease = b
			return nil
		},
	},
	"attribution.partial_match": {
		get: func(c *Config) string { return c.Attribution.PartialMatch },
		set: func(c *Config, v string) error { c.Attribution.PartialMatch = v; return nil },
	},
	"attribution.issue_repos": {
		get: func(c *Config) string { return strings.Join(c.Attribution.IssueRepos, ",") },
		set: func(c *Config, v string) error {
			c.Attribution.IssueRepos = splitList(v)
			return nil
		},
	},
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error { c.Storage.Driver = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"events.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Events.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for events.enabled: %w", err)
			}
			c.Events.Enabled = b
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = splitList(v)
			return nil
		},
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"fetch.workers": {
		get: func(c *Config) string {
			if c.Fetch.Workers == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Fetch.Workers), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for fetch.workers: %w", err)
			}
			c.Fetch.Workers = uint(n)
			return nil
		},
	},
	"fetch.page_size": {
		get: func(c *Config) string {
			if c.Fetch.PageSize == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Fetch.PageSize), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for fetch.page_size: %w", err)
			}
			c.Fetch.PageSize = uint(n)
			return nil
		},
	},
}

// splitList parses a comma-separated value into a slice, trimming whitespace
// and dropping empty entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
