package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cutplanco/cutplan/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the CUTPLAN_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (CUTPLAN_COMPARISON_POLICY, CUTPLAN_REPOSITORY_NAME, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: CUTPLAN_COMPARISON_POLICY, CUTPLAN_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("CUTPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Repository
	v.SetDefault("repository.name", d.Repository.Name)
	v.SetDefault("repository.remote", d.Repository.Remote)
	v.SetDefault("repository.default_branch", d.Repository.DefaultBranch)
	v.SetDefault("repository.host", d.Repository.Host)

	// Comparison
	v.SetDefault("comparison.policy", d.Comparison.Policy)
	v.SetDefault("comparison.version_gap", d.Comparison.VersionGap)

	// Branch
	v.SetDefault("branch.template", d.Branch.Template)
	v.SetDefault("branch.from_previous_release", d.Branch.FromPreviousRelease)

	// Attribution
	v.SetDefault("attribution.partial_match", d.Attribution.PartialMatch)
	v.SetDefault("attribution.issue_repos", d.Attribution.IssueRepos)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Events
	v.SetDefault("events.enabled", d.Events.Enabled)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// Fetch
	v.SetDefault("fetch.workers", d.Fetch.Workers)
	v.SetDefault("fetch.page_size", d.Fetch.PageSize)
}
