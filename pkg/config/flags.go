package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --remote
// on both "cutplan plan" and "cutplan versions" and "cutplan pull").
type Flag struct {
	// Name is the long flag name (e.g. "policy").
	Name string

	// Shorthand is the one-letter short flag (e.g. "p"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "comparison.policy").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagRepo          = "repo"
	FlagRemote        = "remote"
	FlagDefaultBranch = "default-branch"
	FlagHost          = "host"

	FlagPolicy     = "policy"
	FlagVersionGap = "version-gap"

	FlagBranchTemplate      = "branch-template"
	FlagFromPreviousRelease = "from-previous-release"

	FlagPartialMatch = "partial-match"
	FlagIssueRepos   = "issue-repos"

	FlagStorageDriver = "storage-driver"
	FlagSQLite        = "sqlite"
	FlagPostgres      = "postgres"

	FlagEventsEnabled = "events"
	FlagEventsBrokers = "brokers"
	FlagEventsTopic   = "topic"

	FlagFetchWorkers  = "workers"
	FlagFetchPageSize = "page-size"
)

// Flags is the shared flag registry used by the plan, pull, and versions
// commands. Defaults come from NewDefaultConfig via the viper key.
var Flags = FlagSet{
	FlagRepo:          {Name: FlagRepo, Shorthand: "r", ViperKey: "repository.name", Description: "Repository to plan for (owner/name)"},
	FlagRemote:        {Name: FlagRemote, ViperKey: "repository.remote", Description: "Git remote to consult for branches"},
	FlagDefaultBranch: {Name: FlagDefaultBranch, ViperKey: "repository.default_branch", Description: "Default branch used as a branch source (detected from the remote HEAD when unset)"},
	FlagHost:          {Name: FlagHost, ViperKey: "repository.host", Description: "Hosting API base URL"},

	FlagPolicy:     {Name: FlagPolicy, Shorthand: "p", ViperKey: "comparison.policy", Description: "Comparison policy (final-only or include-rcs)"},
	FlagVersionGap: {Name: FlagVersionGap, ViperKey: "comparison.version_gap", Description: "Version gap action (ignore, warn, error)"},

	FlagBranchTemplate:      {Name: FlagBranchTemplate, ViperKey: "branch.template", Description: "Release branch name template"},
	FlagFromPreviousRelease: {Name: FlagFromPreviousRelease, ViperKey: "branch.from_previous_release", Description: "Branch from the latest release branch instead of the default branch"},

	FlagPartialMatch: {Name: FlagPartialMatch, ViperKey: "attribution.partial_match", Description: "Partial match action (ignore, warn, error)"},
	FlagIssueRepos:   {Name: FlagIssueRepos, ViperKey: "attribution.issue_repos", Description: "Repositories treated as issue trackers, in lookup order"},

	FlagStorageDriver: {Name: FlagStorageDriver, ViperKey: "storage.driver", Description: "Cache storage driver (sqlite, postgres, memory)"},
	FlagSQLite:        {Name: FlagSQLite, Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to the SQLite cache database"},
	FlagPostgres:      {Name: FlagPostgres, ViperKey: "storage.postgres_dsn", Description: "Postgres connection string for the cache"},

	FlagEventsEnabled: {Name: FlagEventsEnabled, ViperKey: "events.enabled", Description: "Publish planned releases to the event stream"},
	FlagEventsBrokers: {Name: FlagEventsBrokers, ViperKey: "events.brokers", Description: "Kafka broker addresses"},
	FlagEventsTopic:   {Name: FlagEventsTopic, ViperKey: "events.topic", Description: "Kafka topic for release events"},

	FlagFetchWorkers:  {Name: FlagFetchWorkers, ViperKey: "fetch.workers", Description: "Concurrent cache writers during pull"},
	FlagFetchPageSize: {Name: FlagFetchPageSize, ViperKey: "fetch.page_size", Description: "Hosting API page size"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
