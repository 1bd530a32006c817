// Package configcmder provides the config command for managing persistent
// cutplan configuration stored in the .cutplan/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent cutplan configuration.

Configuration is stored as config.toml in the .cutplan/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  repository.name, repository.remote, repository.default_branch, repository.host,
  comparison.policy, comparison.version_gap,
  branch.template, branch.from_previous_release,
  attribution.partial_match, attribution.issue_repos,
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  events.enabled, events.brokers, events.topic,
  fetch.workers, fetch.page_size

Extraction patterns are structured and edited directly in config.toml under
[[attribution.patterns]].

Use subcommands to get, set, or list configuration values:
  cutplan config set <key> <value>    Set a configuration value
  cutplan config get <key>            Get a configuration value
  cutplan config list                 List all configuration values

Examples:
  cutplan config set repository.name acme/widgets
  cutplan config set comparison.policy include-rcs
  cutplan config get branch.template
  cutplan config list`

const configShortDesc string = "Manage persistent cutplan configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
