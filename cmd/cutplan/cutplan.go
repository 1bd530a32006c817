// Package cutplancmder
package cutplancmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/cutplanco/cutplan/cmd/cutplan/config"
	plancmder "github.com/cutplanco/cutplan/cmd/cutplan/plan"
	pullcmder "github.com/cutplanco/cutplan/cmd/cutplan/pull"
	versionscmder "github.com/cutplanco/cutplan/cmd/cutplan/versions"
	versioncmder "github.com/cutplanco/cutplan/cmd/version"
)

const cutplanLongDesc string = `Cutplan plans releases from your repository history.

Given a target version, cutplan decides which previous release to compare
against, which release branch to build on, which commits are new, and which
tracking issues those commits resolve.

Common workflows:
  cutplan pull             Sync issues and pull requests into the local cache
  cutplan plan 9.0.0-rc.1  Plan a release for the given target version
  cutplan versions         List the versions known to the repository`

const cutplanShortDesc string = "Cutplan - Release Planning"

func NewCutplanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cutplan",
		Short: cutplanShortDesc,
		Long:  cutplanLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .cutplan directory location")

	// Add subcommands
	cmd.AddCommand(plancmder.NewPlanCmd())
	cmd.AddCommand(pullcmder.NewPullCmd())
	cmd.AddCommand(versionscmder.NewVersionsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
