// Package versionscmder provides the versions command for listing the
// release versions known to a repository.
package versionscmder

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cutplanco/cutplan/pkg/cliui"
	"github.com/cutplanco/cutplan/pkg/config"
	"github.com/cutplanco/cutplan/pkg/gitrepo"
	"github.com/cutplanco/cutplan/pkg/plan"
	"github.com/cutplanco/cutplan/pkg/semver"
)

type versionsCommander struct {
	dir      string
	remote   string
	template string
	policy   string

	viper *viper.Viper
}

const versionsLongDesc string = `List the versions known to the repository.

Reads the repository's tags, parses each as a semantic version, and prints
them in ascending order together with the comparison version each would be
planned against under the configured policy. Tags that do not parse as
versions are skipped.

Examples:
  cutplan versions
  cutplan versions --policy include-rcs
  cutplan versions --dir ../widgets`

const versionsShortDesc string = "List the versions known to the repository"

func NewVersionsCmd() *cobra.Command {
	cmder := &versionsCommander{}

	cmd := &cobra.Command{
		Use:   "versions",
		Short: versionsShortDesc,
		Long:  versionsLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagRemote,
				config.FlagBranchTemplate,
				config.FlagPolicy,
			})
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.remote = cmder.viper.GetString("repository.remote")
			cmder.template = cmder.viper.GetString("branch.template")
			cmder.policy = cmder.viper.GetString("comparison.policy")
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.dir, "dir", ".", "Path to the git repository")
	config.AddStringFlag(cmd, config.Flags, config.FlagRemote, &cmder.remote)
	config.AddStringFlag(cmd, config.Flags, config.FlagBranchTemplate, &cmder.template)
	config.AddStringFlag(cmd, config.Flags, config.FlagPolicy, &cmder.policy)

	return cmd
}

func (c *versionsCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	policy, ok := plan.ParsePolicy(c.policy)
	if !ok {
		return fmt.Errorf("unknown comparison policy: %q (want final-only or include-rcs)", c.policy)
	}

	repo, err := gitrepo.Open(ctx, c.dir, c.remote, c.template)
	if err != nil {
		return err
	}

	versions, err := repo.ListVersions(ctx)
	if err != nil {
		return fmt.Errorf("listing versions: %w", err)
	}

	if len(versions) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No version tags found."))
		return nil
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Less(versions[j])
	})

	fmt.Println()
	for _, v := range versions {
		rendered := cliui.ValueStyle.Render(v.Render(false))
		if !v.IsFinal() {
			rendered = cliui.DimStyle.Render(v.Render(false))
		}

		if comparison, found := plan.FindComparison(v, versions, policy); found {
			fmt.Printf("  %-28s %s\n", rendered,
				cliui.DimStyle.Render("compares against "+comparison.Render(false)))
		} else {
			fmt.Printf("  %-28s %s\n", rendered, cliui.DimStyle.Render("first release"))
		}
	}
	fmt.Printf("\n  %s\n\n", renderCount(versions))

	return nil
}

func renderCount(versions []semver.Version) string {
	finals := 0
	for _, v := range versions {
		if v.IsFinal() {
			finals++
		}
	}
	return cliui.DimStyle.Render(fmt.Sprintf("%d versions (%d final, %d prerelease)",
		len(versions), finals, len(versions)-finals))
}
