// Package pullcmder provides the pull command for syncing issues and pull
// requests from the hosting provider into the local cache.
package pullcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cutplanco/cutplan/cmd/cutplan/storepath"
	"github.com/cutplanco/cutplan/pkg/cliui"
	"github.com/cutplanco/cutplan/pkg/config"
	"github.com/cutplanco/cutplan/pkg/dotdir"
	"github.com/cutplanco/cutplan/pkg/fetch"
	"github.com/cutplanco/cutplan/pkg/hosting"
	"github.com/cutplanco/cutplan/pkg/logger"
	"github.com/cutplanco/cutplan/pkg/store"
)

type pullCommander struct {
	since         string
	repo          string
	issueRepos    []string
	host          string
	storageDriver string
	sqlitePath    string
	postgresDSN   string
	workers       uint
	pageSize      uint

	configDir string
	debug     bool
}

const pullLongDesc string = `Sync issues and pull requests into the local cache.

Walks the hosting provider's API for the release repository and every
configured issue repository, then persists issues and pull requests to the
cache. Planning reads only from this cache, so run pull before plan whenever
the repositories have new activity.

Authentication reads CUTPLAN_TOKEN, falling back to GITHUB_TOKEN.

Examples:
  cutplan pull --repo acme/widgets
  cutplan pull --repo acme/widgets --issue-repos acme/tracker
  cutplan pull --storage-driver postgres --postgres "$DSN"`

const pullShortDesc string = "Sync issues and pull requests into the local cache"

func NewPullCmd() *cobra.Command {
	cmder := &pullCommander{}

	cmd := &cobra.Command{
		Use:   "pull",
		Short: pullShortDesc,
		Long:  pullLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagRepo,
				config.FlagIssueRepos,
				config.FlagHost,
				config.FlagStorageDriver,
				config.FlagSQLite,
				config.FlagPostgres,
				config.FlagFetchWorkers,
				config.FlagFetchPageSize,
			})

			cmder.repo = v.GetString("repository.name")
			cmder.issueRepos = v.GetStringSlice("attribution.issue_repos")
			cmder.host = v.GetString("repository.host")
			cmder.storageDriver = v.GetString("storage.driver")
			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			cmder.postgresDSN = v.GetString("storage.postgres_dsn")
			cmder.workers = v.GetUint("fetch.workers")
			cmder.pageSize = v.GetUint("fetch.page_size")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.since, "since", "",
		"Only sync entities updated since this time (duration like 720h, or a YYYY-MM-DD date)")
	config.AddStringFlag(cmd, config.Flags, config.FlagRepo, &cmder.repo)
	cmd.Flags().StringSliceVar(&cmder.issueRepos, config.FlagIssueRepos, nil,
		config.Flags[config.FlagIssueRepos].Description)
	config.AddStringFlag(cmd, config.Flags, config.FlagHost, &cmder.host)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddUintFlag(cmd, config.Flags, config.FlagFetchWorkers, &cmder.workers)
	config.AddUintFlag(cmd, config.Flags, config.FlagFetchPageSize, &cmder.pageSize)

	return cmd
}

func (c *pullCommander) run(ctx context.Context) error {
	if strings.TrimSpace(c.repo) == "" {
		return errors.New("no repository configured; pass --repo or set repository.name")
	}

	log := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	driver, err := storepath.OpenDriver(ctx, c.storageDriver, c.sqlitePath, c.postgresDSN, c.configDir)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer driver.Close()

	var source fetch.Source = hosting.NewClient(c.host, resolveToken(), hosting.WithPageSize(c.pageSize))
	if c.since != "" {
		cutoff, err := parseSince(c.since, time.Now().UTC())
		if err != nil {
			return err
		}
		source = fetch.NewSinceSource(source, cutoff)
	}

	pool, err := fetch.NewPool(&fetch.Config{
		Driver:     driver,
		NumWorkers: c.workers,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}

	syncer := fetch.NewSyncer(source, pool, log)
	summary := &fetch.Summary{}

	repos := issueRepoSet(c.repo, c.issueRepos)

	if err := cliui.Step(os.Stdout, "Syncing issues", func() error {
		return syncer.SyncIssues(ctx, repos, summary)
	}); err != nil {
		return err
	}

	if err := cliui.Step(os.Stdout, "Syncing pull requests", func() error {
		return syncer.SyncPullRequests(ctx, c.repo, summary)
	}); err != nil {
		return err
	}

	syncer.Finish(summary)

	if err := c.savePullState(ctx, driver, repos); err != nil {
		log.Warn("could not save pull state", "error", err)
	}

	fmt.Printf("\n  %s Cached %d issues and %d pull requests (%d written, %d failed)\n\n",
		cliui.SuccessMark, summary.Issues, summary.PullRequests, summary.Written, summary.Failed)

	if summary.Failed > 0 {
		return fmt.Errorf("%d cache writes failed", summary.Failed)
	}
	return nil
}

// savePullState records the sync time and the oldest cached issue per repo
// so planning can tell "never existed" from "predates the cached window".
func (c *pullCommander) savePullState(ctx context.Context, driver store.Driver, repos []string) error {
	state := &dotdir.PullState{
		LastPull:    time.Now().UTC(),
		OldestIssue: make(map[string]int64, len(repos)),
	}

	for _, repo := range repos {
		oldest, err := driver.OldestIssueNumber(ctx, repo)
		if err != nil {
			return err
		}
		if oldest > 0 {
			state.OldestIssue[repo] = int64(oldest)
		}
	}

	return dotdir.NewManager().SavePullState(state, c.configDir)
}

// parseSince accepts a duration (cutoff = now minus duration), an RFC 3339
// timestamp, or a plain date.
func parseSince(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("could not parse --since value %q", s)
}

func resolveToken() string {
	if token := strings.TrimSpace(os.Getenv("CUTPLAN_TOKEN")); token != "" {
		return token
	}
	return strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
}

// issueRepoSet returns the release repo plus the issue repos, deduplicated,
// release repo first.
func issueRepoSet(repo string, issueRepos []string) []string {
	seen := map[string]bool{repo: true}
	repos := []string{repo}
	for _, r := range issueRepos {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		repos = append(repos, r)
	}
	return repos
}
