// Package plancmder provides the plan command, the main entry point for
// computing a release plan.
package plancmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cutplanco/cutplan/cmd/cutplan/storepath"
	"github.com/cutplanco/cutplan/pkg/attribution"
	"github.com/cutplanco/cutplan/pkg/config"
	"github.com/cutplanco/cutplan/pkg/dotdir"
	"github.com/cutplanco/cutplan/pkg/eventstream"
	"github.com/cutplanco/cutplan/pkg/eventstream/kafka"
	"github.com/cutplanco/cutplan/pkg/eventstream/nop"
	"github.com/cutplanco/cutplan/pkg/gitrepo"
	"github.com/cutplanco/cutplan/pkg/logger"
	"github.com/cutplanco/cutplan/pkg/plan"
	"github.com/cutplanco/cutplan/pkg/store"
)

type planCommander struct {
	dir   string
	from  string
	json  bool
	watch bool

	repo                string
	remote              string
	defaultBranch       string
	policy              string
	versionGap          string
	branchTemplate      string
	fromPreviousRelease bool
	partialMatch        string
	issueRepos          []string
	storageDriver       string
	sqlitePath          string
	postgresDSN         string
	eventsEnabled       bool
	brokers             []string
	topic               string

	patterns  []config.PatternConfig
	configDir string
	debug     bool
}

const planLongDesc string = `Plan a release for a target version.

Given a target version, plan resolves the comparison version under the
configured policy, decides the release branch strategy, computes the commit
range that is new for this release, and attributes each commit to a tracking
issue using the configured extraction patterns.

Planning is read-only: it never creates branches, tags, or releases. It
reads the git repository directly and issues and pull requests from the
local cache (populate it with "cutplan pull").

Examples:
  cutplan plan 9.0.0
  cutplan plan 9.0.0-rc.1 --policy include-rcs
  cutplan plan 9.0.0-rc.2 --from 9.0.0-rc.1
  cutplan plan 9.0.0 --partial-match error --json`

const planShortDesc string = "Plan a release for a target version"

func NewPlanCmd() *cobra.Command {
	cmder := &planCommander{}

	cmd := &cobra.Command{
		Use:   "plan <target-version>",
		Short: planShortDesc,
		Long:  planLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagRepo,
				config.FlagRemote,
				config.FlagDefaultBranch,
				config.FlagPolicy,
				config.FlagVersionGap,
				config.FlagBranchTemplate,
				config.FlagFromPreviousRelease,
				config.FlagPartialMatch,
				config.FlagIssueRepos,
				config.FlagStorageDriver,
				config.FlagSQLite,
				config.FlagPostgres,
				config.FlagEventsEnabled,
				config.FlagEventsBrokers,
				config.FlagEventsTopic,
			})

			cmder.repo = v.GetString("repository.name")
			cmder.remote = v.GetString("repository.remote")
			cmder.defaultBranch = v.GetString("repository.default_branch")
			cmder.policy = v.GetString("comparison.policy")
			cmder.versionGap = v.GetString("comparison.version_gap")
			cmder.branchTemplate = v.GetString("branch.template")
			cmder.fromPreviousRelease = v.GetBool("branch.from_previous_release")
			cmder.partialMatch = v.GetString("attribution.partial_match")
			cmder.issueRepos = v.GetStringSlice("attribution.issue_repos")
			cmder.storageDriver = v.GetString("storage.driver")
			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			cmder.postgresDSN = v.GetString("storage.postgres_dsn")
			cmder.eventsEnabled = v.GetBool("events.enabled")
			cmder.brokers = v.GetStringSlice("events.brokers")
			cmder.topic = v.GetString("events.topic")

			return cmder.loadPatterns()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVar(&cmder.dir, "dir", ".", "Path to the git repository")
	cmd.Flags().StringVar(&cmder.from, "from", "", "Override the comparison version")
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Emit the plan as JSON")
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Re-plan whenever the repository's refs change")

	config.AddStringFlag(cmd, config.Flags, config.FlagRepo, &cmder.repo)
	config.AddStringFlag(cmd, config.Flags, config.FlagRemote, &cmder.remote)
	config.AddStringFlag(cmd, config.Flags, config.FlagDefaultBranch, &cmder.defaultBranch)
	config.AddStringFlag(cmd, config.Flags, config.FlagPolicy, &cmder.policy)
	config.AddStringFlag(cmd, config.Flags, config.FlagVersionGap, &cmder.versionGap)
	config.AddStringFlag(cmd, config.Flags, config.FlagBranchTemplate, &cmder.branchTemplate)
	config.AddBoolFlag(cmd, config.Flags, config.FlagFromPreviousRelease, &cmder.fromPreviousRelease)
	config.AddStringFlag(cmd, config.Flags, config.FlagPartialMatch, &cmder.partialMatch)
	cmd.Flags().StringSliceVar(&cmder.issueRepos, config.FlagIssueRepos, nil,
		config.Flags[config.FlagIssueRepos].Description)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddBoolFlag(cmd, config.Flags, config.FlagEventsEnabled, &cmder.eventsEnabled)
	cmd.Flags().StringSliceVar(&cmder.brokers, config.FlagEventsBrokers, nil,
		config.Flags[config.FlagEventsBrokers].Description)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &cmder.topic)

	return cmd
}

// loadPatterns reads the structured [[attribution.patterns]] entries from
// the config file. Viper flattening does not round-trip tables-of-tables
// reliably, so patterns load through the Configer instead.
func (c *planCommander) loadPatterns() error {
	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	c.patterns = cfg.Attribution.Patterns
	if len(c.patterns) == 0 {
		c.patterns = config.DefaultPatterns()
	}
	return nil
}

func (c *planCommander) run(ctx context.Context, targetVersion string) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	policy, ok := plan.ParsePolicy(c.policy)
	if !ok {
		return fmt.Errorf("unknown comparison policy: %q (want final-only or include-rcs)", c.policy)
	}
	gapAction, ok := plan.ParseGapAction(c.versionGap)
	if !ok {
		return fmt.Errorf("unknown version gap action: %q (want ignore, warn, or error)", c.versionGap)
	}
	partialAction, ok := attribution.ParseAction(c.partialMatch)
	if !ok {
		return fmt.Errorf("unknown partial match action: %q (want ignore, warn, or error)", c.partialMatch)
	}

	patterns, err := buildPatterns(c.patterns)
	if err != nil {
		return err
	}

	execute := func() error {
		return c.execute(ctx, log, targetVersion, policy, gapAction, partialAction, patterns)
	}

	if !c.watch {
		return execute()
	}

	if err := execute(); err != nil {
		log.Error("planning failed", "error", err)
	}
	return watchRefs(ctx, c.dir, log, func() {
		if err := execute(); err != nil {
			log.Error("planning failed", "error", err)
		}
	})
}

func (c *planCommander) execute(
	ctx context.Context,
	log *slog.Logger,
	targetVersion string,
	policy plan.Policy,
	gapAction plan.GapAction,
	partialAction attribution.Action,
	patterns []attribution.ExtractionPattern,
) error {
	repo, err := gitrepo.Open(ctx, c.dir, c.remote, c.branchTemplate)
	if err != nil {
		return err
	}

	if strings.TrimSpace(c.defaultBranch) == "" {
		c.defaultBranch = repo.DefaultBranch(ctx)
	}

	driver, err := storepath.OpenDriver(ctx, c.storageDriver, c.sqlitePath, c.postgresDSN, c.configDir)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer driver.Close()

	issueRepos := c.issueRepos
	if len(issueRepos) == 0 && strings.TrimSpace(c.repo) != "" {
		issueRepos = []string{c.repo}
	}

	planner := &plan.Planner{
		Versions: repo,
		Refs:     repo,
		Commits:  repo,
		Issues:   store.NewIssueSource(driver, issueRepos),
		PRs:      store.NewPullRequestSource(driver),
		Logger:   log,
	}

	req := plan.Request{
		TargetVersion: targetVersion,
		From:          c.from,
		Policy:        policy,
		GapAction:     gapAction,
		Branch: plan.BranchConfig{
			Template:            c.branchTemplate,
			DefaultBranch:       c.defaultBranch,
			FromPreviousRelease: c.fromPreviousRelease,
		},
		Patterns:           patterns,
		IssueRepos:         issueRepos,
		PartialMatchAction: partialAction,
		OldestCachedIssue:  c.oldestCachedIssue(issueRepos),
	}

	result, err := planner.PlanRelease(ctx, req)
	if err != nil {
		return err
	}

	if c.eventsEnabled {
		if err := c.publish(ctx, result); err != nil {
			log.Warn("could not publish release event", "error", err)
		}
	}

	if c.json {
		return renderJSON(os.Stdout, c.repo, result)
	}
	return renderPlan(os.Stdout, result)
}

// oldestCachedIssue returns the lowest oldest-issue number recorded at last
// pull across the configured issue repos, zero when unknown.
func (c *planCommander) oldestCachedIssue(issueRepos []string) int {
	state, err := dotdir.NewManager().LoadPullState(c.configDir)
	if err != nil || state == nil {
		return 0
	}

	oldest := 0
	for _, repo := range issueRepos {
		n, ok := state.OldestIssue[repo]
		if !ok {
			continue
		}
		if oldest == 0 || int(n) < oldest {
			oldest = int(n)
		}
	}
	return oldest
}

func (c *planCommander) publish(ctx context.Context, result *plan.Result) error {
	var pub eventstream.Publisher = nop.NewPublisher()
	if len(c.brokers) > 0 {
		pub = kafka.NewPublisher(c.brokers, c.topic)
	}
	defer pub.Close()

	event := eventstream.NewReleasePlannedEvent(c.repo, result.Target.Render(false))
	if result.Comparison != nil {
		event.Comparison = result.Comparison.Render(false)
	}
	event.Branch = result.Branch.Name
	event.BranchCreated = result.Branch.MustCreate
	event.CommitCount = len(result.Range.Commits)
	event.IssueCount = distinctIssues(result.Attributions)
	event.PartialCount = len(result.Partials)

	return pub.Publish(ctx, event)
}

func distinctIssues(results []attribution.Result) int {
	seen := map[string]bool{}
	for _, r := range results {
		if r.Attributed() {
			seen[fmt.Sprintf("%s#%d", r.Issue.Repo, r.Issue.Number)] = true
		}
	}
	return len(seen)
}

// buildPatterns compiles the configured pattern entries, ordered lowest
// order value first.
func buildPatterns(configured []config.PatternConfig) ([]attribution.ExtractionPattern, error) {
	entries := make([]config.PatternConfig, len(configured))
	copy(entries, configured)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })

	patterns := make([]attribution.ExtractionPattern, 0, len(entries))
	for _, entry := range entries {
		strategy, ok := attribution.ParseStrategy(entry.Strategy)
		if !ok {
			return nil, fmt.Errorf("unknown extraction strategy: %q", entry.Strategy)
		}

		p, err := attribution.NewPattern(entry.Order, strategy, entry.Regex, entry.Description)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", entry.Order, err)
		}
		patterns = append(patterns, p)
	}

	if len(patterns) == 0 {
		return nil, errors.New("no extraction patterns configured")
	}
	return patterns, nil
}
