package plan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cutplanco/cutplan/pkg/attribution"
	"github.com/cutplanco/cutplan/pkg/semver"
)

// GapAction is the policy applied when a version gap is detected between
// the comparison version and the target.
type GapAction int

const (
	GapIgnore GapAction = iota
	GapWarn
	GapError
)

// ParseGapAction parses the config spelling of a gap action.
func ParseGapAction(s string) (GapAction, bool) {
	switch s {
	case "ignore", "":
		return GapIgnore, true
	case "warn":
		return GapWarn, true
	case "error":
		return GapError, true
	default:
		return GapIgnore, false
	}
}

// PullRequestInfo is the cached pull request detail used to enrich commits
// before attribution.
type PullRequestInfo struct {
	Number     int
	Title      string
	Body       string
	HeadBranch string
	URL        string
}

// PullRequestLookup supplies cached pull request details. A nil result with
// a nil error means the PR is not cached.
type PullRequestLookup interface {
	PullRequest(ctx context.Context, number int) (*PullRequestInfo, error)
}

// BranchConfig is the branch-policy portion of a planning request.
type BranchConfig struct {
	Template            string
	DefaultBranch       string
	FromPreviousRelease bool
}

// Request is a single planning run's inputs.
type Request struct {
	// TargetVersion is the version identifier to plan, e.g. "2.0.0-rc.1".
	TargetVersion string

	// From optionally overrides the computed comparison version.
	From string

	Policy    Policy
	Branch    BranchConfig
	GapAction GapAction

	// Patterns is the ranked issue extraction pattern list.
	Patterns []attribution.ExtractionPattern

	// IssueRepos is the set of repositories treated as authoritative
	// issue trackers.
	IssueRepos []string

	PartialMatchAction attribution.Action

	// OldestCachedIssue feeds the older-than-cutoff heuristic, zero when
	// unknown.
	OldestCachedIssue int
}

// Result is a completed release plan.
type Result struct {
	Target     semver.Version
	Comparison *semver.Version
	Branch     BranchPlan
	Range      CommitRange

	Attributions []attribution.Result

	// Partials are the classified partial matches, resolved or not.
	// Policy enforcement has already run; under the error action the plan
	// never reaches the caller.
	Partials []attribution.PartialMatch
}

// Planner wires the resolvers to their repository collaborators. Every
// provider presents an already-fetched snapshot; the planner itself
// performs no repository mutation.
type Planner struct {
	Versions VersionProvider
	Refs     RefProvider
	Commits  CommitProvider
	Issues   attribution.Lookup

	// PRs is optional; without it commits are attributed on nothing and
	// remain unattributed (extraction fields stay empty).
	PRs PullRequestLookup

	Logger *slog.Logger
}

// PlanRelease runs a full planning pass: comparison resolution, branch
// strategy, commit-range resolution, attribution, and partial-match policy
// enforcement. Identical snapshots yield identical plans.
func (p *Planner) PlanRelease(ctx context.Context, req Request) (*Result, error) {
	target, err := semver.Parse(req.TargetVersion)
	if err != nil {
		return nil, err
	}

	comparison, err := p.resolveComparison(ctx, target, req)
	if err != nil {
		return nil, err
	}

	if comparison != nil {
		if err := checkGap(*comparison, target, req.GapAction, p.Logger); err != nil {
			return nil, err
		}
	}

	branch, err := p.planBranch(ctx, target, req.Branch)
	if err != nil {
		return nil, err
	}

	// The head ref is always the branch the strategist resolved: the
	// source ref while the branch is still to be created, the branch
	// itself once it exists.
	headRef := branch.Name
	if branch.MustCreate {
		headRef = branch.SourceRef
	}

	rng, err := ResolveRange(ctx, p.Versions, p.Commits, target, comparison, headRef)
	if err != nil {
		return nil, err
	}

	changes, err := p.buildChanges(ctx, rng.Commits)
	if err != nil {
		return nil, err
	}

	attributions, err := attribution.Attribute(ctx, changes, req.Patterns, p.Issues, req.IssueRepos)
	if err != nil {
		return nil, err
	}

	partials, resolvedKeys := collectPartials(attributions, req.OldestCachedIssue)
	if err := attribution.Enforce(partials, resolvedKeys, req.PartialMatchAction, p.Logger); err != nil {
		return nil, err
	}

	p.Logger.Debug("release planned",
		"target", target.Render(false),
		"branch", branch.Name,
		"must_create", branch.MustCreate,
		"commits", len(rng.Commits),
	)

	return &Result{
		Target:       target,
		Comparison:   comparison,
		Branch:       branch,
		Range:        rng,
		Attributions: attributions,
		Partials:     partials,
	}, nil
}

func (p *Planner) resolveComparison(ctx context.Context, target semver.Version, req Request) (*semver.Version, error) {
	if req.From != "" {
		from, err := semver.Parse(req.From)
		if err != nil {
			return nil, err
		}
		return &from, nil
	}

	available, err := p.Versions.ListVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}

	comparison, ok := FindComparison(target, available, req.Policy)
	if !ok {
		return nil, nil
	}
	return &comparison, nil
}

func (p *Planner) planBranch(ctx context.Context, target semver.Version, cfg BranchConfig) (BranchPlan, error) {
	name := RenderBranchName(cfg.Template, target)

	local, err := p.Refs.BranchExists(ctx, name, false)
	if err != nil {
		return BranchPlan{}, fmt.Errorf("checking local branch %s: %w", name, err)
	}
	remote, err := p.Refs.BranchExists(ctx, name, true)
	if err != nil {
		return BranchPlan{}, fmt.Errorf("checking remote branch %s: %w", name, err)
	}

	facts := BranchFacts{
		ExistsLocally:       local,
		ExistsRemotely:      remote,
		DefaultBranch:       cfg.DefaultBranch,
		FromPreviousRelease: cfg.FromPreviousRelease,
	}

	if cfg.FromPreviousRelease && !local && !remote {
		latest, ok, err := p.Refs.LatestReleaseBranch(ctx)
		if err != nil {
			return BranchPlan{}, fmt.Errorf("resolving latest release branch: %w", err)
		}
		if ok {
			facts.LatestReleaseBranch = latest
		}
	}

	return PlanBranch(name, facts), nil
}

// buildChanges enriches commits with cached pull request details so the
// extraction patterns have branch names, titles, and bodies to work with.
func (p *Planner) buildChanges(ctx context.Context, commits []Commit) ([]attribution.Change, error) {
	changes := make([]attribution.Change, 0, len(commits))
	for _, c := range commits {
		change := attribution.Change{SHA: c.SHA, PRNumber: c.PRNumber}

		if c.PRNumber != 0 && p.PRs != nil {
			pr, err := p.PRs.PullRequest(ctx, c.PRNumber)
			if err != nil {
				return nil, fmt.Errorf("loading PR #%d: %w", c.PRNumber, err)
			}
			if pr != nil {
				change.BranchName = pr.HeadBranch
				change.Title = pr.Title
				change.Body = pr.Body
			}
		}

		changes = append(changes, change)
	}
	return changes, nil
}

// collectPartials classifies every partial match and gathers the keys that
// some other change bound successfully.
func collectPartials(results []attribution.Result, oldestCached int) ([]attribution.PartialMatch, map[string]bool) {
	cctx := attribution.ClassifyContext{OldestCachedIssue: oldestCached}

	resolvedKeys := make(map[string]bool)
	var partials []attribution.PartialMatch

	for _, r := range results {
		if r.Attributed() {
			resolvedKeys[r.IssueKey] = true
			continue
		}
		if r.Partial != nil {
			p := *r.Partial
			p.Reasons = attribution.ClassifyReasons(p, cctx)
			partials = append(partials, p)
		}
	}

	return partials, resolvedKeys
}

// checkGap warns or fails when consecutive release numbering skips a step.
func checkGap(from, to semver.Version, action GapAction, logger *slog.Logger) error {
	if action == GapIgnore || !hasGap(from, to) {
		return nil
	}

	if action == GapError {
		return VersionGapError{From: from.Render(false), To: to.Render(false)}
	}

	logger.Warn("version gap detected",
		"from", from.Render(false),
		"to", to.Render(false),
	)
	return nil
}

func hasGap(from, to semver.Version) bool {
	switch {
	case to.Major > from.Major+1:
		return true
	case to.Major == from.Major && to.Minor > from.Minor+1:
		return true
	case to.Major == from.Major && to.Minor == from.Minor && to.Patch > from.Patch+1:
		return true
	default:
		return false
	}
}
