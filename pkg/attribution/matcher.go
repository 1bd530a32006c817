// Package attribution binds code changes to tracking issues.
//
// A ranked list of extraction patterns is evaluated against each change's
// branch name, PR body, or PR title; the first matching pattern yields a
// candidate issue key, which is then resolved against the configured issue
// repositories. Keys that extract but do not bind cleanly become partial
// matches, classified and policy-checked by this package as well.
package attribution

import (
	"context"
	"fmt"
	"regexp"
	"sort"
)

// Strategy names the change field a pattern applies to.
type Strategy int

const (
	StrategyBranchName Strategy = iota
	StrategyPRBody
	StrategyPRTitle
)

// ParseStrategy parses the config spelling of a strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "branch_name":
		return StrategyBranchName, true
	case "pr_body":
		return StrategyPRBody, true
	case "pr_title":
		return StrategyPRTitle, true
	default:
		return StrategyBranchName, false
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyPRBody:
		return "pr_body"
	case StrategyPRTitle:
		return "pr_title"
	default:
		return "branch_name"
	}
}

// ExtractionPattern is a compiled, ranked issue-key extractor.
type ExtractionPattern struct {
	Order       int
	Strategy    Strategy
	Description string

	re *regexp.Regexp
}

// NewPattern compiles an extraction pattern. The expression must contain a
// named capture group "issue".
func NewPattern(order int, strategy Strategy, expr, description string) (ExtractionPattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return ExtractionPattern{}, fmt.Errorf("compiling pattern %q: %w", expr, err)
	}

	hasIssue := false
	for _, name := range re.SubexpNames() {
		if name == "issue" {
			hasIssue = true
			break
		}
	}
	if !hasIssue {
		return ExtractionPattern{}, fmt.Errorf("pattern %q has no named capture group \"issue\"", expr)
	}

	return ExtractionPattern{
		Order:       order,
		Strategy:    strategy,
		Description: description,
		re:          re,
	}, nil
}

// extract applies the pattern to text and returns the issue capture.
func (p ExtractionPattern) extract(text string) (string, bool) {
	m := p.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	idx := p.re.SubexpIndex("issue")
	if idx < 0 || idx >= len(m) || m[idx] == "" {
		return "", false
	}
	return m[idx], true
}

// Change is a single unit of work under attribution: a commit, optionally
// enriched with its pull request's branch, title, and body. Fields that are
// not available stay empty and patterns targeting them are skipped.
type Change struct {
	SHA        string
	PRNumber   int
	BranchName string
	Title      string
	Body       string
}

// fieldFor returns the change text a strategy applies to.
func (c Change) fieldFor(s Strategy) string {
	switch s {
	case StrategyBranchName:
		return c.BranchName
	case StrategyPRBody:
		return c.Body
	default:
		return c.Title
	}
}

// IssueRef is a resolved tracking issue.
type IssueRef struct {
	Repo   string
	Number int
	URL    string
}

// Lookup resolves an issue key against the entity cache. A nil IssueRef
// with a nil error means the key is unknown everywhere.
type Lookup interface {
	Lookup(ctx context.Context, key string) (*IssueRef, error)
}

// Result is the attribution outcome for one change. Exactly one of the
// following holds: IssueKey is empty (no pattern matched, the change is
// simply unattributed), Issue is set (bound), or Partial is set.
type Result struct {
	Change   Change
	IssueKey string
	Issue    *IssueRef
	Partial  *PartialMatch
}

// Attributed reports whether the change was bound to an issue.
func (r Result) Attributed() bool {
	return r.Issue != nil
}

// Attribute runs the ranked patterns over each change and resolves the
// extracted keys. expectedRepos is the set of repositories configured as
// authoritative issue trackers; a key found elsewhere becomes a
// different_repo partial match.
func Attribute(
	ctx context.Context,
	changes []Change,
	patterns []ExtractionPattern,
	lookup Lookup,
	expectedRepos []string,
) ([]Result, error) {
	ranked := make([]ExtractionPattern, len(patterns))
	copy(ranked, patterns)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Order < ranked[j].Order })

	expected := make(map[string]bool, len(expectedRepos))
	for _, r := range expectedRepos {
		expected[r] = true
	}

	results := make([]Result, 0, len(changes))
	for _, change := range changes {
		key, source, ok := extractKey(change, ranked)
		if !ok {
			results = append(results, Result{Change: change})
			continue
		}

		issue, err := lookup.Lookup(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("looking up issue %s: %w", key, err)
		}

		res := Result{Change: change, IssueKey: key}
		switch {
		case issue == nil:
			res.Partial = &PartialMatch{
				IssueKey:      key,
				ExtractedFrom: source,
				MatchType:     MatchNotFound,
			}
		case !expected[issue.Repo]:
			res.Partial = &PartialMatch{
				IssueKey:      key,
				ExtractedFrom: source,
				MatchType:     MatchDifferentRepo,
				FoundInRepo:   issue.Repo,
				IssueURL:      issue.URL,
			}
		default:
			res.Issue = issue
		}

		results = append(results, res)
	}

	return results, nil
}

// extractKey evaluates ranked patterns against a change. The first pattern
// whose field is present and matches wins.
func extractKey(change Change, ranked []ExtractionPattern) (key, source string, ok bool) {
	for _, p := range ranked {
		text := change.fieldFor(p.Strategy)
		if text == "" {
			continue
		}
		if k, matched := p.extract(text); matched {
			return k, p.Strategy.String(), true
		}
	}
	return "", "", false
}

// FindPRForIssue is the inverse query: given an issue key, find the pull
// request that references it. Every candidate is evaluated with the same
// ranked patterns; among the PRs whose extracted key equals the target, the
// lowest PR number wins. The tie-break is deliberately deterministic rather
// than dependent on candidate order.
func FindPRForIssue(issueKey string, candidates []Change, patterns []ExtractionPattern) (Change, bool) {
	ranked := make([]ExtractionPattern, len(patterns))
	copy(ranked, patterns)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Order < ranked[j].Order })

	var best Change
	found := false
	for _, c := range candidates {
		key, _, ok := extractKey(c, ranked)
		if !ok || key != issueKey {
			continue
		}
		if !found || c.PRNumber < best.PRNumber {
			best = c
			found = true
		}
	}
	return best, found
}
