// Package plan is the release planning engine. Given a target version and a
// snapshot of repository facts it decides which prior release to compare
// against, which branch to build on, and which commits constitute new work.
//
// The resolvers here are pure: they perform no I/O of their own and receive
// every fact they need as an argument. Repository access happens behind the
// provider interfaces, which the Planner queries up front.
package plan

import (
	"context"

	"github.com/cutplanco/cutplan/pkg/semver"
)

// Policy selects how the comparison version is chosen for prerelease targets.
type Policy int

const (
	// PolicyFinalOnly compares every target against the previous final
	// release, giving changelogs a complete, cumulative view. This is the
	// default.
	PolicyFinalOnly Policy = iota

	// PolicyIncludeRCs compares a prerelease target against the previous
	// prerelease of the same release train when one exists, giving each
	// candidate build an incremental view.
	PolicyIncludeRCs
)

// ParsePolicy parses the config spelling of a comparison policy.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "final-only", "":
		return PolicyFinalOnly, true
	case "include-rcs":
		return PolicyIncludeRCs, true
	default:
		return PolicyFinalOnly, false
	}
}

func (p Policy) String() string {
	if p == PolicyIncludeRCs {
		return "include-rcs"
	}
	return "final-only"
}

// BranchPlan is the working-branch decision for a release.
type BranchPlan struct {
	// Name is the rendered release branch name.
	Name string

	// SourceRef is the ref to create the branch from. Meaningless when
	// MustCreate is false.
	SourceRef string

	// MustCreate is true when the branch does not yet exist anywhere.
	MustCreate bool
}

// Commit is a single commit in a resolved range.
type Commit struct {
	SHA         string
	Subject     string
	AuthorName  string
	AuthorEmail string

	// PRNumber is the pull request extracted from the commit subject,
	// or zero when none was found.
	PRNumber int
}

// CommitRange is the ordered set of commits that are new for a release.
// Commits are ordered newest first, matching git log. The lower bound is
// exclusive and the upper bound inclusive.
type CommitRange struct {
	// FromTag is the excluded lower-bound tag, empty for a first release.
	FromTag string

	// HeadRef is the included upper bound: either the target's own tag
	// when the release is already tagged, or the resolved branch ref.
	HeadRef string

	Commits []Commit
}

// VersionProvider supplies the repository's known versions and their tags.
type VersionProvider interface {
	ListVersions(ctx context.Context) ([]semver.Version, error)

	// TagFor returns the tag name for a version and whether it exists.
	TagFor(ctx context.Context, v semver.Version) (string, bool, error)
}

// RefProvider supplies branch existence facts.
type RefProvider interface {
	BranchExists(ctx context.Context, name string, remote bool) (bool, error)

	// LatestReleaseBranch returns the branch of the immediately preceding
	// release line, and whether one is known.
	LatestReleaseBranch(ctx context.Context) (string, bool, error)
}

// CommitProvider supplies commit reachability queries.
type CommitProvider interface {
	CommitsReachableFrom(ctx context.Context, ref string) ([]Commit, error)

	// CommitsBetween returns commits reachable from toRef but not from
	// fromTag, newest first.
	CommitsBetween(ctx context.Context, fromTag, toRef string) ([]Commit, error)
}
